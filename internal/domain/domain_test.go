package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"no tld", "user@example", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(decimal.RequireFromString("0.01")))
	assert.NoError(t, ValidatePositiveAmount(decimal.NewFromInt(50)))
	assert.Error(t, ValidatePositiveAmount(decimal.Zero))
	assert.Error(t, ValidatePositiveAmount(decimal.NewFromInt(-5)))
	assert.Error(t, ValidatePositiveAmount(decimal.RequireFromString("10.005")))
	assert.Error(t, ValidatePositiveAmount(decimal.RequireFromString("0.004")))
	assert.NoError(t, ValidatePositiveAmount(decimal.RequireFromString("10.500")), "trailing zeros fit the scale")
}

func TestValidateMoneyScale(t *testing.T) {
	assert.NoError(t, ValidateMoneyScale(decimal.Zero))
	assert.NoError(t, ValidateMoneyScale(decimal.RequireFromString("-3.25")))
	assert.Error(t, ValidateMoneyScale(decimal.RequireFromString("1.001")))
}

func TestCredentialsComplete(t *testing.T) {
	assert.True(t, CredentialsComplete("alice", "a@example.com", "pw"))
	assert.False(t, CredentialsComplete("", "a@example.com", "pw"))
	assert.False(t, CredentialsComplete("alice", "  ", "pw"))
	assert.False(t, CredentialsComplete("alice", "a@example.com", ""))
}

func TestMethodOrUnknown(t *testing.T) {
	assert.Equal(t, "unknown", MethodOrUnknown(""))
	assert.Equal(t, "card", MethodOrUnknown("card"))
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("User not found")
		assert.Equal(t, "NOT_FOUND: User not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("database error", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Message, "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("User not found"), "NOT_FOUND", 404},
		{"ErrConflict", ErrConflict("already exists"), "CONFLICT", 400},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrBadRequest", ErrBadRequest("nope"), "BAD_REQUEST", 400},
		{"ErrUnauthorized", ErrUnauthorized("no token"), "UNAUTHORIZED", 401},
		{"ErrForbidden", ErrForbidden("not allowed"), "FORBIDDEN", 403},
		{"ErrInsufficientBalance", ErrInsufficientBalance("Insufficient balance"), "INSUFFICIENT_BALANCE", 400},
		{"ErrRateLimited", ErrRateLimited("slow down"), "RATE_LIMITED", 429},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// --- Enum Tests ---

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestParseTournamentStatus(t *testing.T) {
	for _, s := range []string{"draft", "open", "closed", "ongoing", "completed"} {
		st, err := ParseTournamentStatus(s)
		require.NoError(t, err)
		assert.Equal(t, TournamentStatus(s), st)
	}
	_, err := ParseTournamentStatus("archived")
	assert.Error(t, err)
}

func TestTransactionType_IsDebit(t *testing.T) {
	assert.True(t, TxWithdrawal.IsDebit())
	assert.True(t, TxTournamentFee.IsDebit())
	assert.False(t, TxDeposit.IsDebit())
	assert.False(t, TxRefund.IsDebit())
	assert.False(t, TxPrizeWin.IsDebit())
	assert.False(t, TransactionType("bonus").Valid())
}

// --- Tournament Rules ---

func TestTournament_AcceptsRegistrationAt(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("open before deadline", func(t *testing.T) {
		tr := &Tournament{Status: TournamentOpen, RegistrationDeadline: now.Add(time.Hour)}
		assert.Nil(t, tr.AcceptsRegistrationAt(now))
	})

	t.Run("not open", func(t *testing.T) {
		tr := &Tournament{Status: TournamentDraft, RegistrationDeadline: now.Add(time.Hour)}
		appErr := tr.AcceptsRegistrationAt(now)
		require.NotNil(t, appErr)
		assert.Equal(t, "Tournament not available for registration", appErr.Message)
	})

	t.Run("deadline reached exactly", func(t *testing.T) {
		tr := &Tournament{Status: TournamentOpen, RegistrationDeadline: now}
		appErr := tr.AcceptsRegistrationAt(now)
		require.NotNil(t, appErr)
		assert.Equal(t, "Registration deadline has passed", appErr.Message)
	})
}

func TestTournament_IsFull(t *testing.T) {
	one := 1
	capped := &Tournament{MaxParticipants: &one}
	assert.False(t, capped.IsFull(0))
	assert.True(t, capped.IsFull(1))

	unlimited := &Tournament{}
	assert.False(t, unlimited.IsFull(10000))
}

func TestActiveRegistration_Refundable(t *testing.T) {
	paid := &ActiveRegistration{Registration: Registration{PaymentStatus: PaymentPaid}, EntryFee: decimal.NewFromInt(20)}
	assert.True(t, paid.Refundable())

	free := &ActiveRegistration{Registration: Registration{PaymentStatus: PaymentFree}, EntryFee: decimal.Zero}
	assert.False(t, free.Refundable())
}

func TestWallet_Covers(t *testing.T) {
	w := &Wallet{Balance: decimal.NewFromInt(30)}
	assert.True(t, w.Covers(decimal.NewFromInt(30)))
	assert.False(t, w.Covers(decimal.RequireFromString("30.01")))
}

// --- Event Factory Tests ---

func TestNewTransactionPostedEvent(t *testing.T) {
	tx := &Transaction{
		ID:     7,
		UserID: 42,
		Type:   TxDeposit,
		Amount: decimal.NewFromInt(50),
	}

	event := NewTransactionPostedEvent(tx)

	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.Equal(t, AggregateWallet, event.AggregateType)
	assert.Equal(t, "42", event.AggregateID)
	assert.Equal(t, EventTransactionPosted, event.EventType)
	assert.Equal(t, "arena.wallet.transaction.posted", event.Topic())
	assert.False(t, event.OccurredAt.IsZero())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, float64(50), payload["amount"])
	assert.Equal(t, "deposit", payload["transaction_type"])
}

func TestNewRegistrationEvent(t *testing.T) {
	created := NewRegistrationEvent(&Registration{ID: 3, Status: RegistrationRegistered})
	assert.Equal(t, EventRegistrationCreated, created.EventType)
	assert.Equal(t, "3", created.AggregateID)

	cancelled := NewRegistrationEvent(&Registration{ID: 3, Status: RegistrationCancelled})
	assert.Equal(t, EventRegistrationCancelled, cancelled.EventType)
}

func TestNewAccountRegisteredEvent(t *testing.T) {
	event := NewAccountRegisteredEvent(&Account{ID: 9, Username: "bob", Role: RoleUser})
	assert.Equal(t, AggregateAccount, event.AggregateType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "bob", payload["username"])
	assert.Equal(t, "user", payload["role"])
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/infra"
)

type registrationRepo struct{}

// NewRegistrationRepository returns a pgx-backed RegistrationRepository.
func NewRegistrationRepository() RegistrationRepository {
	return &registrationRepo{}
}

const registrationColumns = `tr.id, tr.tournament_id, tr.user_id, tr.status, tr.payment_status,
	tr.transaction_id, tr.created_at, tr.updated_at`

func (r *registrationRepo) FindActive(ctx context.Context, db DBTX, tournamentID, userID int64) (*domain.ActiveRegistration, error) {
	row := db.QueryRow(ctx, `
		SELECT `+registrationColumns+`, t.name, t.entry_fee
		FROM tournament_registrations tr
		JOIN tournaments t ON t.id = tr.tournament_id
		WHERE tr.tournament_id = $1 AND tr.user_id = $2 AND tr.status = 'registered'`,
		tournamentID, userID)

	var ar domain.ActiveRegistration
	var fee pgtype.Numeric
	err := scanRegistrationInto(row, &ar.Registration, &ar.TournamentName, &fee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ar.EntryFee, err = infra.NumericToDecimal(fee); err != nil {
		return nil, fmt.Errorf("convert entry_fee: %w", err)
	}
	return &ar, nil
}

func (r *registrationRepo) CountActive(ctx context.Context, db DBTX, tournamentID int64) (int, error) {
	var n int64
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tournament_registrations
		WHERE tournament_id = $1 AND status = 'registered'`, tournamentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return int(n), nil
}

func (r *registrationRepo) Create(ctx context.Context, db DBTX, reg *domain.Registration) error {
	reg.Status = domain.RegistrationRegistered
	err := db.QueryRow(ctx, `
		INSERT INTO tournament_registrations (tournament_id, user_id, status, payment_status, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		reg.TournamentID, reg.UserID, string(reg.Status), string(reg.PaymentStatus), reg.TransactionID,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if IsUniqueViolation(err) {
		return domain.ErrConflict("Already registered for this tournament")
	}
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (r *registrationRepo) MarkCancelled(ctx context.Context, db DBTX, id int64) (*domain.Registration, error) {
	row := db.QueryRow(ctx, `
		UPDATE tournament_registrations tr
		SET status = 'cancelled', updated_at = now()
		WHERE tr.id = $1 AND tr.status = 'registered'
		RETURNING `+registrationColumns, id)

	var reg domain.Registration
	err := scanRegistrationInto(row, &reg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) ListByUser(ctx context.Context, db DBTX, userID int64) ([]domain.UserRegistration, error) {
	rows, err := db.Query(ctx, `
		SELECT `+registrationColumns+`, t.name, t.start_date, t.entry_fee, t.status
		FROM tournament_registrations tr
		JOIN tournaments t ON t.id = tr.tournament_id
		WHERE tr.user_id = $1
		ORDER BY tr.created_at DESC, tr.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user registrations: %w", err)
	}
	defer rows.Close()

	out := []domain.UserRegistration{}
	for rows.Next() {
		var ur domain.UserRegistration
		var fee pgtype.Numeric
		var tStatus string
		if err := scanRegistrationInto(rows, &ur.Registration, &ur.TournamentName, &ur.StartDate, &fee, &tStatus); err != nil {
			return nil, err
		}
		if ur.EntryFee, err = infra.NumericToDecimal(fee); err != nil {
			return nil, fmt.Errorf("convert entry_fee: %w", err)
		}
		ur.TournamentStatus = domain.TournamentStatus(tStatus)
		out = append(out, ur)
	}
	return out, rows.Err()
}

func (r *registrationRepo) List(ctx context.Context, db DBTX, tournamentID *int64) ([]domain.RegistrationListing, error) {
	rows, err := db.Query(ctx, `
		SELECT `+registrationColumns+`, t.name
		FROM tournament_registrations tr
		JOIN tournaments t ON t.id = tr.tournament_id
		WHERE $1::bigint IS NULL OR tr.tournament_id = $1
		ORDER BY tr.created_at DESC, tr.id DESC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	out := []domain.RegistrationListing{}
	for rows.Next() {
		var rl domain.RegistrationListing
		if err := scanRegistrationInto(rows, &rl.Registration, &rl.TournamentName); err != nil {
			return nil, err
		}
		out = append(out, rl)
	}
	return out, rows.Err()
}

// scanRegistrationInto scans registrationColumns followed by any extra destinations.
func scanRegistrationInto(row pgx.Row, reg *domain.Registration, extra ...interface{}) error {
	var status, payment string
	dest := []interface{}{
		&reg.ID, &reg.TournamentID, &reg.UserID, &status, &payment,
		&reg.TransactionID, &reg.CreatedAt, &reg.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan registration: %w", err)
	}
	reg.Status = domain.RegistrationStatus(status)
	reg.PaymentStatus = domain.PaymentStatus(payment)
	return nil
}

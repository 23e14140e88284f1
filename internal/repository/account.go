package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/playhub/arena/internal/domain"
)

type accountRepo struct{}

// NewAccountRepository returns a pgx-backed AccountRepository.
func NewAccountRepository() AccountRepository {
	return &accountRepo{}
}

const accountColumns = `id, username, email, password_hash, role, created_at, last_login`

func (r *accountRepo) Create(ctx context.Context, db DBTX, a *domain.Account) error {
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	err := db.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		a.Username, a.Email, a.PasswordHash, string(a.Role),
	).Scan(&a.ID, &a.CreatedAt)
	if IsUniqueViolation(err) {
		return domain.ErrConflict("Username or email already exists")
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *accountRepo) EnsureExists(ctx context.Context, db DBTX, a *domain.Account) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO accounts (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`,
		a.Username, a.Email, a.PasswordHash, string(a.Role))
	if err != nil {
		return false, fmt.Errorf("ensure account: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *accountRepo) FindByUsername(ctx context.Context, db DBTX, username string) (*domain.Account, error) {
	row := db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

func (r *accountRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.Account, error) {
	row := db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *accountRepo) List(ctx context.Context, db DBTX) ([]domain.Account, error) {
	rows, err := db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *accountRepo) Delete(ctx context.Context, db DBTX, id int64) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *accountRepo) UpdateRole(ctx context.Context, db DBTX, id int64, role domain.Role) (bool, error) {
	tag, err := db.Exec(ctx, `UPDATE accounts SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return false, fmt.Errorf("update role: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *accountRepo) TouchLastLogin(ctx context.Context, db DBTX, id int64) error {
	if _, err := db.Exec(ctx, `UPDATE accounts SET last_login = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch last_login: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var role string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Role = domain.Role(role)
	return a, nil
}

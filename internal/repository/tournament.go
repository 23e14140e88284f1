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

type tournamentRepo struct{}

// NewTournamentRepository returns a pgx-backed TournamentRepository.
func NewTournamentRepository() TournamentRepository {
	return &tournamentRepo{}
}

const tournamentColumns = `t.id, t.name, t.description, t.entry_fee, t.max_participants,
	t.start_date, t.end_date, t.registration_deadline, t.status, t.prize_pool,
	t.game_type, t.rules, t.created_at, t.updated_at`

func (r *tournamentRepo) ListVisible(ctx context.Context, db DBTX) ([]domain.Tournament, error) {
	rows, err := db.Query(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments t
		WHERE t.status <> 'draft'
		ORDER BY t.start_date ASC, t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	out := []domain.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *tournamentRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.Tournament, error) {
	row := db.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments t WHERE t.id = $1`, id)
	return scanTournament(row)
}

func (r *tournamentRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Tournament, error) {
	row := tx.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments t WHERE t.id = $1 FOR UPDATE`, id)
	return scanTournament(row)
}

func (r *tournamentRepo) Create(ctx context.Context, db DBTX, in domain.NewTournament) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO tournaments
		  (name, description, entry_fee, max_participants, start_date, end_date,
		   registration_deadline, status, prize_pool, game_type, rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		in.Name, in.Description, infra.DecimalToNumeric(in.EntryFee), in.MaxParticipants,
		in.StartDate, in.EndDate, in.RegistrationDeadline, string(in.Status),
		infra.DecimalToNumeric(in.PrizePool), in.GameType, in.Rules,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert tournament: %w", err)
	}
	return id, nil
}

func (r *tournamentRepo) UpdateStatus(ctx context.Context, db DBTX, id int64, status domain.TournamentStatus) (bool, error) {
	tag, err := db.Exec(ctx,
		`UPDATE tournaments SET status = $1, updated_at = now() WHERE id = $2`, string(status), id)
	if err != nil {
		return false, fmt.Errorf("update tournament status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *tournamentRepo) ListWithCounts(ctx context.Context, db DBTX) ([]domain.TournamentWithCount, error) {
	rows, err := db.Query(ctx, `
		SELECT `+tournamentColumns+`, COUNT(tr.id)
		FROM tournaments t
		LEFT JOIN tournament_registrations tr
		  ON tr.tournament_id = t.id AND tr.status = 'registered'
		GROUP BY t.id
		ORDER BY t.created_at DESC, t.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tournaments with counts: %w", err)
	}
	defer rows.Close()

	out := []domain.TournamentWithCount{}
	for rows.Next() {
		var tc domain.TournamentWithCount
		var count int64
		if err := scanTournamentInto(rows, &tc.Tournament, &count); err != nil {
			return nil, err
		}
		tc.CurrentParticipants = int(count)
		out = append(out, tc)
	}
	return out, rows.Err()
}

func scanTournament(row pgx.Row) (*domain.Tournament, error) {
	t := &domain.Tournament{}
	err := scanTournamentInto(row, t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// scanTournamentInto scans tournamentColumns followed by any extra destinations.
func scanTournamentInto(row pgx.Row, t *domain.Tournament, extra ...interface{}) error {
	var fee, prize pgtype.Numeric
	var status string
	dest := []interface{}{
		&t.ID, &t.Name, &t.Description, &fee, &t.MaxParticipants,
		&t.StartDate, &t.EndDate, &t.RegistrationDeadline, &status, &prize,
		&t.GameType, &t.Rules, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan tournament: %w", err)
	}
	t.Status = domain.TournamentStatus(status)

	var err error
	if t.EntryFee, err = infra.NumericToDecimal(fee); err != nil {
		return fmt.Errorf("convert entry_fee: %w", err)
	}
	if t.PrizePool, err = infra.NumericToDecimal(prize); err != nil {
		return fmt.Errorf("convert prize_pool: %w", err)
	}
	return nil
}

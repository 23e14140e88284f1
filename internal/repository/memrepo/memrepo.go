// Package memrepo is an in-memory implementation of the repository
// interfaces for unit tests. Transactions snapshot the whole store on Begin
// and restore it on Rollback, so callers observe all-or-nothing effects.
package memrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	accounts      []domain.Account
	wallets       map[int64]domain.Wallet
	transactions  []domain.Transaction
	tournaments   []domain.Tournament
	registrations []domain.Registration
	outbox        []domain.OutboxDraft
	published     map[int64]bool
	seq           map[string]int64
}

func (s *state) clone() *state {
	c := &state{
		accounts:      append([]domain.Account(nil), s.accounts...),
		wallets:       make(map[int64]domain.Wallet, len(s.wallets)),
		transactions:  append([]domain.Transaction(nil), s.transactions...),
		tournaments:   append([]domain.Tournament(nil), s.tournaments...),
		registrations: append([]domain.Registration(nil), s.registrations...),
		outbox:        append([]domain.OutboxDraft(nil), s.outbox...),
		published:     make(map[int64]bool, len(s.published)),
		seq:           make(map[string]int64, len(s.seq)),
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.published {
		c.published[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

// Store holds every table. The zero value is not usable; call New.
type Store struct {
	mu     sync.Mutex
	st     *state
	fails  map[string]error
	lastTx *Tx

	// Now stamps created_at columns.
	Now func() time.Time
	// CommitErr, when set, is returned by every Tx.Commit.
	CommitErr error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		st: &state{
			wallets:   map[int64]domain.Wallet{},
			published: map[int64]bool{},
			seq:       map[string]int64{},
		},
		fails: map[string]error{},
		Now:   time.Now,
	}
}

// FailOn makes the named operation (for example "transactions.Insert")
// return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

func (s *Store) fail(op string) error {
	return s.fails[op]
}

func (s *Store) next(table string) int64 {
	s.st.seq[table]++
	return s.st.seq[table]
}

// Tx is a pgx.Tx whose only working methods are Commit and Rollback.
type Tx struct {
	pgx.Tx
	store      *Store
	snapshot   *state
	Committed  bool
	RolledBack bool
}

// Begin snapshots the store. It satisfies the services' transaction starter.
func (s *Store) Begin(_ context.Context) (pgx.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Begin"); err != nil {
		return nil, err
	}
	tx := &Tx{store: s, snapshot: s.st.clone()}
	s.lastTx = tx
	return tx, nil
}

func (t *Tx) Commit(_ context.Context) error {
	if t.Committed || t.RolledBack {
		return pgx.ErrTxClosed
	}
	if t.store.CommitErr != nil {
		t.restore()
		return t.store.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(_ context.Context) error {
	if t.Committed || t.RolledBack {
		return pgx.ErrTxClosed
	}
	t.restore()
	return nil
}

func (t *Tx) restore() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.st = t.snapshot
	t.RolledBack = true
}

// Accounts returns the account view of the store.
func (s *Store) Accounts() repository.AccountRepository { return &accounts{s} }

// Wallets returns the wallet view of the store.
func (s *Store) Wallets() repository.WalletRepository { return &wallets{s} }

// Transactions returns the ledger view of the store.
func (s *Store) Transactions() repository.TransactionRepository { return &transactions{s} }

// Tournaments returns the tournament view of the store.
func (s *Store) Tournaments() repository.TournamentRepository { return &tournaments{s} }

// Registrations returns the registration view of the store.
func (s *Store) Registrations() repository.RegistrationRepository { return &registrations{s} }

// Outbox returns the outbox view of the store.
func (s *Store) Outbox() repository.OutboxRepository { return &outbox{s} }

// SeedWallet sets a wallet balance directly, bypassing the ledger.
func (s *Store) SeedWallet(userID int64, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	w, ok := s.st.wallets[userID]
	if !ok {
		w = domain.Wallet{ID: s.next("wallets"), UserID: userID, CreatedAt: now}
	}
	w.Balance = balance
	w.UpdatedAt = now
	s.st.wallets[userID] = w
}

// Balance returns the stored balance, or zero if the wallet does not exist.
func (s *Store) Balance(userID int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.wallets[userID].Balance
}

// LedgerFor returns a user's ledger entries oldest first.
func (s *Store) LedgerFor(userID int64) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.st.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// OutboxEvents returns every outbox draft in insertion order.
func (s *Store) OutboxEvents() []domain.OutboxDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxDraft(nil), s.st.outbox...)
}

// RegistrationsFor returns every registration row for the pair, oldest first.
func (s *Store) RegistrationsFor(tournamentID, userID int64) []domain.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Registration
	for _, r := range s.st.registrations {
		if r.TournamentID == tournamentID && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// LastTx returns the most recently begun transaction.
func (s *Store) LastTx() *Tx {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTx
}

// --- accounts ---

type accounts struct{ s *Store }

func (r *accounts) Create(_ context.Context, _ repository.DBTX, a *domain.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("accounts.Create"); err != nil {
		return err
	}
	for _, existing := range s.st.accounts {
		if existing.Username == a.Username || existing.Email == a.Email {
			return domain.ErrConflict("Username or email already exists")
		}
	}
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	a.ID = s.next("accounts")
	a.CreatedAt = s.Now()
	s.st.accounts = append(s.st.accounts, *a)
	return nil
}

func (r *accounts) EnsureExists(ctx context.Context, db repository.DBTX, a *domain.Account) (bool, error) {
	err := r.Create(ctx, db, a)
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
		return false, nil
	}
	return err == nil, err
}

func (r *accounts) find(match func(domain.Account) bool) *domain.Account {
	for _, a := range r.s.st.accounts {
		if match(a) {
			found := a
			return &found
		}
	}
	return nil
}

func (r *accounts) FindByUsername(_ context.Context, _ repository.DBTX, username string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.FindByUsername"); err != nil {
		return nil, err
	}
	return r.find(func(a domain.Account) bool { return a.Username == username }), nil
}

func (r *accounts) FindByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(func(a domain.Account) bool { return a.ID == id }), nil
}

func (r *accounts) List(_ context.Context, _ repository.DBTX) ([]domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.List"); err != nil {
		return nil, err
	}
	out := append([]domain.Account{}, r.s.st.accounts...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *accounts) Delete(_ context.Context, _ repository.DBTX, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.st.accounts {
		if a.ID == id {
			r.s.st.accounts = append(r.s.st.accounts[:i:i], r.s.st.accounts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *accounts) UpdateRole(_ context.Context, _ repository.DBTX, id int64, role domain.Role) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st.accounts {
		if r.s.st.accounts[i].ID == id {
			r.s.st.accounts[i].Role = role
			return true, nil
		}
	}
	return false, nil
}

func (r *accounts) TouchLastLogin(_ context.Context, _ repository.DBTX, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	for i := range r.s.st.accounts {
		if r.s.st.accounts[i].ID == id {
			r.s.st.accounts[i].LastLogin = &now
		}
	}
	return nil
}

// --- wallets ---

type wallets struct{ s *Store }

func (r *wallets) ensure(userID int64) domain.Wallet {
	w, ok := r.s.st.wallets[userID]
	if !ok {
		now := r.s.Now()
		w = domain.Wallet{ID: r.s.next("wallets"), UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
		r.s.st.wallets[userID] = w
	}
	return w
}

func (r *wallets) GetOrCreate(_ context.Context, _ repository.DBTX, userID int64) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("wallets.GetOrCreate"); err != nil {
		return nil, err
	}
	w := r.ensure(userID)
	return &w, nil
}

func (r *wallets) LockForUpdate(_ context.Context, _ pgx.Tx, userID int64) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("wallets.LockForUpdate"); err != nil {
		return nil, err
	}
	w := r.ensure(userID)
	return &w, nil
}

func (r *wallets) ApplyDelta(_ context.Context, _ pgx.Tx, userID int64, delta decimal.Decimal) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("wallets.ApplyDelta"); err != nil {
		return nil, err
	}
	w, ok := r.s.st.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user %d vanished during update", userID)
	}
	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return nil, fmt.Errorf("check constraint: balance would be %s", next)
	}
	w.Balance = next
	w.UpdatedAt = r.s.Now()
	w.Version++
	r.s.st.wallets[userID] = w
	return &w, nil
}

func (r *wallets) Stats(_ context.Context, _ repository.DBTX) (*domain.WalletStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &domain.WalletStats{}
	for _, w := range r.s.st.wallets {
		st.TotalWallets++
		st.TotalBalance = st.TotalBalance.Add(w.Balance)
		if w.Balance.GreaterThan(st.MaxBalance) {
			st.MaxBalance = w.Balance
		}
	}
	if st.TotalWallets > 0 {
		st.AvgBalance = st.TotalBalance.Div(decimal.NewFromInt(st.TotalWallets)).Round(2)
	}
	return st, nil
}

func (r *wallets) FindDrift(_ context.Context, _ repository.DBTX) ([]domain.WalletDrift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("wallets.FindDrift"); err != nil {
		return nil, err
	}
	var out []domain.WalletDrift
	for _, w := range r.s.st.wallets {
		sum, last := decimal.Zero, decimal.Zero
		for _, t := range r.s.st.transactions {
			if t.UserID == w.UserID {
				sum = sum.Add(t.Amount)
				last = t.BalanceAfter
			}
		}
		if !w.Balance.Equal(sum) || !w.Balance.Equal(last) {
			out = append(out, domain.WalletDrift{UserID: w.UserID, Balance: w.Balance, LedgerSum: sum, LastSnapshot: last})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// --- transactions ---

type transactions struct{ s *Store }

func (r *transactions) Insert(_ context.Context, _ repository.DBTX, p domain.PostLedgerEntryParams, balanceAfter decimal.Decimal) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("transactions.Insert"); err != nil {
		return nil, err
	}
	tx := domain.Transaction{
		ID:           r.s.next("transactions"),
		UserID:       p.UserID,
		Type:         p.Type,
		Amount:       p.Amount,
		BalanceAfter: balanceAfter,
		Description:  p.Description,
		ReferenceID:  p.ReferenceID,
		Status:       domain.TxStatusCompleted,
		CreatedAt:    r.s.Now(),
	}
	r.s.st.transactions = append(r.s.st.transactions, tx)
	return &tx, nil
}

func newestFirst(in []domain.Transaction, limit, offset, def int) []domain.Transaction {
	if limit <= 0 {
		limit = def
	}
	out := make([]domain.Transaction, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
	}
	if offset >= len(out) {
		return []domain.Transaction{}
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *transactions) ListByUser(_ context.Context, _ repository.DBTX, userID int64, limit, offset int) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("transactions.ListByUser"); err != nil {
		return nil, err
	}
	var mine []domain.Transaction
	for _, t := range r.s.st.transactions {
		if t.UserID == userID {
			mine = append(mine, t)
		}
	}
	return newestFirst(mine, limit, offset, repository.DefaultPageSize), nil
}

func (r *transactions) ListAll(_ context.Context, _ repository.DBTX, limit, offset int) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return newestFirst(r.s.st.transactions, limit, offset, repository.DefaultAdminPageSize), nil
}

func (r *transactions) StatsByType(_ context.Context, _ repository.DBTX) ([]domain.TransactionTypeStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byType := map[domain.TransactionType]*domain.TransactionTypeStats{}
	for _, t := range r.s.st.transactions {
		if t.Status != domain.TxStatusCompleted {
			continue
		}
		st, ok := byType[t.Type]
		if !ok {
			st = &domain.TransactionTypeStats{Type: t.Type}
			byType[t.Type] = st
		}
		st.Count++
		st.TotalAmount = st.TotalAmount.Add(t.Amount)
	}
	out := []domain.TransactionTypeStats{}
	for _, st := range byType {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// --- tournaments ---

type tournaments struct{ s *Store }

func (r *tournaments) byID(id int64) *domain.Tournament {
	for _, t := range r.s.st.tournaments {
		if t.ID == id {
			found := t
			return &found
		}
	}
	return nil
}

func (r *tournaments) ListVisible(_ context.Context, _ repository.DBTX) ([]domain.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Tournament{}
	for _, t := range r.s.st.tournaments {
		if t.Status != domain.TournamentDraft {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *tournaments) FindByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tournaments.FindByID"); err != nil {
		return nil, err
	}
	return r.byID(id), nil
}

func (r *tournaments) LockForUpdate(_ context.Context, _ pgx.Tx, id int64) (*domain.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tournaments.LockForUpdate"); err != nil {
		return nil, err
	}
	return r.byID(id), nil
}

func (r *tournaments) Create(_ context.Context, _ repository.DBTX, in domain.NewTournament) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	t := domain.Tournament{
		ID:                   r.s.next("tournaments"),
		Name:                 in.Name,
		Description:          in.Description,
		EntryFee:             in.EntryFee,
		MaxParticipants:      in.MaxParticipants,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		RegistrationDeadline: in.RegistrationDeadline,
		Status:               in.Status,
		PrizePool:            in.PrizePool,
		GameType:             in.GameType,
		Rules:                in.Rules,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	r.s.st.tournaments = append(r.s.st.tournaments, t)
	return t.ID, nil
}

func (r *tournaments) UpdateStatus(_ context.Context, _ repository.DBTX, id int64, status domain.TournamentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st.tournaments {
		if r.s.st.tournaments[i].ID == id {
			r.s.st.tournaments[i].Status = status
			r.s.st.tournaments[i].UpdatedAt = r.s.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *tournaments) ListWithCounts(_ context.Context, _ repository.DBTX) ([]domain.TournamentWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.TournamentWithCount{}
	for i := len(r.s.st.tournaments) - 1; i >= 0; i-- {
		t := r.s.st.tournaments[i]
		n := 0
		for _, reg := range r.s.st.registrations {
			if reg.TournamentID == t.ID && reg.Status == domain.RegistrationRegistered {
				n++
			}
		}
		out = append(out, domain.TournamentWithCount{Tournament: t, CurrentParticipants: n})
	}
	return out, nil
}

// --- registrations ---

type registrations struct{ s *Store }

func (r *registrations) FindActive(_ context.Context, _ repository.DBTX, tournamentID, userID int64) (*domain.ActiveRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("registrations.FindActive"); err != nil {
		return nil, err
	}
	for _, reg := range r.s.st.registrations {
		if reg.TournamentID == tournamentID && reg.UserID == userID && reg.Status == domain.RegistrationRegistered {
			t := (&tournaments{r.s}).byID(tournamentID)
			ar := &domain.ActiveRegistration{Registration: reg}
			if t != nil {
				ar.TournamentName = t.Name
				ar.EntryFee = t.EntryFee
			}
			return ar, nil
		}
	}
	return nil, nil
}

func (r *registrations) CountActive(_ context.Context, _ repository.DBTX, tournamentID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, reg := range r.s.st.registrations {
		if reg.TournamentID == tournamentID && reg.Status == domain.RegistrationRegistered {
			n++
		}
	}
	return n, nil
}

func (r *registrations) Create(_ context.Context, _ repository.DBTX, reg *domain.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("registrations.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.st.registrations {
		if existing.TournamentID == reg.TournamentID && existing.UserID == reg.UserID && existing.Status == domain.RegistrationRegistered {
			return domain.ErrConflict("Already registered for this tournament")
		}
	}
	now := r.s.Now()
	reg.ID = r.s.next("registrations")
	reg.Status = domain.RegistrationRegistered
	reg.CreatedAt = now
	reg.UpdatedAt = now
	r.s.st.registrations = append(r.s.st.registrations, *reg)
	return nil
}

func (r *registrations) MarkCancelled(_ context.Context, _ repository.DBTX, id int64) (*domain.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("registrations.MarkCancelled"); err != nil {
		return nil, err
	}
	for i := range r.s.st.registrations {
		reg := &r.s.st.registrations[i]
		if reg.ID == id && reg.Status == domain.RegistrationRegistered {
			reg.Status = domain.RegistrationCancelled
			reg.UpdatedAt = r.s.Now()
			out := *reg
			return &out, nil
		}
	}
	return nil, nil
}

func (r *registrations) ListByUser(_ context.Context, _ repository.DBTX, userID int64) ([]domain.UserRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := &tournaments{r.s}
	out := []domain.UserRegistration{}
	for i := len(r.s.st.registrations) - 1; i >= 0; i-- {
		reg := r.s.st.registrations[i]
		if reg.UserID != userID {
			continue
		}
		ur := domain.UserRegistration{Registration: reg}
		if t := ts.byID(reg.TournamentID); t != nil {
			ur.TournamentName = t.Name
			ur.StartDate = t.StartDate
			ur.EntryFee = t.EntryFee
			ur.TournamentStatus = t.Status
		}
		out = append(out, ur)
	}
	return out, nil
}

func (r *registrations) List(_ context.Context, _ repository.DBTX, tournamentID *int64) ([]domain.RegistrationListing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := &tournaments{r.s}
	out := []domain.RegistrationListing{}
	for i := len(r.s.st.registrations) - 1; i >= 0; i-- {
		reg := r.s.st.registrations[i]
		if tournamentID != nil && reg.TournamentID != *tournamentID {
			continue
		}
		rl := domain.RegistrationListing{Registration: reg}
		if t := ts.byID(reg.TournamentID); t != nil {
			rl.TournamentName = t.Name
		}
		out = append(out, rl)
	}
	return out, nil
}

// --- outbox ---

type outbox struct{ s *Store }

func (r *outbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("outbox.Insert"); err != nil {
		return err
	}
	d.ID = r.s.next("outbox")
	r.s.st.outbox = append(r.s.st.outbox, d)
	return nil
}

func (r *outbox) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.OutboxDraft
	for _, d := range r.s.st.outbox {
		if !r.s.st.published[d.ID] {
			out = append(out, d)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *outbox) MarkPublished(_ context.Context, _ repository.DBTX, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.published[id] = true
	return nil
}

// --- raw SQL ---

// ErrRawSQL is returned when code under test bypasses the repositories.
var ErrRawSQL = errors.New("memrepo: raw SQL is not supported")

type errRow struct{}

func (errRow) Scan(...interface{}) error { return ErrRawSQL }

func (s *Store) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrRawSQL
}

func (s *Store) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, ErrRawSQL
}

func (s *Store) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{}
}

// Ping lets the store back a health check.
func (s *Store) Ping(context.Context) error {
	return s.fail("Ping")
}

// Package pg implements the account store on PostgreSQL. The unique
// index on email is the authoritative uniqueness guard: concurrent
// inserts of the same address resolve to one success and unique-violation
// errors for the rest.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"metrodocs.org/internal/auth"
	"metrodocs.org/internal/ids"
)

const pgErrUniqueViolation = "23505"

// Store implements auth.AccountStore using PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ auth.AccountStore = (*Store)(nil)

// Open connects to PostgreSQL and returns a Store with tuned pool
// defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the pool for readiness probes and migrations.
func (s *Store) DB() *sql.DB { return s.db }

// Create inserts a new account record. Timestamps come back from the
// database so they match what later reads observe.
func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	if account.ID == "" {
		account.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into accounts (id, name, email, password_hash, role)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, account.ID, account.Name, account.Email, account.PasswordHash, string(account.Role))
	if err := row.Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrDuplicateEmail
		}
		return storeErr("create account", err)
	}
	return nil
}

// FindByEmail looks an account up by its normalized email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.findBy(ctx, "email", email)
}

// FindByID looks an account up by id.
func (s *Store) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	return s.findBy(ctx, "id", id)
}

func (s *Store) findBy(ctx context.Context, column, value string) (*auth.Account, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		select id, name, email, password_hash, role, created_at, updated_at
		from accounts
		where %s = $1
	`, column), value)

	var (
		account auth.Account
		role    string
	)
	err := row.Scan(&account.ID, &account.Name, &account.Email,
		&account.PasswordHash, &role, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr("find account", err)
	}
	account.Role = auth.Role(role)
	return &account, nil
}

// List returns all accounts in creation order.
func (s *Store) List(ctx context.Context) ([]*auth.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, email, password_hash, role, created_at, updated_at
		from accounts
		order by created_at asc, id asc
	`)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var result []*auth.Account
	for rows.Next() {
		var (
			account auth.Account
			role    string
		)
		if err := rows.Scan(&account.ID, &account.Name, &account.Email,
			&account.PasswordHash, &role, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, storeErr("list accounts", err)
		}
		account.Role = auth.Role(role)
		result = append(result, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list accounts", err)
	}
	return result, nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// storeErr tags infrastructure failures so flows can surface them as
// store unavailability without leaking driver error text to clients.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", auth.ErrStoreUnavailable, op, err)
}

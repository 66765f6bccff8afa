// Package sqlite provides a SQLite-backed account store for single-node
// deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	email_id      TEXT NOT NULL DEFAULT '',
	phone_number  TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
)`

// AccountStore persists accounts in SQLite. The UNIQUE constraint on
// username is the uniqueness authority.
type AccountStore struct {
	db *sql.DB
}

var (
	_ ports.AccountRepository = (*AccountStore)(nil)
	_ ports.Pinger            = (*AccountStore)(nil)
)

// Open opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*AccountStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	store, err := NewAccountStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewAccountStore wraps an existing handle and ensures the schema exists.
func NewAccountStore(ctx context.Context, db *sql.DB) (*AccountStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &AccountStore{db: db}, nil
}

// Close closes the SQLite handle.
func (s *AccountStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *AccountStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *AccountStore) Insert(ctx context.Context, a *domain.Account) error {
	id := uuid.NewString()
	createdAt := a.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, role, email_id, phone_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, a.Username, a.CredentialHash, a.Role.String(), a.EmailID, a.PhoneNumber, createdAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}

	a.ID = id
	a.CreatedAt = createdAt
	return nil
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, email_id, phone_number, created_at
		 FROM accounts WHERE username = ?`, username)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, role, email_id, phone_number, created_at
		 FROM accounts ORDER BY created_at, username`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountStore) DeleteByUsername(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (*domain.Account, error) {
	var (
		a         domain.Account
		role      string
		createdAt int64
	)
	if err := sc.Scan(&a.ID, &a.Username, &a.CredentialHash, &role, &a.EmailID, &a.PhoneNumber, &createdAt); err != nil {
		return nil, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", a.Username, err)
	}
	a.Role = r
	a.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

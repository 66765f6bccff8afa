package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// AccountRepository is the persistence boundary for accounts. Implementations
// must enforce username uniqueness themselves so that Insert is an atomic
// insert-if-absent.
type AccountRepository interface {
	// Insert persists a new account and assigns its ID. It returns
	// domain.ErrAccountExists when the username is already taken.
	Insert(ctx context.Context, account *domain.Account) error
	// FindByUsername returns domain.ErrAccountNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// List returns every account ordered by creation time.
	List(ctx context.Context) ([]*domain.Account, error)
	// DeleteByUsername removes the account in a single write and returns
	// domain.ErrAccountNotFound when nothing was deleted.
	DeleteByUsername(ctx context.Context, username string) error
}

// Pinger is implemented by repositories that can report liveness of their
// backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ViewCache caches public account views by username. Only credential-free
// projections are ever stored. A removed username is held as a tombstone
// that reads as a miss and keeps Add from writing until it expires or is
// cleared.
type ViewCache interface {
	Get(ctx context.Context, username string) (*domain.PublicView, bool, error)
	// Add stores view unless the username already holds a view or a tombstone.
	Add(ctx context.Context, view domain.PublicView) error
	// Tombstone replaces whatever is cached for username with a tombstone.
	Tombstone(ctx context.Context, username string) error
	// Clear drops any entry for username, tombstones included.
	Clear(ctx context.Context, username string) error
}

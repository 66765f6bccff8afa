// Package memory provides a process-local account store, used for tests and
// single-instance development runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

var (
	_ ports.AccountRepository = (*AccountRepository)(nil)
	_ ports.Pinger            = (*AccountRepository)(nil)
)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*domain.Account)}
}

func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.Username]; ok {
		return domain.ErrAccountExists
	}
	a.ID = uuid.NewString()
	stored := *a
	r.accounts[a.Username] = &stored
	return nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

// List returns copies ordered by creation time, then username.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		clone := *a
		out = append(out, &clone)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

func (r *AccountRepository) DeleteByUsername(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[username]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, username)
	return nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/identity-service/internal/core/domain"
)

func TestAccountRepository_InsertFind(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	a := &domain.Account{Username: "alice", CredentialHash: "h", Role: domain.RoleUser}
	require.NoError(t, repo.Insert(ctx, a))
	require.NotEmpty(t, a.ID)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, *a, *got)

	got.Role = domain.RoleAdmin
	again, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role, "callers must not alias stored records")

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_Duplicate(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.Account{Username: "alice", Role: domain.RoleUser}))
	err := repo.Insert(ctx, &domain.Account{Username: "alice", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrAccountExists)
}

func TestAccountRepository_ConcurrentInsert(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Insert(ctx, &domain.Account{Username: "racer", Role: domain.RoleUser}) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
}

func TestAccountRepository_ListDelete(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, &domain.Account{Username: "zed", Role: domain.RoleUser, CreatedAt: base}))
	require.NoError(t, repo.Insert(ctx, &domain.Account{Username: "amy", Role: domain.RoleUser, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, repo.Insert(ctx, &domain.Account{Username: "bob", Role: domain.RoleUser, CreatedAt: base}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"bob", "zed", "amy"}, []string{all[0].Username, all[1].Username, all[2].Username})

	require.NoError(t, repo.DeleteByUsername(ctx, "bob"))
	assert.ErrorIs(t, repo.DeleteByUsername(ctx, "bob"), domain.ErrAccountNotFound)

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAccountRepository_CancelledContext(t *testing.T) {
	repo := NewAccountRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Insert(ctx, &domain.Account{Username: "alice"}), context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}

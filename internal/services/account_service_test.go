package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/knowara/portal/internal/models"
	pkglogger "github.com/knowara/portal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccountService(accounts *MockAccountRepository) *AccountService {
	logger := slog.Default()
	return NewAccountService(accounts, logger, pkglogger.NewAuditLogger(logger))
}

func TestAccountGetByID(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return NewTestAccount(id, "jdoe"), nil
		},
	}

	svc := newTestAccountService(accounts)
	summary, err := svc.GetByID(context.Background(), "acc1")

	require.NoError(t, err)
	assert.Equal(t, "jdoe", summary.Username)
	assert.Contains(t, summary.Roles, models.RoleUser)
}

func TestAccountGetByID_NotFound(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newTestAccountService(accounts)
	_, err := svc.GetByID(context.Background(), "ghost")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAccountList(t *testing.T) {
	accounts := &MockAccountRepository{
		CountFunc: func(ctx context.Context) (int64, error) {
			return 2, nil
		},
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.Account, error) {
			return []*models.Account{
				NewTestAccount("acc1", "jdoe"),
				NewTestAccount("acc2", "asmith"),
			}, nil
		},
	}

	svc := newTestAccountService(accounts)
	page, err := svc.List(context.Background(), 20, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Accounts, 2)
	assert.Equal(t, "jdoe", page.Accounts[0].Username)
}

func TestAccountApprove(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	var gotActive bool
	accounts := &MockAccountRepository{
		SetActiveFunc: func(ctx context.Context, id string, active bool) error {
			gotActive = active
			return nil
		},
	}

	svc := newTestAccountService(accounts)
	err := svc.Approve(context.Background(), admin, "acc1")

	require.NoError(t, err)
	assert.True(t, gotActive)
}

func TestAccountDeactivate(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	var gotActive = true
	accounts := &MockAccountRepository{
		SetActiveFunc: func(ctx context.Context, id string, active bool) error {
			gotActive = active
			return nil
		},
	}

	svc := newTestAccountService(accounts)
	err := svc.Deactivate(context.Background(), admin, "acc1")

	require.NoError(t, err)
	assert.False(t, gotActive)
}

func TestAccountUnlock(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	unlocked := false
	accounts := &MockAccountRepository{
		UnlockFunc: func(ctx context.Context, id string) error {
			assert.Equal(t, "acc1", id)
			unlocked = true
			return nil
		},
	}

	svc := newTestAccountService(accounts)
	err := svc.Unlock(context.Background(), admin, "acc1")

	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestAccountUnlock_NotFound(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	accounts := &MockAccountRepository{
		UnlockFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}

	svc := newTestAccountService(accounts)
	err := svc.Unlock(context.Background(), admin, "ghost")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

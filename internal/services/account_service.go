package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/knowara/portal/internal/models"
	pkglogger "github.com/knowara/portal/pkg/logger"
)

// AccountService implements administrative account operations: listing,
// approval of pending registrations, unlock, and deactivation. Role gating
// happens at the route layer; the actor is passed in for audit logging.
type AccountService struct {
	accounts    AccountRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAccountService(accounts AccountRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AccountService {
	return &AccountService{
		accounts:    accounts,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// AccountPage is one page of an account listing.
type AccountPage struct {
	Accounts []*AccountSummary `json:"accounts"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*AccountSummary, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get account", slog.String("account_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return accountToSummary(account), nil
}

func (s *AccountService) List(ctx context.Context, limit, offset int) (*AccountPage, error) {
	total, err := s.accounts.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	accounts, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list accounts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	summaries := make([]*AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, accountToSummary(account))
	}

	return &AccountPage{Accounts: summaries, Total: total, Limit: limit, Offset: offset}, nil
}

// Approve activates an account created under the pending-approval policy.
func (s *AccountService) Approve(ctx context.Context, actor *models.Account, id string) error {
	if err := s.setActive(ctx, id, true); err != nil {
		return err
	}
	s.auditLogger.LogAccountAction("account_approved", id, actor.ID, nil)
	return nil
}

// Deactivate administratively disables an account. Accounts are never
// hard-deleted.
func (s *AccountService) Deactivate(ctx context.Context, actor *models.Account, id string) error {
	if err := s.setActive(ctx, id, false); err != nil {
		return err
	}
	s.auditLogger.LogAccountAction("account_deactivated", id, actor.ID, nil)
	return nil
}

// Unlock clears the locked flag and failure counter for an account that
// exceeded the failed login threshold.
func (s *AccountService) Unlock(ctx context.Context, actor *models.Account, id string) error {
	if err := s.accounts.Unlock(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to unlock account", slog.String("account_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.auditLogger.LogAccountAction("account_unlocked", id, actor.ID, nil)
	return nil
}

func (s *AccountService) setActive(ctx context.Context, id string, active bool) error {
	if err := s.accounts.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to change account active flag",
			slog.String("account_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

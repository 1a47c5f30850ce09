package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/knowara/portal/internal/auth"
	"github.com/knowara/portal/internal/models"
	pkgauth "github.com/knowara/portal/pkg/auth"
	pkglogger "github.com/knowara/portal/pkg/logger"
)

// AccountRepository defines the account store operations the services need.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Account, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	RecordFailedLogin(ctx context.Context, id string, threshold int) (attempts int, locked bool, err error)
	RecordSuccessfulLogin(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	Unlock(ctx context.Context, id string) error
}

// RoleRepository resolves reference roles by name.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
}

// EmailNotifier sends operator notifications; failures are logged, never
// surfaced to the caller.
type EmailNotifier interface {
	NotifyPendingRegistration(ctx context.Context, username, email string) error
}

// AuthService implements the authentication, lockout, and registration flows.
type AuthService struct {
	accounts    AccountRepository
	roles       RoleRepository
	tm          *auth.TokenManager
	notifier    EmailNotifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	env         string

	// Failed attempts before lockout; configuration, not logic.
	maxFailedAttempts int
}

func NewAuthService(
	accounts AccountRepository,
	roles RoleRepository,
	tm *auth.TokenManager,
	notifier EmailNotifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	env string,
	maxFailedAttempts int,
) *AuthService {
	return &AuthService{
		accounts:          accounts,
		roles:             roles,
		tm:                tm,
		notifier:          notifier,
		logger:            logger,
		auditLogger:       auditLogger,
		env:               env,
		maxFailedAttempts: maxFailedAttempts,
	}
}

// AccountSummary represents an account in HTTP responses.
type AccountSummary struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Department  string   `json:"department,omitempty"`
	Position    string   `json:"position,omitempty"`
	Roles       []string `json:"roles"`
	Active      bool     `json:"active"`
	Locked      bool     `json:"locked"`
	LastLoginAt string   `json:"last_login_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// AuthResponse carries the token pair issued on successful authentication.
type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Account      *AccountSummary `json:"account"`
}

// RegisterResponse reports the activation outcome of a registration.
type RegisterResponse struct {
	Account *AccountSummary `json:"account"`
	Message string          `json:"-"`
}

// Registration success messages differ by activation policy so the client
// can tell the user whether login is possible right away.
const (
	msgRegisteredActive  = "registration complete, you can log in now"
	msgRegisteredPending = "registration complete, awaiting administrator approval"
)

// Login authenticates a username/password pair and issues a token pair.
//
// State checks run in a fixed order: the administrative active flag, then the
// lockout flag, and only then the password comparison. A mismatch increments
// the failure counter atomically; the attempt that crosses the threshold
// locks the account and is itself reported as a failure with a distinct
// message. A match resets the counter before any token is issued.
func (s *AuthService) Login(ctx context.Context, username, password, ipAddress string) (*AuthResponse, error) {
	if username = strings.TrimSpace(username); username == "" {
		s.logger.Warn("login attempt with empty username")
		return nil, models.ErrInvalidCredentials
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same failure as a wrong password so usernames cannot be enumerated
			s.logger.Info("login failed: unknown username",
				slog.String("username", pkglogger.SanitizedUsername(username)))
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				FailureReason: "unknown_username",
				Success:       false,
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get account by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !account.Active {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_disabled",
			Success:       false,
		})
		return nil, models.ErrAccountDisabled
	}

	if account.Locked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_locked",
			Success:       false,
		})
		return nil, models.ErrAccountLocked
	}

	if !pkgauth.VerifyPassword(account.PasswordHash, password) {
		return nil, s.recordFailedAttempt(ctx, account, ipAddress)
	}

	// Persist the reset and login timestamp before handing out tokens
	if err := s.accounts.RecordSuccessfulLogin(ctx, account.ID); err != nil {
		s.logger.Error("failed to record successful login",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	account.FailedLoginAttempts = 0
	now := time.Now()
	account.LastLoginAt = &now

	accessToken, err := s.tm.IssueAccessToken(account)
	if err != nil {
		s.logger.Error("failed to issue access token",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.IssueRefreshToken(account.Username)
	if err != nil {
		s.logger.Error("failed to issue refresh token",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AccountID: account.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      accountToSummary(account),
	}, nil
}

// recordFailedAttempt bumps the counter and picks the failure to report: a
// generic mismatch below the threshold, the distinct just-locked message on
// the attempt that crossed it.
func (s *AuthService) recordFailedAttempt(ctx context.Context, account *models.Account, ipAddress string) error {
	attempts, locked, err := s.accounts.RecordFailedLogin(ctx, account.ID, s.maxFailedAttempts)
	if err != nil {
		s.logger.Error("failed to record failed login",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if locked {
		s.logger.Warn("account locked after repeated failures",
			slog.String("account_id", account.ID), slog.Int("attempts", attempts))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "account_locked",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "failed_attempt_threshold",
			Success:       false,
		})
		return models.ErrAccountLockedNow
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		AccountID:     account.ID,
		IPAddress:     ipAddress,
		FailureReason: "invalid_credentials",
		Success:       false,
	})
	return models.ErrInvalidCredentials
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	if refreshTokenString = strings.TrimSpace(refreshTokenString); refreshTokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshTokenString)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	if claims.Type != "refresh" {
		s.logger.Warn("refresh attempt with non-refresh token",
			slog.String("username", pkglogger.SanitizedUsername(claims.Username)))
		return nil, models.ErrUnauthorized
	}

	account, err := s.accounts.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get account for token refresh", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !account.Active || account.Locked {
		return nil, models.ErrUnauthorized
	}

	accessToken, err := s.tm.IssueAccessToken(account)
	if err != nil {
		s.logger.Error("failed to issue access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	newRefreshToken, err := s.tm.IssueRefreshToken(account.Username)
	if err != nil {
		s.logger.Error("failed to issue refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Account:      accountToSummary(account),
	}, nil
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username   string
	Password   string
	Email      string
	Name       string
	Department string
	Position   string
	Phone      string
}

// Register creates a new account. Uniqueness checks short-circuit in order
// (username, then email); the activation policy depends on the deployment
// environment: development accounts are active immediately, all others wait
// for administrator approval.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	taken, err := s.accounts.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("failed to check username uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if taken {
		return nil, models.ErrUsernameTaken
	}

	taken, err = s.accounts.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error("failed to check email uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if taken {
		return nil, models.ErrEmailTaken
	}

	// A missing default role is a deployment problem, not a user error
	defaultRole, err := s.roles.GetByName(ctx, models.RoleUser)
	if err != nil {
		s.logger.Error("default role lookup failed", slog.String("role", models.RoleUser), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError("password", "does not meet the security policy")
	}

	passwordHash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	activeImmediately := s.env == "development"

	account := &models.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Department:   input.Department,
		Position:     input.Position,
		Phone:        input.Phone,
		Active:       activeImmediately,
		Roles:        []models.Role{*defaultRole},
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		s.logger.Error("failed to create account", slog.Any("error", err))
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("account_registered", created.ID, "", map[string]string{
		"active": strconv.FormatBool(activeImmediately),
	})

	message := msgRegisteredPending
	if activeImmediately {
		message = msgRegisteredActive
	} else if s.notifier != nil {
		// Operator notification only; registration already succeeded
		if err := s.notifier.NotifyPendingRegistration(ctx, created.Username, created.Email); err != nil {
			s.logger.Warn("failed to send pending registration notification", slog.Any("error", err))
		}
	}

	return &RegisterResponse{
		Account: accountToSummary(created),
		Message: message,
	}, nil
}

func accountToSummary(account *models.Account) *AccountSummary {
	summary := &AccountSummary{
		ID:         account.ID,
		Username:   account.Username,
		Email:      account.Email,
		Name:       account.Name,
		Department: account.Department,
		Position:   account.Position,
		Roles:      account.RoleNames(),
		Active:     account.Active,
		Locked:     account.Locked,
		CreatedAt:  account.CreatedAt.Format(time.RFC3339),
	}
	if account.LastLoginAt != nil {
		summary.LastLoginAt = account.LastLoginAt.Format(time.RFC3339)
	}
	return summary
}

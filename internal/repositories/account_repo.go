package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/knowara/portal/internal/database"
	"github.com/knowara/portal/internal/models"
)

const accountColumns = `id, username, email, password_hash, name, department, position, phone,
	active, locked, failed_login_attempts, password_expired, last_login_at, created_at, updated_at`

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account

	err := scanner.Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.Name, &account.Department, &account.Position, &account.Phone,
		&account.Active, &account.Locked, &account.FailedLoginAttempts,
		&account.PasswordExpired, &account.LastLoginAt,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &account, nil
}

// loadRoles attaches the account's role set.
func (r *AccountRepository) loadRoles(ctx context.Context, account *models.Account) error {
	query := `
		SELECT r.id, r.name, r.priority, r.description
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = $1
		ORDER BY r.priority
	`

	rows, err := r.db.Pool.Query(ctx, query, account.ID)
	if err != nil {
		return fmt.Errorf("failed to query account roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0, 1)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Priority, &role.Description); err != nil {
			return fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating roles: %w", err)
	}

	account.Roles = roles
	return nil
}

func (r *AccountRepository) getBy(ctx context.Context, where string, arg any) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s`, accountColumns, where)

	account, err := scanAccountRow(r.db.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}

	if err := r.loadRoles(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, accountColumns)

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, account := range accounts {
		if err := r.loadRoles(ctx, account); err != nil {
			return nil, err
		}
	}

	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// Create persists a new account and its role assignments in one transaction.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = uuid.New().String()
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO accounts (id, username, email, password_hash, name, department, position, phone,
				active, locked, failed_login_attempts, password_expired, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			account.ID, account.Username, account.Email, account.PasswordHash,
			account.Name, account.Department, account.Position, account.Phone,
			account.Active, account.Locked, account.FailedLoginAttempts,
			account.PasswordExpired, account.CreatedAt, account.UpdatedAt,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}

		for _, role := range account.Roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2)`,
				account.ID, role.ID,
			); err != nil {
				return database.MapPostgresError(err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// RecordFailedLogin bumps the failure counter and flips the locked flag in a
// single atomic UPDATE; concurrent failures against the same account cannot
// lose updates. Returns the post-increment state.
func (r *AccountRepository) RecordFailedLogin(ctx context.Context, id string, threshold int) (attempts int, locked bool, err error) {
	query := `
		UPDATE accounts
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked = (failed_login_attempts + 1 >= $2),
		    updated_at = now()
		WHERE id = $1
		RETURNING failed_login_attempts, locked
	`

	if err := r.db.Pool.QueryRow(ctx, query, id, threshold).Scan(&attempts, &locked); err != nil {
		return 0, false, database.MapPostgresError(err)
	}

	return attempts, locked, nil
}

// RecordSuccessfulLogin resets the failure counter and stamps the login time.
func (r *AccountRepository) RecordSuccessfulLogin(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE accounts
		SET failed_login_attempts = 0, last_login_at = now(), updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetActive toggles the administrative activation flag.
func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Unlock clears the locked flag and the failure counter.
func (r *AccountRepository) Unlock(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE accounts
		SET locked = FALSE, failed_login_attempts = 0, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

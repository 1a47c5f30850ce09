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

const boardColumns = `b.id, b.title, b.content, b.category, b.author_id, a.name,
	b.view_count, b.pinned, b.deleted, b.created_at, b.updated_at`

type BoardRepository struct {
	db *database.DB
}

func NewBoardRepository(db *database.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func scanBoardRow(scanner rowScanner) (*models.Board, error) {
	var board models.Board

	err := scanner.Scan(
		&board.ID, &board.Title, &board.Content, &board.Category,
		&board.AuthorID, &board.AuthorName, &board.ViewCount,
		&board.Pinned, &board.Deleted, &board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &board, nil
}

func scanBoardRows(rows pgx.Rows) ([]*models.Board, error) {
	defer rows.Close()

	boards := make([]*models.Board, 0)
	for rows.Next() {
		board, err := scanBoardRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return boards, nil
}

// GetByIDNotDeleted returns the board only when its soft-delete flag is
// clear; deleted boards are indistinguishable from missing ones.
func (r *BoardRepository) GetByIDNotDeleted(ctx context.Context, id string) (*models.Board, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM boards b JOIN accounts a ON a.id = b.author_id
		WHERE b.id = $1 AND NOT b.deleted
	`, boardColumns)

	return scanBoardRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *BoardRepository) ListNotDeleted(ctx context.Context, limit, offset int) ([]*models.Board, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM boards b JOIN accounts a ON a.id = b.author_id
		WHERE NOT b.deleted
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2
	`, boardColumns)

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	return scanBoardRows(rows)
}

func (r *BoardRepository) ListByCategoryNotDeleted(ctx context.Context, category string, limit, offset int) ([]*models.Board, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM boards b JOIN accounts a ON a.id = b.author_id
		WHERE b.category = $1 AND NOT b.deleted
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`, boardColumns)

	rows, err := r.db.Pool.Query(ctx, query, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards by category: %w", err)
	}
	return scanBoardRows(rows)
}

func (r *BoardRepository) ListByAuthorNotDeleted(ctx context.Context, authorID string, limit, offset int) ([]*models.Board, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM boards b JOIN accounts a ON a.id = b.author_id
		WHERE b.author_id = $1 AND NOT b.deleted
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`, boardColumns)

	rows, err := r.db.Pool.Query(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards by author: %w", err)
	}
	return scanBoardRows(rows)
}

func (r *BoardRepository) ListPinnedNotDeleted(ctx context.Context) ([]*models.Board, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM boards b JOIN accounts a ON a.id = b.author_id
		WHERE b.pinned AND NOT b.deleted
		ORDER BY b.created_at DESC
	`, boardColumns)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pinned boards: %w", err)
	}
	return scanBoardRows(rows)
}

func (r *BoardRepository) Create(ctx context.Context, board *models.Board) (*models.Board, error) {
	board.ID = uuid.New().String()
	now := time.Now()
	board.CreatedAt = now
	board.UpdatedAt = now

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO boards (id, title, content, category, author_id, view_count, pinned, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		board.ID, board.Title, board.Content, board.Category, board.AuthorID,
		board.ViewCount, board.Pinned, board.Deleted, board.CreatedAt, board.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return board, nil
}

func (r *BoardRepository) Update(ctx context.Context, board *models.Board) error {
	board.UpdatedAt = time.Now()

	result, err := r.db.Pool.Exec(ctx, `
		UPDATE boards SET title = $2, content = $3, category = $4, updated_at = $5
		WHERE id = $1 AND NOT deleted
	`, board.ID, board.Title, board.Content, board.Category, board.UpdatedAt)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SoftDelete marks the board invisible to standard queries. The row stays.
func (r *BoardRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE boards SET deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *BoardRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE boards SET pinned = $2, updated_at = now() WHERE id = $1 AND NOT deleted`, id, pinned)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// IncrementViewCount is a single atomic UPDATE, never read-modify-write, so
// concurrent detail fetches each count.
func (r *BoardRepository) IncrementViewCount(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE boards SET view_count = view_count + 1 WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *BoardRepository) CountNotDeleted(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM boards WHERE NOT deleted`).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

func (r *BoardRepository) CountByCategoryNotDeleted(ctx context.Context, category string) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM boards WHERE category = $1 AND NOT deleted`, category).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

func (r *BoardRepository) CountByAuthorNotDeleted(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM boards WHERE author_id = $1 AND NOT deleted`, authorID).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// CountGroupedByCategory buckets NULL categories under the sentinel label.
func (r *BoardRepository) CountGroupedByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT COALESCE(category, $1), COUNT(*)
		FROM boards WHERE NOT deleted
		GROUP BY COALESCE(category, $1)
	`, models.UncategorizedLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// CountCreatedSince supports the today / this-week statistics windows with a
// count query instead of materializing page content.
func (r *BoardRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM boards WHERE created_at >= $1 AND NOT deleted`, since).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/knowara/portal/internal/models"
	pkglogger "github.com/knowara/portal/pkg/logger"
	"github.com/knowara/portal/pkg/sanitize"
)

// BoardRepository defines the board store operations the service needs.
// Counter increments are atomic single-row updates on the store side.
type BoardRepository interface {
	GetByIDNotDeleted(ctx context.Context, id string) (*models.Board, error)
	ListNotDeleted(ctx context.Context, limit, offset int) ([]*models.Board, error)
	ListByCategoryNotDeleted(ctx context.Context, category string, limit, offset int) ([]*models.Board, error)
	ListByAuthorNotDeleted(ctx context.Context, authorID string, limit, offset int) ([]*models.Board, error)
	ListPinnedNotDeleted(ctx context.Context) ([]*models.Board, error)
	Create(ctx context.Context, board *models.Board) (*models.Board, error)
	Update(ctx context.Context, board *models.Board) error
	SoftDelete(ctx context.Context, id string) error
	SetPinned(ctx context.Context, id string, pinned bool) error
	IncrementViewCount(ctx context.Context, id string) error
	CountNotDeleted(ctx context.Context) (int64, error)
	CountByCategoryNotDeleted(ctx context.Context, category string) (int64, error)
	CountByAuthorNotDeleted(ctx context.Context, authorID string) (int64, error)
	CountGroupedByCategory(ctx context.Context) (map[string]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// BoardService implements the board lifecycle. The caller's identity is an
// explicit parameter on every operation that needs one; the transport layer
// resolves it once per request.
type BoardService struct {
	boards      BoardRepository
	accounts    AccountRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewBoardService(boards BoardRepository, accounts AccountRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *BoardService {
	return &BoardService{
		boards:      boards,
		accounts:    accounts,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// BoardPage is one page of a board listing.
type BoardPage struct {
	Boards []*models.Board `json:"boards"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// validateContent checks title and body after trimming and returns the
// sanitized body. No persistence happens when validation fails.
func validateContent(title, content string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", models.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(content) == "" {
		return "", models.NewValidationError("content", "is required")
	}

	clean := sanitize.HTML(content)
	if strings.TrimSpace(clean) == "" {
		// Sanitization can strip a body down to nothing
		return "", models.NewValidationError("content", "is required")
	}
	return clean, nil
}

func normalizeCategory(category string) *string {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil
	}
	return &category
}

// Create persists a new board authored by the caller.
func (s *BoardService) Create(ctx context.Context, caller *models.Account, title, content, category string) (*models.Board, error) {
	clean, err := validateContent(title, content)
	if err != nil {
		return nil, err
	}

	board := &models.Board{
		Title:      strings.TrimSpace(title),
		Content:    clean,
		Category:   normalizeCategory(category),
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
	}

	created, err := s.boards.Create(ctx, board)
	if err != nil {
		s.logger.Error("failed to create board", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("board created",
		slog.String("board_id", created.ID), slog.String("author_id", caller.ID))
	return created, nil
}

// GetByID returns a non-deleted board and fires exactly one atomic
// view-count increment. The returned payload reflects the pre-increment
// value: the increment runs against storage, not against the loaded row.
func (s *BoardService) GetByID(ctx context.Context, id string) (*models.Board, error) {
	board, err := s.boards.GetByIDNotDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get board", slog.String("board_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.boards.IncrementViewCount(ctx, id); err != nil {
		// The read already succeeded; losing one increment is acceptable
		s.logger.Warn("failed to increment view count",
			slog.String("board_id", id), slog.Any("error", err))
	}

	return board, nil
}

// List returns one page of non-deleted boards, newest first.
func (s *BoardService) List(ctx context.Context, limit, offset int) (*BoardPage, error) {
	total, err := s.boards.CountNotDeleted(ctx)
	if err != nil {
		s.logger.Error("failed to count boards", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	boards, err := s.boards.ListNotDeleted(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list boards", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &BoardPage{Boards: boards, Total: total, Limit: limit, Offset: offset}, nil
}

// ListByCategory returns one page of non-deleted boards in a category.
func (s *BoardService) ListByCategory(ctx context.Context, category string, limit, offset int) (*BoardPage, error) {
	total, err := s.boards.CountByCategoryNotDeleted(ctx, category)
	if err != nil {
		s.logger.Error("failed to count boards by category", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	boards, err := s.boards.ListByCategoryNotDeleted(ctx, category, limit, offset)
	if err != nil {
		s.logger.Error("failed to list boards by category", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &BoardPage{Boards: boards, Total: total, Limit: limit, Offset: offset}, nil
}

// ListByAuthor resolves the author first; an unknown author is a not-found
// failure and the board store is never queried.
func (s *BoardService) ListByAuthor(ctx context.Context, authorID string, limit, offset int) (*BoardPage, error) {
	if _, err := s.accounts.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to resolve board author", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	total, err := s.boards.CountByAuthorNotDeleted(ctx, authorID)
	if err != nil {
		s.logger.Error("failed to count boards by author", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	boards, err := s.boards.ListByAuthorNotDeleted(ctx, authorID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list boards by author", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &BoardPage{Boards: boards, Total: total, Limit: limit, Offset: offset}, nil
}

// ListPinned returns all pinned non-deleted boards, newest first.
func (s *BoardService) ListPinned(ctx context.Context) ([]*models.Board, error) {
	boards, err := s.boards.ListPinnedNotDeleted(ctx)
	if err != nil {
		s.logger.Error("failed to list pinned boards", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return boards, nil
}

// canModerate reports whether the caller may mutate the board: its author,
// or any holder of the admin role.
func canModerate(caller *models.Account, board *models.Board) bool {
	return board.AuthorID == caller.ID || caller.IsAdmin()
}

// Update edits title, body, and category. Author or admin only.
func (s *BoardService) Update(ctx context.Context, caller *models.Account, id, title, content, category string) (*models.Board, error) {
	board, err := s.boards.GetByIDNotDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get board for update", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !canModerate(caller, board) {
		return nil, models.ErrForbidden
	}

	clean, err := validateContent(title, content)
	if err != nil {
		return nil, err
	}

	board.Title = strings.TrimSpace(title)
	board.Content = clean
	board.Category = normalizeCategory(category)

	if err := s.boards.Update(ctx, board); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update board", slog.String("board_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return board, nil
}

// Delete soft-deletes the board. Author or admin only; the row is never
// physically removed.
func (s *BoardService) Delete(ctx context.Context, caller *models.Account, id string) error {
	board, err := s.boards.GetByIDNotDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get board for delete", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !canModerate(caller, board) {
		return models.ErrForbidden
	}

	if err := s.boards.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to soft-delete board", slog.String("board_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogBoardAction("board_deleted", id, caller.ID)
	return nil
}

// SetPinned pins or unpins a board. Admin only.
func (s *BoardService) SetPinned(ctx context.Context, caller *models.Account, id string, pinned bool) error {
	if !caller.IsAdmin() {
		return models.ErrForbidden
	}

	if err := s.boards.SetPinned(ctx, id, pinned); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to set pinned flag", slog.String("board_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	event := "board_unpinned"
	if pinned {
		event = "board_pinned"
	}
	s.auditLogger.LogBoardAction(event, id, caller.ID)
	return nil
}

// Stats aggregates counts over non-deleted boards. The today and this-week
// windows are computed from the current time at call; weeks start on Monday.
func (s *BoardService) Stats(ctx context.Context) (*models.BoardStats, error) {
	total, err := s.boards.CountNotDeleted(ctx)
	if err != nil {
		s.logger.Error("failed to count boards", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	byCategory, err := s.boards.CountGroupedByCategory(ctx)
	if err != nil {
		s.logger.Error("failed to group boards by category", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	today, err := s.boards.CountCreatedSince(ctx, startOfDay(now))
	if err != nil {
		s.logger.Error("failed to count boards created today", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	thisWeek, err := s.boards.CountCreatedSince(ctx, startOfWeek(now))
	if err != nil {
		s.logger.Error("failed to count boards created this week", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &models.BoardStats{
		Total:      total,
		ByCategory: byCategory,
		Today:      today,
		ThisWeek:   thisWeek,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/knowara/portal/internal/models"
	pkglogger "github.com/knowara/portal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoardService(boards *MockBoardRepository, accounts *MockAccountRepository) *BoardService {
	logger := slog.Default()
	if accounts == nil {
		accounts = &MockAccountRepository{}
	}
	return NewBoardService(boards, accounts, logger, pkglogger.NewAuditLogger(logger))
}

func TestBoardCreate_Success(t *testing.T) {
	author := NewTestAccount("acc1", "jdoe")

	var saved *models.Board
	boards := &MockBoardRepository{
		CreateFunc: func(ctx context.Context, board *models.Board) (*models.Board, error) {
			saved = board
			return board, nil
		},
	}

	svc := newTestBoardService(boards, nil)
	board, err := svc.Create(context.Background(), author, "Release notes", "<p>shipped</p>", "NOTICE")

	require.NoError(t, err)
	assert.Equal(t, "acc1", saved.AuthorID)
	assert.Equal(t, "Release notes", board.Title)
	assert.Equal(t, "NOTICE", *board.Category)
	assert.Equal(t, int64(0), board.ViewCount)
	assert.False(t, board.Pinned)
	assert.False(t, board.Deleted)
}

func TestBoardCreate_EmptyTitle_NoPersistenceWrite(t *testing.T) {
	author := NewTestAccount("acc1", "jdoe")

	boards := &MockBoardRepository{
		CreateFunc: func(ctx context.Context, board *models.Board) (*models.Board, error) {
			t.Fatal("no write may happen on validation failure")
			return nil, nil
		},
	}

	svc := newTestBoardService(boards, nil)
	_, err := svc.Create(context.Background(), author, "   ", "body", "FREE")

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)
}

func TestBoardCreate_EmptyContent(t *testing.T) {
	author := NewTestAccount("acc1", "jdoe")
	svc := newTestBoardService(&MockBoardRepository{}, nil)

	_, err := svc.Create(context.Background(), author, "title", "  ", "")

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)
}

func TestBoardCreate_SanitizesContent(t *testing.T) {
	author := NewTestAccount("acc1", "jdoe")

	var saved *models.Board
	boards := &MockBoardRepository{
		CreateFunc: func(ctx context.Context, board *models.Board) (*models.Board, error) {
			saved = board
			return board, nil
		},
	}

	svc := newTestBoardService(boards, nil)
	_, err := svc.Create(context.Background(), author, "t", `<script>alert(1)</script><p>ok</p>`, "")

	require.NoError(t, err)
	assert.Contains(t, saved.Content, "<p>ok</p>")
	assert.NotContains(t, saved.Content, "<script>")
}

func TestBoardCreate_EmptyCategoryIsNil(t *testing.T) {
	author := NewTestAccount("acc1", "jdoe")

	var saved *models.Board
	boards := &MockBoardRepository{
		CreateFunc: func(ctx context.Context, board *models.Board) (*models.Board, error) {
			saved = board
			return board, nil
		},
	}

	svc := newTestBoardService(boards, nil)
	_, err := svc.Create(context.Background(), author, "t", "b", "  ")

	require.NoError(t, err)
	assert.Nil(t, saved.Category)
}

func TestBoardGetByID_IncrementsViewCountOnce(t *testing.T) {
	increments := 0
	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			board := NewTestBoard(id, "acc1", nil)
			board.ViewCount = 7
			return board, nil
		},
		IncrementViewCountFunc: func(ctx context.Context, id string) error {
			increments++
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	board, err := svc.GetByID(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, 1, increments)
	// Returned payload carries the pre-increment value
	assert.Equal(t, int64(7), board.ViewCount)
}

func TestBoardGetByID_TwoFetchesTwoIncrements(t *testing.T) {
	increments := 0
	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return NewTestBoard(id, "acc1", nil), nil
		},
		IncrementViewCountFunc: func(ctx context.Context, id string) error {
			increments++
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	_, err := svc.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	_, err = svc.GetByID(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, 2, increments)
}

func TestBoardGetByID_DeletedLooksLikeMissing(t *testing.T) {
	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return nil, models.ErrNotFound
		},
		IncrementViewCountFunc: func(ctx context.Context, id string) error {
			t.Fatal("no increment for a missing board")
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	_, err := svc.GetByID(context.Background(), "gone")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardGetByID_IncrementFailureDoesNotFailRead(t *testing.T) {
	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return NewTestBoard(id, "acc1", nil), nil
		},
		IncrementViewCountFunc: func(ctx context.Context, id string) error {
			return assert.AnError
		},
	}

	svc := newTestBoardService(boards, nil)
	board, err := svc.GetByID(context.Background(), "b1")

	require.NoError(t, err)
	assert.NotNil(t, board)
}

func TestBoardList_ReturnsPage(t *testing.T) {
	boards := &MockBoardRepository{
		CountNotDeletedFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
		ListNotDeletedFunc: func(ctx context.Context, limit, offset int) ([]*models.Board, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 20, offset)
			return []*models.Board{NewTestBoard("b1", "acc1", nil)}, nil
		},
	}

	svc := newTestBoardService(boards, nil)
	page, err := svc.List(context.Background(), 20, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(42), page.Total)
	assert.Len(t, page.Boards, 1)
}

func TestBoardListByAuthor_UnknownAuthor_BoardStoreNeverQueried(t *testing.T) {
	accounts := &MockAccountRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Account, error) {
			return nil, models.ErrNotFound
		},
	}
	boards := &MockBoardRepository{
		ListByAuthorNotDeletedFunc: func(ctx context.Context, authorID string, limit, offset int) ([]*models.Board, error) {
			t.Fatal("board store must not be queried for an unknown author")
			return nil, nil
		},
		CountByAuthorFunc: func(ctx context.Context, authorID string) (int64, error) {
			t.Fatal("board store must not be queried for an unknown author")
			return 0, nil
		},
	}

	svc := newTestBoardService(boards, accounts)
	_, err := svc.ListByAuthor(context.Background(), "ghost", 20, 0)

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardListPinned(t *testing.T) {
	boards := &MockBoardRepository{
		ListPinnedNotDeletedFunc: func(ctx context.Context) ([]*models.Board, error) {
			pinned := NewTestBoard("b1", "acc1", nil)
			pinned.Pinned = true
			return []*models.Board{pinned}, nil
		},
	}

	svc := newTestBoardService(boards, nil)
	result, err := svc.ListPinned(context.Background())

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.True(t, result[0].Pinned)
}

func TestBoardUpdate_AuthorAllowed(t *testing.T) {
	author := NewTestAccount("acc1", "jdoe")

	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return NewTestBoard(id, "acc1", nil), nil
		},
	}

	svc := newTestBoardService(boards, nil)
	board, err := svc.Update(context.Background(), author, "b1", "new title", "new body", "FREE")

	require.NoError(t, err)
	assert.Equal(t, "new title", board.Title)
}

func TestBoardUpdate_StrangerForbidden(t *testing.T) {
	stranger := NewTestAccount("acc2", "other")

	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return NewTestBoard(id, "acc1", nil), nil
		},
		UpdateFunc: func(ctx context.Context, board *models.Board) error {
			t.Fatal("no write may happen for a forbidden caller")
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	_, err := svc.Update(context.Background(), stranger, "b1", "t", "b", "")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestBoardDelete_AdminAllowed(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	deleted := false
	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return NewTestBoard(id, "acc1", nil), nil
		},
		SoftDeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	err := svc.Delete(context.Background(), admin, "b1")

	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestBoardDelete_StrangerForbidden(t *testing.T) {
	stranger := NewTestAccount("acc2", "other")

	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			return NewTestBoard(id, "acc1", nil), nil
		},
		SoftDeleteFunc: func(ctx context.Context, id string) error {
			t.Fatal("soft delete must not run for a forbidden caller")
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	err := svc.Delete(context.Background(), stranger, "b1")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestBoardDelete_AlreadyDeletedIsNotFound(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	boards := &MockBoardRepository{
		GetByIDNotDeletedFunc: func(ctx context.Context, id string) (*models.Board, error) {
			// Deleted boards are filtered out upstream by the lookup
			return nil, models.ErrNotFound
		},
	}

	svc := newTestBoardService(boards, nil)
	err := svc.Delete(context.Background(), admin, "b1")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoardSetPinned_AdminOnly(t *testing.T) {
	user := NewTestAccount("acc1", "jdoe")

	boards := &MockBoardRepository{
		SetPinnedFunc: func(ctx context.Context, id string, pinned bool) error {
			t.Fatal("pin must not run for a non-admin caller")
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	err := svc.SetPinned(context.Background(), user, "b1", true)

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestBoardSetPinned_Admin(t *testing.T) {
	admin := NewTestAccount("acc9", "root", models.RoleAdmin)

	var gotPinned bool
	boards := &MockBoardRepository{
		SetPinnedFunc: func(ctx context.Context, id string, pinned bool) error {
			gotPinned = pinned
			return nil
		},
	}

	svc := newTestBoardService(boards, nil)
	err := svc.SetPinned(context.Background(), admin, "b1", true)

	require.NoError(t, err)
	assert.True(t, gotPinned)
}

func TestBoardStats(t *testing.T) {
	var sinceTimes []time.Time
	boards := &MockBoardRepository{
		CountNotDeletedFunc: func(ctx context.Context) (int64, error) {
			return 100, nil
		},
		CountGroupedByCategoryFunc: func(ctx context.Context) (map[string]int64, error) {
			return map[string]int64{
				"FREE":                    50,
				"NOTICE":                  30,
				models.UncategorizedLabel: 20,
			}, nil
		},
		CountCreatedSinceFunc: func(ctx context.Context, since time.Time) (int64, error) {
			sinceTimes = append(sinceTimes, since)
			if len(sinceTimes) == 1 {
				return 3, nil // today
			}
			return 12, nil // this week
		},
	}

	svc := newTestBoardService(boards, nil)
	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Total)
	assert.Equal(t, int64(50), stats.ByCategory["FREE"])
	assert.Equal(t, int64(30), stats.ByCategory["NOTICE"])
	assert.Equal(t, int64(20), stats.ByCategory[models.UncategorizedLabel])
	assert.Equal(t, int64(3), stats.Today)
	assert.Equal(t, int64(12), stats.ThisWeek)

	// The week window opens no later than the day window
	require.Len(t, sinceTimes, 2)
	assert.False(t, sinceTimes[1].After(sinceTimes[0]))
}

func TestStartOfWeek_MondayStart(t *testing.T) {
	// Wednesday 2024-05-15
	wednesday := time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC)
	monday := startOfWeek(wednesday)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), monday)

	// Sunday belongs to the week that started six days earlier
	sunday := time.Date(2024, 5, 19, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))
}

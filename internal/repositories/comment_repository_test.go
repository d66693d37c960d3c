package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/sportsmanagency/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var commentRowColumns = []string{"id", "news_id", "author_name", "author_email", "content", "approved", "user_ip", "user_agent", "created_at", "updated_at"}

// setupCommentTestRepository creates a comment repository with a mock database
func setupCommentTestRepository(t *testing.T) (*commentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCommentRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func intPtr(i int) *int { return &i }

func TestCommentRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectAnyErr  bool
		expectedID    int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO comments`).
					WithArgs(3, "Ann", "ann@example.com", "Great", false, "203.0.113.9", "curl/8").
					WillReturnResult(sqlmock.NewResult(21, 1))
			},
			expectedID: 21,
		},
		{
			name: "parent removed concurrently",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO comments`).
					WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
			},
			expectedError: models.ErrNewsNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO comments`).WillReturnError(errors.New("database error"))
			},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCommentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			comment := &models.Comment{
				NewsID: 3, AuthorName: "Ann", AuthorEmail: "ann@example.com", Content: "Great",
				UserIP: "203.0.113.9", UserAgent: "curl/8",
			}
			err := repo.Create(context.Background(), comment)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.expectAnyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, comment.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_GetByID(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupCommentTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(commentRowColumns).
			AddRow(4, 3, "Ann", "ann@example.com", "Great", true, "203.0.113.9", "curl/8", now, now)
		mock.ExpectQuery(`SELECT (.+) FROM comments WHERE id = \?`).WithArgs(4).WillReturnRows(rows)

		comment, err := repo.GetByID(context.Background(), 4)

		require.NoError(t, err)
		assert.Equal(t, 3, comment.NewsID)
		assert.True(t, comment.Approved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupCommentTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM comments WHERE id = \?`).WithArgs(4).
			WillReturnRows(sqlmock.NewRows(commentRowColumns))

		comment, err := repo.GetByID(context.Background(), 4)

		assert.ErrorIs(t, err, models.ErrCommentNotFound)
		assert.Nil(t, comment)
	})
}

func TestCommentRepository_List(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		filter        models.CommentFilter
		setupMock     func(sqlmock.Sqlmock)
		expectedCount int
	}{
		{
			name:   "approved of one news item",
			filter: models.CommentFilter{NewsID: intPtr(3), Approved: boolPtr(true)},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(commentRowColumns).
					AddRow(5, 3, "Bo", "bo@example.com", "Second", true, "", "", now, now).
					AddRow(4, 3, "Ann", "ann@example.com", "First", true, "", "", now, now)
				mock.ExpectQuery(`SELECT (.+) FROM comments WHERE news_id = \? AND approved = \? ORDER BY created_at DESC, id DESC$`).
					WithArgs(3, true).
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name:   "pending queue with limit",
			filter: models.CommentFilter{Approved: boolPtr(false), Limit: 50},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM comments WHERE approved = \? ORDER BY created_at DESC, id DESC LIMIT \?`).
					WithArgs(false, 50).
					WillReturnRows(sqlmock.NewRows(commentRowColumns))
			},
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCommentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			comments, err := repo.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.NotNil(t, comments)
			assert.Len(t, comments, tt.expectedCount)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_SetApproved(t *testing.T) {
	repo, mock, cleanup := setupCommentTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE comments SET approved = \? WHERE id = \?`).
		WithArgs(true, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetApproved(context.Background(), 4, true)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		affected      int64
		expectedError error
	}{
		{name: "success", affected: 1},
		{name: "not found", affected: 0, expectedError: models.ErrCommentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCommentTestRepository(t)
			defer cleanup()

			mock.ExpectExec(`DELETE FROM comments WHERE id = \?`).WithArgs(4).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Delete(context.Background(), 4)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

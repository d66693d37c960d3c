package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/sportsmanagency/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockNewsLookup is a mock implementation of NewsLookup
type mockNewsLookup struct {
	exists bool
	err    error
}

func (m *mockNewsLookup) Exists(ctx context.Context, newsID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.exists, nil
}

// memoryCommentRepository is an in-memory implementation of CommentRepository
type memoryCommentRepository struct {
	comments  map[int]*models.Comment
	nextID    int
	writes    int
	err       error
	lastQuery models.CommentFilter
}

func newMemoryCommentRepository(comments ...models.Comment) *memoryCommentRepository {
	repo := &memoryCommentRepository{comments: map[int]*models.Comment{}, nextID: 1}
	for i := range comments {
		c := comments[i]
		repo.comments[c.ID] = &c
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (m *memoryCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	comment.ID = m.nextID
	m.nextID++
	stored := *comment
	m.comments[stored.ID] = &stored
	return nil
}

func (m *memoryCommentRepository) GetByID(ctx context.Context, commentID int) (*models.Comment, error) {
	c, ok := m.comments[commentID]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memoryCommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	m.lastQuery = filter
	result := []models.Comment{}
	for _, c := range m.comments {
		if filter.NewsID != nil && c.NewsID != *filter.NewsID {
			continue
		}
		if filter.Approved != nil && c.Approved != *filter.Approved {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *memoryCommentRepository) SetApproved(ctx context.Context, commentID int, approved bool) error {
	m.writes++
	if c, ok := m.comments[commentID]; ok {
		c.Approved = approved
	}
	return nil
}

func (m *memoryCommentRepository) Delete(ctx context.Context, commentID int) error {
	if _, ok := m.comments[commentID]; !ok {
		return models.ErrCommentNotFound
	}
	m.writes++
	delete(m.comments, commentID)
	return nil
}

func validCommentRequest() *models.SubmitCommentRequest {
	return &models.SubmitCommentRequest{AuthorName: " Ann ", AuthorEmail: "ann@example.com", Content: " Great signing! "}
}

func TestCommentService_Submit(t *testing.T) {
	origin := models.Origin{IP: "203.0.113.9", UserAgent: "curl/8"}

	tests := []struct {
		name          string
		req           *models.SubmitCommentRequest
		news          *mockNewsLookup
		repoErr       error
		expectedError error
		wantErr       bool
		expectedKind  models.ErrorKind
	}{
		{
			name: "created pending",
			req:  validCommentRequest(),
			news: &mockNewsLookup{exists: true},
		},
		{
			name:          "missing news",
			req:           validCommentRequest(),
			news:          &mockNewsLookup{exists: false},
			expectedError: models.ErrNewsNotFound,
		},
		{
			name:          "news removed between check and insert",
			req:           validCommentRequest(),
			news:          &mockNewsLookup{exists: true},
			repoErr:       models.ErrNewsNotFound,
			expectedError: models.ErrNewsNotFound,
		},
		{
			name:         "whitespace content",
			req:          &models.SubmitCommentRequest{AuthorName: "Ann", AuthorEmail: "ann@example.com", Content: "   "},
			news:         &mockNewsLookup{exists: true},
			wantErr:      true,
			expectedKind: models.KindValidation,
		},
		{
			name:         "lookup failure",
			req:          validCommentRequest(),
			news:         &mockNewsLookup{err: errors.New("database error")},
			wantErr:      true,
			expectedKind: models.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryCommentRepository()
			repo.err = tt.repoErr
			svc := NewCommentService(repo, tt.news, zap.NewNop())

			comment, err := svc.Submit(context.Background(), 3, tt.req, origin)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, comment)
				return
			}
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, models.KindOf(err))
				assert.Empty(t, repo.comments)
				return
			}
			require.NoError(t, err)
			assert.False(t, comment.Approved)
			assert.Equal(t, 3, comment.NewsID)
			assert.Equal(t, "Ann", comment.AuthorName)
			assert.Equal(t, "Great signing!", comment.Content)
			assert.Equal(t, origin.IP, comment.UserIP)
			assert.Equal(t, origin.UserAgent, comment.UserAgent)
		})
	}
}

func TestCommentService_ListPublic(t *testing.T) {
	repo := newMemoryCommentRepository(
		models.Comment{ID: 1, NewsID: 3, Approved: true},
		models.Comment{ID: 2, NewsID: 3, Approved: false},
		models.Comment{ID: 3, NewsID: 3, Approved: true},
		models.Comment{ID: 4, NewsID: 8, Approved: true},
	)
	svc := NewCommentService(repo, &mockNewsLookup{exists: true}, zap.NewNop())

	comments, err := svc.ListPublic(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, 3, comments[0].ID)
	assert.Equal(t, 1, comments[1].ID)
	for _, c := range comments {
		assert.True(t, c.Approved)
	}
}

func TestCommentService_ListPublic_MissingNews(t *testing.T) {
	svc := NewCommentService(newMemoryCommentRepository(), &mockNewsLookup{exists: false}, zap.NewNop())

	comments, err := svc.ListPublic(context.Background(), 3)

	assert.ErrorIs(t, err, models.ErrNewsNotFound)
	assert.Nil(t, comments)
}

func TestCommentService_ListAll(t *testing.T) {
	repo := newMemoryCommentRepository(
		models.Comment{ID: 1, NewsID: 3, Approved: true},
		models.Comment{ID: 2, NewsID: 3, Approved: false},
		models.Comment{ID: 3, NewsID: 5, Approved: false},
	)
	svc := NewCommentService(repo, &mockNewsLookup{exists: true}, zap.NewNop())
	pending := false

	all, err := svc.ListAll(context.Background(), models.CommentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	queue, err := svc.ListAll(context.Background(), models.CommentFilter{Approved: &pending, Limit: 1})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, 3, queue[0].ID)

	_, err = svc.ListAll(context.Background(), models.CommentFilter{Limit: -5})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastQuery.Limit)
}

func TestCommentService_SetApproval(t *testing.T) {
	repo := newMemoryCommentRepository(models.Comment{ID: 7, NewsID: 3})
	svc := NewCommentService(repo, &mockNewsLookup{exists: true}, zap.NewNop())

	approved, err := svc.SetApproval(context.Background(), 7, true)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, 1, repo.writes)

	// Approving again succeeds without another write
	again, err := svc.SetApproval(context.Background(), 7, true)
	require.NoError(t, err)
	assert.True(t, again.Approved)
	assert.Equal(t, 1, repo.writes)

	// Reject returns the comment to pending
	rejected, err := svc.SetApproval(context.Background(), 7, false)
	require.NoError(t, err)
	assert.False(t, rejected.Approved)
	assert.Equal(t, 2, repo.writes)

	_, err = svc.SetApproval(context.Background(), 99, true)
	assert.ErrorIs(t, err, models.ErrCommentNotFound)
}

func TestCommentService_Delete(t *testing.T) {
	repo := newMemoryCommentRepository(models.Comment{ID: 7, NewsID: 3})
	svc := NewCommentService(repo, &mockNewsLookup{exists: true}, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Empty(t, repo.comments)

	assert.ErrorIs(t, svc.Delete(context.Background(), 7), models.ErrCommentNotFound)
}

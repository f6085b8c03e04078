package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
	"github.com/shelflife/shelflife-backend/pkg/pagination"
)

// fakeRepository records writes and serves canned reads.
type fakeRepository struct {
	created   []*models.Notification
	createErr error

	page      []models.Notification
	nextToken string
	lastQuery inboxQuery
	unread    int64
	found     bool
	markedAll int64
	err       error
}

func (f *fakeRepository) Create(_ context.Context, rows ...*models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rows...)
	return nil
}

func (f *fakeRepository) Page(_ context.Context, q inboxQuery) ([]models.Notification, string, error) {
	f.lastQuery = q
	return f.page, f.nextToken, f.err
}

func (f *fakeRepository) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return f.unread, f.err
}

func (f *fakeRepository) MarkRead(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error) {
	return f.found, f.err
}

func (f *fakeRepository) MarkAllRead(context.Context, uuid.UUID, time.Time) (int64, error) {
	return f.markedAll, f.err
}

func (f *fakeRepository) PurgeRead(context.Context, time.Time, int) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestListReturnsPageAndUnreadCount(t *testing.T) {
	userID := uuid.New()
	row := models.Notification{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	token := pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}.Encode()
	repo := &fakeRepository{page: []models.Notification{row}, nextToken: token, unread: 7}

	inbox, err := newTestService(t, repo).List(context.Background(), ListParams{
		UserID: userID, Limit: 1, Type: enums.NotificationTypeShopVerified,
	})
	require.NoError(t, err)
	assert.Len(t, inbox.Items, 1)
	assert.EqualValues(t, 7, inbox.UnreadCount)
	assert.Equal(t, token, inbox.Cursor)
	assert.Equal(t, enums.NotificationTypeShopVerified, repo.lastQuery.Type)
	assert.Equal(t, 1, repo.lastQuery.Limit)
}

func TestListEmptyInboxRendersArray(t *testing.T) {
	inbox, err := newTestService(t, &fakeRepository{}).List(context.Background(), ListParams{UserID: uuid.New()})
	require.NoError(t, err)
	assert.NotNil(t, inbox.Items)
	assert.Empty(t, inbox.Cursor)
}

func TestListValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})
	cases := map[string]ListParams{
		"missing user": {},
		"bad cursor":   {UserID: uuid.New(), Cursor: "not-a-cursor"},
		"unknown type": {UserID: uuid.New(), Type: "newsletter"},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.List(context.Background(), params)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		})
	}
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	err := newTestService(t, &fakeRepository{found: true}).MarkRead(ctx, uuid.New(), uuid.New())
	assert.NoError(t, err)

	err = newTestService(t, &fakeRepository{}).MarkRead(ctx, uuid.New(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	err = newTestService(t, &fakeRepository{}).MarkRead(ctx, uuid.New(), uuid.Nil)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRepositoryFailuresAreDependencyErrors(t *testing.T) {
	svc := newTestService(t, &fakeRepository{err: errors.New("db down")})
	ctx := context.Background()

	_, err := svc.MarkAllRead(ctx, uuid.New())
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	_, err = svc.List(ctx, ListParams{UserID: uuid.New()})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	err = svc.MarkRead(ctx, uuid.New(), uuid.New())
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo behaves like the backend: it owns the entries and applies mutations.
type fakeRepo struct {
	entries   []notification.HistoryEntry
	lists     []notification.ListParams
	mutateErr error
}

func (r *fakeRepo) List(_ context.Context, params notification.ListParams) ([]notification.HistoryEntry, error) {
	r.lists = append(r.lists, params)
	var out []notification.HistoryEntry
	for _, e := range r.entries {
		if params.IsRead != nil && e.IsRead != *params.IsRead {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) Stats(context.Context) (*notification.Stats, error) {
	st := &notification.Stats{Total: len(r.entries)}
	for _, e := range r.entries {
		if e.IsRead {
			st.Read++
		} else {
			st.Unread++
		}
	}
	return st, nil
}

func (r *fakeRepo) MarkAsRead(_ context.Context, ids []int64) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	for i := range r.entries {
		for _, id := range ids {
			if r.entries[i].ID == id {
				r.entries[i].IsRead = true
			}
		}
	}
	return nil
}

func (r *fakeRepo) MarkAllAsRead(context.Context) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	for i := range r.entries {
		r.entries[i].IsRead = true
	}
	return nil
}

func (r *fakeRepo) MarkAsClicked(_ context.Context, id int64) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].IsClicked = true
			r.entries[i].IsRead = true
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (r *fakeRepo) DeleteAll(context.Context) error {
	if r.mutateErr != nil {
		return r.mutateErr
	}
	r.entries = nil
	return nil
}

func seed() *fakeRepo {
	return &fakeRepo{entries: []notification.HistoryEntry{
		{ID: 1, Title: "Go Engineer"},
		{ID: 2, Title: "Rust Engineer"},
		{ID: 3, Title: "Designer", IsRead: true},
	}}
}

func TestHistory_ListDefaultsPageSize(t *testing.T) {
	repo := seed()
	svc := NewNotificationService(repo, Config{})

	resp, err := svc.List(context.Background(), notification.ListParams{})
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 3)
	assert.Equal(t, 50, resp.Params.Limit)
}

func TestHistory_MutationRefetchesLastQuery(t *testing.T) {
	repo := seed()
	svc := NewNotificationService(repo, Config{PageSize: 20})
	ctx := context.Background()

	unread := false
	_, err := svc.List(ctx, notification.ListParams{IsRead: &unread})
	require.NoError(t, err)

	resp, err := svc.MarkAsRead(ctx, notification.MarkAsReadRequest{NotificationIDs: []int64{1}})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, int64(2), resp.Notifications[0].ID)

	require.Len(t, repo.lists, 2)
	assert.Equal(t, repo.lists[0], repo.lists[1])
}

func TestHistory_Mutations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		run   func(notification.HistoryService) (*notification.HistoryResponse, error)
		check func(t *testing.T, resp *notification.HistoryResponse)
	}{
		{
			name: "mark all read",
			run: func(s notification.HistoryService) (*notification.HistoryResponse, error) {
				return s.MarkAllAsRead(ctx)
			},
			check: func(t *testing.T, resp *notification.HistoryResponse) {
				for _, e := range resp.Notifications {
					assert.True(t, e.IsRead)
				}
			},
		},
		{
			name: "mark clicked",
			run: func(s notification.HistoryService) (*notification.HistoryResponse, error) {
				return s.MarkAsClicked(ctx, 2)
			},
			check: func(t *testing.T, resp *notification.HistoryResponse) {
				assert.True(t, resp.Notifications[1].IsClicked)
			},
		},
		{
			name: "delete",
			run: func(s notification.HistoryService) (*notification.HistoryResponse, error) {
				return s.Delete(ctx, 1)
			},
			check: func(t *testing.T, resp *notification.HistoryResponse) {
				assert.Len(t, resp.Notifications, 2)
			},
		},
		{
			name: "delete all",
			run: func(s notification.HistoryService) (*notification.HistoryResponse, error) {
				return s.DeleteAll(ctx)
			},
			check: func(t *testing.T, resp *notification.HistoryResponse) {
				assert.NotNil(t, resp.Notifications)
				assert.Empty(t, resp.Notifications)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewNotificationService(seed(), Config{})
			resp, err := tt.run(svc)
			require.NoError(t, err)
			tt.check(t, resp)
		})
	}
}

func TestHistory_FailedMutationDoesNotRefetch(t *testing.T) {
	repo := seed()
	repo.mutateErr = errors.New("backend down")
	svc := NewNotificationService(repo, Config{})

	resp, err := svc.DeleteAll(context.Background())
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, repo.lists)
	assert.Len(t, repo.entries, 3)
}

func TestHistory_MarkAsReadRequiresIDs(t *testing.T) {
	svc := NewNotificationService(seed(), Config{})

	_, err := svc.MarkAsRead(context.Background(), notification.MarkAsReadRequest{})
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func TestHistory_Stats(t *testing.T) {
	svc := NewNotificationService(seed(), Config{})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Unread)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/parentlink/internal/models"
)

func loaded(t *testing.T, seed ...models.Message) *Store[models.Message] {
	t.Helper()
	s := newMessages(t, newFakeCache())
	s.Load(context.Background(), seed)
	return s
}

func TestReconcile_ReplacesCollection(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, msg("m1", "A", models.StatusUnread), msg("old", "gone", models.StatusRead))

	start := s.BeginReconcile()
	require.True(t, s.FinishReconcile(ctx, start, []models.Message{
		msg("m1", "A2", models.StatusRead),
		msg("m3", "C", models.StatusUnread),
		msg("m3", "dup", models.StatusUnread),
	}))

	got := s.Snapshot()
	assert.Equal(t, []string{"m1", "m3"}, ids(got))
	assert.Equal(t, "A2", got[0].Title, "server wins")
	assert.Equal(t, StateRemoteReconciled, s.State())
}

func TestReconcile_PendingSurvivesInFlightList(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, msg("m1", "A", models.StatusUnread))

	start := s.BeginReconcile()
	require.NoError(t, s.Insert(msg("tmp_msg_1", "B", models.StatusRead)))
	require.True(t, s.FinishReconcile(ctx, start, []models.Message{msg("m1", "A", models.StatusUnread)}))

	assert.Equal(t, []string{"tmp_msg_1", "m1"}, ids(s.Snapshot()))
	_, o, _ := s.Get("tmp_msg_1")
	assert.Equal(t, OriginPending, o)
}

func TestReconcile_PendingSurvivesEvenWhenCreatedBeforeList(t *testing.T) {
	ctx := context.Background()
	s := loaded(t)
	require.NoError(t, s.Insert(msg("tmp_msg_1", "B", models.StatusRead)))

	start := s.BeginReconcile()
	require.True(t, s.FinishReconcile(ctx, start, nil))

	assert.Equal(t, []string{"tmp_msg_1"}, ids(s.Snapshot()))
}

func TestReconcile_DropsCreatesFailedBeforeList(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, msg("m1", "A", models.StatusUnread))
	require.NoError(t, s.Insert(msg("tmp_msg_1", "B", models.StatusRead)))
	require.True(t, s.Fail("tmp_msg_1"))

	start := s.BeginReconcile()
	require.True(t, s.FinishReconcile(ctx, start, []models.Message{msg("m1", "A", models.StatusUnread)}))

	assert.Equal(t, []string{"m1"}, ids(s.Snapshot()))
	pending, failed := s.Counts()
	assert.Zero(t, pending)
	assert.Zero(t, failed)
}

func TestReconcile_KeepsCreateFailedDuringList(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, msg("m1", "A", models.StatusUnread))

	start := s.BeginReconcile()
	require.NoError(t, s.Insert(msg("tmp_msg_1", "B", models.StatusRead)))
	require.True(t, s.Fail("tmp_msg_1"))
	require.True(t, s.FinishReconcile(ctx, start, []models.Message{msg("m1", "A", models.StatusUnread)}))

	assert.Equal(t, []string{"tmp_msg_1", "m1"}, ids(s.Snapshot()))
	_, origin, ok := s.Get("tmp_msg_1")
	require.True(t, ok)
	assert.Equal(t, OriginFailed, origin)

	// the next full list drops it
	start = s.BeginReconcile()
	require.True(t, s.FinishReconcile(ctx, start, []models.Message{msg("m1", "A", models.StatusUnread)}))
	assert.Equal(t, []string{"m1"}, ids(s.Snapshot()))
}

func TestReconcile_KeepsRetryFailedDuringList(t *testing.T) {
	ctx := context.Background()
	s := loaded(t)
	require.NoError(t, s.Insert(msg("tmp_msg_1", "B", models.StatusRead)))
	require.True(t, s.Fail("tmp_msg_1"))

	start := s.BeginReconcile()
	_, err := s.Retry("tmp_msg_1")
	require.NoError(t, err)
	require.True(t, s.Fail("tmp_msg_1"))
	require.True(t, s.FinishReconcile(ctx, start, nil))

	assert.Equal(t, []string{"tmp_msg_1"}, ids(s.Snapshot()))
}

func TestReconcile_OverlayOfLaterChanges(t *testing.T) {
	ctx := context.Background()
	s := loaded(t,
		msg("m1", "A", models.StatusUnread),
		msg("m2", "B", models.StatusUnread),
	)
	require.NoError(t, s.Insert(msg("tmp_msg_1", "C", models.StatusRead)))

	start := s.BeginReconcile()

	_, err := s.SetStatus("m1", models.StatusRead)
	require.NoError(t, err)
	_, err = s.Remove("m2")
	require.NoError(t, err)
	_, ok := s.Confirm("tmp_msg_1", msg("m9", "C", models.StatusRead))
	require.True(t, ok)

	// the list was answered before any of the above reached the server
	stale := []models.Message{
		msg("m1", "A", models.StatusUnread),
		msg("m2", "B", models.StatusUnread),
	}
	require.True(t, s.FinishReconcile(ctx, start, stale))

	got := s.Snapshot()
	assert.Equal(t, []string{"m9", "m1"}, ids(got))
	assert.Equal(t, models.StatusRead, got[1].Status)
}

func TestReconcile_ChangesBeforeListAreNotReplayed(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, msg("m1", "A", models.StatusUnread))

	_, err := s.SetStatus("m1", models.StatusRead)
	require.NoError(t, err)

	start := s.BeginReconcile()
	require.True(t, s.FinishReconcile(ctx, start, []models.Message{msg("m1", "A", models.StatusUnread)}))

	got, _, _ := s.Get("m1")
	assert.Equal(t, models.StatusUnread, got.Status, "the list saw the change; the server's answer is final")
}

func TestReconcile_OverlappingListsLastResolvedWins(t *testing.T) {
	ctx := context.Background()
	s := loaded(t)

	first := s.BeginReconcile()
	second := s.BeginReconcile()

	require.True(t, s.FinishReconcile(ctx, second, []models.Message{msg("m2", "new", models.StatusUnread)}))
	require.True(t, s.FinishReconcile(ctx, first, []models.Message{msg("m1", "old", models.StatusUnread)}))

	assert.Equal(t, []string{"m1"}, ids(s.Snapshot()))
}

func TestReconcile_AbortKeepsState(t *testing.T) {
	s := loaded(t, msg("m1", "A", models.StatusUnread))

	start := s.BeginReconcile()
	_, err := s.Remove("m1")
	require.NoError(t, err)
	s.AbortReconcile(start)

	assert.Empty(t, s.Snapshot())
	assert.Equal(t, StateCacheLoaded, s.State())

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.active)
	assert.Empty(t, s.removedAt, "marks are dropped once no list is running")
}

func TestReconcile_AppendCollectionKeepsPendingAtEnd(t *testing.T) {
	ctx := context.Background()
	s := New[models.Proposal](models.CollectionProposals, newFakeCache())
	t.Cleanup(s.Close)
	s.Load(ctx, []models.Proposal{{ID: "p1", Status: models.StatusPending}})
	require.NoError(t, s.Insert(models.Proposal{ID: "tmp_prop_1", Status: models.StatusPending}))

	start := s.BeginReconcile()
	require.True(t, s.FinishReconcile(ctx, start, []models.Proposal{{ID: "p1"}, {ID: "p2"}}))

	var got []string
	for _, p := range s.Snapshot() {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"p1", "p2", "tmp_prop_1"}, got)
}

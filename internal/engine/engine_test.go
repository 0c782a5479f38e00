package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/parentlink/internal/cache"
	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/engine/enginetest"
	"github.com/dmitrijs2005/parentlink/internal/gateway"
	"github.com/dmitrijs2005/parentlink/internal/gateway/gatewaytest"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/seed"
	"github.com/dmitrijs2005/parentlink/internal/store"
)

const waitFor = 2 * time.Second

type fakes struct {
	messages  *enginetest.Remote[models.Message]
	memos     *enginetest.Remote[models.UrgentMemo]
	proposals *enginetest.Remote[models.Proposal]
	posts     *enginetest.Remote[models.Post]
	pings     *enginetest.Remote[models.ArrivalPing]
}

func newFakes() *fakes {
	return &fakes{
		messages:  enginetest.NewRemote[models.Message](),
		memos:     enginetest.NewRemote[models.UrgentMemo](),
		proposals: enginetest.NewRemote[models.Proposal](),
		posts:     enginetest.NewRemote[models.Post](),
		pings:     enginetest.NewRemote[models.ArrivalPing](),
	}
}

func (f *fakes) remotes() Remotes {
	return Remotes{
		Messages:     f.messages,
		UrgentMemos:  f.memos,
		Proposals:    f.proposals,
		Posts:        f.posts,
		ArrivalPings: f.pings,
	}
}

func msg(id, title string) models.Message {
	return models.Message{ID: id, Title: title, CreatedAt: "2024-01-01T00:00:00.000Z", Status: models.StatusUnread}
}

func msgIDs(items []models.Message) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func putCache(t *testing.T, c cache.Cache, col models.Collection, items any) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), col.CacheKey(), data))
}

func newEngine(t *testing.T, c cache.Cache, f *fakes, m *Metrics) *Engine {
	t.Helper()
	e := New(c, f.remotes(), seed.Set{}, logging.Nop(), m)
	t.Cleanup(func() {
		e.Close()
		e.Wait()
	})
	return e
}

func TestStart_ShowsCacheBeforeSlowRemote(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	putCache(t, c, models.CollectionMessages, []models.Message{msg("m0", "cached")})

	f := newFakes()
	f.messages.SetItems(msg("m1", "remote"))
	release := f.messages.HoldLists()

	e := newEngine(t, c, f, nil)
	require.NoError(t, e.Start(ctx))

	assert.Equal(t, store.StateCacheLoaded, e.Messages.State())
	assert.Equal(t, []string{"m0"}, msgIDs(e.Messages.Snapshot()))

	release()
	require.Eventually(t, func() bool {
		return e.Messages.State() == store.StateRemoteReconciled
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, []string{"m1"}, msgIDs(e.Messages.Snapshot()))
}

func TestHydrateAll_RemoteDownKeepsCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	putCache(t, c, models.CollectionMessages, []models.Message{msg("m0", "cached")})

	f := newFakes()
	f.messages.SetListErr(gateway.ErrUnavailable)

	e := newEngine(t, c, f, nil)
	require.NoError(t, e.HydrateAll(ctx))

	assert.Equal(t, store.StateCacheLoaded, e.Messages.State())
	assert.Equal(t, []string{"m0"}, msgIDs(e.Messages.Snapshot()))
	assert.Equal(t, store.StateRemoteReconciled, e.Posts.State())
}

func TestHydrateAll_SeedWhenCacheEmpty(t *testing.T) {
	f := newFakes()
	f.posts.SetListErr(gateway.ErrUnavailable)

	seeds := seed.Set{Posts: []models.Post{{ID: "seed_post", Body: "hello", Status: models.StatusPublished}}}
	e := New(cache.NewMemoryCache(), f.remotes(), seeds, logging.Nop(), nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.HydrateAll(context.Background()))
	posts := e.Posts.Snapshot()
	require.Len(t, posts, 1)
	assert.Equal(t, "seed_post", posts[0].ID)
}

func TestRefresh_ReturnsRemoteError(t *testing.T) {
	f := newFakes()
	f.proposals.SetListErr(gateway.ErrUnauthorized)
	e := newEngine(t, cache.NewMemoryCache(), f, nil)

	err := e.Refresh(context.Background(), models.CollectionProposals)
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Contains(t, err.Error(), "proposals")

	require.NoError(t, e.Refresh(context.Background(), models.CollectionPosts))
}

func TestRefresh_UnknownCollection(t *testing.T) {
	e := newEngine(t, cache.NewMemoryCache(), newFakes(), nil)

	err := e.Refresh(context.Background(), models.Collection("grades"))
	assert.ErrorIs(t, err, common.ErrUnknownCollection)

	_, err = e.Collection(models.Collection("grades"))
	assert.ErrorIs(t, err, common.ErrUnknownCollection)
}

func TestRefreshAll_JoinsErrors(t *testing.T) {
	f := newFakes()
	f.messages.SetListErr(gateway.ErrUnavailable)
	f.pings.SetListErr(gateway.ErrUnauthorized)
	e := newEngine(t, cache.NewMemoryCache(), f, nil)

	err := e.RefreshAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)

	for _, st := range e.Status() {
		switch st.Name {
		case models.CollectionMessages, models.CollectionArrivalPings:
			assert.NotEqual(t, store.StateRemoteReconciled, st.State, st.Name)
		default:
			assert.Equal(t, store.StateRemoteReconciled, st.State, st.Name)
		}
	}
}

func TestStatus_CountsRecords(t *testing.T) {
	f := newFakes()
	f.messages.SetItems(msg("m1", "a"), msg("m2", "b"))
	e := newEngine(t, cache.NewMemoryCache(), f, nil)
	require.NoError(t, e.HydrateAll(context.Background()))

	require.NoError(t, e.Messages.Store().Insert(msg("tmp_msg_1", "draft")))
	require.NoError(t, e.Messages.Store().Insert(msg("tmp_msg_2", "draft")))
	require.True(t, e.Messages.Store().Fail("tmp_msg_2"))

	st := e.Status()
	require.Len(t, st, len(models.Collections))
	assert.Equal(t, Status{
		Name:    models.CollectionMessages,
		State:   store.StateRemoteReconciled,
		Records: 4,
		Pending: 1,
		Failed:  1,
	}, st[0])
}

func TestRefresh_KeepsCreateMadeDuringList(t *testing.T) {
	ctx := context.Background()
	f := newFakes()
	f.messages.SetItems(msg("m1", "first"))
	e := newEngine(t, cache.NewMemoryCache(), f, nil)
	e.Messages.Load(ctx)

	release := f.messages.HoldLists()
	done := make(chan error, 1)
	go func() { done <- e.Messages.Refresh(ctx) }()

	require.Eventually(t, func() bool { return f.messages.Lists() == 1 }, waitFor, time.Millisecond)
	require.NoError(t, e.Messages.Store().Insert(msg("tmp_msg_b", "second")))
	release()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"tmp_msg_b", "m1"}, msgIDs(e.Messages.Snapshot()))
}

func TestClose_DiscardsListInFlight(t *testing.T) {
	ctx := context.Background()
	f := newFakes()
	f.messages.SetItems(msg("m1", "late"))
	e := New(cache.NewMemoryCache(), f.remotes(), seed.Set{}, logging.Nop(), nil)
	e.Messages.Load(ctx)

	release := f.messages.HoldLists()
	done := make(chan error, 1)
	go func() { done <- e.Messages.Refresh(ctx) }()
	require.Eventually(t, func() bool { return f.messages.Lists() == 1 }, waitFor, time.Millisecond)

	e.Close()
	release()
	require.NoError(t, <-done)
	assert.Empty(t, e.Messages.Snapshot())
	assert.Equal(t, store.StateCacheLoaded, e.Messages.State())
}

func TestPersistence_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()

	f := newFakes()
	f.memos.SetItems(models.UrgentMemo{ID: "u1", ChildID: "ana", Title: "Fever", Status: models.StatusPending})
	first := New(c, f.remotes(), seed.Set{}, logging.Nop(), nil)
	require.NoError(t, first.HydrateAll(ctx))
	require.NoError(t, first.UrgentMemos.Store().Insert(models.UrgentMemo{ID: "tmp_memo_x", ChildID: "ben", Title: "Rash", Status: models.StatusPending}))
	first.Wait()
	first.Close()

	offline := newFakes()
	offline.memos.SetListErr(gateway.ErrUnavailable)
	second := newEngine(t, c, offline, nil)
	require.NoError(t, second.HydrateAll(ctx))

	memos := second.UrgentMemos.Snapshot()
	require.Len(t, memos, 2)
	assert.Equal(t, "tmp_memo_x", memos[0].ID)
	assert.Equal(t, "u1", memos[1].ID)

	_, origin, ok := second.UrgentMemos.Store().Get("tmp_memo_x")
	require.True(t, ok)
	assert.Equal(t, store.OriginFailed, origin)
}

func TestMetrics_CountRemoteCallsAndWrites(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	f := newFakes()
	f.messages.SetItems(msg("m1", "a"), msg("m2", "b"))
	f.posts.SetListErr(gateway.ErrUnavailable)
	e := newEngine(t, cache.NewMemoryCache(), f, m)

	require.NoError(t, e.HydrateAll(context.Background()))
	e.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("messages", "list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("posts", "list", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.CacheWrites.WithLabelValues("messages", "ok")), 1.0)
	assert.Equal(t, 4, testutil.CollectAndCount(m.Reconciles))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.Records.WithLabelValues("messages", "confirmed")) == 2
	}, waitFor, 5*time.Millisecond)
}

func TestHTTPRemotes_AgainstFakeBackend(t *testing.T) {
	ctx := context.Background()
	backend := gatewaytest.New(gatewaytest.WithToken("secret"))
	require.NoError(t, backend.Seed(string(models.CollectionMessages), msg("m1", "from server")))
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	client := gateway.NewClient(srv.Client(), srv.URL, gateway.StaticToken("secret"))
	e := newEngineWith(t, HTTPRemotes(client))
	require.NoError(t, e.HydrateAll(ctx))

	for _, st := range e.Status() {
		assert.Equal(t, store.StateRemoteReconciled, st.State, st.Name)
	}
	assert.Equal(t, []string{"m1"}, msgIDs(e.Messages.Snapshot()))

	backend.SetOffline(true)
	err := e.RefreshAll(ctx)
	assert.True(t, errors.Is(err, gateway.ErrUnavailable), "got %v", err)
	assert.Equal(t, []string{"m1"}, msgIDs(e.Messages.Snapshot()))
}

func newEngineWith(t *testing.T, remotes Remotes) *Engine {
	t.Helper()
	e := New(cache.NewMemoryCache(), remotes, seed.Set{}, logging.Nop(), nil)
	t.Cleanup(func() {
		e.Close()
		e.Wait()
	})
	return e
}

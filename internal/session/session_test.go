package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expo-portal/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client backed by miniredis
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	return client, mr
}

func cleanupTestRedis(client *redis.Client, mr *miniredis.Miniredis) {
	if client != nil {
		client.Close()
	}
	if mr != nil {
		mr.Close()
	}
}

// forEachStore runs fn against both Store implementations.
func forEachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("redis", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		defer cleanupTestRedis(client, mr)
		fn(t, NewRedisStore(client))
	})
}

func TestSession_AuthRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		s := New("sid-1", store, time.Hour, nil, nil)

		assert.False(t, s.Authenticated(ctx))

		company := models.Company{ID: "7", CompanyName: "ACME", AmountPaid: 0}
		require.NoError(t, s.SetAuth(ctx, "tok", company))

		token, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)

		got, err := s.Company(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "ACME", got.CompanyName)
		assert.True(t, s.Authenticated(ctx))
	})
}

func TestSession_ClearRemovesBothKeysAndDraft(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		s := New("sid-2", store, time.Hour, nil, nil)

		require.NoError(t, s.SetAuth(ctx, "tok", models.Company{ID: "1"}))
		require.NoError(t, s.SaveDraft(ctx, map[string]string{"state": "address"}))

		require.NoError(t, s.Clear(ctx))

		token, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
		c, err := s.Company(ctx)
		require.NoError(t, err)
		assert.Nil(t, c)

		var draft map[string]string
		ok, err := s.LoadDraft(ctx, &draft)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSession_DraftAndFlash(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		s := New("sid-3", store, time.Hour, nil, nil)

		type draft struct {
			State     string `json:"state"`
			CompanyID string `json:"company_id"`
		}
		require.NoError(t, s.SaveDraft(ctx, draft{State: "contacts", CompanyID: "42"}))

		var got draft
		ok, err := s.LoadDraft(ctx, &got)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "42", got.CompanyID)

		require.NoError(t, s.SetFlash(ctx, FlashMessage{Kind: FlashSuccess, Message: "done", Email: "a@b.co"}))
		msg := s.Flash(ctx)
		require.NotNil(t, msg)
		assert.Equal(t, "a@b.co", msg.Email)
		assert.Nil(t, s.Flash(ctx), "flash is read once")
	})
}

func TestSession_SessionsAreIsolated(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		a := New("a", store, time.Hour, nil, nil)
		b := New("b", store, time.Hour, nil, nil)

		require.NoError(t, a.SetAuth(ctx, "tok-a", models.Company{ID: "1"}))
		assert.False(t, b.Authenticated(ctx))
	})
}

func TestSession_TokenTTLIsApplied(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	s := New("sid-ttl", NewRedisStore(client), 12*time.Hour, func(string) time.Duration { return 30 * time.Minute }, nil)
	require.NoError(t, s.SetAuth(context.Background(), "tok", models.Company{ID: "1"}))

	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKey("sid-ttl", keyAuthToken)))
	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKey("sid-ttl", keyCompany)))

	mr.FastForward(31 * time.Minute)
	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestStore_SetNXLease(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		ok, err := store.SetNX(ctx, "lease", "owner-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.SetNX(ctx, "lease", "owner-2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.DeleteIfValue(ctx, "lease", "owner-2"))
		_, held, err := store.Get(ctx, "lease")
		require.NoError(t, err)
		assert.True(t, held, "other owner cannot release")

		require.NoError(t, store.DeleteIfValue(ctx, "lease", "owner-1"))
		_, held, err = store.Get(ctx, "lease")
		require.NoError(t, err)
		assert.False(t, held)
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(context.Background(), "k", "v", time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(context.Background(), "k2", "v", time.Minute))
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
}

func TestManager_IssuesCookieAndReusesIt(t *testing.T) {
	m := NewManager(NewMemoryStore(), "", false, time.Hour, nil)

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		require.NotNil(t, s)
		seen = s.ID()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "expo_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, seen, cookies[0].Value)

	first := seen
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, first, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestManager_ReplacesForgedCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(), "expo_session", false, time.Hour, nil)

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context()).ID()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "expo_session", Value: "../../etc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "../../etc", seen)
}

func TestFromContextWithoutSession(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/answer"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/internal/service/indexsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChatter struct {
	ChatFunc func(ctx context.Context, req chat.Request) (*chat.Response, error)
}

func (m *mockChatter) Chat(ctx context.Context, req chat.Request) (*chat.Response, error) {
	return m.ChatFunc(ctx, req)
}

type mockSyncer struct {
	mu     sync.Mutex
	events []core.ChangeEvent

	ResyncFunc func(ctx context.Context) (indexsync.ResyncReport, error)
	FailedFunc func(ctx context.Context, limit int) ([]core.SyncState, error)
}

func (m *mockSyncer) OnChange(ctx context.Context, ev core.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockSyncer) Events() []core.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.ChangeEvent(nil), m.events...)
}

func (m *mockSyncer) Resync(ctx context.Context) (indexsync.ResyncReport, error) {
	return m.ResyncFunc(ctx)
}

func (m *mockSyncer) Failed(ctx context.Context, limit int) ([]core.SyncState, error) {
	return m.FailedFunc(ctx, limit)
}

type mockIndex struct {
	info core.IndexInfo
	err  error
}

func (m *mockIndex) Info(ctx context.Context) (core.IndexInfo, error) {
	return m.info, m.err
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(deps Deps) *Server {
	cfg := &config.AppConfig{
		HTTPAddr:       ":0",
		AllowedOrigins: []string{"https://example.dev"},
		AdminToken:     "admin-secret",
	}
	return NewServer(cfg, &config.ContentConfig{WebhookSecret: "hook-secret"}, deps)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat(t *testing.T) {
	var got chat.Request
	chatter := &mockChatter{ChatFunc: func(ctx context.Context, req chat.Request) (*chat.Response, error) {
		got = req
		return &chat.Response{
			Response: "I work with Go.",
			Metadata: chat.Metadata{
				RAGPattern:   core.PatternDirect,
				Language:     chat.LanguageInfo{Detected: "en"},
				ResultsFound: 2,
				SessionID:    req.SessionID,
			},
		}, nil
	}}
	h := newTestServer(Deps{Chat: chatter}).Handler()

	enhanced := false
	body, _ := json.Marshal(chat.Request{Message: "What do you do?", SessionID: "s1", EnhancedMode: &enhanced})
	rec := do(t, h, http.MethodPost, "/chat", string(body), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What do you do?", got.Message)
	require.NotNil(t, got.EnhancedMode)
	assert.False(t, *got.EnhancedMode)

	out := decode(t, rec)
	assert.Equal(t, "I work with Go.", out["response"])
	meta := out["metadata"].(map[string]any)
	assert.Equal(t, "direct", meta["ragPattern"])
	assert.Equal(t, "s1", meta["sessionId"])
	assert.EqualValues(t, 2, meta["resultsFound"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantAnswer string
	}{
		{"malformed json", `{"message":`, nil, http.StatusBadRequest, ""},
		{"validation", `{"message":""}`, core.Validationf("message is required"), http.StatusBadRequest, ""},
		{"unexpected", `{"message":"hi"}`, errors.New("boom"), http.StatusInternalServerError, answer.FallbackAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatter := &mockChatter{ChatFunc: func(ctx context.Context, req chat.Request) (*chat.Response, error) {
				return nil, tt.err
			}}
			rec := do(t, newTestServer(Deps{Chat: chatter}).Handler(), http.MethodPost, "/chat", tt.body, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			out := decode(t, rec)
			assert.NotEmpty(t, out["error"])
			if tt.wantAnswer != "" {
				assert.Equal(t, tt.wantAnswer, out["response"])
			}
		})
	}
}

func TestChat_PanicRecovered(t *testing.T) {
	chatter := &mockChatter{ChatFunc: func(ctx context.Context, req chat.Request) (*chat.Response, error) {
		panic("nil map")
	}}
	rec := do(t, newTestServer(Deps{Chat: chatter}).Handler(), http.MethodPost, "/chat", `{"message":"hi"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, answer.FallbackAnswer, decode(t, rec)["response"])
}

func TestCORS(t *testing.T) {
	h := newTestServer(Deps{Chat: &mockChatter{}}).Handler()

	rec := do(t, h, http.MethodOptions, "/chat", "", map[string]string{"Origin": "https://example.dev"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.dev", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodOptions, "/chat", "", map[string]string{"Origin": "https://evil.dev"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestContentWebhook(t *testing.T) {
	syncer := &mockSyncer{}
	h := newTestServer(Deps{Chat: &mockChatter{}, Sync: syncer}).Handler()
	secret := map[string]string{"X-Webhook-Secret": "hook-secret"}

	t.Run("payload doc", func(t *testing.T) {
		body := `{"operation":"update","doc":{"id":42,"title":"Go","content":"<p>Go services</p>","priority":3,"isActive":true,"keywords":[{"keyword":"golang"}]}}`
		rec := do(t, h, http.MethodPost, "/webhooks/content", body, secret)
		require.Equal(t, http.StatusAccepted, rec.Code)

		require.Eventually(t, func() bool { return len(syncer.Events()) == 1 }, time.Second, 5*time.Millisecond)
		ev := syncer.Events()[0]
		assert.Equal(t, core.OpUpdate, ev.Operation)
		assert.Equal(t, "42", ev.Fragment.ID)
		assert.Equal(t, 3, ev.Fragment.Priority)
		assert.Equal(t, []string{"golang"}, ev.Fragment.Keywords)
	})

	t.Run("fragment delete", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/webhooks/content", `{"operation":"delete","fragment":{"id":"7"}}`, secret)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Eventually(t, func() bool { return len(syncer.Events()) == 2 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, core.OpDelete, syncer.Events()[1].Operation)
	})

	rejected := []struct {
		name    string
		body    string
		headers map[string]string
		status  int
	}{
		{"missing secret", `{"operation":"delete","fragment":{"id":"7"}}`, nil, http.StatusUnauthorized},
		{"wrong secret", `{"operation":"delete","fragment":{"id":"7"}}`, map[string]string{"X-Webhook-Secret": "nope"}, http.StatusUnauthorized},
		{"unknown operation", `{"operation":"publish","fragment":{"id":"7"}}`, secret, http.StatusBadRequest},
		{"no fragment", `{"operation":"create"}`, secret, http.StatusBadRequest},
		{"no id", `{"operation":"create","fragment":{"title":"x"}}`, secret, http.StatusBadRequest},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/webhooks/content", tt.body, tt.headers)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Len(t, syncer.Events(), 2)
}

func TestAdmin(t *testing.T) {
	syncer := &mockSyncer{
		ResyncFunc: func(ctx context.Context) (indexsync.ResyncReport, error) {
			return indexsync.ResyncReport{Active: 3, Indexed: 4, Upserted: 1, Deleted: 2}, nil
		},
		FailedFunc: func(ctx context.Context, limit int) ([]core.SyncState, error) {
			assert.Equal(t, 10, limit)
			return []core.SyncState{{FragmentID: "9", Status: core.SyncStatusFailed, Attempts: 2}}, nil
		},
	}
	h := newTestServer(Deps{Chat: &mockChatter{}, Sync: syncer}).Handler()
	auth := map[string]string{"Authorization": "Bearer admin-secret"}

	rec := do(t, h, http.MethodPost, "/admin/resync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/admin/resync", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.EqualValues(t, 1, out["upserted"])
	assert.EqualValues(t, 2, out["deleted"])

	rec = do(t, h, http.MethodGet, "/admin/sync?limit=10", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = do(t, h, http.MethodGet, "/admin/sync?limit=abc", "", auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_ResyncWithoutSource(t *testing.T) {
	syncer := &mockSyncer{ResyncFunc: func(ctx context.Context) (indexsync.ResyncReport, error) {
		return indexsync.ResyncReport{}, indexsync.ErrNoSource
	}}
	h := newTestServer(Deps{Chat: &mockChatter{}, Sync: syncer}).Handler()

	rec := do(t, h, http.MethodPost, "/admin/resync", "", map[string]string{"Authorization": "Bearer admin-secret"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		deps       Deps
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ok",
			deps:       Deps{Index: &mockIndex{info: core.IndexInfo{Count: 12}}, Ledger: pingFunc(func(context.Context) error { return nil })},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "index down",
			deps:       Deps{Index: &mockIndex{err: errors.New("connection refused")}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "degraded",
		},
		{
			name:       "ledger down",
			deps:       Deps{Index: &mockIndex{}, Ledger: pingFunc(func(context.Context) error { return errors.New("locked") })},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.deps.Chat = &mockChatter{}
			rec := do(t, newTestServer(tt.deps).Handler(), http.MethodGet, "/health", "", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decode(t, rec)["status"])
		})
	}
}

func TestWithoutSyncer_NoSyncRoutes(t *testing.T) {
	h := newTestServer(Deps{Chat: &mockChatter{}}).Handler()
	rec := do(t, h, http.MethodPost, "/webhooks/content", `{}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

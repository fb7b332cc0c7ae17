package app

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvu/mailquar/internal/api"
	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/quarantine"
	"github.com/nvu/mailquar/internal/reload"
	"github.com/nvu/mailquar/internal/session"
	"github.com/nvu/mailquar/internal/ui/maillist"
	"github.com/nvu/mailquar/internal/ui/preview"
	"github.com/nvu/mailquar/tests/testutil"
)

// spamServer serves a swappable spam index body.
type spamServer struct {
	mu   sync.Mutex
	body string
}

func (s *spamServer) set(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

func (s *spamServer) handler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Write([]byte(s.body))
}

// newTestApp builds an app model against the given gateway URL with a
// restored session, so it starts on the list view.
func newTestApp(t *testing.T, gatewayURL string) *Model {
	t.Helper()

	cache := &testutil.MemoryCache{}
	cache.Seed(`{"username":"u@example.com","realm":"pmg","ticket":"PMG:t","csrf_token":"c"}`)

	sess := session.NewStore(nil, cache, 0, nil)
	require.True(t, sess.Restore())

	client := api.NewClient(gatewayURL, false, sess, nil)
	sess.SetClient(client)

	cfg := &model.AppConfig{}
	cfg.Server.URL = gatewayURL
	cfg.Session.DefaultRealm = "pmg"

	return New(cfg, sess, quarantine.NewGateway(client), reload.New(), nil, nil)
}

func TestStartupWindowSizeBeforeAnyPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	m := newTestApp(t, srv.URL)

	// The runtime delivers a size message before any view was opened.
	require.NotPanics(t, func() {
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	})
	assert.NotEmpty(t, m.View())
}

func TestReloadDuringPreviewRefreshesList(t *testing.T) {
	srv := &spamServer{body: `{"data":[
		{"id":"1","from":"a@example.com","subject":"kept-subject","spamlevel":2,"time":1700000000},
		{"id":"2","from":"b@example.com","subject":"gone-subject","spamlevel":5,"time":1700000100}
	]}`}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	m := newTestApp(t, ts.URL)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Equal(t, ViewList, m.currentView)

	m.Update(m.mailList.FetchCmd()())
	require.Contains(t, m.mailList.View(), "gone-subject")

	m.Update(maillist.PreviewMailMsg{ID: "2"})
	require.Equal(t, ViewPreview, m.currentView)

	// Resizing with the preview open must size it too, without panics.
	require.NotPanics(t, func() {
		m.Update(tea.WindowSizeMsg{Width: 90, Height: 28})
	})

	// The action's reload completes while the preview is still open.
	srv.set(`{"data":[
		{"id":"1","from":"a@example.com","subject":"kept-subject","spamlevel":2,"time":1700000000}
	]}`)
	m.Update(m.mailList.FetchCmd()())

	m.Update(preview.BackMsg{})
	require.Equal(t, ViewList, m.currentView)

	view := m.mailList.View()
	assert.NotContains(t, view, "gone-subject")
	assert.Contains(t, view, "kept-subject")
}

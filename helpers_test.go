package main

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type notification struct {
	kind    notifyKind
	message string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(kind notifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{kind: kind, message: message})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, len(n.events))
	copy(out, n.events)
	return out
}

// configFor points every default action at baseURL, with the action's
// direction and resource appended as the path.
func configFor(baseURL string) PanelConfig {
	cfg := defaultConfig()
	for i := range cfg.Actions {
		a := &cfg.Actions[i]
		a.URL = baseURL + "/" + string(a.Direction) + "/" + string(a.Resource)
	}
	return cfg
}

func newTestRegistry(t *testing.T, baseURL string) *registry {
	t.Helper()
	reg, err := newRegistry(configFor(baseURL))
	require.NoError(t, err)
	return reg
}

// newBodyServer answers every request with body.
func newBodyServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// drain runs cmd and every command nested in a batch, collecting the
// resulting messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

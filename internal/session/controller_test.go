// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/luna-tui/internal/backend"
	"github.com/jeranaias/luna-tui/internal/config"
	"github.com/jeranaias/luna-tui/internal/model"
	"github.com/jeranaias/luna-tui/internal/storage"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeBackend struct {
	mu sync.Mutex

	status    model.StatusReport
	statusErr error

	configureErr error

	reply   string
	chatErr error
	release chan struct{}

	statusCalls int
	configures  []backend.ConfigureRequest
	chats       []any
}

func (f *fakeBackend) Status(ctx context.Context) (model.StatusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, f.statusErr
}

func (f *fakeBackend) Configure(ctx context.Context, req backend.ConfigureRequest) (*backend.ConfigureResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configures = append(f.configures, req)
	if f.configureErr != nil {
		return nil, f.configureErr
	}
	return &backend.ConfigureResponse{Status: "success"}, nil
}

func (f *fakeBackend) Chat(ctx context.Context, body any) (*backend.ChatResponse, error) {
	f.mu.Lock()
	f.chats = append(f.chats, body)
	release := f.release
	reply, err := f.reply, f.chatErr
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &backend.ChatResponse{Response: reply}, nil
}

func (f *fakeBackend) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chats)
}

func rejected(detail string) error {
	return &backend.ClientError{Type: backend.ErrTypeRejected, Message: "server rejected request", StatusCode: 400, Detail: detail}
}

func unreachable() error {
	return &backend.ClientError{Type: backend.ErrTypeConnection, Message: "failed to connect to server", Cause: errors.New("connection refused")}
}

func newTestController(t *testing.T, fb *fakeBackend, mutate ...func(*Config)) (*Controller, storage.Store) {
	t.Helper()
	store, err := storage.Open(storage.BackendFile, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return NewController(fb, store, cfg), store
}

// assertSameMessages compares persisted fields; timestamps lose their
// monotonic reading when they round-trip through JSON.
func assertSameMessages(t *testing.T, want, got []model.Message) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Role, got[i].Role)
		assert.Equal(t, want[i].Content, got[i].Content)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
	}
}

func roles(msgs []model.Message) []model.Role {
	out := make([]model.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

// =============================================================================
// CHAT PANEL TESTS
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	fb := &fakeBackend{reply: "hi there"}
	ctrl, store := newTestController(t, fb)

	res := ctrl.Submit(context.Background(), "  hello  ")
	require.NoError(t, res.Err)
	assert.False(t, res.HasNotice())

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.False(t, ctrl.InFlight())

	history, err := storage.LoadHistory(store)
	require.NoError(t, err)
	assertSameMessages(t, msgs, history)
}

func TestSubmit_EmptyIsNoop(t *testing.T) {
	fb := &fakeBackend{reply: "x"}
	ctrl, _ := newTestController(t, fb)

	for _, text := range []string{"", "   ", "\n\t "} {
		res := ctrl.Submit(context.Background(), text)
		assert.ErrorIs(t, res.Err, ErrEmptyMessage)
	}

	assert.Empty(t, ctrl.Messages())
	assert.Equal(t, 0, fb.chatCount())
}

func TestSubmit_NormalizesToNFC(t *testing.T) {
	fb := &fakeBackend{reply: "ok"}
	ctrl, _ := newTestController(t, fb)

	ctrl.Submit(context.Background(), "cafe\u0301")
	assert.Equal(t, "caf\u00e9", ctrl.Messages()[0].Content)
}

func TestSubmit_SingleFlight(t *testing.T) {
	fb := &fakeBackend{reply: "first reply", release: make(chan struct{})}
	ctrl, _ := newTestController(t, fb)

	ex, err := ctrl.Begin("first")
	require.NoError(t, err)
	assert.True(t, ctrl.InFlight())

	done := make(chan Outcome)
	go func() { done <- ex.Send(context.Background()) }()

	_, err = ctrl.Begin("second")
	assert.ErrorIs(t, err, ErrBusy)
	res := ctrl.Submit(context.Background(), "third")
	assert.ErrorIs(t, res.Err, ErrBusy)

	close(fb.release)
	ctrl.Settle(<-done)

	assert.Equal(t, 1, fb.chatCount())
	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "first reply", msgs[1].Content)
	assert.False(t, ctrl.InFlight())
}

func TestSubmit_ConcurrentCallersSendOnce(t *testing.T) {
	fb := &fakeBackend{reply: "ok", release: make(chan struct{})}
	ctrl, _ := newTestController(t, fb)

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	busy := 0

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res := ctrl.Submit(context.Background(), "hello")
			if errors.Is(res.Err, ErrBusy) {
				mu.Lock()
				busy++
				mu.Unlock()
			}
		}()
	}
	close(start)

	// Readers must not race with the in-flight exchange.
	for i := 0; i < 50; i++ {
		_ = ctrl.Snapshot()
		_ = ctrl.Messages()
	}

	// Every caller but the one holding the exchange must come back busy
	// before the backend answers.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return busy == callers-1
	}, 2*time.Second, 5*time.Millisecond)
	close(fb.release)
	wg.Wait()

	assert.Equal(t, callers-1, busy)
	assert.Equal(t, 1, fb.chatCount())
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleAssistant}, roles(ctrl.Messages()))
	assert.False(t, ctrl.InFlight())
}

func TestSubmit_FailureWithDetail(t *testing.T) {
	fb := &fakeBackend{chatErr: rejected("Model not loaded")}
	ctrl, store := newTestController(t, fb)

	res := ctrl.Submit(context.Background(), "hello")
	require.Error(t, res.Err)
	assert.False(t, res.HasNotice())

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, model.RoleError, msgs[1].Role)
	assert.Equal(t, "Error: Model not loaded", msgs[1].Content)
	assert.False(t, ctrl.InFlight())

	history, err := storage.LoadHistory(store)
	require.NoError(t, err)
	assert.Empty(t, history, "failures are not persisted on their own")
}

func TestSubmit_TransportFailure(t *testing.T) {
	fb := &fakeBackend{chatErr: unreachable()}
	ctrl, _ := newTestController(t, fb)

	ctrl.Submit(context.Background(), "hello")

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, MsgSendFailed, msgs[1].Content)
}

func TestSubmit_ErrorMessagesPersistedButNotSent(t *testing.T) {
	fb := &fakeBackend{chatErr: unreachable()}
	ctrl, store := newTestController(t, fb)

	ctrl.Submit(context.Background(), "q1")

	fb.mu.Lock()
	fb.chatErr = nil
	fb.reply = "a2"
	fb.mu.Unlock()
	ctrl.Submit(context.Background(), "q2")

	assert.Equal(t,
		[]model.Role{model.RoleUser, model.RoleError, model.RoleUser, model.RoleAssistant},
		roles(ctrl.Messages()))

	body, ok := fb.chats[1].(backend.HistoryChatRequest)
	require.True(t, ok)
	assert.False(t, body.Stream)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "q1", body.Messages[0].Content)
	assert.Equal(t, "q2", body.Messages[1].Content)

	history, err := storage.LoadHistory(store)
	require.NoError(t, err)
	assertSameMessages(t, ctrl.Messages(), history)
}

func TestReload_ReproducesTranscript(t *testing.T) {
	fb := &fakeBackend{reply: "r"}
	ctrl, _ := newTestController(t, fb)

	ctrl.Submit(context.Background(), "one")
	ctrl.Submit(context.Background(), "two")
	before := ctrl.Messages()

	require.NoError(t, ctrl.Reload().Err)
	require.NoError(t, ctrl.Reload().Err)

	assertSameMessages(t, before, ctrl.Messages())
	assert.Len(t, ctrl.Messages(), 4)
}

func TestReload_IgnoredWhileInFlight(t *testing.T) {
	fb := &fakeBackend{reply: "r"}
	ctrl, store := newTestController(t, fb)

	require.NoError(t, storage.SaveHistory(store, []model.Message{model.NewUserMessage("elsewhere")}))

	ex, err := ctrl.Begin("mine")
	require.NoError(t, err)

	res := ctrl.Reload()
	assert.ErrorIs(t, res.Err, ErrBusy)
	assert.Equal(t, "mine", ctrl.Messages()[0].Content)

	ctrl.Settle(ex.Send(context.Background()))
}

func TestReload_CorruptHistory(t *testing.T) {
	fb := &fakeBackend{}
	ctrl, store := newTestController(t, fb)
	require.NoError(t, store.Set(storage.KeyChatHistory, "{broken"))

	res := ctrl.Reload()
	require.True(t, res.HasNotice())
	assert.Equal(t, LevelWarning, res.Notice.Level)
	assert.Empty(t, ctrl.Messages())
}

func TestSyncHistory_KeepsFailedExchangeAfterThemeWrite(t *testing.T) {
	fb := &fakeBackend{chatErr: unreachable()}
	ctrl, store := newTestController(t, fb)

	w, err := storage.Watch(store.Path(), 20*time.Millisecond)
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	defer w.Close()

	ctrl.Submit(context.Background(), "hello")
	require.Equal(t, []model.Role{model.RoleUser, model.RoleError}, roles(ctrl.Messages()))

	_, res := ctrl.ToggleTheme()
	require.NoError(t, res.Err)

	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification for the theme write")
	}

	res = ctrl.Dispatch(context.Background(), SyncHistory{})
	require.NoError(t, res.Err)
	assert.False(t, res.HasNotice())
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleError}, roles(ctrl.Messages()))
}

func TestSyncHistory_AppliesExternalChange(t *testing.T) {
	fb := &fakeBackend{reply: "r"}
	ctrl, store := newTestController(t, fb)
	ctrl.Submit(context.Background(), "mine")

	require.NoError(t, storage.SaveHistory(store, []model.Message{model.NewUserMessage("elsewhere")}))

	require.NoError(t, ctrl.SyncHistory().Err)
	require.Len(t, ctrl.Messages(), 1)
	assert.Equal(t, "elsewhere", ctrl.Messages()[0].Content)
}

func TestSyncHistory_BusyWhileInFlight(t *testing.T) {
	fb := &fakeBackend{reply: "r"}
	ctrl, store := newTestController(t, fb)
	require.NoError(t, storage.SaveHistory(store, []model.Message{model.NewUserMessage("elsewhere")}))

	ex, err := ctrl.Begin("mine")
	require.NoError(t, err)
	assert.ErrorIs(t, ctrl.SyncHistory().Err, ErrBusy)
	assert.Equal(t, "mine", ctrl.Messages()[0].Content)

	ctrl.Settle(ex.Send(context.Background()))
}

func TestToggleTheme_TwiceRestores(t *testing.T) {
	fb := &fakeBackend{}
	ctrl, store := newTestController(t, fb)

	dark, res := ctrl.ToggleTheme()
	require.NoError(t, res.Err)
	assert.True(t, dark)
	raw, _, _ := store.Get(storage.KeyDarkMode)
	assert.Equal(t, "true", raw)

	dark, _ = ctrl.ToggleTheme()
	assert.False(t, dark)
	raw, _, _ = store.Get(storage.KeyDarkMode)
	assert.Equal(t, "false", raw)
	assert.False(t, ctrl.DarkMode())
}

func TestApplyTemplate(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeBackend{})

	assert.Equal(t, "Please explain this code:\n\n", ctrl.ApplyTemplate("explain").Prefill)
	assert.Equal(t, "Please summarize this:\n\n", ctrl.ApplyTemplate("summarize").Prefill)
	assert.Equal(t, "Please help me debug this code:\n\n", ctrl.ApplyTemplate("debug").Prefill)

	res := ctrl.ApplyTemplate("translate")
	assert.ErrorIs(t, res.Err, ErrUnknownTemplate)
	assert.Empty(t, res.Prefill)
}

// =============================================================================
// STATUS AND CONFIGURATION TESTS
// =============================================================================

func TestCheckStatus_NotConfiguredOpensPanel(t *testing.T) {
	fb := &fakeBackend{status: model.StatusReport{Status: model.StatusNotConfigured}}
	ctrl, _ := newTestController(t, fb)

	ctrl.CheckStatus(context.Background())

	snap := ctrl.Snapshot()
	assert.True(t, snap.Panel.Visible)
	assert.Equal(t, "backend/model/phi-4-Q3_K_S.gguf", snap.Panel.Path)
	assert.Equal(t, "Not Configured", snap.Indicator.Label)
	assert.Equal(t, "Press ctrl+o to configure model", snap.Indicator.Tooltip)
}

func TestCheckStatus_ReadyLeavesPanelClosed(t *testing.T) {
	fb := &fakeBackend{status: model.StatusReport{Status: model.StatusReady, AvgSpeed: 3}}
	ctrl, _ := newTestController(t, fb)

	ctrl.CheckStatus(context.Background())

	snap := ctrl.Snapshot()
	assert.False(t, snap.Panel.Visible)
	assert.Equal(t, "Performance: 3.00 tokens/s", snap.Indicator.Tooltip)
}

func TestCheckStatus_ReadyDoesNotCloseOpenPanel(t *testing.T) {
	fb := &fakeBackend{status: model.StatusReport{Status: model.StatusReady}}
	ctrl, _ := newTestController(t, fb)

	ctrl.OpenConfig()
	ctrl.CheckStatus(context.Background())
	assert.True(t, ctrl.Panel().Visible)
}

func TestCheckStatus_TransportFailure(t *testing.T) {
	fb := &fakeBackend{statusErr: unreachable()}
	ctrl, _ := newTestController(t, fb)

	res := ctrl.CheckStatus(context.Background())
	assert.Error(t, res.Err)

	snap := ctrl.Snapshot()
	assert.Equal(t, model.StatusError, snap.Status.Status)
	assert.Equal(t, "Failed to connect to server", snap.Indicator.Tooltip)
	assert.True(t, snap.Panel.Visible)
}

func TestOpenConfig_KeepsTypedPath(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeBackend{})

	ctrl.OpenConfig()
	ctrl.SetConfigPath("/models/custom.gguf")
	ctrl.CloseConfig()
	assert.False(t, ctrl.Panel().Visible)

	ctrl.OpenConfig()
	assert.Equal(t, "/models/custom.gguf", ctrl.Panel().Path)
}

func TestSaveConfig_EmptyPath(t *testing.T) {
	fb := &fakeBackend{}
	ctrl, _ := newTestController(t, fb)
	ctrl.OpenConfig()

	for _, path := range []string{"", "   "} {
		res := ctrl.SaveConfig(context.Background(), path)
		require.True(t, res.HasNotice())
		assert.Equal(t, "Please enter a model path", res.Notice.Message)
		assert.ErrorIs(t, res.Err, ErrEmptyModelPath)
	}

	assert.Empty(t, fb.configures)
	assert.True(t, ctrl.Panel().Visible)
}

func TestSaveConfig_SuccessReloads(t *testing.T) {
	fb := &fakeBackend{status: model.StatusReport{Status: model.StatusNotConfigured}}
	ctrl, store := newTestController(t, fb)

	ctrl.CheckStatus(context.Background())
	require.True(t, ctrl.Panel().Visible)

	require.NoError(t, storage.SaveHistory(store, []model.Message{model.NewUserMessage("persisted")}))
	fb.mu.Lock()
	fb.status = model.StatusReport{Status: model.StatusReady}
	fb.mu.Unlock()

	res := ctrl.SaveConfig(context.Background(), " /models/phi.gguf ")
	require.NoError(t, res.Err)
	require.True(t, res.HasNotice())
	assert.Equal(t, LevelInfo, res.Notice.Level)

	require.Len(t, fb.configures, 1)
	assert.Equal(t, "/models/phi.gguf", fb.configures[0].ModelPath)
	assert.Nil(t, fb.configures[0].ModelConfig)

	snap := ctrl.Snapshot()
	assert.False(t, snap.Panel.Visible)
	assert.Equal(t, model.StatusReady, snap.Status.Status)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "persisted", snap.Messages[0].Content)
	assert.Equal(t, 2, fb.statusCalls)
}

func TestSaveConfig_PollSkipsReload(t *testing.T) {
	fb := &fakeBackend{status: model.StatusReport{Status: model.StatusNotLoaded}}
	ctrl, store := newTestController(t, fb, func(c *Config) {
		c.AfterConfigure = config.AfterPoll
		c.SendParams = true
	})

	require.NoError(t, storage.SaveHistory(store, []model.Message{model.NewUserMessage("persisted")}))
	ctrl.SaveConfig(context.Background(), "/m.gguf")

	assert.Empty(t, ctrl.Messages())
	require.Len(t, fb.configures, 1)
	require.NotNil(t, fb.configures[0].ModelConfig)
	assert.Equal(t, backend.ModelParams{NCtx: 4096, NThreads: 4, NBatch: 512}, *fb.configures[0].ModelConfig)

	// not_loaded after configure reopens the panel
	assert.True(t, ctrl.Panel().Visible)
}

func TestSaveConfig_FailureKeepsPanelOpen(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server detail", rejected("Model file not found at: /x.gguf"), "Configuration failed: Model file not found at: /x.gguf"},
		{"transport", unreachable(), "Failed to configure model. Please try again."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{configureErr: tc.err}
			ctrl, _ := newTestController(t, fb)
			ctrl.OpenConfig()

			res := ctrl.SaveConfig(context.Background(), "/x.gguf")
			require.True(t, res.HasNotice())
			assert.Equal(t, LevelError, res.Notice.Level)
			assert.Equal(t, tc.want, res.Notice.Message)

			panel := ctrl.Panel()
			assert.True(t, panel.Visible)
			assert.False(t, panel.Saving)
			assert.Equal(t, 0, fb.statusCalls)
		})
	}
}

// =============================================================================
// START AND DISPATCH TESTS
// =============================================================================

func TestStart_LoadsPersistedState(t *testing.T) {
	fb := &fakeBackend{status: model.StatusReport{Status: model.StatusReady}}
	ctrl, store := newTestController(t, fb)

	require.NoError(t, storage.SaveDarkMode(store, true))
	require.NoError(t, storage.SaveHistory(store, []model.Message{
		model.NewUserMessage("hello"),
		model.NewAssistantMessage("hi there"),
	}))

	res := ctrl.Start(context.Background())
	assert.False(t, res.HasNotice())

	snap := ctrl.Snapshot()
	assert.True(t, snap.DarkMode)
	assert.Len(t, snap.Messages, 2)
	assert.True(t, snap.StatusKnown)
	assert.False(t, snap.Panel.Visible)
}

func TestDispatch(t *testing.T) {
	fb := &fakeBackend{reply: "pong", status: model.StatusReport{Status: model.StatusReady}}
	ctrl, _ := newTestController(t, fb)
	ctx := context.Background()

	ctrl.Dispatch(ctx, Submit{Text: "ping"})
	assert.Len(t, ctrl.Messages(), 2)

	ctrl.Dispatch(ctx, ToggleTheme{})
	assert.True(t, ctrl.DarkMode())

	assert.Equal(t, "Please summarize this:\n\n", ctrl.Dispatch(ctx, ApplyTemplate{Template: "summarize"}).Prefill)

	ctrl.Dispatch(ctx, OpenConfig{})
	assert.True(t, ctrl.Panel().Visible)
	ctrl.Dispatch(ctx, CloseConfig{})
	assert.False(t, ctrl.Panel().Visible)

	ctrl.Dispatch(ctx, CheckStatus{})
	assert.Equal(t, 1, fb.statusCalls)

	res := ctrl.Dispatch(ctx, SaveConfig{Path: ""})
	assert.ErrorIs(t, res.Err, ErrEmptyModelPath)

	assert.NoError(t, ctrl.Dispatch(ctx, Reload{}).Err)
	assert.Len(t, ctrl.Messages(), 2)
}

// =============================================================================
// END-TO-END WITH THE HTTP CLIENT
// =============================================================================

func TestSessionVariant_HelloHiThere(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"response":"hi there"}`)
	}))
	defer srv.Close()

	client := backend.NewClient(&backend.ClientConfig{BaseURL: srv.URL})
	store, err := storage.Open(storage.BackendSQLite, t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	builder, err := backend.NewRequestBuilder(backend.VariantSession, "")
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Builder = builder
	ctrl := NewController(client, store, cfg)

	res := ctrl.Submit(context.Background(), "hello")
	require.NoError(t, res.Err)

	assert.JSONEq(t, `"hello"`, string(got["message"]))
	assert.JSONEq(t, `null`, string(got["session_id"]))

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi there", msgs[1].Content)
}

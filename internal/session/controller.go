// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/luna-tui/internal/backend"
	"github.com/jeranaias/luna-tui/internal/config"
	"github.com/jeranaias/luna-tui/internal/model"
	"github.com/jeranaias/luna-tui/internal/storage"
	"github.com/jeranaias/luna-tui/internal/util"
)

// User-facing messages.
const (
	MsgSendFailed       = "Failed to send message. Please try again."
	MsgConfigureFailed  = "Failed to configure model. Please try again."
	MsgEnterModelPath   = "Please enter a model path"
	MsgConnectionFailed = "Failed to connect to server"
)

// Backend is the subset of the server API the controller uses.
type Backend interface {
	Status(ctx context.Context) (model.StatusReport, error)
	Configure(ctx context.Context, req backend.ConfigureRequest) (*backend.ConfigureResponse, error)
	Chat(ctx context.Context, body any) (*backend.ChatResponse, error)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds controller settings.
type Config struct {
	// Builder produces chat request bodies (default: history variant).
	Builder backend.RequestBuilder

	// DefaultModelPath prefills an empty configuration panel.
	DefaultModelPath string

	// SendParams includes Params in configure requests.
	SendParams bool
	Params     backend.ModelParams

	// AfterConfigure is config.AfterReload or config.AfterPoll.
	AfterConfigure string
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Builder:          backend.HistoryBuilder{},
		DefaultModelPath: "backend/model/phi-4-Q3_K_S.gguf",
		Params:           backend.DefaultModelParams(),
		AfterConfigure:   config.AfterReload,
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// ConfigPanel is the model configuration panel state.
type ConfigPanel struct {
	Visible bool
	Path    string
	Saving  bool
}

// Controller drives the chat panel and the model configuration panel.
// It is safe for use from the UI goroutine and the goroutines running
// network commands.
type Controller struct {
	client Backend
	store  storage.Store
	cfg    Config

	mu          sync.Mutex
	transcript  *model.Transcript
	inFlight    bool
	darkMode    bool
	status      model.StatusReport
	statusKnown bool
	panel       ConfigPanel

	// historyRaw is the chatHistory value last read or written by this
	// controller.
	historyRaw string
}

// NewController creates a controller. Call Start to load persisted state.
func NewController(client Backend, store storage.Store, cfg Config) *Controller {
	if cfg.Builder == nil {
		cfg.Builder = backend.HistoryBuilder{}
	}
	if cfg.AfterConfigure == "" {
		cfg.AfterConfigure = config.AfterReload
	}
	if cfg.Params == (backend.ModelParams{}) {
		cfg.Params = backend.DefaultModelParams()
	}
	return &Controller{
		client:     client,
		store:      store,
		cfg:        cfg,
		transcript: model.NewTranscript(nil),
	}
}

// Start applies the persisted theme, reloads history and checks status.
// The first notice produced, if any, is returned.
func (c *Controller) Start(ctx context.Context) Result {
	first := c.LoadTheme()

	if r := c.Reload(); r.HasNotice() && !first.HasNotice() {
		first = r
	}
	if r := c.CheckStatus(ctx); r.HasNotice() && !first.HasNotice() {
		first = r
	}
	return first
}

// LoadTheme applies the persisted theme preference. An unreadable
// preference leaves the theme light.
func (c *Controller) LoadTheme() Result {
	dark, err := storage.LoadDarkMode(c.store)

	c.mu.Lock()
	c.darkMode = dark
	c.mu.Unlock()

	if err != nil {
		return noticeResult(LevelWarning, "Theme", "Could not read theme preference", err)
	}
	return Result{}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	Messages    []model.Message
	InFlight    bool
	DarkMode    bool
	Status      model.StatusReport
	StatusKnown bool
	Indicator   model.Indicator
	Panel       ConfigPanel
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Messages:    c.transcript.Messages(),
		InFlight:    c.inFlight,
		DarkMode:    c.darkMode,
		Status:      c.status,
		StatusKnown: c.statusKnown,
		Panel:       c.panel,
	}
	if c.statusKnown {
		s.Indicator = c.status.Indicator()
	}
	return s
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// InFlight reports whether a chat exchange is pending.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// DarkMode returns the theme flag.
func (c *Controller) DarkMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.darkMode
}

// Panel returns the configuration panel state.
func (c *Controller) Panel() ConfigPanel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

// =============================================================================
// CHAT PANEL
// =============================================================================

// Exchange is one accepted submission awaiting its network round trip.
type Exchange struct {
	User model.Message

	client Backend
	body   any
}

// Outcome is the result of sending an Exchange.
type Outcome struct {
	User     model.Message
	Response *backend.ChatResponse
	Err      error
	Elapsed  time.Duration
}

// Begin validates text and, if accepted, appends the user message and
// marks an exchange in flight. It returns ErrEmptyMessage or ErrBusy
// without touching any state.
func (c *Controller) Begin(text string) (*Exchange, error) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return nil, ErrBusy
	}

	user := model.NewUserMessage(text)
	body := c.cfg.Builder.Build(c.transcript.Messages(), user)
	c.transcript.Append(user)
	c.inFlight = true

	slog.Debug("chat exchange started",
		"variant", c.cfg.Builder.Variant(),
		"chars", len(text),
		"preview", util.TruncateRunes(util.FirstLine(text), 60))
	return &Exchange{User: user, client: c.client, body: body}, nil
}

// Send performs the network request. It does not touch controller state
// and may run on any goroutine.
func (e *Exchange) Send(ctx context.Context) Outcome {
	start := time.Now()
	resp, err := e.client.Chat(ctx, e.body)
	return Outcome{User: e.User, Response: resp, Err: err, Elapsed: time.Since(start)}
}

// Settle records the outcome: the assistant reply on success (and persists
// the transcript), or an error-role message on failure. Input is unlocked
// either way.
func (c *Controller) Settle(out Outcome) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false

	if out.Err != nil {
		c.transcript.Append(model.NewErrorMessage(FailureContent(out.Err)))
		slog.Warn("chat exchange settled", "outcome", "failure", "elapsed", out.Elapsed, "error", out.Err)
		return Result{Err: out.Err}
	}

	c.transcript.Append(model.NewAssistantMessage(out.Response.Response))

	attrs := []any{"outcome", "success", "elapsed", out.Elapsed, "messages", c.transcript.Len()}
	if p := out.Response.Performance; p != nil {
		attrs = append(attrs, "tokens", p.Tokens, "tokens_per_second", p.TokensPerSecond)
	}
	slog.Info("chat exchange settled", attrs...)

	raw, err := storage.WriteHistory(c.store, c.transcript.Messages())
	if err != nil {
		return noticeResult(LevelWarning, "History", "Could not save chat history", err)
	}
	c.historyRaw = raw
	return Result{}
}

// Submit runs a whole exchange synchronously. Empty text and submissions
// made while another is in flight are ignored.
func (c *Controller) Submit(ctx context.Context, text string) Result {
	ex, err := c.Begin(text)
	if err != nil {
		return Result{Err: err}
	}
	return c.Settle(ex.Send(ctx))
}

// FailureContent is the text of the error-role message for a failed
// exchange.
func FailureContent(err error) string {
	if detail, ok := backend.ServerDetail(err); ok {
		return "Error: " + detail
	}
	return MsgSendFailed
}

// ApplyTemplate returns the template prefix to place in the input.
func (c *Controller) ApplyTemplate(name string) Result {
	t, ok := Template(name)
	if !ok {
		return noticeResult(LevelWarning, "Template", fmt.Sprintf("Unknown template %q", name), ErrUnknownTemplate)
	}
	return Result{Prefill: t.Prefix}
}

// ToggleTheme flips and persists the dark mode flag, returning the new
// value. The flag flips even if persisting fails.
func (c *Controller) ToggleTheme() (bool, Result) {
	c.mu.Lock()
	c.darkMode = !c.darkMode
	dark := c.darkMode
	c.mu.Unlock()

	if err := storage.SaveDarkMode(c.store, dark); err != nil {
		return dark, noticeResult(LevelWarning, "Theme", "Could not save theme preference", err)
	}
	slog.Debug("theme toggled", "dark", dark)
	return dark, Result{}
}

// Reload replaces the transcript with the persisted history. It does
// nothing while an exchange is in flight.
func (c *Controller) Reload() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return Result{Err: ErrBusy}
	}
	return c.reloadLocked()
}

// SyncHistory reloads the transcript only when the persisted history differs
// from the value this controller last read or wrote. Store change
// notifications also fire for the controller's own writes (a theme toggle
// rewrites the store); those must not drop the unsaved messages of a failed
// exchange.
func (c *Controller) SyncHistory() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return Result{Err: ErrBusy}
	}

	raw, _, err := c.store.Get(storage.KeyChatHistory)
	if err != nil {
		return noticeResult(LevelWarning, "History", "Could not load chat history", err)
	}
	if raw == c.historyRaw {
		return Result{}
	}
	slog.Debug("history changed on disk")
	return c.reloadLocked()
}

func (c *Controller) reloadLocked() Result {
	h, err := storage.ReadHistory(c.store)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptHistory) {
			c.transcript.Replace(nil)
			c.historyRaw = h.Raw
		}
		return noticeResult(LevelWarning, "History", "Could not load chat history", err)
	}

	c.transcript.Replace(h.Messages)
	c.historyRaw = h.Raw
	slog.Debug("history reloaded", "messages", len(h.Messages))
	return Result{}
}

// =============================================================================
// MODEL CONFIGURATION PANEL
// =============================================================================

// CheckStatus queries the model status and updates the indicator. Any
// state other than ready opens the configuration panel.
func (c *Controller) CheckStatus(ctx context.Context) Result {
	report, err := c.client.Status(ctx)
	if err != nil {
		report = model.StatusReport{Status: model.StatusError, Detail: statusFailureDetail(err)}
	}

	c.mu.Lock()
	c.status = report
	c.statusKnown = true
	if report.NeedsConfiguration() {
		c.openPanelLocked()
	}
	c.mu.Unlock()

	slog.Info("status checked", "status", string(report.Status), "avg_speed", report.AvgSpeed, "detail", report.Detail)
	return Result{Err: err}
}

func statusFailureDetail(err error) string {
	if backend.IsTransport(err) {
		return MsgConnectionFailed
	}
	if detail, ok := backend.ServerDetail(err); ok {
		return detail
	}
	var ce *backend.ClientError
	if errors.As(err, &ce) && ce.StatusCode != 0 {
		return fmt.Sprintf("Server returned HTTP %d", ce.StatusCode)
	}
	return "Invalid response from server"
}

// OpenConfig shows the configuration panel.
func (c *Controller) OpenConfig() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openPanelLocked()
	return Result{}
}

func (c *Controller) openPanelLocked() {
	c.panel.Visible = true
	if c.panel.Path == "" {
		c.panel.Path = c.cfg.DefaultModelPath
	}
}

// CloseConfig hides the configuration panel.
func (c *Controller) CloseConfig() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel.Visible = false
	return Result{}
}

// SetConfigPath records the path typed into the panel.
func (c *Controller) SetConfigPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel.Path = path
}

// SaveConfig sends path to the server. An empty path produces a validation
// notice and no request. On success the panel closes and the controller
// reloads or re-polls; on failure the panel stays open.
func (c *Controller) SaveConfig(ctx context.Context, path string) Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return noticeResult(LevelWarning, "Model Configuration", MsgEnterModelPath, ErrEmptyModelPath)
	}

	c.mu.Lock()
	if c.panel.Saving {
		c.mu.Unlock()
		return Result{Err: ErrBusy}
	}
	c.panel.Saving = true
	c.panel.Path = path
	c.mu.Unlock()

	req := backend.ConfigureRequest{ModelPath: path}
	if c.cfg.SendParams {
		params := c.cfg.Params
		req.ModelConfig = &params
	}

	resp, err := c.client.Configure(ctx, req)

	c.mu.Lock()
	c.panel.Saving = false
	if err == nil {
		c.panel.Visible = false
	}
	c.mu.Unlock()

	if err != nil {
		msg := MsgConfigureFailed
		if detail, ok := backend.ServerDetail(err); ok {
			msg = "Configuration failed: " + detail
		}
		return noticeResult(LevelError, "Model Configuration", msg, err)
	}

	slog.Info("model configured", "path", path, "status", resp.Status, "send_params", c.cfg.SendParams)

	var follow Result
	if c.cfg.AfterConfigure == config.AfterReload {
		follow = c.Reload()
	}
	if r := c.CheckStatus(ctx); !follow.HasNotice() {
		follow = r
	}
	if follow.HasNotice() {
		return follow
	}
	return noticeResult(LevelInfo, "Model Configuration", "Model configured: "+path, nil)
}

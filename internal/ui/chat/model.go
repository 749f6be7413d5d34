// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/luna-tui/internal/session"
	"github.com/jeranaias/luna-tui/internal/ui/styles"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// Rows used by the header, notice line and help line.
	chromeRows = 3
)

// Options configures a Model.
type Options struct {
	// Context is used for every network call. Defaults to Background.
	Context context.Context

	// MinInputHeight and MaxInputHeight bound the auto-growing input.
	MinInputHeight int
	MaxInputHeight int

	// StoreEvents, when set, delivers a value whenever the local store
	// changes on disk. The transcript is reloaded on each event.
	StoreEvents <-chan struct{}

	// SkipStart leaves the controller alone on Init. Used when the caller
	// has already run Controller.Start.
	SkipStart bool
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctrl  *session.Controller
	opts  Options
	ctx   context.Context
	keys  KeyMap
	theme *styles.Theme

	input     textarea.Model
	pathInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model

	renderer *glamour.TermRenderer
	// Rendered markdown by message ID. Cleared on resize and theme change.
	rendered map[string]string

	snap      session.Snapshot
	notice    *session.Notice
	started   bool
	quitting  bool
	width     int
	height    int
	inputRows int
}

// New creates a chat model driving ctrl.
func New(ctrl *session.Controller, opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.MinInputHeight < 1 {
		opts.MinInputHeight = 1
	}
	if opts.MaxInputHeight < opts.MinInputHeight {
		opts.MaxInputHeight = opts.MinInputHeight
	}

	snap := ctrl.Snapshot()
	theme := styles.NewTheme(snap.DarkMode)

	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send, Alt+Enter for a new line)"
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	// Newlines are inserted explicitly, Enter submits.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	pi := textinput.New()
	pi.Prompt = "Model path: "
	pi.Placeholder = "backend/model/model.gguf"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctrl:      ctrl,
		opts:      opts,
		ctx:       opts.Context,
		keys:      DefaultKeyMap(),
		theme:     theme,
		input:     ta,
		pathInput: pi,
		viewport:  viewport.New(defaultWidth, defaultHeight),
		spinner:   sp,
		rendered:  make(map[string]string),
		snap:      snap,
		inputRows: opts.MinInputHeight,
	}
	m.applyTheme()
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init starts the controller, the cursor blink and the store watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick, m.waitForStoreChange()}
	if m.opts.SkipStart {
		m.started = true
		m.syncPanel(session.ConfigPanel{})
		m.syncInputFocus()
		m.refreshViewport()
	} else {
		cmds = append(cmds, m.startCmd())
	}
	return tea.Batch(cmds...)
}

// Snapshot returns the controller state the view last rendered.
func (m *Model) Snapshot() session.Snapshot {
	return m.snap
}

// Notice returns the notice currently displayed, if any.
func (m *Model) Notice() *session.Notice {
	return m.notice
}

// InputValue returns the current chat input text.
func (m *Model) InputValue() string {
	return m.input.Value()
}

// InputRows returns the current height of the chat input.
func (m *Model) InputRows() int {
	return m.inputRows
}

// =============================================================================
// STATE SYNC
// =============================================================================

// refresh pulls a fresh snapshot from the controller and updates the widgets
// that depend on it.
func (m *Model) refresh() {
	prev := m.snap.Panel
	m.snap = m.ctrl.Snapshot()

	if m.snap.DarkMode != m.theme.IsDark {
		m.theme = styles.NewTheme(m.snap.DarkMode)
		m.applyTheme()
		m.theme.SetSize(m.width, m.height)
		m.rendered = make(map[string]string)
		m.buildRenderer()
	}

	m.syncPanel(prev)
	m.syncInputFocus()
	m.refreshViewport()
}

// syncPanel moves focus between the chat input and the model path input
// when the panel opens or closes.
func (m *Model) syncPanel(prev session.ConfigPanel) {
	panel := m.snap.Panel
	switch {
	case panel.Visible && !prev.Visible:
		m.pathInput.SetValue(panel.Path)
		m.pathInput.CursorEnd()
		m.pathInput.Focus()
		m.input.Blur()
	case !panel.Visible && prev.Visible:
		m.pathInput.Blur()
	}
}

// syncInputFocus disables the chat input while an exchange is in flight or
// the panel is open, and restores focus afterwards.
func (m *Model) syncInputFocus() {
	if m.snap.InFlight || m.snap.Panel.Visible {
		m.input.Blur()
		return
	}
	if !m.input.Focused() {
		m.input.Focus()
	}
}

func (m *Model) applyTheme() {
	t := m.theme

	focused, blurred := textarea.DefaultStyles()
	focused.Prompt = t.InputPrompt
	focused.Placeholder = t.InputPlaceholder
	blurred.Prompt = t.InputDisabled
	blurred.Placeholder = t.InputPlaceholder
	blurred.Text = t.InputDisabled
	m.input.FocusedStyle = focused
	m.input.BlurredStyle = blurred

	m.pathInput.PromptStyle = t.PanelLabel
	m.pathInput.PlaceholderStyle = t.PanelHint
	m.spinner.Style = t.Placeholder
}

func (m *Model) buildRenderer() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(m.theme.BubbleWidth()),
	)
	if err != nil {
		slog.Warn("markdown renderer unavailable", "error", err)
		m.renderer = nil
		return
	}
	m.renderer = r
}

// resize lays out the widgets for a terminal of the given size.
func (m *Model) resize(width, height int) {
	if width == m.width && height == m.height && m.renderer != nil {
		return
	}
	widthChanged := width != m.width

	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	m.input.SetWidth(width - 2)
	m.pathInput.Width = width - 24
	m.viewport.Width = width
	m.layoutHeights()

	if widthChanged || m.renderer == nil {
		m.rendered = make(map[string]string)
		m.buildRenderer()
	}
	m.refreshViewport()
}

// layoutHeights grows the input to fit its text and gives the rest of the
// screen to the transcript.
func (m *Model) layoutHeights() {
	m.inputRows = session.GrowHeight(m.input.Value(), m.input.Width(), m.opts.MinInputHeight, m.opts.MaxInputHeight)
	m.input.SetHeight(m.inputRows)

	// One extra row for the input container border.
	vh := m.height - chromeRows - m.inputRows - 1
	if vh < 1 {
		vh = 1
	}
	m.viewport.Height = vh
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, ctrl *session.Controller, opts Options) error {
	opts.Context = ctx
	p := tea.NewProgram(New(ctrl, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

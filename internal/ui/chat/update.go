// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/luna-tui/internal/session"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func (m *Model) startCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return StartedMsg{Result: ctrl.Start(ctx)}
	}
}

func (m *Model) sendCmd(ex *session.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return ExchangeSentMsg{Outcome: ex.Send(ctx)}
	}
}

func (m *Model) checkStatusCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return StatusCheckedMsg{Result: ctrl.Dispatch(ctx, session.CheckStatus{})}
	}
}

func (m *Model) saveConfigCmd(path string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return ConfigSavedMsg{Result: ctrl.Dispatch(ctx, session.SaveConfig{Path: path})}
	}
}

// waitForStoreChange blocks until the store watcher fires. It returns nil
// when there is no watcher or the watcher has stopped.
func (m *Model) waitForStoreChange() tea.Cmd {
	events := m.opts.StoreEvents
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles a Bubble Tea message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StartedMsg:
		m.started = true
		m.showResult(msg.Result)
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case ExchangeSentMsg:
		m.showResult(m.ctrl.Settle(msg.Outcome))
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case StatusCheckedMsg:
		m.showResult(msg.Result)
		m.refresh()
		return m, nil

	case ConfigSavedMsg:
		m.showResult(msg.Result)
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case StoreChangedMsg:
		// Our own writes also land here; SyncHistory ignores them. It
		// refuses while an exchange is in flight, and the settle that
		// follows saves the newer transcript anyway.
		m.showResult(m.ctrl.Dispatch(m.ctx, session.SyncHistory{}))
		m.refresh()
		return m, m.waitForStoreChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.snap.InFlight || m.snap.Panel.Saving || !m.started {
			m.refreshViewport()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	if m.snap.Panel.Visible {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.snap.Panel.Visible {
		return m.handlePanelKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.notice = nil
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.showResult(m.ctrl.Dispatch(m.ctx, session.ToggleTheme{}))
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Configure):
		m.ctrl.Dispatch(m.ctx, session.OpenConfig{})
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Status):
		return m, m.checkStatusCmd()

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if name, ok := m.keys.templateFor(msg); ok {
		return m, m.applyTemplate(name)
	}

	switch session.ClassifyKey(msg.String()) {
	case session.KeySubmit:
		return m, m.submit()
	case session.KeyNewline:
		if m.input.Focused() {
			m.input.InsertString("\n")
			m.layoutHeights()
		}
		return m, nil
	}

	if !m.input.Focused() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.layoutHeights()
	return m, cmd
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.Dispatch(m.ctx, session.CloseConfig{})
		m.refresh()
		return m, nil

	case msg.Type == tea.KeyEnter:
		if m.snap.Panel.Saving {
			return m, nil
		}
		path := m.pathInput.Value()
		m.ctrl.SetConfigPath(path)
		if strings.TrimSpace(path) == "" {
			// Rejected by the controller without a request.
			m.showResult(m.ctrl.Dispatch(m.ctx, session.SaveConfig{Path: path}))
			return m, nil
		}
		m.snap.Panel.Saving = true
		return m, m.saveConfigCmd(path)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	m.ctrl.SetConfigPath(m.pathInput.Value())
	return m, cmd
}

// submit starts an exchange for the current input. Empty input and
// submissions made while another is in flight do nothing.
func (m *Model) submit() tea.Cmd {
	ex, err := m.ctrl.Begin(m.input.Value())
	if err != nil {
		return nil
	}
	m.input.Reset()
	m.notice = nil
	m.layoutHeights()
	m.refresh()
	m.viewport.GotoBottom()
	return m.sendCmd(ex)
}

func (m *Model) applyTemplate(name string) tea.Cmd {
	res := m.ctrl.Dispatch(m.ctx, session.ApplyTemplate{Template: name})
	if res.HasNotice() || res.Prefill == "" {
		m.showResult(res)
		return nil
	}
	m.input.SetValue(res.Prefill)
	m.layoutHeights()
	if m.snap.InFlight {
		return nil
	}
	return m.input.Focus()
}

// showResult displays the result's notice, leaving any current notice in
// place when the result has none.
func (m *Model) showResult(res session.Result) {
	if res.HasNotice() {
		m.notice = res.Notice
	}
}

package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/thruflo/recpanel/internal/panel"
)

// View represents the current TUI view.
type View int

const (
	ViewPanel View = iota
	ViewLinkInput
	ViewAlert
)

// String returns the string representation of the view.
func (v View) String() string {
	switch v {
	case ViewPanel:
		return "panel"
	case ViewLinkInput:
		return "link_input"
	case ViewAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// Action represents a user action from the TUI.
type Action int

const (
	ActionNone    Action = iota
	ActionStart          // Start recording; Input carries the meeting link
	ActionStop           // Stop recording
	ActionUpload         // Upload the last report
	ActionRefresh        // Poll now
	ActionQuit           // Leave the panel
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionUpload:
		return "upload"
	case ActionRefresh:
		return "refresh"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ActionEvent is sent when the user triggers an action.
type ActionEvent struct {
	Action Action
	Input  string // Only set for ActionStart
}

// TUI manages the terminal user interface.
type TUI struct {
	terminal  *Terminal
	keyReader *KeyReader
	out       io.Writer
	mu        sync.Mutex
	snapshot  panel.Snapshot
	view      View
	tab       Tab
	scroll    int
	panelView *PanelView
	inputView *LinkInputView
	alertView *AlertView
	alert     string
	width     int
	height    int
	running   bool
	actionCh  chan ActionEvent
}

// NewTUI creates a new TUI instance.
func NewTUI(out io.Writer) *TUI {
	terminal := NewTerminal(out)
	return &TUI{
		terminal:  terminal,
		out:       out,
		view:      ViewPanel,
		panelView: &PanelView{},
		inputView: NewLinkInputView(terminal),
		alertView: &AlertView{},
		width:     80,
		height:    24,
		actionCh:  make(chan ActionEvent, 10),
	}
}

// SetSnapshot replaces the state the panel renders.
func (t *TUI) SetSnapshot(snap panel.Snapshot) {
	t.mu.Lock()
	t.snapshot = snap
	t.mu.Unlock()
}

// Snapshot returns the state the panel renders.
func (t *TUI) Snapshot() panel.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// SetView switches to a different view.
func (t *TUI) SetView(v View) {
	t.mu.Lock()
	t.view = v
	t.mu.Unlock()
}

// GetView returns the current view.
func (t *TUI) GetView() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// SetTab selects a report tab and scrolls it to the top.
func (t *TUI) SetTab(tab Tab) {
	t.mu.Lock()
	t.setTabLocked(tab)
	t.mu.Unlock()
}

func (t *TUI) setTabLocked(tab Tab) {
	if tab != t.tab {
		t.tab = tab
		t.scroll = 0
	}
}

// GetTab returns the selected report tab.
func (t *TUI) GetTab() Tab {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tab
}

// Scroll returns the scroll offset of the selected tab.
func (t *TUI) Scroll() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scroll
}

// ShowAlert switches to the alert view. The operator dismisses it with any key.
func (t *TUI) ShowAlert(message string) {
	t.mu.Lock()
	t.alert = message
	t.view = ViewAlert
	t.mu.Unlock()
}

// Alert returns the message of the alert being shown, if any.
func (t *TUI) Alert() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view != ViewAlert {
		return ""
	}
	return t.alert
}

// ShowLinkInput switches to the meeting link prompt with an empty field.
func (t *TUI) ShowLinkInput() {
	t.mu.Lock()
	t.inputView.Reset()
	t.view = ViewLinkInput
	t.mu.Unlock()
}

// Actions returns a channel that receives user actions.
func (t *TUI) Actions() <-chan ActionEvent {
	return t.actionCh
}

// Update redraws the current view.
func (t *TUI) Update() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	width, height, err := t.terminal.Size()
	if err == nil {
		t.width = width
		t.height = height
	}

	t.terminal.Clear()
	t.terminal.HideCursor()

	for _, line := range t.renderLocked() {
		t.terminal.WriteLine(line)
	}

	if t.view == ViewLinkInput {
		t.terminal.ShowCursor()
	}
}

// Render returns the lines of the current view without drawing them.
func (t *TUI) Render() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderLocked()
}

func (t *TUI) renderLocked() []string {
	switch t.view {
	case ViewLinkInput:
		return t.inputView.Render(t.width)
	case ViewAlert:
		return t.alertView.Render(t.alert, t.width)
	default:
		lines := t.panelView.Render(t.snapshot, t.tab, t.scroll, t.width, t.height)
		// Keep the stored offset in range so scrolling back responds at once.
		body := TabLines(t.snapshot, t.tab, max(30, t.width)-4)
		t.scroll = ClampScroll(len(body), t.panelView.BodyHeight(t.height), t.scroll)
		return lines
	}
}

// Run starts the TUI event loop.
// It returns when the context is cancelled or the user quits.
func (t *TUI) Run(ctx context.Context) error {
	if err := t.terminal.EnterRaw(); err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer t.terminal.ExitRaw()
	defer t.terminal.ShowCursor()

	t.mu.Lock()
	t.running = true
	t.mu.Unlock()
	defer t.Stop()

	t.keyReader = NewKeyReader(t.terminal)

	t.Update()

	keyCh := make(chan KeyEvent, 10)
	keyErr := make(chan error, 1)

	go func() {
		for {
			ev, err := t.keyReader.ReadKey()
			if err != nil {
				keyErr <- err
				return
			}
			select {
			case keyCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-keyErr:
			// Reader error is usually EOF, which is expected on exit
			if err == io.EOF {
				return nil
			}
			return err

		case ev := <-keyCh:
			action := t.handleKeyEvent(ev)
			if action.Action == ActionNone {
				continue
			}
			select {
			case t.actionCh <- action:
			default:
				// Channel full, drop event
			}
			if action.Action == ActionQuit {
				return nil
			}
		}
	}
}

// handleKeyEvent processes a key event and returns any triggered action.
func (t *TUI) handleKeyEvent(ev KeyEvent) ActionEvent {
	t.mu.Lock()
	currentView := t.view
	t.mu.Unlock()

	switch currentView {
	case ViewLinkInput:
		return t.handleInputKey(ev)
	case ViewAlert:
		return t.handleAlertKey(ev)
	}

	t.mu.Lock()
	snap := t.snapshot
	page := t.panelView.BodyHeight(t.height)
	t.mu.Unlock()

	action := ActionEvent{Action: ActionNone}

	switch ParseShortcut(ev) {
	case ShortcutStart:
		if snap.Phase == panel.PhaseRecording {
			return action
		}
		t.ShowLinkInput()

	case ShortcutStop:
		if snap.Phase != panel.PhaseRecording {
			return action
		}
		return ActionEvent{Action: ActionStop}

	case ShortcutUpload:
		// Disabled until a report exists
		if !snap.CanUpload() {
			return action
		}
		return ActionEvent{Action: ActionUpload}

	case ShortcutRefresh:
		return ActionEvent{Action: ActionRefresh}

	case ShortcutSummary:
		t.SetTab(TabSummary)
	case ShortcutActions:
		t.SetTab(TabActions)
	case ShortcutTranscript:
		t.SetTab(TabTranscript)
	case ShortcutNextTab:
		t.SetTab(t.GetTab().Next())
	case ShortcutPrevTab:
		t.SetTab(t.GetTab().Prev())

	case ShortcutScrollUp:
		t.scrollBy(-1)
	case ShortcutScrollDown:
		t.scrollBy(1)
	case ShortcutPageUp:
		t.scrollBy(-page)
	case ShortcutPageDown:
		t.scrollBy(page)

	case ShortcutQuit:
		return ActionEvent{Action: ActionQuit}

	default:
		return action
	}

	t.Update()
	return action
}

func (t *TUI) scrollBy(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	body := TabLines(t.snapshot, t.tab, max(30, t.width)-4)
	t.scroll = ClampScroll(len(body), t.panelView.BodyHeight(t.height), t.scroll+n)
}

// handleInputKey processes a key event in the link prompt.
func (t *TUI) handleInputKey(ev KeyEvent) ActionEvent {
	switch ev.Key {
	case KeyEscape:
		t.mu.Lock()
		t.view = ViewPanel
		t.inputView.Reset()
		t.mu.Unlock()
		t.Update()
		return ActionEvent{Action: ActionNone}

	case KeyCtrlC:
		return ActionEvent{Action: ActionQuit}
	}

	t.mu.Lock()
	done := t.inputView.editor.HandleKey(ev)
	var input string
	if done {
		input = t.inputView.editor.Text()
		t.view = ViewPanel
		t.inputView.Reset()
	}
	t.mu.Unlock()

	t.Update()

	if done {
		return ActionEvent{Action: ActionStart, Input: input}
	}
	return ActionEvent{Action: ActionNone}
}

// handleAlertKey dismisses the alert on any key except Ctrl+C, which quits.
func (t *TUI) handleAlertKey(ev KeyEvent) ActionEvent {
	if ev.Key == KeyCtrlC {
		return ActionEvent{Action: ActionQuit}
	}

	t.mu.Lock()
	t.view = ViewPanel
	t.alert = ""
	t.mu.Unlock()

	t.Update()
	return ActionEvent{Action: ActionNone}
}

// Stop marks the TUI as no longer running; later Updates draw nothing.
func (t *TUI) Stop() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

// IsRunning returns whether the TUI is currently running.
func (t *TUI) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Bell sounds the terminal bell.
func (t *TUI) Bell() {
	t.terminal.RingBell()
}

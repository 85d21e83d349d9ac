package tui

import (
	"fmt"
	"strings"

	"github.com/thruflo/recpanel/internal/panel"
	"github.com/thruflo/recpanel/internal/report"
)

// Title is shown at the top of the panel.
const Title = "🎙️ Meeting Intelligence"

// Tab selects which report section the panel shows.
type Tab int

const (
	TabSummary Tab = iota
	TabActions
	TabTranscript
)

var tabs = []Tab{TabSummary, TabActions, TabTranscript}

// String returns the string representation of the tab.
func (t Tab) String() string {
	switch t {
	case TabSummary:
		return "summary"
	case TabActions:
		return "actions"
	case TabTranscript:
		return "transcript"
	default:
		return "unknown"
	}
}

// Title is the label shown in the tab bar.
func (t Tab) Title() string {
	switch t {
	case TabSummary:
		return "Summary"
	case TabActions:
		return "Action Items"
	case TabTranscript:
		return "Transcript"
	default:
		return "?"
	}
}

// Next returns the tab to the right, wrapping around.
func (t Tab) Next() Tab {
	return tabs[(int(t)+1)%len(tabs)]
}

// Prev returns the tab to the left, wrapping around.
func (t Tab) Prev() Tab {
	return tabs[(int(t)+len(tabs)-1)%len(tabs)]
}

// Layout constants for the panel view.
const (
	headerLines = 5 // title, message, blank, tab bar, separator
	footerLines = 2 // separator, shortcuts
	minBody     = 3
)

// PanelView renders the main panel: status badge, backend message, tab bar
// and the selected report section.
type PanelView struct{}

// BodyHeight returns how many section lines fit in a terminal of height.
func (v *PanelView) BodyHeight(height int) int {
	return max(minBody, height-2-headerLines-footerLines)
}

// Render renders the panel to a slice of strings. scroll is the index of the
// first visible section line and is clamped to the content.
func (v *PanelView) Render(snap panel.Snapshot, tab Tab, scroll, width, height int) []string {
	if width < 30 {
		width = 30
	}
	innerWidth := width - 4
	bodyHeight := v.BodyHeight(height)

	var content []string

	// Title with the phase badge on the right
	badge := FormatPhase(snap.Phase)
	titleWidth := innerWidth - VisualWidth(badge) - 1
	content = append(content, PadOrTruncate(Style(Title, Bold), titleWidth)+" "+badge)

	content = append(content, "status: "+snap.Status.MessageText())
	content = append(content, "")
	content = append(content, renderTabBar(tab))

	body := TabLines(snap, tab, innerWidth)
	scroll = ClampScroll(len(body), bodyHeight, scroll)
	content = append(content, separator(innerWidth, scrollIndicator(scroll, bodyHeight, len(body))))

	for i := scroll; i < scroll+bodyHeight; i++ {
		if i < len(body) {
			content = append(content, body[i])
		} else {
			content = append(content, "")
		}
	}

	content = append(content, separator(innerWidth, ""))
	content = append(content, shortcutHints(snap))

	return BoxWithContent(width, content)
}

// TabLines returns the wrapped lines of the section shown on tab.
func TabLines(snap panel.Snapshot, tab Tab, width int) []string {
	switch tab {
	case TabActions:
		return actionLines(snap.Sections.ActionItems, width)
	case TabTranscript:
		return WrapLines(snap.Sections.Transcript, width)
	default:
		return WrapLines(snap.Sections.Summary, width)
	}
}

func actionLines(actions string, width int) []string {
	if report.NoExplicitActions(actions) {
		return []string{report.EmptyActionItems}
	}

	var lines []string
	for _, item := range report.ActionItemList(actions) {
		wrapped := WrapText(item, width-2)
		for i, w := range wrapped {
			if i == 0 {
				lines = append(lines, "• "+w)
			} else {
				lines = append(lines, "  "+w)
			}
		}
	}
	return lines
}

// ClampScroll bounds scroll so the last page is never past the content.
func ClampScroll(total, visible, scroll int) int {
	maxScroll := max(0, total-visible)
	if scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}
	return scroll
}

func renderTabBar(active Tab) string {
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf(" %d %s ", i+1, t.Title())
		if t == active {
			label = Style(label, Reverse, Bold)
		} else {
			label = Style(label, Dim)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, BoxVertical)
}

func separator(width int, label string) string {
	if label == "" {
		return Style(strings.Repeat(BoxHorizontal, width), Dim)
	}
	label = " " + label + " "
	return Style(strings.Repeat(BoxHorizontal, max(0, width-len(label)-2))+label+BoxHorizontal+BoxHorizontal, Dim)
}

func scrollIndicator(scroll, visible, total int) string {
	if total <= visible {
		return ""
	}
	return fmt.Sprintf("%d-%d/%d", scroll+1, min(scroll+visible, total), total)
}

func shortcutHints(snap panel.Snapshot) string {
	var hints []string
	if snap.Phase == panel.PhaseRecording {
		hints = append(hints, "[x]stop")
	} else {
		hints = append(hints, "[s]tart")
	}

	upload := "[u]pload"
	if !snap.CanUpload() {
		upload = Style(upload, FgBrightBlack)
	}
	hints = append(hints, upload)
	hints = append(hints, "[1-3]tabs", "[↑↓]scroll", "[r]efresh", "[q]uit")

	return Style(strings.Join(hints, " "), Dim)
}

// LinkInputView prompts for an optional meeting link before starting.
type LinkInputView struct {
	editor *LineEditor
}

// NewLinkInputView creates a LinkInputView with the given terminal for cursor control.
func NewLinkInputView(t *Terminal) *LinkInputView {
	return &LinkInputView{
		editor: NewLineEditor(t),
	}
}

// Editor returns the line editor for handling key events.
func (v *LinkInputView) Editor() *LineEditor {
	return v.editor
}

// Reset clears the input buffer.
func (v *LinkInputView) Reset() {
	v.editor.Clear()
}

// Render renders the prompt and the input field.
func (v *LinkInputView) Render(width int) []string {
	if width < 20 {
		width = 20
	}

	innerWidth := width - 4

	var content []string

	content = append(content, Style("Start Recording", Bold, FgYellow))
	content = append(content, "")
	content = append(content, WrapText("Paste Zoom/Meet link here (optional). It opens in your browser before recording starts.", innerWidth)...)
	content = append(content, "")

	inputText := v.editor.Text()
	cursor := v.editor.Cursor()

	prompt := "> "
	maxInput := innerWidth - len(prompt)

	runes := []rune(inputText)
	displayText := inputText
	cursorPos := cursor
	if len(runes) > maxInput {
		// Scroll the input to keep cursor visible
		start := 0
		if cursor > maxInput-3 {
			start = cursor - maxInput + 3
		}
		end := min(start+maxInput, len(runes))
		displayText = string(runes[start:end])
		cursorPos = cursor - start
	}

	content = append(content, prompt+displayText)
	content = append(content, Style(strings.Repeat(" ", len(prompt)+cursorPos)+"^", FgCyan))

	content = append(content, "")
	submit := "Enter: Start Recording"
	if strings.TrimSpace(inputText) != "" {
		submit = "Enter: Launch & Record"
	}
	content = append(content, Style(submit+", Esc: cancel", Dim))

	return BoxWithContent(width, content)
}

// AlertView shows a message the operator must acknowledge.
type AlertView struct{}

// Render renders message in a box with a dismiss hint.
func (v *AlertView) Render(message string, width int) []string {
	if width < 20 {
		width = 20
	}

	var content []string
	content = append(content, Style("Notice", Bold, FgYellow))
	content = append(content, "")
	content = append(content, WrapLines(message, width-4)...)
	content = append(content, "")
	content = append(content, Style("Press any key to continue", Dim))

	return BoxWithContent(width, content)
}

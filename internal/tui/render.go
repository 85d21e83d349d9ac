package tui

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thruflo/recpanel/internal/panel"
)

// Box drawing characters (Unicode)
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
)

// Box draws a box with the given dimensions.
// Returns a slice of strings, one per line.
func Box(width, height int) []string {
	if width < 2 || height < 2 {
		return nil
	}

	lines := make([]string, height)

	// Top border
	lines[0] = BoxTopLeft + strings.Repeat(BoxHorizontal, width-2) + BoxTopRight

	// Middle rows
	middle := BoxVertical + strings.Repeat(" ", width-2) + BoxVertical
	for i := 1; i < height-1; i++ {
		lines[i] = middle
	}

	// Bottom border
	lines[height-1] = BoxBottomLeft + strings.Repeat(BoxHorizontal, width-2) + BoxBottomRight

	return lines
}

// BoxWithContent draws a box containing the given content lines.
// Each line is padded/truncated to fit within the box.
func BoxWithContent(width int, content []string) []string {
	if width < 4 {
		return nil
	}

	innerWidth := width - 4 // Account for borders and padding
	height := len(content) + 2

	lines := make([]string, height)

	// Top border
	lines[0] = BoxTopLeft + strings.Repeat(BoxHorizontal, width-2) + BoxTopRight

	// Content rows
	for i, line := range content {
		lines[i+1] = BoxVertical + " " + PadOrTruncate(line, innerWidth) + " " + BoxVertical
	}

	// Bottom border
	lines[height-1] = BoxBottomLeft + strings.Repeat(BoxHorizontal, width-2) + BoxBottomRight

	return lines
}

// PadOrTruncate pads or truncates a string to exactly width visible
// characters. ANSI style codes do not count towards the width and survive
// truncation.
func PadOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	visible := VisualWidth(s)

	if visible == width {
		return s
	}

	if visible < width {
		return s + strings.Repeat(" ", width-visible)
	}

	if width >= 3 {
		return truncateVisible(s, width-3) + "..."
	}
	return truncateVisible(s, width)
}

// truncateVisible keeps the first n visible runes of s along with any style
// codes among them, and closes an open style with Reset.
func truncateVisible(s string, n int) string {
	var b strings.Builder
	styled := false
	count := 0

	for i := 0; i < len(s) && count < n; {
		if loc := ansiPattern.FindStringIndex(s[i:]); loc != nil && loc[0] == 0 {
			b.WriteString(s[i : i+loc[1]])
			styled = true
			i += loc[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteRune(r)
		count++
		i += size
	}

	out := b.String()
	if styled && !strings.HasSuffix(out, Reset) {
		out += Reset
	}
	return out
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// StripAnsi removes ANSI escape sequences from s.
func StripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// VisualWidth returns the number of visible runes in s.
func VisualWidth(s string) int {
	return utf8.RuneCountInString(StripAnsi(s))
}

// Truncate truncates a string to max width, adding ellipsis if needed.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	if width >= 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:width])
}

// WrapText wraps text to fit within the given width.
// Returns a slice of lines.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	words := strings.Fields(text)

	if len(words) == 0 {
		return lines
	}

	currentLine := words[0]

	for _, word := range words[1:] {
		if utf8.RuneCountInString(currentLine)+1+utf8.RuneCountInString(word) <= width {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

// WrapLines wraps multi-line text line by line, keeping blank lines so
// paragraph breaks survive.
func WrapLines(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, WrapText(para, width)...)
	}
	return lines
}

// CenterText centers text within the given width.
func CenterText(s string, width int) string {
	runeLen := utf8.RuneCountInString(s)
	if runeLen >= width {
		return PadOrTruncate(s, width)
	}

	leftPad := (width - runeLen) / 2
	rightPad := width - runeLen - leftPad

	return strings.Repeat(" ", leftPad) + s + strings.Repeat(" ", rightPad)
}

// RightAlign right-aligns text within the given width.
func RightAlign(s string, width int) string {
	runeLen := utf8.RuneCountInString(s)
	if runeLen >= width {
		return PadOrTruncate(s, width)
	}

	return strings.Repeat(" ", width-runeLen) + s
}

// Style applies ANSI style codes to text.
func Style(s string, codes ...string) string {
	if len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + Reset
}

// PhaseColor returns the color code for a phase badge.
func PhaseColor(p panel.Phase) string {
	switch p {
	case panel.PhaseRecording:
		return FgRed
	case panel.PhaseProcessing:
		return FgYellow
	default:
		return FgBrightBlack
	}
}

// FormatPhase renders the phase badge with its color.
func FormatPhase(p panel.Phase) string {
	return Style(p.Label(), PhaseColor(p), Bold)
}

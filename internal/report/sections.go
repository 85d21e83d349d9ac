// Package report splits the backend's meeting report into the sections the
// panel shows on separate tabs.
//
// The backend emits one markdown document per recording. Sections are found
// by plain substring search for fixed heading markers rather than by parsing
// markdown: the first occurrence of each marker bounds its section, matching
// is case-sensitive, and any decorative glyphs are part of the marker. Missing
// or reordered headings degrade to placeholders or to the unsegmented text;
// sectioning never fails.
package report

import "strings"

// Placeholders used when the report is empty.
const (
	EmptySummary     = "No summary available yet."
	EmptyActionItems = "No action items detected."
	EmptyTranscript  = "Waiting for recording..."
)

// Placeholders used when a report exists but a section is blank.
const (
	PendingSummary     = "Generating summary..."
	PendingActionItems = "Scanning for tasks..."
)

// noExplicitActions is the notice the backend writes into the action section
// when its extractor found nothing.
const noExplicitActions = "No explicit"

// Markers are the heading substrings that delimit report sections.
type Markers struct {
	// Summary opens the summary section.
	Summary string
	// ActionItemsStrict opens the action section in the current backend template.
	ActionItemsStrict string
	// ActionItems is the looser action heading. It also closes the summary.
	ActionItems string
	// Transcript opens the transcript and closes the action section.
	Transcript string
}

// PlainMarkers are headings without decoration.
var PlainMarkers = Markers{
	Summary:           "## Executive Summary",
	ActionItemsStrict: "## Action Items & Key Tasks",
	ActionItems:       "## Action Items",
	Transcript:        "## Full Transcript",
}

// DecoratedMarkers match the backend report template, which prefixes each
// heading with an emoji.
var DecoratedMarkers = Markers{
	Summary:           "## 📝 Executive Summary",
	ActionItemsStrict: "## 🚀 Action Items & Key Tasks",
	ActionItems:       "## 🚀 Action Items",
	Transcript:        "## 💬 Full Transcript",
}

// MarkersByName returns the marker set for a config name ("plain" or
// "decorated"). Unknown names select PlainMarkers.
func MarkersByName(name string) Markers {
	if name == "decorated" {
		return DecoratedMarkers
	}
	return PlainMarkers
}

// Sections is the derived view of one report.
type Sections struct {
	Summary     string `json:"summary"`
	ActionItems string `json:"action_items"`
	Transcript  string `json:"transcript"`
}

// Empty returns the sections shown before any report exists.
func Empty() Sections {
	return Sections{
		Summary:     EmptySummary,
		ActionItems: EmptyActionItems,
		Transcript:  EmptyTranscript,
	}
}

// Sectionize splits text using PlainMarkers.
func Sectionize(text string) Sections {
	return PlainMarkers.Sectionize(text)
}

// Sectionize splits text into summary, action items and transcript.
func (m Markers) Sectionize(text string) Sections {
	if text == "" {
		return Empty()
	}

	summary := between(text, m.Summary, m.ActionItems)

	actions, ok := betweenFound(text, m.ActionItemsStrict, m.Transcript)
	if !ok {
		actions = between(text, m.ActionItems, m.Transcript)
	}

	transcript, ok := after(text, m.Transcript)
	if !ok {
		transcript = text
	}

	s := Sections{
		Summary:     strings.TrimSpace(summary),
		ActionItems: strings.TrimSpace(actions),
		Transcript:  strings.TrimSpace(transcript),
	}
	if s.Summary == "" {
		s.Summary = PendingSummary
	}
	if s.ActionItems == "" {
		s.ActionItems = PendingActionItems
	}
	if s.Transcript == "" {
		s.Transcript = text
	}
	return s
}

// after returns the text following the first occurrence of marker.
func after(text, marker string) (string, bool) {
	i := strings.Index(text, marker)
	if i < 0 {
		return "", false
	}
	return text[i+len(marker):], true
}

// betweenFound returns the text after start up to the first following end
// marker, or to the end of text when end does not follow. ok is false when
// start is absent.
func betweenFound(text, start, end string) (string, bool) {
	rest, ok := after(text, start)
	if !ok {
		return "", false
	}
	if j := strings.Index(rest, end); j >= 0 {
		rest = rest[:j]
	}
	return rest, true
}

func between(text, start, end string) string {
	s, _ := betweenFound(text, start, end)
	return s
}

// ActionItemList turns the action section into list entries: one per
// non-blank line, with a single leading "- " removed.
func ActionItemList(actionItems string) []string {
	var items []string
	for _, line := range strings.Split(actionItems, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, strings.TrimPrefix(line, "- "))
	}
	return items
}

// NoExplicitActions reports whether the backend said it found no action items.
func NoExplicitActions(actionItems string) bool {
	return strings.Contains(actionItems, noExplicitActions)
}

package testutil

import "github.com/thruflo/recpanel/internal/backend"

// SampleReportPlain is a report whose headings carry no decoration.
const SampleReportPlain = `# Meeting Intelligence Report

## Executive Summary
The team reviewed the Q3 roadmap and agreed to cut the reporting feature.

## Action Items & Key Tasks
- Dana will update the roadmap doc.
- Eli will tell the customer about the cut.

## Full Transcript
[00:00:02] Dana: Let's start with the roadmap.
[00:00:09] Eli: I think reporting has to go.
`

// SampleReportDecorated is the same report in the service's own template.
var SampleReportDecorated = backend.RenderReport(
	"The team reviewed the Q3 roadmap and agreed to cut the reporting feature.",
	"- Dana will update the roadmap doc.\n- Eli will tell the customer about the cut.",
	"[00:00:02] Dana: Let's start with the roadmap.\n[00:00:09] Eli: I think reporting has to go.",
)

// SampleSummary is the summary section of both sample reports.
const SampleSummary = "The team reviewed the Q3 roadmap and agreed to cut the reporting feature."

// SampleActionItems is the action section of both sample reports, as list entries.
func SampleActionItems() []string {
	return []string{
		"Dana will update the roadmap doc.",
		"Eli will tell the customer about the cut.",
	}
}

// StatusIdle returns a fully populated idle status with no report.
func StatusIdle() backend.RemoteStatus {
	return backend.InitialStatus()
}

// StatusRecording returns a fully populated recording status.
func StatusRecording() backend.RemoteStatus {
	return backend.RemoteStatus{
		IsRecording:    backend.Bool(true),
		IsProcessing:   backend.Bool(false),
		Message:        backend.String(backend.MessageRecording),
		LastTranscript: backend.String(""),
	}
}

// StatusProcessing returns a fully populated processing status.
func StatusProcessing() backend.RemoteStatus {
	return backend.RemoteStatus{
		IsRecording:    backend.Bool(false),
		IsProcessing:   backend.Bool(true),
		Message:        backend.String(backend.MessageSaved),
		LastTranscript: backend.String(""),
	}
}

// StatusWithReport returns an idle status carrying text as its report.
func StatusWithReport(text string) backend.RemoteStatus {
	return backend.RemoteStatus{
		IsRecording:    backend.Bool(false),
		IsProcessing:   backend.Bool(false),
		Message:        backend.String(backend.MessageComplete),
		LastTranscript: backend.String(text),
	}
}

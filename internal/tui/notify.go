package tui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Notifier tells the operator about events that happen while they are not
// looking at the panel. In the foreground it rings the terminal bell;
// otherwise it uses OS-native notifications.
type Notifier struct {
	out io.Writer
	// notifyOS is replaced in tests.
	notifyOS func(title, message string) error
}

// NewNotifier creates a Notifier that writes bell to the given output.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out, notifyOS: notifyNative}
}

// Bell writes the terminal bell character to output.
func (n *Notifier) Bell() {
	fmt.Fprint(n.out, Bell)
}

// NotifyOS sends an OS-native notification. It is a no-op on platforms other
// than macOS.
func (n *Notifier) NotifyOS(title, message string) error {
	return n.notifyOS(title, message)
}

// NotifyAttention rings the bell when isForeground, otherwise sends an OS
// notification.
func (n *Notifier) NotifyAttention(title, message string, isForeground bool) error {
	if isForeground {
		n.Bell()
		return nil
	}
	return n.NotifyOS(title, message)
}

func notifyNative(title, message string) error {
	if runtime.GOOS != "darwin" {
		return nil
	}
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// NotificationReason represents why a notification is being sent.
type NotificationReason int

const (
	NotifyReasonReportReady NotificationReason = iota
	NotifyReasonRecordingStarted
	NotifyReasonProcessing
)

// String returns a human-readable title for the notification reason.
func (r NotificationReason) String() string {
	switch r {
	case NotifyReasonReportReady:
		return "Report Ready"
	case NotifyReasonRecordingStarted:
		return "Recording"
	case NotifyReasonProcessing:
		return "Processing"
	default:
		return "recpanel"
	}
}

// DefaultMessage returns a default notification message for the reason.
// message is the latest backend status message, if any.
func (r NotificationReason) DefaultMessage(message string) string {
	switch r {
	case NotifyReasonReportReady:
		if message != "" {
			return "Meeting report is ready. " + message
		}
		return "Meeting report is ready."
	case NotifyReasonRecordingStarted:
		return "Recording in progress."
	case NotifyReasonProcessing:
		return "Recording stopped, transcription started."
	default:
		return message
	}
}

// NotifyForReason sends a notification for the given reason.
func (n *Notifier) NotifyForReason(reason NotificationReason, message string, isForeground bool) error {
	return n.NotifyAttention("recpanel: "+reason.String(), reason.DefaultMessage(message), isForeground)
}

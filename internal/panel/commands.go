package panel

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/logging"
)

// ErrUploadFailed is returned for any upload failure. The cause is logged.
var ErrUploadFailed = errors.New("Upload failed")

// InvalidInputError is returned when a meeting link is not a URL.
type InvalidInputError struct {
	Value string
}

func (e *InvalidInputError) Error() string {
	return "Please enter a valid URL (https://...)"
}

// CommandRejectedError is returned when the backend refuses or cannot be
// reached for a start or stop command.
type CommandRejectedError struct {
	Command string // "start" or "stop"
	Detail  string // backend detail, or the transport error text
	Err     error
}

func (e *CommandRejectedError) Error() string {
	return "failed to " + e.Command + ": " + e.Detail
}

func (e *CommandRejectedError) Unwrap() error {
	return e.Err
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}

// IsCommandRejected reports whether err is a CommandRejectedError.
func IsCommandRejected(err error) bool {
	var e *CommandRejectedError
	return errors.As(err, &e)
}

// Commander sends commands to the recording service. *backend.Client
// implements it.
type Commander interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	UploadLast(ctx context.Context) (*backend.UploadResult, error)
}

// Controller issues operator commands. It never touches the Store; the effect
// of a command shows up on the next poll.
type Controller struct {
	commander Commander
	opener    URLOpener
	logger    *logging.Logger
}

// NewController creates a Controller. A nil opener ignores meeting links and
// a nil logger uses the package default.
func NewController(commander Commander, opener URLOpener, logger *logging.Logger) *Controller {
	if opener == nil {
		opener = NopOpener()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		commander: commander,
		opener:    opener,
		logger:    logger.With("component", "commands"),
	}
}

// ValidateMeetingURL checks a meeting link. Empty is allowed.
func ValidateMeetingURL(meetingURL string) error {
	if meetingURL != "" && !strings.HasPrefix(meetingURL, "http") {
		return &InvalidInputError{Value: meetingURL}
	}
	return nil
}

// StartRecording opens meetingURL, when given, and asks the service to start
// recording. An invalid link fails before anything else happens.
func (c *Controller) StartRecording(ctx context.Context, meetingURL string) error {
	if err := ValidateMeetingURL(meetingURL); err != nil {
		return err
	}

	if meetingURL != "" {
		if err := c.opener.OpenURL(meetingURL); err != nil {
			c.logger.Warn("failed to open meeting link", "url", meetingURL, "error", err)
		}
	}

	if err := c.commander.Start(ctx); err != nil {
		return c.rejected("start", err)
	}
	c.logger.Info("recording start requested", "meeting_url", meetingURL)
	return nil
}

// StopRecording asks the service to stop recording and process the result.
func (c *Controller) StopRecording(ctx context.Context) error {
	if err := c.commander.Stop(ctx); err != nil {
		return c.rejected("stop", err)
	}
	c.logger.Info("recording stop requested")
	return nil
}

// UploadLast asks the service to upload the last report. The returned text is
// meant for the operator.
func (c *Controller) UploadLast(ctx context.Context) (string, error) {
	result, err := c.commander.UploadLast(ctx)
	if err != nil {
		c.logger.Warn("upload failed", "error", err)
		return "", ErrUploadFailed
	}
	if result.Link != "" {
		return "Uploaded: " + result.Link, nil
	}
	return result.Message, nil
}

func (c *Controller) rejected(command string, err error) error {
	detail, ok := backend.DetailOf(err)
	if !ok {
		detail = err.Error()
	}
	c.logger.Warn("command rejected", "command", command, "detail", detail)
	return &CommandRejectedError{Command: command, Detail: detail, Err: err}
}

// OperatorMessage turns a command error into the sentence shown to the
// operator: the error text with its first letter capitalized.
func OperatorMessage(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

package panel

import (
	"io"

	"github.com/pkg/browser"
)

// URLOpener opens a meeting link for the operator.
type URLOpener interface {
	OpenURL(url string) error
}

// URLOpenerFunc adapts a function to URLOpener.
type URLOpenerFunc func(url string) error

// OpenURL calls f(url).
func (f URLOpenerFunc) OpenURL(url string) error {
	return f(url)
}

// BrowserOpener opens links in the system browser.
func BrowserOpener() URLOpener {
	return URLOpenerFunc(browser.OpenURL)
}

// QuietBrowserOpener opens links in the system browser and discards anything
// the launcher prints, for use while a full-screen UI owns the terminal.
func QuietBrowserOpener() URLOpener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return URLOpenerFunc(browser.OpenURL)
}

// NopOpener ignores links. The browser panel uses it because the page opens
// links itself.
func NopOpener() URLOpener {
	return URLOpenerFunc(func(string) error { return nil })
}

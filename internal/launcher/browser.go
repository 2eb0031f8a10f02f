// Package launcher opens the served page in the user's default browser.
package launcher

import (
	"io"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/logging"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/metrics"
)

func init() {
	// xdg-open and friends chatter on the terminal the server logs to.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Opener opens a URL.
type Opener func(url string) error

// Launcher opens URLs without ever failing its caller.
type Launcher struct {
	open Opener
}

// New returns a Launcher using the OS default browser.
func New() *Launcher {
	return &Launcher{open: browser.OpenURL}
}

// NewWithOpener returns a Launcher using open instead of the OS browser.
func NewWithOpener(open Opener) *Launcher {
	return &Launcher{open: open}
}

// Open opens url in the background. Failures are logged as warnings.
// The returned channel receives the outcome and is then closed.
func (l *Launcher) Open(url string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := l.open(url)
		metrics.RecordBrowserLaunch(err == nil)
		if err != nil {
			logging.Warn("could not open browser automatically",
				zap.String("url", url),
				zap.Error(err))
		} else {
			logging.Debug("browser opened", zap.String("url", url))
		}
		done <- err
	}()
	return done
}

// Package browser opens a URL in the user's default browser.
//
// Opening is fire-and-forget: the browser process is started and reaped in
// the background, and the caller decides whether a failure matters.
package browser

import (
	"errors"
	"fmt"
)

// ErrNoDisplay is returned when no graphical session is detected.
var ErrNoDisplay = errors.New("no display detected")

// Open starts the default browser at url without waiting for it.
func Open(url string) error {
	if !hasDisplay() {
		return ErrNoDisplay
	}
	cmd := command(url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

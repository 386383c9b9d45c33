package tui

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// SystemActions opens links with the OS handler and copies through the
// system clipboard.
type SystemActions struct {
	// goos overrides runtime.GOOS in tests.
	goos string

	// start runs the launcher command. Defaults to (*exec.Cmd).Start.
	start func(*exec.Cmd) error

	// write places text on the clipboard. Defaults to clipboard.WriteAll.
	write func(string) error
}

// NewSystemActions creates link actions for the current platform.
func NewSystemActions() *SystemActions {
	return &SystemActions{
		goos:  runtime.GOOS,
		start: (*exec.Cmd).Start,
		write: clipboard.WriteAll,
	}
}

// Open launches link in the default browser without waiting for it.
func (a *SystemActions) Open(link string) error {
	cmd, err := a.command(link)
	if err != nil {
		return err
	}
	if err := a.start(cmd); err != nil {
		return fmt.Errorf("opening %s: %w", link, err)
	}
	return nil
}

// Copy writes text to the system clipboard.
func (a *SystemActions) Copy(text string) error {
	if err := a.write(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

func (a *SystemActions) command(link string) (*exec.Cmd, error) {
	switch a.goos {
	case "darwin":
		return exec.Command("open", link), nil
	case "linux":
		return exec.Command("xdg-open", link), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", link), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, a.goos)
	}
}

// Package tmux wraps the tmux CLI operations the supervisor needs: capturing
// the rendered pane, sending keystrokes, and spawning the agent session.
// Everything goes through the tmux binary via subprocess; tmux exposes no
// other control surface.
package tmux

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/m4xw311/afk/errors"
)

var (
	// ErrInvalidSessionName is returned before any tmux call when the name
	// contains characters tmux mishandles (dots and colons are target syntax).
	ErrInvalidSessionName = fmt.Errorf("invalid session name")

	// ErrSpawnFailed is returned when new-session did not produce a live
	// session, typically because tmux or the agent binary is not on PATH.
	ErrSpawnFailed = fmt.Errorf("could not spawn session")
)

var validSessionName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Runner executes a command and returns its stdout. Swapped out in tests so
// no real tmux is needed.
type Runner func(name string, args ...string) (string, error)

func execRunner(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errOut.String())
		if msg != "" {
			return "", fmt.Errorf("%s %s: %w (%s)", name, args[0], err, msg)
		}
		return "", fmt.Errorf("%s %s: %w", name, args[0], err)
	}
	return out.String(), nil
}

// Client drives one tmux server through its CLI.
type Client struct {
	run Runner
}

// New returns a Client backed by the real tmux binary.
func New() *Client {
	return &Client{run: execRunner}
}

// NewWithRunner returns a Client with a custom command runner. Used by tests.
func NewWithRunner(run Runner) *Client {
	return &Client{run: run}
}

// ValidateSessionName rejects names tmux would silently misparse.
func ValidateSessionName(name string) error {
	if name == "" || !validSessionName.MatchString(name) {
		return errors.Wrapf(ErrInvalidSessionName, "%q must match %s", name, validSessionName.String())
	}
	return nil
}

// Capture returns the full visible content of the session's active pane.
func (c *Client) Capture(session string) (string, error) {
	out, err := c.run("tmux", "capture-pane", "-p", "-t", session)
	if err != nil {
		return "", errors.Wrapf(err, "could not capture pane of %q", session)
	}
	return out, nil
}

// SendKey sends one named key (e.g. "Down", "C-m") to the session.
func (c *Client) SendKey(session, key string) error {
	_, err := c.run("tmux", "send-keys", "-t", session, key)
	return errors.Wrapf(err, "could not send key %q to %q", key, session)
}

// SendText types a literal string into the session. The -l flag keeps tmux
// from interpreting the text as key names.
func (c *Client) SendText(session, text string) error {
	_, err := c.run("tmux", "send-keys", "-l", "-t", session, text)
	return errors.Wrapf(err, "could not send text to %q", session)
}

// SendCommit submits the session's pending input line.
func (c *Client) SendCommit(session string) error {
	return c.SendKey(session, "C-m")
}

// Exists reports whether a session with the given name is live. tmux signals
// absence through a nonzero exit, so any error means "no".
func (c *Client) Exists(session string) bool {
	_, err := c.run("tmux", "has-session", "-t", session)
	return err == nil
}

// Spawn creates a detached session running command in workdir, then verifies
// the session actually came up. A missing tmux or agent binary surfaces here
// as ErrSpawnFailed; there is no retry.
func (c *Client) Spawn(session, workdir, command string) error {
	if err := ValidateSessionName(session); err != nil {
		return err
	}
	if _, err := c.run("tmux", "new-session", "-d", "-s", session, "-c", workdir, command); err != nil {
		return errors.Wrapf(ErrSpawnFailed, "%q: %v", session, err)
	}
	if !c.Exists(session) {
		return errors.Wrapf(ErrSpawnFailed, "%q: session did not come up; make sure tmux and %q are on PATH", session, command)
	}
	return nil
}

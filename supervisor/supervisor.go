package supervisor

import (
	"context"
	"strings"
	"time"

	"github.com/m4xw311/afk/config"
	"github.com/m4xw311/afk/errors"
)

// Classification is the single discrete outcome of one sampling cycle.
type Classification int

const (
	None Classification = iota
	NeedsApproval
	NeedsInput
	Finished
)

func (c Classification) String() string {
	switch c {
	case None:
		return "none"
	case NeedsApproval:
		return "needs-approval"
	case NeedsInput:
		return "needs-input"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Classify turns a snapshot pair and the completion signal into a
// Classification. Pure: same inputs, same answer.
//
// Priority: Finished beats everything; NeedsApproval requires the marker in
// both snapshots and an unchanged screen; NeedsInput requires only an
// unchanged screen. A changing screen is None.
func Classify(a, b string, finished bool, approvalMarker string) Classification {
	if finished {
		return Finished
	}
	stable := a == b
	if stable && strings.Contains(a, approvalMarker) && strings.Contains(b, approvalMarker) {
		return NeedsApproval
	}
	if stable {
		return NeedsInput
	}
	return None
}

// Transport is the slice of the tmux client the loop consumes.
type Transport interface {
	Capture(session string) (string, error)
	SendKey(session, key string) error
	SendText(session, text string) error
	SendCommit(session string) error
}

// Options are the per-run feature toggles.
type Options struct {
	Autoapprove   bool
	Autocontinue  bool
	CheckFinished bool
}

// Events let the caller observe reactions without the loop printing
// anything itself. Nil callbacks are skipped.
type Events struct {
	OnCycle    func(c Classification)
	OnApproval func()
	OnNudge    func()
	OnFinished func()
}

// Supervisor runs the capture/classify/react cycle against one session.
type Supervisor struct {
	Session   string
	Transport Transport
	Options   Options
	Events    Events

	// FinishedCheck probes the completion signal. Only consulted when
	// Options.CheckFinished is set.
	FinishedCheck func() (bool, error)

	quiescence     time.Duration
	approvalMarker string
	approvalKeys   []string
	nudgeMessage   string
}

// New wires a Supervisor from the effective configuration.
func New(t Transport, sessionName string, cfg *config.Config, opts Options) *Supervisor {
	return &Supervisor{
		Session:        sessionName,
		Transport:      t,
		Options:        opts,
		quiescence:     time.Duration(cfg.Quiescence),
		approvalMarker: cfg.ApprovalMarker,
		approvalKeys:   cfg.ApprovalKeys,
		nudgeMessage:   cfg.NudgeMessage,
	}
}

// Run cycles until the work is finished or the session becomes unreachable.
// A capture failure is fatal: classifying empty output as a stable screen
// would nudge a dead session forever.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		a, err := s.Transport.Capture(s.Session)
		if err != nil {
			return errors.Wrapf(err, "lost session %q", s.Session)
		}
		if err := sleep(ctx, s.quiescence); err != nil {
			return err
		}
		b, err := s.Transport.Capture(s.Session)
		if err != nil {
			return errors.Wrapf(err, "lost session %q", s.Session)
		}

		finished := false
		if s.Options.CheckFinished {
			finished, err = s.FinishedCheck()
			if err != nil {
				return err
			}
		}

		c := Classify(a, b, finished, s.approvalMarker)
		if s.Events.OnCycle != nil {
			s.Events.OnCycle(c)
		}
		stop, err := s.react(c)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// react performs at most one action for the cycle's classification and
// reports whether the loop should stop.
func (s *Supervisor) react(c Classification) (bool, error) {
	switch c {
	case Finished:
		if s.Events.OnFinished != nil {
			s.Events.OnFinished()
		}
		return true, nil

	case NeedsApproval:
		if !s.Options.Autoapprove {
			// An unapproved prompt is still a stable screen; with
			// autocontinue on it gets the nudge instead.
			if s.Options.Autocontinue {
				return false, s.nudge()
			}
			return false, nil
		}
		for _, key := range s.approvalKeys {
			if err := s.Transport.SendKey(s.Session, key); err != nil {
				return false, errors.Wrapf(err, "could not approve in %q", s.Session)
			}
		}
		if err := s.Transport.SendCommit(s.Session); err != nil {
			return false, errors.Wrapf(err, "could not approve in %q", s.Session)
		}
		if s.Events.OnApproval != nil {
			s.Events.OnApproval()
		}
		return false, nil

	case NeedsInput:
		if !s.Options.Autocontinue {
			return false, nil
		}
		return false, s.nudge()
	}
	return false, nil
}

func (s *Supervisor) nudge() error {
	if err := s.Transport.SendText(s.Session, s.nudgeMessage); err != nil {
		return errors.Wrapf(err, "could not nudge %q", s.Session)
	}
	if err := s.Transport.SendCommit(s.Session); err != nil {
		return errors.Wrapf(err, "could not nudge %q", s.Session)
	}
	if s.Events.OnNudge != nil {
		s.Events.OnNudge()
	}
	return nil
}

// sleep blocks for the quiescence window, waking early on cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

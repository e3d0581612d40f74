package supervisor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m4xw311/afk/config"
)

const marker = "No, and tell Claude what to do differently (esc)"

func TestClassifyFinishedWinsRegardlessOfContent(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", "b"},
		{marker, marker},
	}
	for _, p := range pairs {
		if got := Classify(p[0], p[1], true, marker); got != Finished {
			t.Errorf("Classify(%q, %q, finished) = %v, want Finished", p[0], p[1], got)
		}
	}
}

func TestClassifyNeedsApproval(t *testing.T) {
	screen := "1. Approve\n2. " + marker
	if got := Classify(screen, screen, false, marker); got != NeedsApproval {
		t.Errorf("stable screen with marker = %v, want NeedsApproval", got)
	}
	// Marker present but the screen still changing: mid-repaint, no action.
	if got := Classify(screen, screen+" ", false, marker); got != None {
		t.Errorf("changing screen with marker = %v, want None", got)
	}
}

func TestClassifyNeedsInput(t *testing.T) {
	if got := Classify("$ ", "$ ", false, marker); got != NeedsInput {
		t.Errorf("stable idle screen = %v, want NeedsInput", got)
	}
}

func TestClassifyNone(t *testing.T) {
	if got := Classify("Running tests...", "Running tests... done", false, marker); got != None {
		t.Errorf("changing screen = %v, want None", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Classify("$ ", "$ ", false, marker); got != NeedsInput {
			t.Fatalf("call %d: Classify = %v, want NeedsInput", i, got)
		}
	}
}

// fakeTransport scripts successive captures and records every send.
type fakeTransport struct {
	captures   []string
	captureIdx int
	captureErr map[int]error // by capture index
	actions    []string
	sendErr    error
}

func (f *fakeTransport) Capture(session string) (string, error) {
	i := f.captureIdx
	f.captureIdx++
	if err := f.captureErr[i]; err != nil {
		return "", err
	}
	if i < len(f.captures) {
		return f.captures[i], nil
	}
	return "", fmt.Errorf("unscripted capture %d", i)
}

func (f *fakeTransport) SendKey(session, key string) error {
	f.actions = append(f.actions, "key:"+key)
	return f.sendErr
}

func (f *fakeTransport) SendText(session, text string) error {
	f.actions = append(f.actions, "text:"+text)
	return f.sendErr
}

func (f *fakeTransport) SendCommit(session string) error {
	f.actions = append(f.actions, "commit")
	return f.sendErr
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Quiescence = config.Duration(time.Millisecond)
	return cfg
}

// finishedAfter reports unfinished for n probes, then finished.
func finishedAfter(n int) func() (bool, error) {
	probes := 0
	return func() (bool, error) {
		probes++
		return probes > n, nil
	}
}

func TestRunExitsCleanOnFinished(t *testing.T) {
	ft := &fakeTransport{captures: []string{"anything", "anything"}}
	finished := false

	s := New(ft, "work", testConfig(), Options{CheckFinished: true})
	s.FinishedCheck = func() (bool, error) { return true, nil }
	s.Events.OnFinished = func() { finished = true }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !finished {
		t.Error("OnFinished not fired")
	}
	if len(ft.actions) != 0 {
		t.Errorf("keys sent on finish: %v", ft.actions)
	}
}

func TestRunApprovesThenFinishes(t *testing.T) {
	screen := "1. Approve\n2. " + marker
	ft := &fakeTransport{captures: []string{screen, screen, "done", "done"}}
	approvals := 0

	s := New(ft, "work", testConfig(), Options{Autoapprove: true, CheckFinished: true})
	s.FinishedCheck = finishedAfter(1)
	s.Events.OnApproval = func() { approvals++ }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "key:Down commit"
	if got := strings.Join(ft.actions, " "); got != want {
		t.Errorf("actions = %q, want %q", got, want)
	}
	if approvals != 1 {
		t.Errorf("approvals = %d, want 1", approvals)
	}
}

func TestRunNudgesIdleScreen(t *testing.T) {
	ft := &fakeTransport{captures: []string{"$ ", "$ ", "x", "x"}}
	nudges := 0

	cfg := testConfig()
	s := New(ft, "work", cfg, Options{Autocontinue: true, CheckFinished: true})
	s.FinishedCheck = finishedAfter(1)
	s.Events.OnNudge = func() { nudges++ }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "text:" + cfg.NudgeMessage + " commit"
	if got := strings.Join(ft.actions, " "); got != want {
		t.Errorf("actions = %q, want %q", got, want)
	}
	if nudges != 1 {
		t.Errorf("nudges = %d, want 1", nudges)
	}
}

func TestRunChangingScreenTakesNoAction(t *testing.T) {
	ft := &fakeTransport{captures: []string{"Running...", "Running... done", "a", "a"}}
	var seen []Classification

	s := New(ft, "work", testConfig(), Options{Autoapprove: true, Autocontinue: false, CheckFinished: true})
	s.FinishedCheck = finishedAfter(1)
	s.Events.OnCycle = func(c Classification) { seen = append(seen, c) }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.actions) != 0 {
		t.Errorf("actions on changing screen: %v", ft.actions)
	}
	if len(seen) != 2 || seen[0] != None || seen[1] != Finished {
		t.Errorf("cycle classifications = %v, want [none finished]", seen)
	}
}

func TestRunCaptureFailureIsFatal(t *testing.T) {
	ft := &fakeTransport{
		captures:   []string{"a"},
		captureErr: map[int]error{1: fmt.Errorf("no server running")},
	}
	s := New(ft, "work", testConfig(), Options{})
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error when the session vanishes mid-cycle")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ft := &fakeTransport{captures: []string{"$ ", "$ ", "$ ", "$ "}}
	cfg := testConfig()
	cfg.Quiescence = config.Duration(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	s := New(ft, "work", cfg, Options{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestReactGating(t *testing.T) {
	screen := "2. " + marker
	cfg := testConfig()

	t.Run("approval disabled, continue disabled", func(t *testing.T) {
		ft := &fakeTransport{}
		s := New(ft, "work", cfg, Options{})
		if _, err := s.react(Classify(screen, screen, false, marker)); err != nil {
			t.Fatal(err)
		}
		if len(ft.actions) != 0 {
			t.Errorf("actions = %v, want none", ft.actions)
		}
	})

	t.Run("approval disabled, continue enabled falls through to nudge", func(t *testing.T) {
		ft := &fakeTransport{}
		s := New(ft, "work", cfg, Options{Autocontinue: true})
		if _, err := s.react(Classify(screen, screen, false, marker)); err != nil {
			t.Fatal(err)
		}
		want := "text:" + cfg.NudgeMessage + " commit"
		if got := strings.Join(ft.actions, " "); got != want {
			t.Errorf("actions = %q, want %q", got, want)
		}
	})

	t.Run("input disabled", func(t *testing.T) {
		ft := &fakeTransport{}
		s := New(ft, "work", cfg, Options{Autoapprove: true})
		if _, err := s.react(NeedsInput); err != nil {
			t.Fatal(err)
		}
		if len(ft.actions) != 0 {
			t.Errorf("actions = %v, want none", ft.actions)
		}
	})
}

func TestReactSendFailure(t *testing.T) {
	ft := &fakeTransport{sendErr: fmt.Errorf("pane gone")}
	s := New(ft, "work", testConfig(), Options{Autoapprove: true})
	if _, err := s.react(NeedsApproval); err == nil {
		t.Error("expected error when send-keys fails")
	}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/m4xw311/afk/config"
	"github.com/m4xw311/afk/errors"
	"github.com/m4xw311/afk/session"
	"github.com/m4xw311/afk/supervisor"
	"github.com/m4xw311/afk/tmux"
	"github.com/m4xw311/afk/workspace"
)

const defaultSessionName = "vibecoding"

type runOptions struct {
	session       string
	workdir       string
	autoapprove   bool
	autocontinue  bool
	checkFinished bool
}

// applyPositional fills session and workdir from bare arguments unless the
// flags already set them.
func (o *runOptions) applyPositional(args []string) {
	if o.session == "" && len(args) > 0 {
		o.session = args[0]
	}
	if o.workdir == "" && len(args) > 1 {
		o.workdir = args[1]
	}
}

// resolveWorkdir defaults the working directory to the session name.
func (o *runOptions) resolveWorkdir() {
	if o.workdir == "" {
		o.workdir = o.session
	}
}

func runInit(workdir string, checkFinished bool) error {
	ws := workspace.New(workdir)
	if err := bootstrap(ws, checkFinished); err != nil {
		return err
	}
	if !ws.HasInstructions() {
		if err := ws.WriteInstructions(workspace.PlaceholderInstructions); err != nil {
			return err
		}
		fmt.Println(infoLine("created " + ws.InstructionsPath()))
	}
	fmt.Println(headline("set up a new afk project: " + workdir))
	fmt.Printf("fill in %s and run 'afk %s'\n", ws.InstructionsPath(), workdir)
	return nil
}

func runSupervision(opts *runOptions) error {
	if opts.session == "" {
		opts.session = promptLine(fmt.Sprintf("(unique) project name: (default: %s): ", defaultSessionName))
		if opts.session == "" {
			opts.session = defaultSessionName
		}
	}
	if err := tmux.ValidateSessionName(opts.session); err != nil {
		return err
	}
	opts.resolveWorkdir()

	cfg, err := config.Load(opts.workdir)
	if err != nil {
		return err
	}

	fmt.Println(infoLine(fmt.Sprintf("session=%s workdir=%s autoapprove=%t autocontinue=%t check_finished=%t",
		opts.session, opts.workdir, opts.autoapprove, opts.autocontinue, opts.checkFinished)))

	ws := workspace.New(opts.workdir)
	if err := bootstrap(ws, opts.checkFinished); err != nil {
		return err
	}
	if !ws.HasInstructions() {
		fmt.Println("what are we vibecoding today?")
		instructions := promptLine("> ")
		if instructions == "" {
			return errors.New("claude needs something to do! exiting...")
		}
		if err := ws.WriteInstructions(instructions); err != nil {
			return err
		}
		fmt.Println(infoLine("saved instructions to " + ws.InstructionsPath()))
	}

	client := tmux.New()
	if !client.Exists(opts.session) {
		fmt.Println(headline(fmt.Sprintf("spawning claude in tmux session %q...", opts.session)))
		if err := client.Spawn(opts.session, opts.workdir, cfg.AgentCommand); err != nil {
			return err
		}
		fmt.Println("claude is clauding...")
		fmt.Printf("(to watch, run \"tmux a -t %s\")\n\n", opts.session)
	}

	rec, err := session.LoadOrNew(opts.workdir, opts.session)
	if err != nil {
		return err
	}
	rec.Autoapprove = opts.autoapprove
	rec.Autocontinue = opts.autocontinue
	rec.CheckFinished = opts.checkFinished
	if err := rec.Save(); err != nil {
		return err
	}

	sup := supervisor.New(client, opts.session, cfg, supervisor.Options{
		Autoapprove:   opts.autoapprove,
		Autocontinue:  opts.autocontinue,
		CheckFinished: opts.checkFinished,
	})
	sup.FinishedCheck = func() (bool, error) {
		return ws.Finished(cfg.CompletionSignals)
	}
	sup.Events = supervisor.Events{
		OnCycle: func(c supervisor.Classification) { rec.Cycles++ },
		OnApproval: func() {
			rec.ApprovalsSent++
			fmt.Println(eventLine("sent approval"))
		},
		OnNudge: func() {
			rec.NudgesSent++
			fmt.Println(eventLine("sent input"))
		},
		OnFinished: func() {
			rec.FinishedAt = time.Now()
			fmt.Println(headline("finished!"))
		},
	}

	runErr := sup.Run(context.Background())
	if err := rec.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	fmt.Println(infoLine(fmt.Sprintf("%d cycles, %d approvals, %d nudges",
		rec.Cycles, rec.ApprovalsSent, rec.NudgesSent)))
	return runErr
}

// bootstrap makes sure the workdir and its sentinel files exist, reporting
// anything it created.
func bootstrap(ws *workspace.Workspace, checkFinished bool) error {
	created, err := ws.EnsureDir()
	if err != nil {
		return err
	}
	if created {
		fmt.Println(infoLine("created project root " + ws.Dir))
	}
	if created, err := ws.EnsurePolicy(); err != nil {
		return err
	} else if created {
		fmt.Println(infoLine("created " + ws.PolicyPath()))
	}
	if checkFinished {
		if created, err := ws.EnsureIncomplete(); err != nil {
			return err
		} else if created {
			fmt.Println(infoLine("created " + ws.IncompletePath()))
		}
	}
	return nil
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:   "afk [session] [workdir]",
		Short: "Supervise a claude tmux session while you are away",
		Long: `afk watches a tmux session running the claude coding agent, approves its
confirmation prompts, nudges it when it stalls, and stops once the agent
deletes INCOMPLETE.md from the working directory.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyPositional(args)
			return runSupervision(opts)
		},
	}
	root.Flags().StringVar(&opts.session, "session", "", "tmux session name")
	root.Flags().StringVar(&opts.workdir, "workdir", "", "working directory (default: session name)")
	root.Flags().BoolVar(&opts.autoapprove, "autoapprove", true, "approve confirmation prompts automatically")
	root.Flags().BoolVar(&opts.autocontinue, "autocontinue", true, "nudge the agent when it sits idle")
	root.Flags().BoolVar(&opts.checkFinished, "check-finished", true, "stop when the completion sentinel disappears")

	root.AddCommand(newInitCmd(), newAutoapproveCmd())
	return root
}

func newInitCmd() *cobra.Command {
	checkFinished := true
	cmd := &cobra.Command{
		Use:   "init <workdir>",
		Short: "Bootstrap a project directory without starting supervision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0], checkFinished)
		},
	}
	cmd.Flags().BoolVar(&checkFinished, "check-finished", true, "create the completion sentinel")
	return cmd
}

func newAutoapproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autoapprove <session>",
		Short: "Only approve prompts in an existing session",
		Long:  "Shorthand for a run with autoapprove on and autocontinue and check-finished off.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSupervision(&runOptions{
				session:     args[0],
				autoapprove: true,
			})
		},
	}
}

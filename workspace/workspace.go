// Package workspace prepares and inspects the directory the agent works in:
// the instructions file, the write-once policy document, and the completion
// sentinel whose deletion signals that the task is done.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m4xw311/afk/errors"
)

const (
	InstructionsFile = "INSTRUCTIONS.md"
	PolicyFile       = "CLAUDE.md"
	IncompleteFile   = "INCOMPLETE.md"
)

// PolicyText is written to CLAUDE.md on first bootstrap. The agent is
// instructed never to modify it; nothing here enforces that.
const PolicyText = `
# CODING AGENT INSTRUCTIONS
## DO NOT MODIFY
IMPORTANT: This instruction file must not be modified. You may edit any other files in the project, including README.md, but this file must remain unchanged.

## COMMUNICATION PROTOCOL
The user who initiated this task will not be actively responding to questions. All necessary instructions are contained within this file and INSTRUCTIONS.md. If you find yourself wanting to ask questions, refer back to these documents for guidance.

## PRIMARY OBJECTIVE
Your primary objective is defined in INSTRUCTIONS.md. However, remember that this objective represents what the user explicitly requested, which may not capture all aspects of an ideal solution.

## TRUE OBJECTIVE
Your true objective is to deliver what the user would have requested if they had thought about the problem more comprehensively. This means:

1. First, complete all explicitly stated requirements in INSTRUCTIONS.md
2. Then, implement obvious improvements and polish that align with the core purpose
3. Fix any clear design oversights in the original requirements
4. Ensure the solution is complete, robust, and user-friendly

## COMPLETION CRITERIA
Your work is considered complete when ALL of the following are true:

1. All explicit requirements specified in INSTRUCTIONS.md are fulfilled
2. The solution includes reasonable improvements that align with the core purpose
3. Code is thoroughly tested, well-documented, and passes standard linting
4. Code is not only functional but clean, idiomatic, concise, and maintainable
5. Project structure is logical, with clear entry points and documentation

When all criteria are met, you may remove the INCOMPLETE.md file from the project root to signal completion.

## DEVELOPMENT STANDARDS
When writing code, adhere to these principles:

1. Prioritize simplicity and readability over clever solutions
2. Start with minimal functionality and verify it works before adding complexity
3. Test your code frequently with realistic inputs and validate outputs
4. Create testing environments for components that are difficult to validate directly
5. Use functional and stateless approaches where they improve clarity
6. Keep core logic clean and push implementation details to the edges
7. Maintain consistent style (indentation, naming, patterns) throughout the codebase
8. Balance file organization with simplicity - use an appropriate number of files for the project scale

## PROJECT COMPLETION
You may delete INCOMPLETE.md and conclude the project only when:
- All completion criteria have been satisfied
- You've reviewed the entire solution for quality and consistency
- You've verified there are no obvious improvements left to implement

Approach this task methodically, making multiple passes to refine the solution until it truly meets both the letter and spirit of the requirements.
`

// IncompleteText is the placeholder content of the completion sentinel. Only
// the file's existence carries meaning.
const IncompleteText = `
# DO NOT REMOVE ME WITHOUT FOLLOWING THE INSTRUCTIONS IN CLAUDE.MD
`

// PlaceholderInstructions is written by init so the user has a file to fill
// in before starting a run.
const PlaceholderInstructions = "put your instructions here"

// Workspace is one agent working directory. The sentinel texts are fields so
// tests and alternative configs can swap them.
type Workspace struct {
	Dir            string
	PolicyText     string
	IncompleteText string
}

// New returns a Workspace with the stock sentinel texts.
func New(dir string) *Workspace {
	return &Workspace{
		Dir:            dir,
		PolicyText:     PolicyText,
		IncompleteText: IncompleteText,
	}
}

func (w *Workspace) InstructionsPath() string { return filepath.Join(w.Dir, InstructionsFile) }
func (w *Workspace) PolicyPath() string       { return filepath.Join(w.Dir, PolicyFile) }
func (w *Workspace) IncompletePath() string   { return filepath.Join(w.Dir, IncompleteFile) }

// EnsureDir creates the working directory if needed. Reports whether it was
// created.
func (w *Workspace) EnsureDir() (bool, error) {
	if _, err := os.Stat(w.Dir); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return false, errors.Wrapf(err, "could not create project root %s", w.Dir)
	}
	return true, nil
}

// EnsurePolicy writes the policy document unless one already exists. An
// existing CLAUDE.md is never touched, whatever its content.
func (w *Workspace) EnsurePolicy() (bool, error) {
	return w.ensureFile(w.PolicyPath(), w.PolicyText)
}

// EnsureIncomplete writes the completion sentinel unless present.
func (w *Workspace) EnsureIncomplete() (bool, error) {
	return w.ensureFile(w.IncompletePath(), w.IncompleteText)
}

// HasInstructions reports whether INSTRUCTIONS.md exists.
func (w *Workspace) HasInstructions() bool {
	_, err := os.Stat(w.InstructionsPath())
	return err == nil
}

// WriteInstructions saves the task description.
func (w *Workspace) WriteInstructions(text string) error {
	err := os.WriteFile(w.InstructionsPath(), []byte(text), 0644)
	return errors.Wrapf(err, "could not write %s", w.InstructionsPath())
}

func (w *Workspace) ensureFile(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, errors.Wrapf(err, "could not create %s", path)
	}
	return true, nil
}

// Finished reports whether the work is done: true when none of the
// completion-signal glob patterns matches an existing file under the
// workdir. The agent signals completion by deleting its sentinel.
func (w *Workspace) Finished(patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(w.Dir, pattern))
		if err != nil {
			return false, errors.Wrapf(err, "bad completion signal pattern %q", pattern)
		}
		if len(matches) > 0 {
			return false, nil
		}
	}
	return true, nil
}

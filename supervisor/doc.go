// Package supervisor contains the sampling loop that watches an agent's tmux
// session and the reactor that answers what it sees.
//
// Each cycle captures the pane twice, separated by a quiescence window, and
// classifies the pair into exactly one of four outcomes:
//
//   - Finished: the completion sentinel is gone; supervision ends.
//   - NeedsApproval: the screen is stable and shows the approval prompt; the
//     approve choice is selected and committed.
//   - NeedsInput: the screen is stable with no approval prompt; a canned
//     nudge is typed in.
//   - None: the screen is still changing; nothing happens this cycle.
//
// Requiring two identical captures is the debounce against reacting to a
// half-painted frame: a repaint in progress can transiently contain the
// approval marker, but it cannot produce two equal snapshots.
//
// Classification is a pure function of the snapshot pair and the completion
// signal, so the loop's behavior is fully table-testable without tmux.
package supervisor

// Package session persists a record of each supervision run under the
// workdir, so re-attaching to a session keeps cumulative reaction counts.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/m4xw311/afk/errors"
)

// Record is the supervision history of one tmux session.
type Record struct {
	Name          string    `json:"name"`
	Workdir       string    `json:"workdir"`
	Autoapprove   bool      `json:"autoapprove"`
	Autocontinue  bool      `json:"autocontinue"`
	CheckFinished bool      `json:"check_finished"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitzero"`
	Cycles        int       `json:"cycles"`
	ApprovalsSent int       `json:"approvals_sent"`
	NudgesSent    int       `json:"nudges_sent"`

	path string
}

// New creates a fresh record for the named session.
func New(workdir, name string) (*Record, error) {
	path, err := recordPath(workdir, name)
	if err != nil {
		return nil, err
	}
	return &Record{
		Name:      name,
		Workdir:   workdir,
		StartedAt: time.Now(),
		path:      path,
	}, nil
}

// Load reads an existing record from disk.
func Load(workdir, name string) (*Record, error) {
	path, err := recordPath(workdir, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read session record %s", path)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "could not parse session record %s", path)
	}
	r.path = path
	return &r, nil
}

// LoadOrNew resumes the record for a session when one exists, otherwise
// starts a fresh one. Resuming keeps the counters but stamps a new start.
func LoadOrNew(workdir, name string) (*Record, error) {
	r, err := Load(workdir, name)
	if err != nil {
		// Missing or unreadable records start fresh; the record is
		// bookkeeping, not state the loop depends on.
		return New(workdir, name)
	}
	r.StartedAt = time.Now()
	r.FinishedAt = time.Time{}
	return r, nil
}

// Save writes the record to disk.
func (r *Record) Save() error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "could not serialize session record")
	}
	return errors.Wrapf(os.WriteFile(r.path, data, 0644), "could not write session record")
}

func recordPath(workdir, name string) (string, error) {
	dir := filepath.Join(workdir, ".afk", "sessions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "could not create session record directory")
	}
	return filepath.Join(dir, name+".json"), nil
}

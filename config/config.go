package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m4xw311/afk/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so intervals can be written as "2s" or "500ms"
// in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds every tunable of the supervision loop. All values have
// defaults matching the stock claude setup, so running without any config
// file is the normal case.
type Config struct {
	// AgentCommand is the program started in a freshly spawned session.
	AgentCommand string `yaml:"agent_command"`

	// Quiescence is the debounce window between the two pane captures of a
	// cycle. It must outlast a full screen repaint.
	Quiescence Duration `yaml:"quiescence"`

	// ApprovalMarker is the literal text claude shows on its confirmation
	// prompt. Matched case-sensitively against the captured pane.
	ApprovalMarker string `yaml:"approval_marker"`

	// ApprovalKeys are the tmux key names sent (before the commit key) to
	// select the approve choice. The stock prompt lists approve second from
	// the top, hence a single Down.
	ApprovalKeys []string `yaml:"approval_keys"`

	// NudgeMessage is typed into the session when the agent sits idle.
	NudgeMessage string `yaml:"nudge_message"`

	// CompletionSignals are glob patterns, relative to the workdir. Work is
	// unfinished while any pattern matches an existing file.
	CompletionSignals []string `yaml:"completion_signals"`
}

// Defaults returns the stock configuration.
func Defaults() *Config {
	return &Config{
		AgentCommand:      "claude",
		Quiescence:        Duration(2 * time.Second),
		ApprovalMarker:    "No, and tell Claude what to do differently (esc)",
		ApprovalKeys:      []string{"Down"},
		NudgeMessage:      "<afk> hi! consult CLAUDE.md and keep going (: </afk>",
		CompletionSignals: []string{"INCOMPLETE.md"},
	}
}

// Load builds the effective configuration: defaults, overlaid by the
// user-level file (~/.afk/config.yaml), overlaid by the project-level file
// (<workdir>/.afk/config.yaml). Missing files are not errors.
func Load(workdir string) (*Config, error) {
	cfg := Defaults()

	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".afk", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			if err := loadFromFile(userPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	if workdir != "" {
		projectPath := filepath.Join(workdir, ".afk", "config.yaml")
		if _, err := os.Stat(projectPath); err == nil {
			if err := loadFromFile(projectPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading project config")
			}
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites only fields present in the YAML, which gives the
	// overlay behavior: project values win over user values win over defaults.
	return yaml.Unmarshal(data, cfg)
}

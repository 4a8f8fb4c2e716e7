// Package config loads the task list and engine tuning from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pablasso/ticksel/internal/task"
	"github.com/pablasso/ticksel/internal/util"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "ticksel.yaml"

// Config is the full input to a run.
type Config struct {
	// Hotkey triggers a run from the terminal UI, in bubbletea key notation.
	Hotkey string `yaml:"hotkey"`
	// PageHotkey is the letter of the Ctrl/Cmd+Shift shortcut installed in
	// the browser by `ticksel watch`.
	PageHotkey string `yaml:"page_hotkey"`
	// NotifyFor is how long the completion notification stays up.
	NotifyFor time.Duration `yaml:"notify_for"`
	Labels    Labels        `yaml:"labels"`
	Timing    Timing        `yaml:"timing"`
	Tasks     []task.Task   `yaml:"tasks"`
}

// Labels are the words the page uses for its sections and categories.
type Labels struct {
	Section       string   `yaml:"section"`
	SectionAbbrev string   `yaml:"section_abbrev"`
	Category      string   `yaml:"category"`
	Exclude       []string `yaml:"exclude"`
	Disclosure    []string `yaml:"disclosure"`
}

// Timing holds settle waits and search bounds.
type Timing struct {
	ActionDelay       time.Duration `yaml:"action_delay"`
	CategorySettle    time.Duration `yaml:"category_settle"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	PollAttempts      int           `yaml:"poll_attempts"`
	ClickDelay        time.Duration `yaml:"click_delay"`
	DecrementDelay    time.Duration `yaml:"decrement_delay"`
	DecrementAttempts int           `yaml:"decrement_attempts"`
	SectionDepth      int           `yaml:"section_depth"`
	AncestorDepth     int           `yaml:"ancestor_depth"`
}

// Default returns the built-in configuration with an empty task list.
func Default() *Config {
	return &Config{
		Hotkey:     "ctrl+s",
		PageHotkey: "s",
		NotifyFor:  4 * time.Second,
		Labels: Labels{
			Section:       "Match",
			SectionAbbrev: "M",
			Category:      "Category",
			Exclude:       []string{"wheelchair", "accessible", "accessibility", "easy access"},
			Disclosure:    []string{"show more", "expand", "details", "more options"},
		},
		Timing: Timing{
			ActionDelay:       500 * time.Millisecond,
			CategorySettle:    250 * time.Millisecond,
			PollInterval:      500 * time.Millisecond,
			PollAttempts:      10,
			ClickDelay:        150 * time.Millisecond,
			DecrementDelay:    100 * time.Millisecond,
			DecrementAttempts: 10,
			SectionDepth:      6,
			AncestorDepth:     5,
		},
	}
}

// Load reads a config file over the defaults, fills missing task IDs and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config not found: %s (run `ticksel init` to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillTaskIDs()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillTaskIDs() {
	for i := range c.Tasks {
		if c.Tasks[i].ID == "" {
			c.Tasks[i].ID = util.GenerateTaskID(i)
		}
	}
}

// Validate reports the first problem that would make a run meaningless.
func (c *Config) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("config has no tasks")
	}
	seen := make(map[string]bool, len(c.Tasks))
	for _, t := range c.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
	}

	if strings.TrimSpace(c.Labels.Section) == "" || strings.TrimSpace(c.Labels.Category) == "" {
		return fmt.Errorf("labels.section and labels.category are required")
	}
	if c.Hotkey == "" {
		return fmt.Errorf("hotkey is required")
	}
	if len([]rune(c.PageHotkey)) != 1 {
		return fmt.Errorf("page_hotkey must be a single character, got %q", c.PageHotkey)
	}

	tm := c.Timing
	if tm.ActionDelay < 0 || tm.CategorySettle < 0 || tm.PollInterval < 0 || tm.ClickDelay < 0 || tm.DecrementDelay < 0 {
		return fmt.Errorf("timing delays must not be negative")
	}
	if tm.PollAttempts < 1 {
		return fmt.Errorf("timing.poll_attempts must be at least 1, got %d", tm.PollAttempts)
	}
	if tm.DecrementAttempts < 0 {
		return fmt.Errorf("timing.decrement_attempts must not be negative, got %d", tm.DecrementAttempts)
	}
	if tm.SectionDepth < 0 || tm.AncestorDepth < 0 {
		return fmt.Errorf("timing depths must not be negative")
	}
	return nil
}

// WriteSample writes the annotated sample config to path. It refuses to
// overwrite an existing file.
func WriteSample(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists", path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(Sample); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

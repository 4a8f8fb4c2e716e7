// Package demo builds a self-contained tournament page and task list so the
// engine can be watched end to end without a browser.
package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/dom/memdom"
	"github.com/pablasso/ticksel/internal/task"
	"github.com/pablasso/ticksel/internal/util"
)

// Scenario controls which tasks the demo runs and how the page behaves.
type Scenario string

const (
	ScenarioSuccess Scenario = "success" // every task can be satisfied
	ScenarioFlaky   Scenario = "flaky"   // one section renders its seats late
	ScenarioFail    Scenario = "fail"    // a missing section and a missing category
)

// ParseScenario validates and normalizes a scenario value.
func ParseScenario(value string) (Scenario, error) {
	switch s := Scenario(strings.ToLower(strings.TrimSpace(value))); s {
	case ScenarioSuccess, ScenarioFlaky, ScenarioFail:
		return s, nil
	default:
		return "", fmt.Errorf("invalid demo scenario %q (valid: success, flaky, fail)", value)
	}
}

// Speed controls how long each settle of the demo page takes.
type Speed string

const (
	SpeedFast   Speed = "fast"   // 50ms per settle
	SpeedNormal Speed = "normal" // 250ms per settle
	SpeedSlow   Speed = "slow"   // 700ms per settle
)

// ParseSpeed validates and normalizes a speed value.
func ParseSpeed(value string) (Speed, error) {
	switch s := Speed(strings.ToLower(strings.TrimSpace(value))); s {
	case SpeedFast, SpeedNormal, SpeedSlow:
		return s, nil
	default:
		return "", fmt.Errorf("invalid demo speed %q (valid: fast, normal, slow)", value)
	}
}

// Pace returns the real delay of one settle. Unknown speeds pace as normal.
func (s Speed) Pace() time.Duration {
	switch s {
	case SpeedFast:
		return 50 * time.Millisecond
	case SpeedSlow:
		return 700 * time.Millisecond
	default:
		return 250 * time.Millisecond
	}
}

// lateSettles is how many settles the flaky scenario's late section needs
// before its seats appear.
const lateSettles = 3

// Demo is a ready-to-run page and configuration.
type Demo struct {
	Scenario Scenario
	Speed    Speed
	Page     *memdom.Page
	Config   *config.Config
}

// New builds the demo page and task list for a scenario.
func New(scenario Scenario, speed Speed) (*Demo, error) {
	tasks, err := Tasks(scenario)
	if err != nil {
		return nil, err
	}

	delays := map[string]int{}
	if scenario == ScenarioFlaky {
		delays["m3-seats"] = lateSettles
	}
	page, err := NewPage(delays, memdom.WithPace(speed.Pace()))
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.Tasks = tasks
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("demo config: %w", err)
	}

	return &Demo{Scenario: scenario, Speed: speed, Page: page, Config: cfg}, nil
}

// Tasks returns the task list a scenario runs.
func Tasks(scenario Scenario) ([]task.Task, error) {
	var specs [][3]int
	switch scenario {
	case ScenarioSuccess, ScenarioFlaky:
		specs = [][3]int{{1, 2, 2}, {2, 1, 3}, {3, 1, 2}, {4, 2, 1}}
	case ScenarioFail:
		specs = [][3]int{{1, 3, 1}, {9, 1, 1}, {4, 5, 2}, {2, 2, 4}}
	default:
		return nil, fmt.Errorf("unknown demo scenario %q", scenario)
	}

	out := make([]task.Task, len(specs))
	for i, s := range specs {
		out[i] = task.Task{ID: util.GenerateTaskID(i), Section: s[0], Category: s[1], Quantity: s[2]}
	}
	return out, nil
}

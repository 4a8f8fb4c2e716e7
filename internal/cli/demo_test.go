package cli

import (
	"strings"
	"testing"
)

func TestRunDemo(t *testing.T) {
	tests := []struct {
		scenario string
		want     string
	}{
		{scenario: "success", want: "Selection complete! 4 selected, 0 failed."},
		{scenario: "fail", want: "Selection complete! 2 selected, 2 failed."},
	}

	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			useFlags(t)
			demoScenario = tt.scenario
			demoSpeed = "fast"
			demoTUI = false
			cmd, out := newTestCommand()

			if err := runDemo(cmd, nil); err != nil {
				t.Fatalf("runDemo failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected %q in output, got:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestRunDemo_InvalidFlags(t *testing.T) {
	tests := []struct {
		name     string
		scenario string
		speed    string
		wantErr  string
	}{
		{name: "scenario", scenario: "mixed", speed: "fast", wantErr: "invalid demo scenario"},
		{name: "speed", scenario: "success", speed: "warp", wantErr: "invalid demo speed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFlags(t)
			demoScenario = tt.scenario
			demoSpeed = tt.speed
			cmd, _ := newTestCommand()

			err := runDemo(cmd, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q error, got %v", tt.wantErr, err)
			}
		})
	}
}

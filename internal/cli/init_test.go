package cli

import (
	"os"
	"strings"
	"testing"

	"github.com/pablasso/ticksel/internal/config"
)

func TestRunInit_WritesSample(t *testing.T) {
	useFlags(t)
	cmd, out := newTestCommand()

	if err := runInit(cmd, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config was not written: %v", err)
	}
	if string(data) != config.Sample {
		t.Error("written config does not match the sample")
	}
	if !strings.Contains(out.String(), "Created "+configPath) {
		t.Errorf("expected creation message, got %q", out.String())
	}
}

func TestRunInit_RefusesToOverwrite(t *testing.T) {
	useFlags(t)
	writeFile(t, configPath, "tasks: []\n")
	cmd, _ := newTestCommand()

	err := runInit(cmd, nil)
	if err == nil {
		t.Fatal("expected an error for an existing config")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(configPath)
	if string(data) != "tasks: []\n" {
		t.Error("existing config was modified")
	}
}

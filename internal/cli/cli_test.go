package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/pablasso/ticksel/internal/testutil"
	"github.com/spf13/cobra"
)

// newTestCommand returns a command whose output is captured in the
// returned buffer.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&buf)
	return cmd, &buf
}

// useFlags points the package flags at a temp dir for the duration of the
// test and returns the dir.
func useFlags(t *testing.T) string {
	t.Helper()
	dir := testutil.SetupTestDir(t)

	oldConfig, oldEvents, oldVerbose := configPath, eventsPath, verbose
	oldRun, oldWatch := runPage, watchPage
	oldScenario, oldSpeed, oldTUI := demoScenario, demoSpeed, demoTUI
	t.Cleanup(func() {
		configPath, eventsPath, verbose = oldConfig, oldEvents, oldVerbose
		runPage, watchPage = oldRun, oldWatch
		demoScenario, demoSpeed, demoTUI = oldScenario, oldSpeed, oldTUI
	})

	configPath = filepath.Join(dir, "ticksel.yaml")
	eventsPath = ""
	runPage = PageFlags{}
	watchPage = PageFlags{}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	testutil.WriteFile(t, filepath.Dir(path), filepath.Base(path), content)
}

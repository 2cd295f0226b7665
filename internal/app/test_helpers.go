package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/compositor/internal/config"
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates a new app instance for system testing. Pages rendered
// without an OutputDir go to the returned page buffer, logs to the other.
func SetupAppTest(t *testing.T, cfg Config, loader config.Loader, modules ...registry.Module) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	pageBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	testApp, err := NewApp(logBuffer, validated, loader, modules...)
	require.NoError(t, err)
	testApp.SetPageOutput(pageBuffer)

	t.Cleanup(func() {
		if os.Getenv("COMPOSITOR_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, pageBuffer, logBuffer
}

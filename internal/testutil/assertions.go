package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that the captured logs contain substr.
func AssertLogged(t *testing.T, h *Harness, substr string) {
	t.Helper()
	require.True(t,
		strings.Contains(h.Logs.String(), substr),
		"expected log output to contain %q", substr,
	)
}

// AssertNotLogged checks that the captured logs do not contain substr.
func AssertNotLogged(t *testing.T, h *Harness, substr string) {
	t.Helper()
	require.False(t,
		strings.Contains(h.Logs.String(), substr),
		"expected log output not to contain %q", substr,
	)
}

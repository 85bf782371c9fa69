package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertNodeRan checks the log output within a HarnessResult to confirm that
// a node completed. It relies on the text log format the harness configures.
func AssertNodeRan(t *testing.T, result *HarnessResult, nodeName string) {
	t.Helper()
	require.True(t, nodeLogged(result.LogOutput, "Node completed.", nodeName),
		"expected completion log for node %q was not found in logs", nodeName)
}

// AssertNodeNotRan is the negation of AssertNodeRan.
func AssertNodeNotRan(t *testing.T, result *HarnessResult, nodeName string) {
	t.Helper()
	require.False(t, nodeLogged(result.LogOutput, "Node completed.", nodeName),
		"node %q was not expected to run", nodeName)
}

func nodeLogged(logs, msg, nodeName string) bool {
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line, `msg="`+msg+`"`) && strings.Contains(line+" ", " node="+nodeName+" ") {
			return true
		}
	}
	return false
}

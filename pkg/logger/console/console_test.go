package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugLevelGate(t *testing.T) {
	var quiet, verbose bytes.Buffer
	NewConsoleLogger(ConsoleLoggerParams{Output: &quiet}).Debug("hidden")
	NewConsoleLogger(ConsoleLoggerParams{Output: &verbose, Debug: true}).Debug("shown", "file", "a.md")

	assert.Empty(t, quiet.String())
	assert.Contains(t, verbose.String(), "shown")
	assert.Contains(t, verbose.String(), "file=a.md")
}

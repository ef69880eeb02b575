package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.name), "name %q", tt.name)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestNamedInheritsLevel(t *testing.T) {
	parent := New("parent")
	parent.SetLevel(LevelError)

	child := parent.Named("child")
	assert.Equal(t, int32(LevelError), child.level.Load())

	// Later level changes on the parent do not propagate.
	parent.SetLevel(LevelDebug)
	assert.Equal(t, int32(LevelError), child.level.Load())
}

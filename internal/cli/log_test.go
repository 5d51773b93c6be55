package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestSlogger_FollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, &bytes.Buffer{}, LogInfo)

	c.slogger().Debug("hidden")
	assert.Zero(t, buf.Len())

	c.SetLogLevel(LogDebug)
	c.slogger().Debug("epoch completed", "epoch", 3)
	assert.Contains(t, buf.String(), "epoch completed")
	assert.Contains(t, buf.String(), "epoch=3")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Optimized")
	assert.Contains(t, buf.String(), "Optimized (")
}

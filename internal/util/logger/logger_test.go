package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "subsystem=test")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("test2")

	buf := &bytes.Buffer{}
	SetOutput(buf)

	log.Info("after switch", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "after switch")
	assert.Contains(t, output, "key=value")
}

func TestLogger_SameInstance(t *testing.T) {
	assert.Same(t, Logger("same"), Logger("same"))
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("leveled")
	log.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel("leveled", slog.LevelDebug)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "level=debug")

	// 派生 Logger 共享级别
	derived := log.With("peer", "x")
	SetLevel("leveled", slog.LevelError)
	derived.Warn("suppressed")
	assert.NotContains(t, buf.String(), "suppressed")
}

func TestParseConfig(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "matcher=debug, transport/udp=warn ,error,bogus=nope",
		EnvLogFormat:    "JSON",
		EnvLogAddSource: "1",
	}
	cfg := parseConfig(func(k string) string { return env[k] })

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("matcher"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("transport/udp"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("coordinator"))
	assert.NotContains(t, cfg.SubsystemLevels, "bogus")
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg := parseConfig(func(string) string { return "" })

	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.AddSource)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

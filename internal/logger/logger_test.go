package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("dashboard loaded")

	assert.Contains(t, buf.String(), "dashboard loaded")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestNewPrettyHandler_NilOptions(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	require.NotNil(t, h.opts)
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Warn("malformed csv line", "line", 4, "reason", "no profile url")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "malformed csv line")
	assert.Contains(t, out, "line=4")
	assert.Contains(t, out, `reason="no profile url"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).WithGroup("bot").With("scrape_type", "all")

	log.Info("trigger accepted", "poll", "3s")

	out := buf.String()
	assert.Contains(t, out, "bot.scrape_type=all")
	assert.Contains(t, out, "bot.poll=3s")
}

func TestPrettyHandler_GroupAttr(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Info("stats", slog.Group("counts", "total", 10, "redeemed", 4))

	assert.Contains(t, buf.String(), "counts.total=10")
	assert.Contains(t, buf.String(), "counts.redeemed=4")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))

	log.Info("hello")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 10, 3, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-10-03T12:00:00Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "3s", formatValue(slog.DurationValue(3*time.Second)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Writer: &buf})

	log.WithComponent("dashboard").Info("snapshot installed", "participants", 12)

	assert.Contains(t, buf.String(), `"component":"dashboard"`)
	assert.Contains(t, buf.String(), `"participants":12`)
}

func TestPrettyHandler_ComponentTag(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "pretty", Writer: &buf, NoColor: true})

	log.WithComponent("bot").Info("trigger accepted", "scrape_type", "all")

	out := buf.String()
	assert.Contains(t, out, "INF [bot] trigger accepted scrape_type=all")
	assert.NotContains(t, out, "component=")
	assert.NotContains(t, out, "\033[")
}

func TestPrettyHandler_ComponentInsideGroupIsPlainAttr(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).WithGroup("remote")

	log.Info("call", ComponentKey, "x")

	assert.Contains(t, buf.String(), "remote.component=x")
	assert.NotContains(t, buf.String(), "[x]")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "pretty", Level: slog.LevelError, Writer: &buf})

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	assert.Empty(t, buf.String())

	log.Error("e")
	assert.Contains(t, buf.String(), "ERR")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Error("nothing happens")
}

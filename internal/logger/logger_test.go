package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	l.Info("taxonomy loaded", "types", 3)

	assert.Contains(t, buf.String(), `"msg":"taxonomy loaded"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"types":3`)
}

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"staging uses pretty", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			l.Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "hello")
			}
		})
	}
}

func TestNew_ServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf, Service: "vitrine"})

	l.Info("started")

	assert.Contains(t, buf.String(), `"service":"vitrine"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, nil))

	l.With("draft_id", "draft-1").WithGroup("analysis").Info("done", "mode", "single", "method", "ai vision")

	out := buf.String()
	assert.Contains(t, out, "draft_id=draft-1")
	assert.Contains(t, out, "analysis.mode=single")
	assert.Contains(t, out, `analysis.method="ai vision"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf})

	l.WithDraft("draft-9").WithError(errors.New("boom")).WithField("kind", "include").Info("commit")

	out := buf.String()
	assert.Contains(t, out, `"draft_id":"draft-9"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"kind":"include"`)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error("nothing to see")
	})
}

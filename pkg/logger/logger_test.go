package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPlainHandlerRendersIntentionIcon(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: slog.New(newPlainHandler(&buf, slog.LevelInfo))}

	l.WithComponent("executor").WithSession("s1").InfoWithIntention(IntentionSearch, "Searching", "query", "deposit refund")

	got := strings.TrimSpace(buf.String())
	if got != "🔍 Searching query=deposit refund" {
		t.Errorf("unexpected console line %q", got)
	}
}

func TestPlainHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: slog.New(newPlainHandler(&buf, slog.LevelInfo))}

	l.DebugWithIntention(IntentionDebug, "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line should be filtered at info level, got %q", buf.String())
	}

	l.Warn("visible", "step", 2)
	if got := strings.TrimSpace(buf.String()); got != "visible step=2" {
		t.Errorf("unexpected warn line %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" DEBUG ": LogLevelDebug,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLogFilePathHonoursOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTICE_LOG_DIR", dir)
	if got := LogFilePath(); !strings.HasPrefix(got, dir) {
		t.Errorf("expected log path under %s, got %s", dir, got)
	}
}

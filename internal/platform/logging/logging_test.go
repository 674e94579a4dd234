package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"readtrack/internal/platform/logging"
)

func TestNewWithWriterHonoursLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.NewWithWriter(buf, "warn")
	logger.Info("hidden")
	logger.Named("timer").Warn("tick skipped", "reason", "clock jump")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "readtrack.timer") || !strings.Contains(out, "reason=\"clock jump\"") {
		t.Fatalf("expected named warn line with fields, got %s", out)
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".readtrack", "readtrack.log")
	logger, closer, err := logging.New(path, "info")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("session started", "book", "b-1")
	if err := closer.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "session started") {
		t.Fatalf("log line missing: %s", raw)
	}
}

func TestOrNullNeverReturnsNil(t *testing.T) {
	t.Parallel()
	if logging.OrNull(nil) == nil {
		t.Fatalf("expected null logger")
	}
}

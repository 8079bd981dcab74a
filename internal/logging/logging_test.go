package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jeffanddom/organizex/internal/logging"
)

func TestNew(t *testing.T) {
	t.Run("writes json records", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, "info", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		logger.Info("scan complete", "files", 3)

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("expected json output, got %q", buf.String())
		}
		if record["msg"] != "scan complete" {
			t.Errorf("expected msg field, got %v", record["msg"])
		}
	})

	t.Run("filters below configured level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, _ := logging.New(&buf, "warn", "text")

		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})

	t.Run("rejects unknown settings", func(t *testing.T) {
		if _, err := logging.New(&bytes.Buffer{}, "loud", "text"); err == nil {
			t.Error("expected error for unknown level")
		}
		if _, err := logging.New(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestNop(t *testing.T) {
	logging.Nop().Error("discarded", "key", "value")
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "JSON", Output: &buf})
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", log.GetLevel())
	}

	Component(log, "store").WithField("session_id", "abc").Info("created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry %q: %v", buf.String(), err)
	}
	if entry["component"] != "store" || entry["session_id"] != "abc" || entry["msg"] != "created" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewFallsBackOnUnknownValues(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "loud", Format: "yaml", Output: &buf})
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", log.GetLevel())
	}
	log.Debug("hidden")
	log.Info("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
		t.Fatalf("output = %q", out)
	}
}

func TestComponentToleratesNilLogger(t *testing.T) {
	Component(nil, "x").Info("dropped")
}

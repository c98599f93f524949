package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"chordlab/relay/pkg/config"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := SetupWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWithWriter() failed: %v", err)
	}

	logger.Info("turn finished", "request_id", "r1", "duration_ms", 42)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %q: %v", buf.String(), err)
	}
	if record["msg"] != "turn finished" || record["request_id"] != "r1" {
		t.Errorf("record = %v", record)
	}
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := SetupWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("SetupWithWriter() failed: %v", err)
	}

	logger.Debug("probe", "backend", "local-backend")

	if !strings.Contains(buf.String(), "backend=local-backend") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestSetup_LevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer

	logger, err := SetupWithWriter(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupWithWriter() failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "suppressed") {
		t.Errorf("info record passed a warn-level logger: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestSetup_RejectsUnknownSettings(t *testing.T) {
	if _, err := SetupWithWriter(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("unknown level accepted")
	}
	if _, err := SetupWithWriter(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("unknown format accepted")
	}
}

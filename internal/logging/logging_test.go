package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("hidden debug", nil)
	logger.Info("hidden info", nil)
	logger.Warn("visible warn", nil)
	logger.Error("visible error", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-severity entries leaked: %q", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "visible error") {
		t.Errorf("high-severity entries missing: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("scan complete", map[string]interface{}{"repo": "billing-core", "functions": 42})

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry.Level != "info" || entry.Message != "scan complete" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["repo"] != "billing-core" {
		t.Errorf("fields = %+v", entry.Fields)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})
	logger := base.With(map[string]interface{}{"analysisId": "a-1"})

	logger.Info("step", map[string]interface{}{"repo": "core"})

	var entry struct {
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Fields["analysisId"] != "a-1" || entry.Fields["repo"] != "core" {
		t.Errorf("fields = %+v, want base and call fields merged", entry.Fields)
	}

	// The base logger is unaffected.
	buf.Reset()
	base.Info("plain", nil)
	var plain struct {
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &plain); err != nil {
		t.Fatal(err)
	}
	if _, ok := plain.Fields["analysisId"]; ok {
		t.Error("With leaked fields into the base logger")
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("scan complete", map[string]interface{}{"repo": "core"})

	out := buf.String()
	if !strings.Contains(out, "[info] scan complete") {
		t.Errorf("unexpected human format: %q", out)
	}
	if !strings.Contains(out, "repo=core") {
		t.Errorf("fields missing: %q", out)
	}
}

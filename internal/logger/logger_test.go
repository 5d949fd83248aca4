package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
)

func TestDynamicLogLevelChange(t *testing.T) {
	t.Run("changing log level from info to debug shows debug logs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New("info", "text", buf)

		// At info level, debug logs should NOT appear
		log.Debug("debug message")
		log.Info("info message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Expected debug message to NOT appear at info level")
		}
		if !strings.Contains(output, "info message") {
			t.Error("Expected info message to appear at info level")
		}

		// Now change to debug level
		buf.Reset()
		log.SetLevel("debug")
		log.Debug("debug message after change")

		if !strings.Contains(buf.String(), "debug message after change") {
			t.Error("Expected debug message to appear after changing to debug level")
		}
	})

	t.Run("changing log level from debug to error filters info and debug logs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New("debug", "text", buf)

		log.SetLevel("error")
		log.Debug("debug message")
		log.Info("info message")
		log.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
			t.Error("Expected debug/info messages to be filtered at error level")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Expected error message to appear at error level")
		}
	})
}

func TestCustomLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New("notice", "text", buf)

	log.Info("info message")
	log.Log(t.Context(), logger.LevelNotice, "notice message")

	output := buf.String()
	if strings.Contains(output, "info message") {
		t.Error("Expected info message to be filtered at notice level")
	}
	if !strings.Contains(output, "notice message") {
		t.Error("Expected notice message to appear at notice level")
	}
	if !strings.Contains(output, "NOTICE") {
		t.Error("Expected NOTICE level name in output")
	}
}

func TestCredentialRedaction(t *testing.T) {
	t.Run("sensitive keys are redacted in json output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New("debug", "json", buf)

		log.Info("connecting",
			"uri", "neo4j+s://example.databases.neo4j.io",
			"password", "super-secret",
			"database", "neo4j")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Expected valid JSON output, got error: %v", err)
		}

		if entry["uri"] != "[REDACTED]" {
			t.Errorf("Expected uri to be [REDACTED], got: %v", entry["uri"])
		}
		if entry["password"] != "[REDACTED]" {
			t.Errorf("Expected password to be [REDACTED], got: %v", entry["password"])
		}
		if entry["database"] != "neo4j" {
			t.Errorf("Expected database to be preserved, got: %v", entry["database"])
		}
	})

	t.Run("redaction is case-insensitive", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New("debug", "text", buf)

		log.Info("connecting", "Password", "super-secret")

		output := buf.String()
		if strings.Contains(output, "super-secret") {
			t.Error("Expected password value to be redacted")
		}
	})
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New("bogus", "text", buf)

	log.Debug("debug message")
	log.Info("info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Expected debug message to be filtered with fallback info level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("Expected info message to appear with fallback info level")
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter(&buf, false), "reader")
	log.Info().Int("slices", 3).Msg("loaded")

	var event map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}

	if event["component"] != "reader" {
		t.Errorf("Expected component=reader, got %v", event["component"])
	}
	if event["message"] != "loaded" {
		t.Errorf("Expected message=loaded, got %v", event["message"])
	}
}

func TestVerboseLevel(t *testing.T) {
	var quiet, verbose bytes.Buffer

	NewWithWriter(&quiet, false).Debug().Msg("hidden")
	NewWithWriter(&verbose, true).Debug().Msg("shown")

	if quiet.Len() != 0 {
		t.Errorf("Expected debug output to be suppressed, got %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "shown") {
		t.Errorf("Expected debug output in verbose mode, got %q", verbose.String())
	}
}

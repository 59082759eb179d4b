package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestErrorIncludesErrorText(t *testing.T) {
	buf := capture(t)
	fields := Fields{"run_id": 7}
	Error("battle failed", errors.New("boom"), fields)

	var got map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("expected JSON line, got %q", buf.String())
	}
	if got["error"] != "boom" || got["level"] != "error" || got["msg"] != "battle failed" {
		t.Fatalf("unexpected entry: %v", got)
	}
	if _, leaked := fields["error"]; leaked {
		t.Fatalf("caller fields must not be mutated")
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(ParseLevel("warn"))
	Debug("hidden", nil)
	Info("hidden", nil)
	Warn("shown", nil)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if ParseLevel("DEBUG") != LevelDebug || ParseLevel("nonsense") != LevelInfo {
		t.Fatalf("unexpected level parsing")
	}
}

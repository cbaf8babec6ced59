package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestLogger_LevelFilterAndText(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, App: "test", Output: &buf})

	l.Info("ignored", nil)
	l.Warn("batch: child failed", map[string]any{"child_id": "c2", "err": errors.New("conflict")})

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "ignored") {
		t.Fatalf("info must be filtered at warn level: %q", out)
	}
	for _, want := range []string{"app=test", "child_id=c2", "err=conflict", "level=warn"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestLogger_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Output: &buf}).With(map[string]any{"component": "historic"})

	l.Debug("record excluded", map[string]any{"id": "x-1"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if entry["component"] != "historic" || entry["id"] != "x-1" || entry["msg"] != "record excluded" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("nonsense") != Info {
		t.Fatalf("unexpected level parsing")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("unexpected format parsing")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("OrNop(nil) must return a usable logger")
	}
	OrNop(nil).With(map[string]any{"a": 1}).Error("dropped", nil)
}

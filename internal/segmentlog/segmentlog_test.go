package segmentlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/meetcap/core/internal/audiochunk"
)

func TestLogger_DisabledWithEmptyPath(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.SendSpeechSegment(audiochunk.SpeechSegment{}); err != nil {
		t.Errorf("expected disabled logger to no-op, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("expected disabled Close to no-op, got %v", err)
	}
}

func TestLogger_WritesJSONLEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.jsonl")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	if err := l.SendSpeechSegment(audiochunk.SpeechSegment{StartMs: 100, EndMs: 250, Samples: make([]float32, 2400)}); err != nil {
		t.Fatalf("SendSpeechSegment: %v", err)
	}
	if err := l.SendSpeechSegment(audiochunk.SpeechSegment{StartMs: 400, EndMs: 500, Samples: make([]float32, 1600)}); err != nil {
		t.Fatalf("SendSpeechSegment: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var entries []Entry
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Samples != 2400 || entries[1].Samples != 1600 {
		t.Errorf("unexpected sample counts: %+v", entries)
	}
}

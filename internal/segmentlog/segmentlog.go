// Package segmentlog is a rotating JSONL sink for speech segments, adapted
// from the teacher's client/internal/debuglog package (originally a debug
// trace of transcription chunks/completions/insertions) into C7's
// TranscriptionSink for this pipeline's segment boundaries.
package segmentlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/meetcap/core/internal/audiochunk"
)

const (
	// MaxLogSize is the size at which the active log file rotates.
	MaxLogSize = 8 * 1024 * 1024

	rotatedSuffix = ".1"
)

// Entry is one JSONL record describing a committed speech segment.
type Entry struct {
	Timestamp  string  `json:"timestamp"`
	StartMs    float64 `json:"start_ms"`
	EndMs      float64 `json:"end_ms"`
	SampleRate int     `json:"sample_rate"`
	Samples    int     `json:"samples"`
}

// Logger writes one JSON line per speech segment, rotating once the active
// file exceeds MaxLogSize. An empty path disables logging entirely.
type Logger struct {
	file     *os.File
	mu       sync.Mutex
	path     string
	disabled bool
}

// New opens (or creates) the log file at path. path == "" disables logging.
func New(path string) (*Logger, error) {
	if path == "" {
		return &Logger{disabled: true}, nil
	}

	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment log: %w", err)
	}

	l := &Logger{file: file, path: path}
	if err := l.checkRotation(); err != nil {
		file.Close()
		return nil, err
	}
	return l, nil
}

// SendSpeechSegment implements pipeline.TranscriptionSink.
func (l *Logger) SendSpeechSegment(seg audiochunk.SpeechSegment) error {
	if l.disabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		StartMs:    seg.StartMs,
		EndMs:      seg.EndMs,
		SampleRate: 16000,
		Samples:    len(seg.Samples),
	}
	return l.writeEntry(entry)
}

func (l *Logger) writeEntry(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal segment log entry: %w", err)
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write segment log entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync segment log: %w", err)
	}
	return l.checkRotation()
}

func (l *Logger) checkRotation() error {
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat segment log: %w", err)
	}
	if info.Size() < MaxLogSize {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close segment log: %w", err)
	}

	rotated := l.path + rotatedSuffix
	os.Remove(rotated)
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("failed to rotate segment log: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to reopen segment log: %w", err)
	}
	l.file = file
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l.disabled {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

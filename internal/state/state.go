// Package state implements the process-wide recording lifecycle (C8) and
// the AudioError taxonomy (§7), modeled as a singleton with a well-defined
// public API rather than ad-hoc globals.
package state

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/logger"
)

// ErrorKind classifies an AudioError for programmatic handling.
type ErrorKind int

const (
	DeviceDisconnected ErrorKind = iota
	PermissionDenied
	ChannelClosed
	BufferOverflow
	StreamFailed
	ProcessingFailed
)

func (k ErrorKind) String() string {
	switch k {
	case DeviceDisconnected:
		return "device_disconnected"
	case PermissionDenied:
		return "permission_denied"
	case ChannelClosed:
		return "channel_closed"
	case BufferOverflow:
		return "buffer_overflow"
	case StreamFailed:
		return "stream_failed"
	case ProcessingFailed:
		return "processing_failed"
	default:
		return "unknown"
	}
}

// AudioError is the classified error type reported into RecordingState.
type AudioError struct {
	Kind    ErrorKind
	Message string
	At      time.Time
}

func (e AudioError) Error() string { return e.Kind.String() + ": " + e.Message }

// NewAudioError builds an AudioError stamped with the current time.
func NewAudioError(kind ErrorKind, message string) AudioError {
	return AudioError{Kind: kind, Message: message, At: time.Now()}
}

// ClassifyStreamError maps a stream-error message to an ErrorKind by the
// substring rules in spec §7.
func ClassifyStreamError(msg string) ErrorKind {
	lower := strings.ToLower(msg)

	disconnectSubstrings := []string{
		"no longer available", "not found", "disconnected",
		"no such device", "removed", "unavailable",
	}
	for _, s := range disconnectSubstrings {
		if strings.Contains(lower, s) {
			return DeviceDisconnected
		}
	}

	if strings.Contains(lower, "permission") || strings.Contains(lower, "access denied") {
		return PermissionDenied
	}
	if strings.Contains(lower, "channel closed") {
		return ChannelClosed
	}
	if strings.Contains(lower, "stream") && strings.Contains(lower, "failed") {
		return StreamFailed
	}
	return StreamFailed
}

// ClassifySendError maps a pipeline-send failure message to an ErrorKind, or
// returns (kind, false) for the debug-only "not ready" case per §7. The
// default orchestrator queue is unbounded and its Sender never reports
// "full"; the BufferOverflow branch exists for a Sender implementation that
// enforces its own capacity, not the default wiring.
func ClassifySendError(msg string) (kind ErrorKind, reportable bool) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "pipeline not ready"):
		return ProcessingFailed, false
	case strings.Contains(lower, "channel closed"):
		return ChannelClosed, true
	case strings.Contains(lower, "full"):
		return BufferOverflow, true
	default:
		return ProcessingFailed, true
	}
}

// Sender is the narrow interface RecordingState needs on the orchestrator's
// input channel handle, so state doesn't import pipeline (which itself uses
// state for error reporting).
type Sender interface {
	SendAudioChunk(audiochunk.AudioChunk) error
}

// RecordingState is the process-wide singleton described by C8.
type RecordingState struct {
	id             string
	isRecording    int32
	recordingStart atomic.Value // time.Time

	mu     sync.Mutex
	sender Sender
	errors []AudioError

	log *logger.ContextLogger
}

// New creates a RecordingState in the idle state, stamped with a fresh
// session ID; cmd/meetcap uses it to name the session's recording and
// segment-log files.
func New(log *logger.Logger) *RecordingState {
	return &RecordingState{id: uuid.NewString(), log: log.With("state")}
}

// ID returns this session's unique identifier.
func (s *RecordingState) ID() string { return s.id }

// IsRecording reports whether a recording session is active.
func (s *RecordingState) IsRecording() bool {
	return atomic.LoadInt32(&s.isRecording) == 1
}

// Begin transitions idle->recording, records the start instant, and installs
// the orchestrator's sender handle.
func (s *RecordingState) Begin(sender Sender) {
	s.mu.Lock()
	s.sender = sender
	s.mu.Unlock()
	s.recordingStart.Store(time.Now())
	atomic.StoreInt32(&s.isRecording, 1)
}

// End transitions recording->idle and clears the sender handle. This
// transition is terminal for the current session; Begin starts a new one.
func (s *RecordingState) End() {
	atomic.StoreInt32(&s.isRecording, 0)
	s.mu.Lock()
	s.sender = nil
	s.mu.Unlock()
}

// SendAudioChunk forwards a chunk to the installed sender, classifying and
// reporting any failure per §7.
func (s *RecordingState) SendAudioChunk(chunk audiochunk.AudioChunk) error {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()

	if sender == nil {
		s.log.Debug("pipeline not ready, dropping chunk")
		return nil
	}
	if err := sender.SendAudioChunk(chunk); err != nil {
		kind, reportable := ClassifySendError(err.Error())
		if reportable {
			s.ReportError(NewAudioError(kind, err.Error()))
		} else {
			s.log.Debug("send error (expected during startup): %v", err)
		}
		return err
	}
	return nil
}

// ReportError appends an error to the log and surfaces it. Downgrades are
// the caller's responsibility (see ClassifySendError / SendAudioChunk).
func (s *RecordingState) ReportError(err AudioError) {
	s.mu.Lock()
	s.errors = append(s.errors, err)
	s.mu.Unlock()
	s.log.Warn("audio error: %s", err.Error())
}

// Errors returns a snapshot of the append-only error log.
func (s *RecordingState) Errors() []AudioError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AudioError, len(s.errors))
	copy(out, s.errors)
	return out
}

// RecordingDuration returns the elapsed time since Begin, or 0 if idle.
func (s *RecordingState) RecordingDuration() time.Duration {
	if !s.IsRecording() {
		return 0
	}
	start, ok := s.recordingStart.Load().(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

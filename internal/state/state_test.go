package state

import (
	"errors"
	"testing"
	"time"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/logger"
)

func TestClassifyStreamError(t *testing.T) {
	cases := map[string]ErrorKind{
		"device is no longer available":    DeviceDisconnected,
		"Device not found":                 DeviceDisconnected,
		"stream disconnected unexpectedly": DeviceDisconnected,
		"permission denied by OS":          PermissionDenied,
		"access denied to microphone":      PermissionDenied,
		"channel closed":                   ChannelClosed,
		"stream failed to start":           StreamFailed,
		"something else entirely":          StreamFailed,
	}
	for msg, want := range cases {
		if got := ClassifyStreamError(msg); got != want {
			t.Errorf("ClassifyStreamError(%q) = %v, want %v", msg, got, want)
		}
	}
}

func TestClassifySendError(t *testing.T) {
	if kind, reportable := ClassifySendError("pipeline not ready"); reportable || kind != ProcessingFailed {
		t.Errorf("expected (ProcessingFailed, false) for not-ready, got (%v, %v)", kind, reportable)
	}
	if kind, reportable := ClassifySendError("channel closed"); !reportable || kind != ChannelClosed {
		t.Errorf("expected (ChannelClosed, true), got (%v, %v)", kind, reportable)
	}
	if kind, reportable := ClassifySendError("buffer is full"); !reportable || kind != BufferOverflow {
		t.Errorf("expected (BufferOverflow, true), got (%v, %v)", kind, reportable)
	}
}

type fakeSender struct {
	err error
}

func (f *fakeSender) SendAudioChunk(audiochunk.AudioChunk) error { return f.err }

func TestNew_AssignsUniqueID(t *testing.T) {
	a := New(logger.New(false))
	b := New(logger.New(false))
	if a.ID() == "" {
		t.Fatal("expected a non-empty session ID")
	}
	if a.ID() == b.ID() {
		t.Error("expected distinct sessions to get distinct IDs")
	}
}

func TestRecordingState_BeginEndLifecycle(t *testing.T) {
	s := New(logger.New(false))
	if s.IsRecording() {
		t.Fatal("expected idle at construction")
	}
	s.Begin(&fakeSender{})
	if !s.IsRecording() {
		t.Fatal("expected recording after Begin")
	}
	time.Sleep(time.Millisecond)
	if d := s.RecordingDuration(); d <= 0 {
		t.Errorf("expected positive recording duration, got %v", d)
	}
	s.End()
	if s.IsRecording() {
		t.Fatal("expected idle after End")
	}
	if d := s.RecordingDuration(); d != 0 {
		t.Errorf("expected zero duration once idle, got %v", d)
	}
}

func TestRecordingState_SendAudioChunk_NoSenderIsSilentNoOp(t *testing.T) {
	s := New(logger.New(false))
	if err := s.SendAudioChunk(audiochunk.AudioChunk{}); err != nil {
		t.Errorf("expected nil error with no sender installed, got %v", err)
	}
	if len(s.Errors()) != 0 {
		t.Errorf("expected no reported errors, got %d", len(s.Errors()))
	}
}

func TestRecordingState_SendAudioChunk_ReportableErrorIsRecorded(t *testing.T) {
	s := New(logger.New(false))
	s.Begin(&fakeSender{err: errors.New("buffer is full")})

	if err := s.SendAudioChunk(audiochunk.AudioChunk{}); err == nil {
		t.Fatal("expected the underlying error to propagate")
	}
	errs := s.Errors()
	if len(errs) != 1 || errs[0].Kind != BufferOverflow {
		t.Fatalf("expected one BufferOverflow error recorded, got %+v", errs)
	}
}

func TestRecordingState_SendAudioChunk_NotReadyErrorIsNotRecorded(t *testing.T) {
	s := New(logger.New(false))
	s.Begin(&fakeSender{err: errors.New("pipeline not ready")})

	_ = s.SendAudioChunk(audiochunk.AudioChunk{})
	if len(s.Errors()) != 0 {
		t.Errorf("expected the not-ready error to be downgraded, not recorded, got %d", len(s.Errors()))
	}
}

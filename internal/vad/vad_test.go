package vad

import "testing"

// thresholdDetector is a simple deterministic Detector for tests: every
// frame whose first sample exceeds 0.5 is speech.
type thresholdDetector struct{}

func (thresholdDetector) IsSpeech(frame []float32) bool {
	return len(frame) > 0 && frame[0] > 0.5
}

func tone48k(n int, amp float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp
	}
	return out
}

func TestSegmenter_EmitsSegmentAfterRedemption(t *testing.T) {
	seg := New(Config{RedemptionMs: 40}, thresholdDetector{})

	// 150ms of "speech" (48kHz) followed by enough silence to exceed the
	// 40ms redemption window.
	speech := tone48k(48000*150/1000, 0.9)
	silence := tone48k(48000*200/1000, 0.0)

	segments := seg.Process(speech)
	if len(segments) != 0 {
		t.Fatalf("expected no segment yet, got %d", len(segments))
	}

	segments = seg.Process(silence)
	if len(segments) != 1 {
		t.Fatalf("expected exactly one segment after redemption elapses, got %d", len(segments))
	}
	if segments[0].EndMs <= segments[0].StartMs {
		t.Errorf("expected EndMs > StartMs, got start=%v end=%v", segments[0].StartMs, segments[0].EndMs)
	}
}

func TestSegmenter_OutputIs16kHzMono(t *testing.T) {
	seg := New(Config{RedemptionMs: 40}, thresholdDetector{})
	speech := tone48k(48000*100/1000, 0.9)
	silence := tone48k(48000*200/1000, 0.0)

	seg.Process(speech)
	segments := seg.Process(silence)
	if len(segments) == 0 {
		t.Fatal("expected a segment")
	}

	// 100ms of speech is 4800 samples at 48kHz and 1600 at 16kHz; the
	// 40ms of trailing redemption silence is trimmed from the segment.
	if len(segments[0].Samples) == 0 {
		t.Fatal("expected non-empty segment samples")
	}
	if len(segments[0].Samples) > len(speech)+len(silence) {
		t.Errorf("segment has more samples than input, got %d", len(segments[0].Samples))
	}
	if got, want := len(segments[0].Samples), len(speech)/3; got != want {
		t.Errorf("expected %d samples (100ms at 16kHz), got %d", want, got)
	}
}

func TestSegmenter_ShortSilenceDoesNotCloseSegment(t *testing.T) {
	seg := New(Config{RedemptionMs: 400}, thresholdDetector{})
	speech1 := tone48k(48000*100/1000, 0.9)
	brief := tone48k(48000*50/1000, 0.0) // shorter than redemption time
	speech2 := tone48k(48000*100/1000, 0.9)

	seg.Process(speech1)
	segments := seg.Process(brief)
	if len(segments) != 0 {
		t.Fatalf("brief pause under redemption time should not close a segment, got %d", len(segments))
	}
	segments = seg.Process(speech2)
	if len(segments) != 0 {
		t.Fatalf("resumed speech should still not have closed the segment, got %d", len(segments))
	}
}

func TestSegmenter_Flush(t *testing.T) {
	seg := New(Config{RedemptionMs: 400}, thresholdDetector{})
	speech := tone48k(48000*100/1000, 0.9)
	seg.Process(speech)

	segments := seg.Flush()
	if len(segments) != 1 {
		t.Fatalf("expected Flush to return the in-progress segment, got %d", len(segments))
	}

	// A second flush with nothing in progress returns nothing.
	if more := seg.Flush(); len(more) != 0 {
		t.Errorf("expected empty flush after reset, got %d", len(more))
	}
}

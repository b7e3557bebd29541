//go:build !silerovad

package vad

import "github.com/meetcap/core/internal/audiochunk"

// EnergyDetector classifies frames by RMS energy threshold. This is the
// default, always-available backend, generalized from the teacher's
// server/internal/transcription/vad.go one-shot chunker into a stateless
// per-frame predicate usable by the continuous Segmenter in vad.go.
type EnergyDetector struct {
	threshold float64
}

// NewDetector builds the default energy-based detector.
func NewDetector(threshold float64) Detector {
	return &EnergyDetector{threshold: threshold}
}

// IsSpeech reports whether frame's RMS exceeds the configured threshold.
// The teacher's vad.go compared raw PCM energy against a threshold tuned
// for int16 samples (e.g. 500.0); frame here is float32 in [-1, 1], so the
// threshold is expected in that same normalized range.
func (d *EnergyDetector) IsSpeech(frame []float32) bool {
	return audiochunk.RMS(frame) > d.threshold
}

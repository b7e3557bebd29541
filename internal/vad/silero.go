//go:build silerovad

package vad

import (
	sileroVAD "github.com/streamer45/silero-vad-go/speech"
)

// SileroDetector wraps the real Silero ONNX VAD model, built in via
// `-tags silerovad`. It was located in the retrieved example pack's
// iamprashant-voice-ai manifest.
type SileroDetector struct {
	detector *sileroVAD.Detector
}

// NewSileroDetector builds the Silero-backed detector. modelPath must point at a
// silero_vad.onnx model file.
func NewSileroDetector(modelPath string) (Detector, error) {
	d, err := sileroVAD.NewDetector(sileroVAD.DetectorConfig{
		ModelPath:            modelPath,
		SampleRate:           kernelSampleRate,
		Threshold:            0.5,
		MinSilenceDurationMs: 0, // redemption is handled by Segmenter, not here
		SpeechPadMs:          0,
	})
	if err != nil {
		return nil, err
	}
	return &SileroDetector{detector: d}, nil
}

// IsSpeech runs one frame through the neural VAD kernel.
func (d *SileroDetector) IsSpeech(frame []float32) bool {
	prob, err := d.detector.Probability(frame)
	if err != nil {
		return false
	}
	return prob > 0.5
}

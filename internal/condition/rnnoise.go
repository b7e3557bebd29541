//go:build !rnnoise

package condition

// RNNoiseProcessor suppresses stationary noise on 48kHz mono microphone
// audio. This is the default build: a pass-through stand-in for the opaque
// RNNoise kernel (spec §1 treats it as an external DSP primitive), used
// when the real implementation in rnnoise_real.go isn't built in via
// `-tags rnnoise`. Adapted from the teacher's own stub/real split in
// server/internal/transcription/rnnoise.go.
type RNNoiseProcessor struct {
	bufferedSamples int
}

// NewRNNoiseProcessor constructs the pass-through processor.
func NewRNNoiseProcessor() (*RNNoiseProcessor, error) {
	return &RNNoiseProcessor{}, nil
}

// Process returns samples unmodified.
func (r *RNNoiseProcessor) Process(samples []float32) []float32 {
	return samples
}

// BufferedSamples reports the suppressor's internal frame-alignment buffer
// depth. Always zero for the pass-through.
func (r *RNNoiseProcessor) BufferedSamples() int { return r.bufferedSamples }

// Close releases the processor. No-op for the pass-through.
func (r *RNNoiseProcessor) Close() error { return nil }

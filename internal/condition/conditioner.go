// Package condition implements the per-source stream conditioning chain
// (C4): downmix -> resample -> (mic only) high-pass -> RNNoise -> loudness.
package condition

import (
	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/logger"
)

const targetSampleRate = 48000

// Conditioner owns one source's persistent DSP state exclusively: the
// resampler, high-pass filter, RNNoise instance, and loudness normalizer
// are all created once here and never reallocated per chunk.
type Conditioner struct {
	isMic    bool
	resampler Resampler
	highpass  *HighPass
	rnnoise   *RNNoiseProcessor
	loudness  *Loudness

	log *logger.ContextLogger
}

// New builds a conditioner for a source at srcRate. isMic selects the
// enhancement chain (high-pass -> RNNoise -> loudness); system audio only
// gets downmix + resample.
func New(isMic bool, srcRate int, targetLUFS float64, log *logger.Logger) (*Conditioner, error) {
	c := &Conditioner{
		isMic:     isMic,
		resampler: NewResampler(srcRate, targetSampleRate),
		log:       log.With("conditioner"),
	}

	if isMic {
		c.highpass = NewHighPass(80.0, targetSampleRate)
		rn, err := NewRNNoiseProcessor()
		if err != nil {
			return nil, err
		}
		c.rnnoise = rn
		c.loudness = NewLoudness(targetLUFS, targetSampleRate)
	}

	return c, nil
}

// downmix averages multi-channel interleaved samples to mono. Capture
// already delivers mono float32 (see internal/capture), so this is a no-op
// safety net for conditioners fed directly in tests with multi-channel data.
func downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// Process runs one raw chunk through the conditioning chain. It returns 0
// or 1 chunk: empty output means the resampler is still buffering a
// partial block, not that data was lost (spec §4.4 invariant).
func (c *Conditioner) Process(raw audiochunk.AudioChunk, channels int) audiochunk.AudioChunk {
	mono := downmix(raw.Samples, channels)

	resampled := c.resampler.Process(mono)
	if len(resampled) == 0 {
		return audiochunk.AudioChunk{} // buffered, not lost
	}

	samples := resampled
	if c.isMic {
		samples = c.highpass.Process(samples)

		before := len(samples)
		samples = c.rnnoise.Process(samples)
		delta := before - len(samples)
		if delta < 0 {
			delta = -delta
		}
		if delta > warnDeltaThreshold {
			c.log.Warn("rnnoise input/output length delta %d exceeds threshold", delta)
		}
		if buffered := c.rnnoise.BufferedSamples(); buffered > warnBufferedThreshold {
			c.log.Warn("rnnoise buffered samples %d exceeds threshold, latency may be building up", buffered)
		}

		samples = c.loudness.Process(samples)
	}

	return audiochunk.AudioChunk{
		Samples:    samples,
		SampleRate: targetSampleRate,
		Timestamp:  raw.Timestamp,
		ChunkID:    raw.ChunkID,
		DeviceType: raw.DeviceType,
	}
}

const (
	warnBufferedThreshold = 1000
	warnDeltaThreshold    = 50
)

// Close releases any native resources the conditioner holds (RNNoise).
func (c *Conditioner) Close() error {
	if c.rnnoise != nil {
		return c.rnnoise.Close()
	}
	return nil
}

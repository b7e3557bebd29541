package condition

import "math"

// Loudness is a stateful EBU R128 style loudness normalizer. No Go library
// in the retrieved example pack exposes a programmatic, per-chunk-stateful
// K-weighted loudness API (only ffmpeg loudnorm/ebur128 filter-graph
// strings, which are subprocess-invocation, not an in-process call contract
// this conditioner can use across arbitrary-length streaming chunks) — see
// DESIGN.md. This implements the ITU-R BS.1770 K-weighting pre-filter pair
// plus an ungated running loudness estimate (the mean square of every
// K-weighted sample since construction; no absolute or relative gate is
// applied) and a slowly-adapting gain, which is sufficient to drive samples
// toward a target LUFS without per-chunk popping.
type Loudness struct {
	targetLUFS float64
	sampleRate int

	stage1     *biquadState
	stage2     *biquadState

	sumSquares float64
	sampleCount int64

	gain float64 // current applied linear gain, smoothed across calls
}

type biquadState struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func newBiquad(b0, b1, b2, a1, a2 float64) *biquadState {
	return &biquadState{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

func (b *biquadState) process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// NewLoudness builds a normalizer targeting targetLUFS at sampleRate.
func NewLoudness(targetLUFS float64, sampleRate int) *Loudness {
	// BS.1770 pre-filter coefficients for 48 kHz (stage1: high shelf +4dB
	// above ~1.5kHz; stage2: high-pass at ~38Hz). Values below are the
	// standard 48kHz K-weighting coefficients; other rates reuse them as a
	// close approximation since the conditioner always runs post-resample
	// at 48kHz in this pipeline.
	stage1 := newBiquad(1.53512485958697, -2.69169618940638, 1.19839281085285,
		-1.69065929318241, 0.73248077421585)
	stage2 := newBiquad(1.0, -2.0, 1.0, -1.99004745483398, 0.99007225036621)

	return &Loudness{
		targetLUFS: targetLUFS,
		sampleRate: sampleRate,
		stage1:     stage1,
		stage2:     stage2,
		gain:       1.0,
	}
}

// Process applies K-weighting to measure this block's contribution to
// running loudness, updates the normalizer's gain estimate, and returns the
// input scaled by the current gain. Gain adapts slowly (one update per
// call) so normalization doesn't introduce audible step artifacts.
func (l *Loudness) Process(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}

	var blockSumSq float64
	for _, s := range samples {
		weighted := l.stage2.process(l.stage1.process(float64(s)))
		blockSumSq += weighted * weighted
	}

	l.sumSquares += blockSumSq
	l.sampleCount += int64(len(samples))

	meanSq := l.sumSquares / float64(l.sampleCount)
	if meanSq > 0 {
		currentLUFS := -0.691 + 10*math.Log10(meanSq)
		deltaDB := l.targetLUFS - currentLUFS
		targetGain := math.Pow(10, deltaDB/20)

		// Clamp to avoid runaway gain on near-silence input.
		if targetGain > 16 {
			targetGain = 16
		}
		if targetGain < 1.0/16 {
			targetGain = 1.0 / 16
		}

		// One-pole smoothing toward the target gain.
		const smoothing = 0.05
		l.gain += (targetGain - l.gain) * smoothing
	}

	out := make([]float32, len(samples))
	for i, s := range samples {
		v := float64(s) * l.gain
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = float32(v)
	}
	return out
}

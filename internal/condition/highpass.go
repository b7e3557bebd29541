package condition

import "math"

// HighPass is a stateful biquad high-pass filter (RBJ cookbook formula),
// used by the microphone conditioner to remove rumble below 80 Hz before
// noise suppression. State persists across chunks.
type HighPass struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewHighPass builds a high-pass filter at cutoffHz for the given sample
// rate (the microphone conditioner uses 80 Hz).
func NewHighPass(cutoffHz float64, sampleRate int) *HighPass {
	const q = 0.707 // Butterworth Q

	omega := 2 * math.Pi * cutoffHz / float64(sampleRate)
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2 * q)

	b0 := (1 + cosOmega) / 2
	b1 := -(1 + cosOmega)
	b2 := (1 + cosOmega) / 2
	a0 := 1 + alpha
	a1 := -2 * cosOmega
	a2 := 1 - alpha

	return &HighPass{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Process filters samples in place and returns them, carrying filter state
// forward to the next call.
func (h *HighPass) Process(samples []float32) []float32 {
	for i, x := range samples {
		xf := float64(x)
		y := h.b0*xf + h.b1*h.x1 + h.b2*h.x2 - h.a1*h.y1 - h.a2*h.y2
		h.x2, h.x1 = h.x1, xf
		h.y2, h.y1 = h.y1, y
		samples[i] = float32(y)
	}
	return samples
}

package condition

// resamplerBlockSize is the fixed input block size the persistent resampler
// consumes. Only complete blocks are processed; residual samples remain
// buffered across calls. Allocating a resampler per call was measured (in
// the system this pipeline is modeled on) to amplify RMS to 173.5%, so the
// resampler here is constructed once and reused for the conditioner's
// lifetime.
const resamplerBlockSize = 512

// sincParams are the adaptive resampler parameters selected by the target
// ratio per spec §4.4.
type sincParams struct {
	sincLength    int
	interpolation string // "cubic" or "linear"
	oversampling  int
}

// selectSincParams picks sinc parameters for ratio r = targetRate/srcRate.
func selectSincParams(r float64) sincParams {
	switch {
	case r >= 2.0:
		return sincParams{512, "cubic", 512}
	case r >= 1.5:
		return sincParams{384, "cubic", 384}
	case r > 1.0:
		return sincParams{256, "linear", 256}
	case r <= 0.5:
		return sincParams{512, "cubic", 512}
	default:
		return sincParams{384, "linear", 384}
	}
}

// Resampler converts a source sample rate to a fixed target rate, buffering
// residual input samples across calls so only complete fixed-size blocks
// are ever fed to the underlying kernel.
type Resampler interface {
	// Process appends in to the internal buffer and returns resampled
	// output for every complete block consumed. May return a nil/empty
	// slice if not enough input has accumulated yet — that is not loss,
	// it is buffering (spec §4.4 invariant).
	Process(in []float32) []float32
	SrcRate() int
	DstRate() int
}

// NewResampler builds a persistent resampler from srcRate to dstRate. When
// srcRate == dstRate it returns a pass-through that never buffers.
func NewResampler(srcRate, dstRate int) Resampler {
	if srcRate == dstRate {
		return identityResampler{rate: srcRate}
	}
	return newAdaptiveResampler(srcRate, dstRate)
}

type identityResampler struct{ rate int }

func (r identityResampler) Process(in []float32) []float32 {
	out := make([]float32, len(in))
	copy(out, in)
	return out
}
func (r identityResampler) SrcRate() int { return r.rate }
func (r identityResampler) DstRate() int { return r.rate }

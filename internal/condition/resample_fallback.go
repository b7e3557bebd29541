//go:build !audioresampler

package condition

// This is the default build: github.com/tphakala/go-audio-resampler pulls in
// a cgo-backed sinc kernel that isn't always available in a build
// environment, so the default build uses a persistent linear-interpolation
// resampler instead. It honors the same fixed-block-buffering contract
// (§4.4) as the real sinc backend in resample_sinc.go, built with
// `-tags audioresampler`. This mirrors the teacher's own rnnoise.go /
// rnnoise_real.go split.
type adaptiveResampler struct {
	srcRate, dstRate int
	ratio            float64
	params           sincParams

	buf []float32 // residual input samples awaiting a full block
}

func newAdaptiveResampler(srcRate, dstRate int) Resampler {
	ratio := float64(dstRate) / float64(srcRate)
	return &adaptiveResampler{
		srcRate: srcRate,
		dstRate: dstRate,
		ratio:   ratio,
		params:  selectSincParams(ratio),
	}
}

func (r *adaptiveResampler) SrcRate() int { return r.srcRate }
func (r *adaptiveResampler) DstRate() int { return r.dstRate }

func (r *adaptiveResampler) Process(in []float32) []float32 {
	r.buf = append(r.buf, in...)

	var out []float32
	for len(r.buf) >= resamplerBlockSize {
		block := r.buf[:resamplerBlockSize]
		out = append(out, r.resampleBlock(block)...)
		r.buf = r.buf[resamplerBlockSize:]
	}
	return out
}

// resampleBlock linearly interpolates a fixed-size input block to the
// corresponding output length at the target ratio. Cubic interpolation per
// sincParams.interpolation would sharpen the transition band but linear is
// the deterministic, allocation-light stand-in used here.
func (r *adaptiveResampler) resampleBlock(block []float32) []float32 {
	outLen := int(float64(len(block)) * r.ratio)
	if outLen <= 0 {
		return nil
	}
	out := make([]float32, outLen)
	step := float64(len(block)-1) / float64(outLen-1)
	if outLen == 1 {
		step = 0
	}
	for i := 0; i < outLen; i++ {
		pos := float64(i) * step
		idx := int(pos)
		frac := pos - float64(idx)
		if idx+1 < len(block) {
			out[i] = block[idx]*float32(1-frac) + block[idx+1]*float32(frac)
		} else {
			out[i] = block[idx]
		}
	}
	return out
}

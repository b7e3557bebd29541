//go:build rnnoise

package condition

import (
	"context"
	"fmt"
	"math"

	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/audio/pkg/noisesuppression/implementations/rnnoise"
)

// rnnoiseFrameSize is RNNoise's native frame size at 48kHz (10ms).
const rnnoiseFrameSize = 480

// RNNoiseProcessor wraps the real RNNoise suppressor. Unlike the teacher's
// rnnoise_real.go, which straddles a 16kHz pipeline and resamples around
// RNNoise's native 48kHz, this conditioner's mic chain already runs at
// 48kHz mono, so frames go to SuppressNoise directly with no resampling.
type RNNoiseProcessor struct {
	denoiser *rnnoise.RNNoise
	buf      []float32
}

// NewRNNoiseProcessor constructs a real RNNoise-backed processor.
func NewRNNoiseProcessor() (*RNNoiseProcessor, error) {
	denoiser, err := rnnoise.New(audio.Channel(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create rnnoise denoiser: %w", err)
	}
	return &RNNoiseProcessor{denoiser: denoiser}, nil
}

// Process feeds complete native frames to the suppressor and returns
// suppressed output for every full frame consumed; residual input remains
// buffered (spec §4.4 invariant: output length is 0 or the processed
// length, never partial).
func (r *RNNoiseProcessor) Process(samples []float32) []float32 {
	r.buf = append(r.buf, samples...)

	var out []float32
	ctx := context.Background()
	for len(r.buf) >= rnnoiseFrameSize {
		frame := r.buf[:rnnoiseFrameSize]
		r.buf = r.buf[rnnoiseFrameSize:]

		input := float32ToBytesLE(frame)
		output := make([]byte, len(input))
		if _, err := r.denoiser.SuppressNoise(ctx, input, output); err != nil {
			continue
		}
		out = append(out, bytesLEToFloat32(output)...)
	}
	return out
}

// BufferedSamples reports how many input samples are waiting for a full frame.
func (r *RNNoiseProcessor) BufferedSamples() int { return len(r.buf) }

// Close releases the suppressor's native resources.
func (r *RNNoiseProcessor) Close() error {
	return r.denoiser.Close()
}

func float32ToBytesLE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		bits := math.Float32bits(s)
		out[i*4] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}

func bytesLEToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

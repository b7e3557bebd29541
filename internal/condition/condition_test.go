package condition

import (
	"math"
	"testing"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/logger"
)

func toneSamples(n int, amp float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp
	}
	return out
}

func TestNewResampler_IdentityWhenRatesMatch(t *testing.T) {
	r := NewResampler(48000, 48000)
	in := toneSamples(512, 0.25)
	out := r.Process(in)
	if len(out) != len(in) {
		t.Fatalf("expected identity passthrough to preserve length, got %d want %d", len(out), len(in))
	}
}

func TestSelectSincParams_CoversRatioBands(t *testing.T) {
	cases := []float64{3.0, 1.6, 1.2, 1.0, 0.4, 0.8}
	for _, r := range cases {
		p := selectSincParams(r)
		if p.sincLength <= 0 || p.oversampling <= 0 {
			t.Errorf("selectSincParams(%v) returned invalid params %+v", r, p)
		}
	}
}

func TestHighPass_AttenuatesDC(t *testing.T) {
	hp := NewHighPass(80.0, 48000)
	dc := toneSamples(48000, 0.5) // 1 second of pure DC offset
	out := hp.Process(dc)

	// DC should be driven toward zero well before the end of a full second.
	tail := out[len(out)-100:]
	var maxAbs float32
	for _, s := range tail {
		if a := float32(math.Abs(float64(s))); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 0.01 {
		t.Errorf("expected high-pass to suppress DC offset, tail max abs = %v", maxAbs)
	}
}

func TestLoudness_NormalizesTowardTarget(t *testing.T) {
	l := NewLoudness(-23.0, 48000)
	quiet := toneSamples(48000*2, 0.01)

	var lastBlock []float32
	for i := 0; i < len(quiet); i += 4800 {
		end := i + 4800
		if end > len(quiet) {
			end = len(quiet)
		}
		lastBlock = l.Process(quiet[i:end])
	}

	for _, s := range lastBlock {
		if s > 1.0 || s < -1.0 {
			t.Fatalf("loudness output escaped [-1, 1]: %v", s)
		}
	}
	// After many blocks of consistent quiet input, gain should have moved up
	// from unity to amplify the signal toward the target loudness.
	if l.gain <= 1.0 {
		t.Errorf("expected gain to increase above unity for quiet input, got %v", l.gain)
	}
}

func TestConditioner_OutputsAt48kHz(t *testing.T) {
	c, err := New(false, 48000, -23.0, logger.New(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	in := toneSamples(1024, 0.1)
	out := c.Process(audiochunk.AudioChunk{Samples: in, SampleRate: 48000}, 1)
	if out.SampleRate != targetSampleRate {
		t.Errorf("expected output sample rate %d, got %d", targetSampleRate, out.SampleRate)
	}
}

func TestConditioner_NoResampleNeededPreservesSampleCount(t *testing.T) {
	c, err := New(false, 48000, -23.0, logger.New(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	in := toneSamples(1024, 0.1)
	out := c.Process(audiochunk.AudioChunk{Samples: in, SampleRate: 48000}, 1)
	if len(out.Samples) != len(in) {
		t.Errorf("expected sample count preserved when src==dst rate, got %d want %d", len(out.Samples), len(in))
	}
}

func TestConditioner_DownmixesMultiChannel(t *testing.T) {
	c, err := New(false, 48000, -23.0, logger.New(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	// Stereo interleaved: left=1.0, right=-1.0 should average to 0.
	stereo := make([]float32, 2048)
	for i := 0; i < len(stereo); i += 2 {
		stereo[i] = 1.0
		stereo[i+1] = -1.0
	}
	out := c.Process(audiochunk.AudioChunk{Samples: stereo, SampleRate: 48000}, 2)
	for _, s := range out.Samples {
		if s != 0 {
			t.Fatalf("expected downmixed silence from opposite-phase stereo, got %v", s)
		}
	}
}

// Package vad implements the continuous voice-activity segmenter (C6):
// redemption-time-based speech/silence boundary commitment over a
// continuous 48kHz->16kHz downsampled stream.
package vad

import "github.com/meetcap/core/internal/audiochunk"

const kernelSampleRate = 16000

// Detector classifies a 16kHz mono frame as speech or not. EnergyDetector
// (energy.go) is the always-available default; SileroDetector (silero.go,
// `-tags silerovad`) is a real neural backend behind the same interface.
type Detector interface {
	IsSpeech(frame []float32) bool
}

// Config tunes the segmenter.
type Config struct {
	RedemptionMs int // non-speech duration required to close a segment
}

// DefaultConfig returns spec §4.6's default redemption time (400ms,
// adopted uniformly per the Open Question resolution in DESIGN.md).
func DefaultConfig() Config {
	return Config{RedemptionMs: 400}
}

// Segmenter is a stateful VAD over a continuous 48kHz input stream. It
// downsamples to 16kHz for the detector and applies redemption-time
// hysteresis to bridge natural speech pauses.
type Segmenter struct {
	cfg      Config
	detector Detector

	downsampleBuf []float32 // residual 48kHz samples awaiting a full 3:1 group

	inSpeech       bool
	segment        []float32
	segStartMs     float64
	silenceMs      float64
	elapsedInputMs float64

	redemptionFrameMs float64
}

const frameSamples16k = 160 // 10ms @ 16kHz, a conventional VAD frame size

// New builds a Segmenter using detector for frame classification.
func New(cfg Config, detector Detector) *Segmenter {
	return &Segmenter{
		cfg:               cfg,
		detector:          detector,
		redemptionFrameMs: float64(frameSamples16k) / float64(kernelSampleRate) * 1000,
	}
}

// Process consumes 48kHz mono samples and returns zero or more completed
// speech segments. Boundaries are committed only after RedemptionMs of
// continuous non-speech, per spec §4.6.
func (s *Segmenter) Process(samples []float32) []audiochunk.SpeechSegment {
	down := s.downsample(samples)
	if len(down) == 0 {
		return nil
	}

	var segments []audiochunk.SpeechSegment
	for i := 0; i+frameSamples16k <= len(down); i += frameSamples16k {
		frame := down[i : i+frameSamples16k]
		frameMs := float64(len(frame)) / float64(kernelSampleRate) * 1000

		speech := s.detector.IsSpeech(frame)
		nowMs := s.elapsedInputMs

		switch {
		case speech && !s.inSpeech:
			s.inSpeech = true
			s.segStartMs = nowMs
			s.segment = append([]float32(nil), frame...)
			s.silenceMs = 0
		case speech && s.inSpeech:
			s.segment = append(s.segment, frame...)
			s.silenceMs = 0
		case !speech && s.inSpeech:
			// Bridge the pause: keep accumulating until redemption expires.
			s.segment = append(s.segment, frame...)
			s.silenceMs += frameMs
			if s.silenceMs >= float64(s.cfg.RedemptionMs) {
				segments = append(segments, s.closeSegment(nowMs+frameMs))
			}
		default:
			// silence and not in speech: nothing to do
		}

		s.elapsedInputMs += frameMs
	}
	return segments
}

func (s *Segmenter) closeSegment(endMs float64) audiochunk.SpeechSegment {
	// Trim the trailing redemption silence from the emitted audio so the
	// segment itself reflects speech + a natural pause, not the full
	// redemption window.
	trimSamples := int(float64(s.cfg.RedemptionMs) / 1000 * kernelSampleRate)
	samples := s.segment
	if trimSamples > 0 && trimSamples < len(samples) {
		samples = samples[:len(samples)-trimSamples]
	}

	seg := audiochunk.SpeechSegment{
		Samples: samples,
		StartMs: s.segStartMs,
		EndMs:   endMs,
	}

	s.inSpeech = false
	s.segment = nil
	s.silenceMs = 0
	return seg
}

// Flush returns any in-progress segment and resets state.
func (s *Segmenter) Flush() []audiochunk.SpeechSegment {
	if !s.inSpeech || len(s.segment) == 0 {
		s.reset()
		return nil
	}
	seg := audiochunk.SpeechSegment{
		Samples: s.segment,
		StartMs: s.segStartMs,
		EndMs:   s.elapsedInputMs,
	}
	s.reset()
	return []audiochunk.SpeechSegment{seg}
}

func (s *Segmenter) reset() {
	s.inSpeech = false
	s.segment = nil
	s.silenceMs = 0
}

// downsample converts accumulated 48kHz mono input to 16kHz by 3:1
// decimation with a simple box-average anti-alias, buffering any samples
// that don't complete a full group of 3.
func (s *Segmenter) downsample(samples []float32) []float32 {
	s.downsampleBuf = append(s.downsampleBuf, samples...)

	groups := len(s.downsampleBuf) / 3
	if groups == 0 {
		return nil
	}

	out := make([]float32, groups)
	for i := 0; i < groups; i++ {
		a, b, c := s.downsampleBuf[i*3], s.downsampleBuf[i*3+1], s.downsampleBuf[i*3+2]
		out[i] = (a + b + c) / 3
	}
	s.downsampleBuf = s.downsampleBuf[groups*3:]
	return out
}

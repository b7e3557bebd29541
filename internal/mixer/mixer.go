// Package mixer implements the adaptive two-source mixer (C5): per-source
// ring buffers, 50ms window emission, per-device-kind adaptive timeouts,
// and RMS-based ducking of the microphone under loud system audio.
package mixer

import (
	"time"

	"github.com/meetcap/core/internal/audiochunk"
)

// WindowSamples is the fixed mixed-window size: 50ms at 48kHz.
const WindowSamples = 2400

// Config tunes the mixer's adaptive timeouts and ducking response.
type Config struct {
	WiredTimeout     time.Duration
	BluetoothTimeout time.Duration
	DuckThresholdRMS float64 // system RMS above which mic gain starts ducking
	DuckRatio        float64 // minimum mic gain multiplier at full ducking
}

// DefaultConfig returns spec-mandated timeout defaults and a tuned ducking
// response (spec §9 leaves the duck threshold as an open, tunable constant).
func DefaultConfig() Config {
	return Config{
		WiredTimeout:     60 * time.Millisecond,
		BluetoothTimeout: 150 * time.Millisecond,
		DuckThresholdRMS: 0.08,
		DuckRatio:        0.35,
	}
}

type sourceBuffer struct {
	samples     []float32
	kind        audiochunk.InputDeviceKind
	lastPushAt  time.Time // mixer construction time until the first push
}

func (b *sourceBuffer) timeout(cfg Config) time.Duration {
	if b.kind.IsBluetooth() {
		return cfg.BluetoothTimeout
	}
	return cfg.WiredTimeout
}

func (b *sourceBuffer) hasWindow() bool { return len(b.samples) >= WindowSamples }

func (b *sourceBuffer) popWindow() []float32 {
	out := make([]float32, WindowSamples)
	copy(out, b.samples[:WindowSamples])
	b.samples = b.samples[WindowSamples:]
	return out
}

func (b *sourceBuffer) timedOut(cfg Config, now time.Time) bool {
	return now.Sub(b.lastPushAt) > b.timeout(cfg)
}

// Mixer combines microphone and system-audio 48kHz mono streams into strictly
// time-ordered 50ms windows. Its ring buffers are owned exclusively by
// whichever goroutine drives it (the pipeline orchestrator); the mixer
// itself holds no locks.
type Mixer struct {
	cfg Config
	mic sourceBuffer
	sys sourceBuffer

	emitted uint64
}

// New constructs a Mixer. micKind/sysKind set each source's adaptive timeout.
func New(cfg Config, micKind, sysKind audiochunk.InputDeviceKind) *Mixer {
	now := time.Now()
	return &Mixer{
		cfg: cfg,
		mic: sourceBuffer{kind: micKind, lastPushAt: now},
		sys: sourceBuffer{kind: sysKind, lastPushAt: now},
	}
}

// PushMic appends microphone samples to the mic ring buffer.
func (m *Mixer) PushMic(samples []float32) { m.push(&m.mic, samples) }

// PushSystem appends system-audio samples to the system ring buffer.
func (m *Mixer) PushSystem(samples []float32) { m.push(&m.sys, samples) }

func (m *Mixer) push(b *sourceBuffer, samples []float32) {
	b.samples = append(b.samples, samples...)
	b.lastPushAt = time.Now()
}

// HasDataReady reports whether a mixed window can be produced right now:
// any source has a full window AND its partner is either also ready or has
// exceeded its adaptive timeout.
func (m *Mixer) HasDataReady() bool {
	return m.hasDataReadyAt(time.Now())
}

func (m *Mixer) hasDataReadyAt(now time.Time) bool {
	micReady := m.mic.hasWindow()
	sysReady := m.sys.hasWindow()

	if micReady && (sysReady || m.sys.timedOut(m.cfg, now)) {
		return true
	}
	if sysReady && (micReady || m.mic.timedOut(m.cfg, now)) {
		return true
	}
	return false
}

// PopMixed returns one mixed 50ms window, or nil if none is ready.
func (m *Mixer) PopMixed() []float32 {
	now := time.Now()
	if !m.hasDataReadyAt(now) {
		return nil
	}

	var micWin, sysWin []float32
	if m.mic.hasWindow() {
		micWin = m.mic.popWindow()
	} else {
		micWin = make([]float32, WindowSamples) // silence: partner timed out
	}
	if m.sys.hasWindow() {
		sysWin = m.sys.popWindow()
	} else {
		sysWin = make([]float32, WindowSamples) // silence: partner timed out
	}

	m.emitted++
	return mix(micWin, sysWin, m.cfg)
}

// mix combines two 50ms windows with RMS-based ducking: when system RMS
// exceeds the threshold, mic gain is reduced proportionally (side-chain
// compression, never below DuckRatio). Any summed sample that still falls
// outside [-1, 1] is hard-clamped to that range.
func mix(mic, sys []float32, cfg Config) []float32 {
	sysRMS := audiochunk.RMS(sys)

	micGain := float32(1.0)
	if sysRMS > cfg.DuckThresholdRMS && cfg.DuckThresholdRMS > 0 {
		excess := (sysRMS - cfg.DuckThresholdRMS) / cfg.DuckThresholdRMS
		if excess > 1 {
			excess = 1
		}
		minGain := float32(cfg.DuckRatio)
		micGain = 1 - float32(excess)*(1-minGain)
		if micGain < minGain {
			micGain = minGain
		}
	}

	out := make([]float32, WindowSamples)
	for i := range out {
		v := mic[i]*micGain + sys[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return out
}

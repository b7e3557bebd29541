// Package capture opens OS audio streams via malgo and emits AudioChunks on
// the internal bus, the way the teacher's client/internal/audio wired
// malgo for WebRTC upload.
package capture

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/chunkqueue"
	"github.com/meetcap/core/internal/logger"
	"github.com/meetcap/core/internal/state"
)

// chunkSamples is the size of every emitted chunk. OS callback sizes vary,
// so a callback may emit zero, one or several chunks; leftover samples stay
// buffered for the next callback.
const chunkSamples = 1024

// Source identifies which logical input a Capturer drives.
type Source int

const (
	SourceMicrophone Source = iota
	SourceSystem
)

// Capturer owns one OS audio device and converts its native-format frames
// into AudioChunks pushed onto Chunks(). It owns its device handle and
// buffering state exclusively; nothing else touches them.
type Capturer struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	source     Source
	sampleRate int
	channels   int

	chunks   *chunkqueue.Unbounded
	seq      uint64
	startedAt time.Time

	buf   []float32
	bufMu sync.Mutex

	log   *logger.ContextLogger
	state *state.RecordingState

	running int32
}

// Config configures a Capturer.
type Config struct {
	DeviceInfo *malgo.DeviceInfo // nil selects the OS default
	IsPlayback bool              // true for loopback/system capture
}

// New opens a malgo context and prepares (but does not start) a capture
// device for the given logical source.
func New(source Source, cfg Config, st *state.RecordingState, log *logger.Logger) (*Capturer, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}

	c := &Capturer{
		ctx:    ctx,
		source: source,
		chunks: chunkqueue.New(),
		state:  st,
		log:    log.With(fmt.Sprintf("capture.%s", sourceName(source))),
	}

	deviceType := malgo.Capture
	if cfg.IsPlayback {
		deviceType = malgo.Loopback
	}

	deviceConfig := malgo.DefaultDeviceConfig(deviceType)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 0 // 0 lets malgo report the native channel count
	deviceConfig.SampleRate = 0       // 0 lets malgo report the native rate
	if cfg.DeviceInfo != nil {
		deviceConfig.Capture.DeviceID = cfg.DeviceInfo.ID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: c.onData,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		ctx.Uninit()
		return nil, fmt.Errorf("failed to init audio device: %w", err)
	}
	c.device = device
	c.sampleRate = int(device.SampleRate())
	c.channels = int(device.CaptureChannels())

	return c, nil
}

func sourceName(s Source) string {
	if s == SourceSystem {
		return "system"
	}
	return "mic"
}

// Chunks returns the channel AudioChunks are delivered on. Closed after Close.
func (c *Capturer) Chunks() <-chan audiochunk.AudioChunk { return c.chunks.Out() }

// Start begins the OS audio stream.
func (c *Capturer) Start() error {
	atomic.StoreInt32(&c.running, 1)
	c.startedAt = time.Now()
	if err := c.device.Start(); err != nil {
		atomic.StoreInt32(&c.running, 0)
		kind := state.ClassifyStreamError(err.Error())
		c.state.ReportError(state.NewAudioError(kind, fmt.Sprintf("failed to start capture: %v", err)))
		return err
	}
	return nil
}

// Stop halts the OS audio stream but leaves the Capturer reusable.
func (c *Capturer) Stop() error {
	atomic.StoreInt32(&c.running, 0)
	return c.device.Stop()
}

// Close stops the stream, releases the device and context, and closes Chunks().
func (c *Capturer) Close() error {
	atomic.StoreInt32(&c.running, 0)
	c.device.Uninit()
	c.ctx.Uninit()
	c.chunks.Close()
	return nil
}

// onData runs on malgo's realtime audio thread. It must never block or
// allocate unboundedly: conversion is synchronous, delivery is non-blocking.
func (c *Capturer) onData(_, input []byte, frameCount uint32) {
	if atomic.LoadInt32(&c.running) == 0 {
		return
	}

	samples := bytesToFloat32(input, c.channels)

	c.bufMu.Lock()
	c.buf = append(c.buf, samples...)
	for len(c.buf) >= chunkSamples {
		out := make([]float32, chunkSamples)
		copy(out, c.buf[:chunkSamples])
		c.buf = c.buf[chunkSamples:]
		c.emit(out)
	}
	c.bufMu.Unlock()
}

// emit must be called with bufMu held. Push is non-blocking and never
// drops, so the realtime callback above never stalls on a slow consumer.
func (c *Capturer) emit(samples []float32) {
	id := atomic.AddUint64(&c.seq, 1)
	chunk := audiochunk.AudioChunk{
		Samples:    samples,
		SampleRate: c.sampleRate,
		Timestamp:  time.Since(c.startedAt).Seconds(),
		ChunkID:    id,
		DeviceType: deviceTypeFor(c.source),
	}
	c.chunks.Push(chunk)
}

func deviceTypeFor(s Source) audiochunk.DeviceType {
	if s == SourceSystem {
		return audiochunk.DeviceSystem
	}
	return audiochunk.DeviceMicrophone
}

// bytesToFloat32 reinterprets a malgo F32 capture buffer (already
// interleaved native-endian float32) as a downmixed mono float32 slice.
func bytesToFloat32(input []byte, channels int) []float32 {
	if channels <= 0 {
		channels = 1
	}
	frameBytes := 4 * channels
	frames := len(input) / frameBytes
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			off := i*frameBytes + ch*4
			sum += decodeF32LE(input[off : off+4])
		}
		out[i] = sum / float32(channels)
	}
	return out
}

func decodeF32LE(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

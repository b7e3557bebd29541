// Package pipeline wires C3 -> C4 -> C5 -> C6 and fans out to the
// transcription and recording sinks (C7), adapted from the teacher's
// server/internal/transcription/pipeline.go channel-and-flush wiring.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/chunkqueue"
	"github.com/meetcap/core/internal/condition"
	"github.com/meetcap/core/internal/logger"
	"github.com/meetcap/core/internal/mixer"
	"github.com/meetcap/core/internal/state"
	"github.com/meetcap/core/internal/vad"
)

const (
	receiveTimeout        = 50 * time.Millisecond
	defaultMinSegSamples  = 800 // 50ms @ 16kHz
	defaultEnergyThreshold = 0.02
	logEveryChunks        = 200
	logEveryInterval      = 60 * time.Second
	flushSentinelCount    = 4
)

// Config tunes the mixer and segmenter stages the orchestrator builds,
// sourced from the process configuration file rather than hardcoded here.
type Config struct {
	Mixer             mixer.Config
	VAD               vad.Config
	EnergyThreshold   float64
	MinSegmentSamples int
	TargetLUFS        float64
}

// DefaultConfig mirrors config.Default()'s values for callers (tests, tools)
// that don't load a config file.
func DefaultConfig() Config {
	return Config{
		Mixer:             mixer.DefaultConfig(),
		VAD:               vad.DefaultConfig(),
		EnergyThreshold:   defaultEnergyThreshold,
		MinSegmentSamples: defaultMinSegSamples,
		TargetLUFS:        -23.0,
	}
}

// TranscriptionSink consumes speech-only 16kHz mono audio chunks.
type TranscriptionSink interface {
	SendSpeechSegment(audiochunk.SpeechSegment) error
}

// RecordingSink consumes the full 48kHz mixed stream.
type RecordingSink interface {
	SendMixedChunk(audiochunk.AudioChunk) error
}

// Orchestrator owns the input channel, mixer, and segmenter (C7).
type Orchestrator struct {
	micConditioner *condition.Conditioner
	sysConditioner *condition.Conditioner
	micChannels    int
	sysChannels    int

	mixer             *mixer.Mixer
	segmenter         *vad.Segmenter
	minSegmentSamples int

	input *chunkqueue.Unbounded

	transcriptionSink TranscriptionSink
	recordingSink     RecordingSink

	state *state.RecordingState
	log   *logger.ContextLogger

	wg     sync.WaitGroup
	cancel context.CancelFunc

	processedChunks  uint64
	lastLoggedChunks uint64
	lastLogAt        time.Time
}

// inputSender adapts the Orchestrator's unbounded input queue to
// state.Sender. Push never blocks and never drops, so this never fails
// while the queue is open.
type inputSender struct{ q *chunkqueue.Unbounded }

func (s inputSender) SendAudioChunk(chunk audiochunk.AudioChunk) error {
	s.q.Push(chunk)
	return nil
}

// Start builds conditioners and the mixer/segmenter, registers the input
// channel with RecordingState, and spawns the pipeline task.
func Start(
	micRate, sysRate, micChannels, sysChannels int,
	micKind, sysKind audiochunk.InputDeviceKind,
	transcriptionSink TranscriptionSink,
	recordingSink RecordingSink,
	pcfg Config,
	st *state.RecordingState,
	log *logger.Logger,
) (*Orchestrator, error) {
	micCond, err := condition.New(true, micRate, pcfg.TargetLUFS, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build mic conditioner: %w", err)
	}
	sysCond, err := condition.New(false, sysRate, pcfg.TargetLUFS, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build system conditioner: %w", err)
	}

	m := mixer.New(pcfg.Mixer, micKind, sysKind)
	seg := vad.New(pcfg.VAD, vad.NewDetector(pcfg.EnergyThreshold))

	input := chunkqueue.New()

	o := &Orchestrator{
		micConditioner:    micCond,
		sysConditioner:    sysCond,
		micChannels:       micChannels,
		sysChannels:       sysChannels,
		mixer:             m,
		segmenter:         seg,
		minSegmentSamples: pcfg.MinSegmentSamples,
		input:             input,
		transcriptionSink: transcriptionSink,
		recordingSink:     recordingSink,
		state:             st,
		log:               log.With("pipeline"),
		lastLogAt:         time.Now(),
	}

	st.Begin(inputSender{q: input})

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.wg.Add(1)
	go o.run(ctx)

	return o, nil
}

// SendAudioChunk enqueues a raw capture chunk for conditioning and mixing.
// The underlying queue is unbounded, so this never blocks and never drops.
func (o *Orchestrator) SendAudioChunk(chunk audiochunk.AudioChunk) error {
	o.input.Push(chunk)
	return nil
}

// run is the single pipeline task: receive with timeout, condition, mix,
// segment, fan out. Suspension only happens here, never in capture
// callbacks or conditioner stages.
func (o *Orchestrator) run(ctx context.Context) {
	defer o.wg.Done()

	for {
		select {
		case <-ctx.Done():
			o.drainRemaining()
			return
		case chunk, ok := <-o.input.Out():
			if !ok {
				o.drainRemaining()
				return
			}
			o.handleChunk(chunk)
		case <-time.After(receiveTimeout):
			// No data within the timeout window; loop back and re-check
			// cancellation. This is the only suspension point besides the
			// receive itself.
		}
	}
}

func (o *Orchestrator) handleChunk(chunk audiochunk.AudioChunk) {
	if chunk.IsSentinel() {
		o.drainMixer()
		return
	}

	var conditioned audiochunk.AudioChunk
	switch chunk.DeviceType {
	case audiochunk.DeviceMicrophone:
		conditioned = o.micConditioner.Process(chunk, o.micChannels)
		if len(conditioned.Samples) > 0 {
			o.mixer.PushMic(conditioned.Samples)
		}
	case audiochunk.DeviceSystem:
		conditioned = o.sysConditioner.Process(chunk, o.sysChannels)
		if len(conditioned.Samples) > 0 {
			o.mixer.PushSystem(conditioned.Samples)
		}
	}

	o.drainMixer()
	o.maybeLog()
}

// drainMixer repeatedly pops ready windows, forwarding each to the
// recording sink and the VAD segmenter.
func (o *Orchestrator) drainMixer() {
	for o.mixer.HasDataReady() {
		window := o.mixer.PopMixed()
		if window == nil {
			break
		}
		o.processedChunks++

		mixedChunk := audiochunk.AudioChunk{
			Samples:    window,
			SampleRate: 48000,
			DeviceType: audiochunk.DeviceMixed,
			ChunkID:    o.processedChunks,
		}
		if o.recordingSink != nil {
			if err := o.recordingSink.SendMixedChunk(mixedChunk); err != nil {
				o.log.Warn("recording sink send failed: %v", err)
			}
		}

		segments := o.segmenter.Process(window)
		o.emitSegments(segments)
	}
}

func (o *Orchestrator) emitSegments(segments []audiochunk.SpeechSegment) {
	for _, seg := range segments {
		if len(seg.Samples) < o.minSegmentSamples {
			continue
		}
		if o.transcriptionSink != nil {
			if err := o.transcriptionSink.SendSpeechSegment(seg); err != nil {
				o.log.Warn("transcription sink send failed: %v", err)
			}
		}
	}
}

// drainRemaining flushes any residual VAD audio after the input channel
// closes or cancellation fires.
func (o *Orchestrator) drainRemaining() {
	o.drainMixer()
	o.emitSegments(o.segmenter.Flush())
}

func (o *Orchestrator) maybeLog() {
	if o.processedChunks-o.lastLoggedChunks >= logEveryChunks || time.Since(o.lastLogAt) >= logEveryInterval {
		o.log.Info("processed %d mixed windows", o.processedChunks)
		o.lastLoggedChunks = o.processedChunks
		o.lastLogAt = time.Now()
	}
}

// Stop drops the input-channel sender and awaits task completion.
func (o *Orchestrator) Stop() {
	o.state.End()
	o.cancel()
	o.wg.Wait()
	o.input.Close()
	o.micConditioner.Close()
	o.sysConditioner.Close()
}

// ForceFlushAndStop sends flush sentinels separated by short sleeps to
// guarantee residual audio is processed before the pipeline task exits,
// then stops it. Total sleep-blocking time stays within spec's ~100ms
// shutdown budget.
func (o *Orchestrator) ForceFlushAndStop() {
	sleeps := []time.Duration{20 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}
	for i := 0; i < flushSentinelCount; i++ {
		sentinelID := audiochunk.SentinelFloor + uint64(i)
		sentinel := audiochunk.NewSentinel(sentinelID, audiochunk.DeviceMixed)
		o.input.Push(sentinel)
		if i < len(sleeps) {
			time.Sleep(sleeps[i])
		}
	}
	o.Stop()
}

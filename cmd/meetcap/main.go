// Command meetcap runs the audio-capture-and-transcription core standalone:
// it selects safe devices, captures mic + system audio, conditions and
// mixes them, segments speech, and forwards chunks to a recording file and
// a debug transcription log. Wiring mirrors the teacher's
// client/cmd/client/main.go: config -> logger -> capture -> signal-based
// graceful shutdown.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/capture"
	"github.com/meetcap/core/internal/config"
	"github.com/meetcap/core/internal/devices"
	"github.com/meetcap/core/internal/eventbus"
	"github.com/meetcap/core/internal/logger"
	"github.com/meetcap/core/internal/mixer"
	"github.com/meetcap/core/internal/pipeline"
	"github.com/meetcap/core/internal/segmentlog"
	"github.com/meetcap/core/internal/state"
	"github.com/meetcap/core/internal/vad"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else {
			panic(err)
		}
	}

	log := logger.NewWithConfig(logger.Config{
		Level:  logger.ParseLogLevel(cfg.App.LogLevel),
		Format: logger.ParseOutputFormat(cfg.App.LogFormat),
		Output: os.Stdout,
		Debug:  cfg.App.Debug,
	})
	mainLog := log.With("main")

	recordingState := state.New(log)
	mainLog.Info("session id %s", recordingState.ID())

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		mainLog.Fatal("failed to init audio context: %v", err)
	}
	defer malgoCtx.Uninit()

	enumerator := capture.NewMalgoEnumerator(malgoCtx)
	selector := devices.New(enumerator, log)
	micDevice, sysDevice, err := selector.SelectSafeDevicesNamed(cfg.Audio.MicDeviceName, cfg.Audio.SystemDeviceName)
	if err != nil {
		mainLog.Fatal("failed to select audio devices: %v", err)
	}
	mainLog.Info("selected microphone=%q (%s) system=%q (%s)",
		micDevice.DisplayName, micDevice.Kind, sysDevice.DisplayName, sysDevice.Kind)

	micInfo, err := enumerator.ResolveDeviceInfo(malgo.Capture, micDevice.Handle)
	if err != nil {
		mainLog.Fatal("failed to resolve selected microphone device: %v", err)
	}
	sysInfo, err := enumerator.ResolveDeviceInfo(malgo.Playback, sysDevice.Handle)
	if err != nil {
		mainLog.Fatal("failed to resolve selected system audio device: %v", err)
	}

	bus := eventbus.New(log)
	if cfg.EventBus.BindAddress != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/events", bus.HandleWebSocket)
		busServer := &http.Server{Addr: cfg.EventBus.BindAddress, Handler: mux}
		go func() {
			if err := busServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLog.Warn("event bus server stopped: %v", err)
			}
		}()
		defer busServer.Close()
	}

	recordingSink, err := newWAVRecordingSink("recording-" + recordingState.ID() + ".wav")
	if err != nil {
		mainLog.Fatal("failed to open recording file: %v", err)
	}
	defer recordingSink.Close()

	transcriptionSink, err := segmentlog.New("segments-" + recordingState.ID() + ".jsonl")
	if err != nil {
		mainLog.Fatal("failed to open segment log: %v", err)
	}
	defer transcriptionSink.Close()

	micCapturer, err := capture.New(capture.SourceMicrophone, capture.Config{DeviceInfo: micInfo}, recordingState, log)
	if err != nil {
		mainLog.Fatal("failed to open microphone: %v", err)
	}
	sysCapturer, err := capture.New(capture.SourceSystem, capture.Config{DeviceInfo: sysInfo, IsPlayback: true}, recordingState, log)
	if err != nil {
		mainLog.Fatal("failed to open system audio: %v", err)
	}

	mixDefaults := mixer.DefaultConfig()
	pcfg := pipeline.Config{
		Mixer: mixer.Config{
			WiredTimeout:     durationMsOr(cfg.Mixer.WiredTimeoutMs, mixDefaults.WiredTimeout),
			BluetoothTimeout: durationMsOr(cfg.Mixer.BluetoothTimeoutMs, mixDefaults.BluetoothTimeout),
			DuckThresholdRMS: cfg.Mixer.DuckThresholdRMS,
			DuckRatio:        mixDefaults.DuckRatio,
		},
		VAD:               vad.Config{RedemptionMs: cfg.VAD.RedemptionMs},
		EnergyThreshold:   cfg.VAD.EnergyThreshold,
		MinSegmentSamples: cfg.VAD.MinSegmentSamples,
		TargetLUFS:        cfg.Loudness.TargetLUFS,
	}

	orchestrator, err := pipeline.Start(
		48000, 48000, 1, 1,
		micDevice.Kind, sysDevice.Kind,
		transcriptionSink, recordingSink,
		pcfg, recordingState, log,
	)
	if err != nil {
		mainLog.Fatal("failed to start pipeline: %v", err)
	}

	go forwardChunks(micCapturer.Chunks(), orchestrator, recordingState)
	go forwardChunks(sysCapturer.Chunks(), orchestrator, recordingState)

	if err := micCapturer.Start(); err != nil {
		mainLog.Fatal("failed to start microphone capture: %v", err)
	}
	if err := sysCapturer.Start(); err != nil {
		mainLog.Fatal("failed to start system capture: %v", err)
	}

	bus.Publish("recording.started", nil)
	mainLog.Info("recording started, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	mainLog.Info("shutting down...")
	_ = micCapturer.Stop()
	_ = sysCapturer.Stop()
	orchestrator.ForceFlushAndStop()
	_ = micCapturer.Close()
	_ = sysCapturer.Close()
	bus.Publish("recording.stopped", nil)

	for _, e := range recordingState.Errors() {
		mainLog.Warn("recorded error during session: %v", e)
	}
	mainLog.Info("stopped")
}

// durationMsOr converts a millisecond count from config into a time.Duration,
// falling back to def when ms is unset (zero or negative).
func durationMsOr(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func forwardChunks(chunks <-chan audiochunk.AudioChunk, o *pipeline.Orchestrator, st *state.RecordingState) {
	for chunk := range chunks {
		if err := o.SendAudioChunk(chunk); err != nil {
			kind, reportable := state.ClassifySendError(err.Error())
			if reportable {
				st.ReportError(state.NewAudioError(kind, err.Error()))
			}
		}
	}
}

// wavRecordingSink writes the mixed 48kHz stream to a WAV file, adapted
// from the teacher's server/internal/transcription/pipeline.go saveWAV
// helper's manual RIFF header writer.
type wavRecordingSink struct {
	file        *os.File
	dataBytes   uint32
	sampleRate  uint32
}

func newWAVRecordingSink(path string) (*wavRecordingSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := &wavRecordingSink{file: f, sampleRate: 48000}
	if err := s.writeHeaderPlaceholder(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *wavRecordingSink) writeHeaderPlaceholder() error {
	header := make([]byte, 44)
	copy(header[0:4], []byte("RIFF"))
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 3)  // IEEE float
	binary.LittleEndian.PutUint16(header[22:24], 1)  // mono
	binary.LittleEndian.PutUint32(header[24:28], s.sampleRate)
	byteRate := s.sampleRate * 4
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], 4) // block align
	binary.LittleEndian.PutUint16(header[34:36], 32) // bits per sample
	copy(header[36:40], []byte("data"))
	_, err := s.file.Write(header)
	return err
}

func (s *wavRecordingSink) SendMixedChunk(chunk audiochunk.AudioChunk) error {
	buf := make([]byte, len(chunk.Samples)*4)
	for i, sample := range chunk.Samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(sample))
	}
	n, err := s.file.Write(buf)
	s.dataBytes += uint32(n)
	return err
}

func (s *wavRecordingSink) Close() error {
	defer s.file.Close()
	if _, err := s.file.Seek(4, 0); err != nil {
		return err
	}
	riffSize := make([]byte, 4)
	binary.LittleEndian.PutUint32(riffSize, 36+s.dataBytes)
	if _, err := s.file.Write(riffSize); err != nil {
		return err
	}
	if _, err := s.file.Seek(40, 0); err != nil {
		return err
	}
	dataSize := make([]byte, 4)
	binary.LittleEndian.PutUint32(dataSize, s.dataBytes)
	_, err := s.file.Write(dataSize)
	return err
}


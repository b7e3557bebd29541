// Package calibrate implements a VAD energy-threshold calibration wizard,
// adapted from the teacher's client/internal/calibrate package. The
// teacher's version recorded locally and POSTed the audio to a separate
// transcription server's /api/v1/analyze-audio endpoint for analysis; this
// pipeline runs analysis in-process (recording and conditioning live in the
// same binary), so the HTTP round trip is replaced with a direct call over
// the audiochunk.RMS helper.
package calibrate

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/capture"
	"github.com/meetcap/core/internal/logger"
	"github.com/meetcap/core/internal/state"
)

// Statistics summarizes per-frame RMS energy over a recording window.
type Statistics struct {
	Min, Max, Avg, P5, P95 float64
	SampleCount            int
}

// analyzeFrameEnergies computes Statistics from a list of per-frame RMS
// values, the in-process equivalent of the teacher's server-side
// /api/v1/analyze-audio handler.
func analyzeFrameEnergies(energies []float64) Statistics {
	if len(energies) == 0 {
		return Statistics{}
	}
	sorted := append([]float64(nil), energies...)
	sort.Float64s(sorted)

	var sum float64
	for _, e := range sorted {
		sum += e
	}

	return Statistics{
		Min:         sorted[0],
		Max:         sorted[len(sorted)-1],
		Avg:         sum / float64(len(sorted)),
		P5:          percentile(sorted, 0.05),
		P95:         percentile(sorted, 0.95),
		SampleCount: len(sorted),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// RecommendThreshold derives an energy threshold above background noise
// with a safety margin, per the teacher's own heuristic: background P95 x
// 1.5, floored at twice the background average for very quiet rooms.
func RecommendThreshold(background, speech Statistics) float64 {
	recommended := background.P95 * 1.5
	if floor := background.Avg * 2; recommended < floor {
		recommended = floor
	}
	return recommended
}

// Wizard drives the background/speech recording steps and writes the
// recommended threshold back into a config file.
type Wizard struct {
	log *logger.ContextLogger
}

// NewWizard builds a calibration wizard.
func NewWizard(log *logger.Logger) *Wizard {
	return &Wizard{log: log.With("calibrate")}
}

// Run records backgroundDuration of silence and speechDuration of speech
// from the microphone, computes the recommended VAD energy threshold, and
// writes it into configPath's vad.energy_threshold field.
func (w *Wizard) Run(configPath string, backgroundDuration, speechDuration time.Duration) (float64, error) {
	capturer, err := capture.New(capture.SourceMicrophone, capture.Config{}, state.New(logger.New(false)), logger.New(false))
	if err != nil {
		return 0, fmt.Errorf("failed to open microphone: %w", err)
	}
	defer capturer.Close()

	if err := capturer.Start(); err != nil {
		return 0, fmt.Errorf("failed to start microphone: %w", err)
	}

	w.log.Info("recording %s of background noise", backgroundDuration)
	backgroundEnergies := w.recordEnergies(capturer, backgroundDuration)
	background := analyzeFrameEnergies(backgroundEnergies)

	w.log.Info("recording %s of speech", speechDuration)
	speechEnergies := w.recordEnergies(capturer, speechDuration)
	speech := analyzeFrameEnergies(speechEnergies)

	if err := capturer.Stop(); err != nil {
		return 0, fmt.Errorf("failed to stop microphone: %w", err)
	}

	threshold := RecommendThreshold(background, speech)
	w.log.Info("recommended vad.energy_threshold = %.4f (background p95=%.4f avg=%.4f, speech p5=%.4f)",
		threshold, background.P95, background.Avg, speech.P5)

	if err := updateEnergyThreshold(configPath, threshold); err != nil {
		return threshold, err
	}
	return threshold, nil
}

func (w *Wizard) recordEnergies(cap *capture.Capturer, d time.Duration) []float64 {
	var energies []float64
	deadline := time.After(d)
	for {
		select {
		case chunk, ok := <-cap.Chunks():
			if !ok {
				return energies
			}
			energies = append(energies, audiochunk.RMS(chunk.Samples))
		case <-deadline:
			return energies
		}
	}
}

// updateEnergyThreshold rewrites vad.energy_threshold in a YAML config file
// in place, preserving every other key.
func updateEnergyThreshold(configPath string, threshold float64) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("config file not found at %q: %w", configPath, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	vad, ok := doc["vad"].(map[string]interface{})
	if !ok {
		vad = make(map[string]interface{})
		doc["vad"] = vad
	}
	vad["energy_threshold"] = threshold

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(configPath, out, 0o644)
}

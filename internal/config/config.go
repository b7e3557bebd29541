// Package config loads the YAML configuration for the meetcap audio core,
// following the teacher's load-then-defaults pattern.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full process configuration.
type Config struct {
	App struct {
		Debug     bool   `yaml:"debug"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"app"`

	Audio struct {
		MicDeviceName    string `yaml:"mic_device_name"`
		SystemDeviceName string `yaml:"system_device_name"`
		TargetSampleRate int    `yaml:"target_sample_rate"`
	} `yaml:"audio"`

	VAD struct {
		RedemptionMs       int     `yaml:"redemption_ms"`
		EnergyThreshold    float64 `yaml:"energy_threshold"`
		MinSegmentSamples  int     `yaml:"min_segment_samples"`
	} `yaml:"vad"`

	Mixer struct {
		WiredTimeoutMs     int     `yaml:"wired_timeout_ms"`
		BluetoothTimeoutMs int     `yaml:"bluetooth_timeout_ms"`
		DuckThresholdRMS   float64 `yaml:"duck_threshold_rms"`
	} `yaml:"mixer"`

	Loudness struct {
		TargetLUFS float64 `yaml:"target_lufs"`
	} `yaml:"loudness"`

	Summarize struct {
		Provider        string `yaml:"provider"`
		Model           string `yaml:"model"`
		APIKey          string `yaml:"api_key"`
		OllamaEndpoint  string `yaml:"ollama_endpoint"`
		TokenThreshold  int    `yaml:"token_threshold"`
		TemplateID      string `yaml:"template_id"`
	} `yaml:"summarize"`

	EventBus struct {
		BindAddress string `yaml:"bind_address"`
	} `yaml:"event_bus"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Default returns a configuration with every field at its spec-mandated default.
func Default() *Config {
	cfg := &Config{}
	cfg.App.LogLevel = "info"
	cfg.App.LogFormat = "text"

	cfg.Audio.TargetSampleRate = 48000

	cfg.VAD.RedemptionMs = 400
	cfg.VAD.EnergyThreshold = 0.02 // RMS threshold on normalized float32 [-1,1] samples
	cfg.VAD.MinSegmentSamples = 800 // 50ms @ 16kHz

	cfg.Mixer.WiredTimeoutMs = 60
	cfg.Mixer.BluetoothTimeoutMs = 150
	cfg.Mixer.DuckThresholdRMS = 0.08

	cfg.Loudness.TargetLUFS = -23.0

	cfg.Summarize.Provider = "openai"
	cfg.Summarize.OllamaEndpoint = "http://localhost:11434"
	cfg.Summarize.TokenThreshold = 8000
	cfg.Summarize.TemplateID = "default"

	cfg.EventBus.BindAddress = "localhost:8090"
	return cfg
}

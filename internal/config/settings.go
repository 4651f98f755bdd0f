package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// TranscriptionConfig selects and configures the transcription service.
type TranscriptionConfig struct {
	APIKey   string `mapstructure:"api_key"`
	UseMock  bool   `mapstructure:"use_mock"`
	Provider string `mapstructure:"provider"` // "whisper" or "openai"
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

// RecorderConfig tunes the chunking state machine.
type RecorderConfig struct {
	ChunkIntervalMs   int  `mapstructure:"chunk_interval_ms"`
	MinSegmentMs      int  `mapstructure:"min_segment_ms"`
	MinPayloadBytes   int  `mapstructure:"min_payload_bytes"`
	SettleDelayMs     int  `mapstructure:"settle_delay_ms"`
	OrderedResults    bool `mapstructure:"ordered_results"`
	FlushOnSilence    bool `mapstructure:"flush_on_silence"`
	RingCapacityBytes int  `mapstructure:"ring_capacity_bytes"`
}

func (r RecorderConfig) ChunkInterval() time.Duration {
	return time.Duration(r.ChunkIntervalMs) * time.Millisecond
}

func (r RecorderConfig) MinSegment() time.Duration {
	return time.Duration(r.MinSegmentMs) * time.Millisecond
}

func (r RecorderConfig) SettleDelay() time.Duration {
	return time.Duration(r.SettleDelayMs) * time.Millisecond
}

// CaptureConfig describes what we ask of the host capture device.
type CaptureConfig struct {
	SampleRate       int32 `mapstructure:"sample_rate"`
	Channels         int16 `mapstructure:"channels"`
	FragmentPeriodMs int   `mapstructure:"fragment_period_ms"`
	EchoCancellation bool  `mapstructure:"echo_cancellation"`
	NoiseSuppression bool  `mapstructure:"noise_suppression"`
	AutoGainControl  bool  `mapstructure:"auto_gain_control"`
}

func (c CaptureConfig) FragmentPeriod() time.Duration {
	return time.Duration(c.FragmentPeriodMs) * time.Millisecond
}

// SilenceConfig tunes the silence detector.
type SilenceConfig struct {
	Threshold     float64 `mapstructure:"threshold"`
	MinDurationMs int     `mapstructure:"min_duration_ms"`
}

func (s SilenceConfig) MinDuration() time.Duration {
	return time.Duration(s.MinDurationMs) * time.Millisecond
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type Settings struct {
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Recorder      RecorderConfig      `mapstructure:"recorder"`
	Capture       CaptureConfig       `mapstructure:"capture"`
	Silence       SilenceConfig       `mapstructure:"silence"`
	Server        ServerConfig        `mapstructure:"server"`
	Source        string              `mapstructure:"source"` // "mic" or "server"
	Env           string              `mapstructure:"env"`
	Debug         bool                `mapstructure:"debug"`
}

// Load resolves settings once at startup from config_<env>.yaml plus
// environment overrides. A missing config file is not an error: an absent
// credential has to fall back to the mock service, not abort the process.
func Load() (*Settings, error) {
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.SetEnvPrefix("VOXPIPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func setDefaults() {
	viper.SetDefault("source", "mic")
	viper.SetDefault("debug", false)

	viper.SetDefault("transcription.provider", "whisper")
	viper.SetDefault("transcription.endpoint", "https://api.openai.com/v1/audio/transcriptions")
	viper.SetDefault("transcription.model", "whisper-1")
	viper.SetDefault("transcription.language", "en")

	viper.SetDefault("recorder.chunk_interval_ms", 6000)
	viper.SetDefault("recorder.min_segment_ms", 500)
	viper.SetDefault("recorder.min_payload_bytes", 100)
	viper.SetDefault("recorder.settle_delay_ms", 200)
	viper.SetDefault("recorder.ring_capacity_bytes", 1<<20)

	viper.SetDefault("capture.sample_rate", 16000)
	viper.SetDefault("capture.channels", 1)
	viper.SetDefault("capture.fragment_period_ms", 250)
	viper.SetDefault("capture.echo_cancellation", true)
	viper.SetDefault("capture.noise_suppression", true)
	viper.SetDefault("capture.auto_gain_control", true)

	viper.SetDefault("silence.threshold", 0.01)
	viper.SetDefault("silence.min_duration_ms", 1500)

	viper.SetDefault("server.addr", ":8080")
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}

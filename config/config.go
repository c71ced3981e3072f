package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Audio      AudioConfig      `yaml:"audio"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	TTS        TTSConfig        `yaml:"tts"`
	Log        LogConfig        `yaml:"log"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	RemoteAddr string `yaml:"remote_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token"`
}

type RecognizerConfig struct {
	Mode      string `yaml:"mode"`
	StreamURL string `yaml:"stream_url"`
	APIKey    string `yaml:"api_key"`
	Language  string `yaml:"language"`
}

type WhisperConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type TTSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	Voice    string `yaml:"voice"`
	Language string `yaml:"language"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8000"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "none"
	}
	if c.Audio.RemoteAddr == "" {
		c.Audio.RemoteAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Recognizer.Mode == "" {
		c.Recognizer.Mode = "stream"
	}
	if c.Recognizer.StreamURL == "" {
		c.Recognizer.StreamURL = "ws://localhost:8090/listen"
	}
	if c.Recognizer.Language == "" {
		c.Recognizer.Language = "en-US"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = "http://localhost:5002"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

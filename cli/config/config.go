package config

import (
	"fmt"
	"time"
)

// Config represents a vantage.yaml configuration file.
// All values are optional; zero values fall back to built-in defaults.
// CLI flags always override config values.
type Config struct {
	Listen       string          `yaml:"listen"`
	StageTimeout Duration        `yaml:"stage_timeout"`
	MaxArticles  int             `yaml:"max_articles"`
	Retention    RetentionConfig `yaml:"retention"`
	Stream       StreamConfig    `yaml:"stream"`
	Providers    ProvidersConfig `yaml:"providers"`
	Adapters     []AdapterConfig `yaml:"adapters"`
}

// RetentionConfig bounds how long terminal runs stay addressable.
type RetentionConfig struct {
	MaxRuns int      `yaml:"max_runs"`
	TTL     Duration `yaml:"ttl"`
}

// StreamConfig holds SSE streaming knobs.
type StreamConfig struct {
	Heartbeat     Duration `yaml:"heartbeat"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// ProvidersConfig holds the external API client settings.
type ProvidersConfig struct {
	Tavily TavilyConfig `yaml:"tavily"`
	Reka   RekaConfig   `yaml:"reka"`
}

// TavilyConfig configures the news search client.
type TavilyConfig struct {
	APIKey   string   `yaml:"api_key"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty"`
}

// RekaConfig configures the chat-completion client.
type RekaConfig struct {
	APIKey   string   `yaml:"api_key"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	Model    string   `yaml:"model,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty"`
}

// AdapterConfig is one downstream integration. Type selects the
// adapter (webhook, redis, s3); the remaining fields apply per type.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url,omitempty"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
	Bucket  string            `yaml:"bucket,omitempty"`
	Prefix  string            `yaml:"prefix,omitempty"`
	Region  string            `yaml:"region,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "90s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

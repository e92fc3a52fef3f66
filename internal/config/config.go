// Package config resolves runtime settings from defaults, an optional YAML
// file and SENTRIUS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SENTRIUS"

type Config struct {
	Mode    string  `mapstructure:"mode"`
	Debug   bool    `mapstructure:"debug"`
	Backend Backend `mapstructure:"backend"`
	Export  Export  `mapstructure:"export"`
	Notify  Notify  `mapstructure:"notify"`
}

type Backend struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries uint64        `mapstructure:"retries"`
	RPS     float64       `mapstructure:"rps"`
	Branch  string        `mapstructure:"branch"`
	Token   string        `mapstructure:"token"`
}

type Export struct {
	Sink       string `mapstructure:"sink"`
	URL        string `mapstructure:"url"`
	SourceType string `mapstructure:"sourcetype"`
	Source     string `mapstructure:"source"`
	SQS        SQS    `mapstructure:"sqs"`
}

type SQS struct {
	QueueURL string `mapstructure:"queue_url"`
	Region   string `mapstructure:"region"`
}

type Notify struct {
	SlackWebhook   string `mapstructure:"slack_webhook"`
	DiscordWebhook string `mapstructure:"discord_webhook"`
}

// New returns a viper instance with every key defaulted and bound to its
// environment variable (backend.url -> SENTRIUS_BACKEND_URL).
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("mode", "demo")
	v.SetDefault("debug", false)
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.retries", 2)
	v.SetDefault("backend.rps", 2.0)
	v.SetDefault("backend.branch", "main")
	v.SetDefault("backend.token", "")
	v.SetDefault("export.sink", "http")
	v.SetDefault("export.url", "")
	v.SetDefault("export.sourcetype", "sentrius:findings")
	v.SetDefault("export.source", "sentrius-backend")
	v.SetDefault("export.sqs.queue_url", "")
	v.SetDefault("export.sqs.region", "")
	v.SetDefault("notify.slack_webhook", "")
	v.SetDefault("notify.discord_webhook", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads path into v. An empty path searches $HOME and the working
// directory for .sentrius.yaml; a missing file there is not an error.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(".sentrius")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Decode validates v and returns the typed configuration.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Export.Sink = strings.ToLower(strings.TrimSpace(c.Export.Sink))
	if c.Backend.Timeout <= 0 {
		return Config{}, fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	switch c.Export.Sink {
	case "http", "sqs":
	default:
		return Config{}, fmt.Errorf("unknown export.sink %q (want http or sqs)", c.Export.Sink)
	}
	if c.Export.Sink == "sqs" && c.Export.SQS.QueueURL == "" {
		return Config{}, errors.New("export.sink is sqs but export.sqs.queue_url is empty")
	}
	return c, nil
}

// Load is New, Read and Decode in one call.
func Load(path string) (Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return Config{}, err
	}
	return Decode(v)
}

// SinkURL is the HTTP export endpoint, defaulting to the backend's
// /export_splunk route.
func (c Config) SinkURL() string {
	if c.Export.URL != "" {
		return c.Export.URL
	}
	return strings.TrimRight(c.Backend.URL, "/") + "/export_splunk"
}

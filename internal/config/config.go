package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/michaelbrown/playbot/internal/playground"
)

type PlaygroundConfig struct {
	ExecuteURL string        `mapstructure:"execute_url" yaml:"execute_url"`
	MiriURL    string        `mapstructure:"miri_url" yaml:"miri_url"`
	GistURL    string        `mapstructure:"gist_url" yaml:"gist_url"`
	ShareURL   string        `mapstructure:"share_url" yaml:"share_url"`
	Referer    string        `mapstructure:"referer" yaml:"referer"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type ChatConfig struct {
	Prefix           string `mapstructure:"prefix" yaml:"prefix"`
	MaxMessageLength int    `mapstructure:"max_message_length" yaml:"max_message_length"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url" yaml:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix"`
}

type Config struct {
	Playground PlaygroundConfig `mapstructure:"playground" yaml:"playground"`
	Chat       ChatConfig       `mapstructure:"chat" yaml:"chat"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	NATS       NATSConfig       `mapstructure:"nats" yaml:"nats"`
}

// Load reads playbot.yaml from the current directory or $HOME/.playbot, or
// from path when it is set. A missing config file leaves the defaults in
// place. PLAYBOT_* environment variables (also read from .env) override
// file values, e.g. PLAYBOT_CHAT_PREFIX.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("playbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.playbot")
	}

	v.SetEnvPrefix("playbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	ep := playground.DefaultEndpoints()
	v.SetDefault("playground.execute_url", ep.ExecuteURL)
	v.SetDefault("playground.miri_url", ep.MiriURL)
	v.SetDefault("playground.gist_url", ep.GistURL)
	v.SetDefault("playground.share_url", ep.ShareURL)
	v.SetDefault("playground.referer", ep.Referer)
	v.SetDefault("playground.timeout", 30*time.Second)

	v.SetDefault("chat.prefix", "?")
	v.SetDefault("chat.max_message_length", 2000)

	v.SetDefault("server.port", 8080)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "PLAYBOT")
}

// Validate rejects settings the bot cannot run with.
func (c *Config) Validate() error {
	if c.Chat.Prefix == "" {
		return fmt.Errorf("chat.prefix must not be empty")
	}
	if c.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("chat.max_message_length must be positive, got %d", c.Chat.MaxMessageLength)
	}
	if c.Playground.Timeout <= 0 {
		return fmt.Errorf("playground.timeout must be positive, got %s", c.Playground.Timeout)
	}
	return nil
}

// Endpoints returns the playground endpoints.
func (c *Config) Endpoints() playground.Endpoints {
	return playground.Endpoints{
		ExecuteURL: c.Playground.ExecuteURL,
		MiriURL:    c.Playground.MiriURL,
		GistURL:    c.Playground.GistURL,
		ShareURL:   c.Playground.ShareURL,
		Referer:    c.Playground.Referer,
	}
}

// Package config loads relay configuration from an optional YAML file and
// RELAY_-prefixed environment variables, env taking precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Models   ModelsConfig   `koanf:"models"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// RequestTimeout bounds non-streaming handler time. Zero disables the
	// timeout middleware; streaming exchanges are long-lived by nature.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type UpstreamConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

type ModelsConfig struct {
	// Aliases extends the built-in short-name table; entries here win over
	// the built-ins.
	Aliases map[string]string `koanf:"aliases"`
}

// Load reads configuration from path (skipped when the file is absent)
// and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	// Only the first underscore separates the section, so
	// RELAY_UPSTREAM_API_KEY -> upstream.api_key.
	if err := k.Load(env.Provider("RELAY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RELAY_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Log      LogConfig      `yaml:"log"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Sessions SessionsConfig `yaml:"sessions"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type UpstreamConfig struct {
	// CallTimeout bounds every individual upstream call (tool listing and
	// dispatch) so one unresponsive server cannot stall the rest.
	CallTimeout Duration `yaml:"call_timeout"`
}

type SessionsConfig struct {
	IdleTimeout   Duration `yaml:"idle_timeout"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Duration wraps time.Duration for YAML decoding of values like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "orch.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Upstream: UpstreamConfig{
			CallTimeout: Duration(10 * time.Second),
		},
		Sessions: SessionsConfig{
			IdleTimeout:   Duration(30 * time.Minute),
			SweepInterval: Duration(time.Minute),
		},
	}

	if path := os.Getenv("ORCH_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("ORCH_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("ORCH_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ORCH_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("ORCH_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("ORCH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if timeout := os.Getenv("ORCH_UPSTREAM_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ORCH_UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.Upstream.CallTimeout = Duration(parsed)
	}
	if idle := os.Getenv("ORCH_SESSION_IDLE_TIMEOUT"); idle != "" {
		parsed, err := time.ParseDuration(idle)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ORCH_SESSION_IDLE_TIMEOUT: %w", err)
		}
		cfg.Sessions.IdleTimeout = Duration(parsed)
	}
	if sweep := os.Getenv("ORCH_SESSION_SWEEP_INTERVAL"); sweep != "" {
		parsed, err := time.ParseDuration(sweep)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ORCH_SESSION_SWEEP_INTERVAL: %w", err)
		}
		cfg.Sessions.SweepInterval = Duration(parsed)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

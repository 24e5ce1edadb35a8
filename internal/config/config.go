// Package config loads the application configuration: a YAML file merged
// with environment overrides (PLUME_*). A .env file next to the process is
// honored, which keeps local development and containers on one mechanism.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	TemplatesDir string `yaml:"templates_dir"`
	ClientBook   string `yaml:"client_book"`
	LogLevel     string `yaml:"log_level"`

	Generator GeneratorConfig `yaml:"generator"`
	Redis     RedisConfig     `yaml:"redis"`
}

// GeneratorConfig configures the generative text service client and its
// circuit breaker.
type GeneratorConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Model            string        `yaml:"model"`
	Stream           bool          `yaml:"stream"`
	GenerateTimeout  time.Duration `yaml:"generate_timeout"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

// RedisConfig configures the optional shared session store. An empty Addr
// keeps sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration used when no file and no overrides are
// present.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		TemplatesDir: "templates",
		ClientBook:   "clients.yaml",
		LogLevel:     "info",
		Generator: GeneratorConfig{
			BaseURL:          "http://localhost:11434/api",
			Model:            "mistral",
			GenerateTimeout:  60 * time.Second,
			ProbeTimeout:     5 * time.Second,
			FailureThreshold: 3,
			Cooldown:         60 * time.Second,
		},
	}
}

// Load reads path (optional) and applies environment overrides.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "PLUME_LISTEN_ADDR")
	setString(&cfg.TemplatesDir, "PLUME_TEMPLATES_DIR")
	setString(&cfg.ClientBook, "PLUME_CLIENT_BOOK")
	setString(&cfg.LogLevel, "PLUME_LOG_LEVEL")
	setString(&cfg.Generator.BaseURL, "PLUME_GENERATOR_URL")
	setString(&cfg.Generator.Model, "PLUME_GENERATOR_MODEL")
	setString(&cfg.Redis.Addr, "PLUME_REDIS_ADDR")
	setString(&cfg.Redis.Password, "PLUME_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PLUME_REDIS_DB")
	setInt(&cfg.Generator.FailureThreshold, "PLUME_BREAKER_THRESHOLD")
	setDuration(&cfg.Generator.Cooldown, "PLUME_BREAKER_COOLDOWN")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

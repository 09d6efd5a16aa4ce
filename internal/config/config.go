package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "24h" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Port          string   `yaml:"port" validate:"required"`
	Env           string   `yaml:"env" validate:"oneof=development production"`
	MongoURI      string   `yaml:"mongoURI" validate:"required"`
	MongoDB       string   `yaml:"mongoDB" validate:"required"`
	DefaultLocale string   `yaml:"defaultLocale" validate:"required"`
	SessionTTL    Duration `yaml:"sessionTTL" validate:"required"`
}

var validate = validator.New()

// Load builds the configuration from an optional YAML file overlaid with
// environment variables. Environment variables win.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:          "3000",
		Env:           "development",
		MongoURI:      "mongodb://localhost:27017",
		MongoDB:       "martshift",
		DefaultLocale: "ko",
		SessionTTL:    Duration(24 * time.Hour),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.Port, "PORT")
	setEnv(&cfg.Env, "ENV")
	setEnv(&cfg.MongoURI, "MONGODB_URI")
	setEnv(&cfg.MongoDB, "MONGODB_DATABASE")
	setEnv(&cfg.DefaultLocale, "DEFAULT_LOCALE")
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = Duration(d)
		}
	}
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

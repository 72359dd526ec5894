package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/frozenfresh/internal/pricing"
)

// Config holds storefront client configuration. Values are read from a YAML
// file, then overridden by environment variables.
type Config struct {
	APIBaseURL  string        `yaml:"api_base_url"`
	StoragePath string        `yaml:"storage_path"`
	Pricing     PricingConfig `yaml:"pricing"`
}

type PricingConfig struct {
	FreeDeliveryThreshold int `yaml:"free_delivery_threshold"`
	FlatFee               int `yaml:"flat_fee"`
}

// DefaultPath returns the default config file location under the user's home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "frozenfresh.yaml"
	}
	return filepath.Join(home, ".frozenfresh", "config.yaml")
}

func defaults() Config {
	return Config{
		APIBaseURL:  "http://localhost:8080",
		StoragePath: defaultStoragePath(),
		Pricing: PricingConfig{
			FreeDeliveryThreshold: pricing.Default.FreeDeliveryThreshold,
			FlatFee:               pricing.Default.FlatFee,
		},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "frozenfresh.db"
	}
	return filepath.Join(home, ".frozenfresh", "store.db")
}

// Load reads configuration from path. A missing file is not an error: the
// defaults are used. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("FROZENFRESH_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("FROZENFRESH_STORAGE_PATH"); v != "" {
		cfg.StoragePath = v
	}

	if cfg.Pricing.FreeDeliveryThreshold < 0 {
		return Config{}, errors.New("free_delivery_threshold cannot be negative")
	}
	if cfg.Pricing.FlatFee < 0 {
		return Config{}, errors.New("flat_fee cannot be negative")
	}

	return cfg, nil
}

// PricingConfig converts the configured pricing values into the rules used by
// the cart.
func (c Config) PricingRules() pricing.Config {
	return pricing.Config{
		FreeDeliveryThreshold: c.Pricing.FreeDeliveryThreshold,
		FlatFee:               c.Pricing.FlatFee,
	}
}

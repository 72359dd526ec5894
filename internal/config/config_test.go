package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 500, cfg.Pricing.FreeDeliveryThreshold)
	assert.Equal(t, 50, cfg.Pricing.FlatFee)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://shop.example.com
storage_path: /tmp/shop.db
pricing:
  free_delivery_threshold: 1000
  flat_fee: 75
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/shop.db", cfg.StoragePath)
	assert.Equal(t, 1000, cfg.Pricing.FreeDeliveryThreshold)
	assert.Equal(t, 75, cfg.Pricing.FlatFee)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://file.example.com\n"), 0o600))
	t.Setenv("FROZENFRESH_API_URL", "https://env.example.com")
	t.Setenv("FROZENFRESH_STORAGE_PATH", "/tmp/env.db")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/env.db", cfg.StoragePath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: [broken"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_NegativePricingRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pricing:\n  flat_fee: -1\n"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestPricingRules(t *testing.T) {
	cfg := Config{Pricing: PricingConfig{FreeDeliveryThreshold: 800, FlatFee: 60}}

	rules := cfg.PricingRules()

	assert.Equal(t, 800, rules.FreeDeliveryThreshold)
	assert.Equal(t, 60, rules.FlatFee)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plumedoc/plume/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "templates", cfg.TemplatesDir)
	assert.Equal(t, "mistral", cfg.Generator.Model)
	assert.Equal(t, 3, cfg.Generator.FailureThreshold)
	assert.Equal(t, 60*time.Second, cfg.Generator.Cooldown)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
templates_dir: /srv/templates
generator:
  model: llama3
  failure_threshold: 5
redis:
  addr: localhost:6379
  db: 2
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/srv/templates", cfg.TemplatesDir)
	assert.Equal(t, "llama3", cfg.Generator.Model)
	assert.Equal(t, 5, cfg.Generator.FailureThreshold)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	// Untouched keys keep their defaults.
	assert.Equal(t, "clients.yaml", cfg.ClientBook)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o644))

	t.Setenv("PLUME_LISTEN_ADDR", ":7070")
	t.Setenv("PLUME_GENERATOR_MODEL", "phi3")
	t.Setenv("PLUME_BREAKER_COOLDOWN", "90s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "phi3", cfg.Generator.Model)
	assert.Equal(t, 90*time.Second, cfg.Generator.Cooldown)
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

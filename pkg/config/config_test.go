package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("NoConfigFileUsesDefaults", func(t *testing.T) {
		// Point the default search path at an empty directory.
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "INFO", cfg.Logging.Level)
		assert.Equal(t, "memory", cfg.Omap.Type)
	})

	t.Run("FileValuesOverrideDefaults", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: debug
omap:
  type: badger
pools:
  - name: images
  - name: volumes
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "DEBUG", cfg.Logging.Level)
		assert.Equal(t, "badger", cfg.Omap.Type)
		require.Len(t, cfg.Pools, 2)
		assert.Equal(t, "images", cfg.Pools[0].Name)
		assert.Equal(t, "volumes", cfg.Pools[1].Name)
	})

	t.Run("InvalidOmapTypeFails", func(t *testing.T) {
		path := writeConfigFile(t, `
omap:
  type: cassandra
`)

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("InvalidLogLevelFails", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: verbose
`)

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestApplyDefaults(t *testing.T) {
	t.Run("FillsZeroValues", func(t *testing.T) {
		var cfg Config
		ApplyDefaults(&cfg)

		assert.Equal(t, "INFO", cfg.Logging.Level)
		assert.Equal(t, "stdout", cfg.Logging.Output)
		assert.Equal(t, "memory", cfg.Omap.Type)
		assert.Equal(t, ":9090", cfg.Metrics.Listen)
		require.Len(t, cfg.Pools, 1)
		assert.Equal(t, "rbd", cfg.Pools[0].Name)
	})

	t.Run("NormalizesLogLevelCase", func(t *testing.T) {
		cfg := Config{Logging: LoggingConfig{Level: "warn"}}
		ApplyDefaults(&cfg)
		assert.Equal(t, "WARN", cfg.Logging.Level)
	})

	t.Run("PreservesExplicitValues", func(t *testing.T) {
		cfg := Config{
			Omap:  OmapConfig{Type: "badger"},
			Pools: []PoolConfig{{Name: "custom"}},
		}
		ApplyDefaults(&cfg)

		assert.Equal(t, "badger", cfg.Omap.Type)
		require.Len(t, cfg.Pools, 1)
		assert.Equal(t, "custom", cfg.Pools[0].Name)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	t.Run("DefaultsAreValid", func(t *testing.T) {
		assert.NoError(t, Validate(valid()))
	})

	t.Run("DuplicatePoolNamesFail", func(t *testing.T) {
		cfg := valid()
		cfg.Pools = []PoolConfig{{Name: "rbd"}, {Name: "rbd"}}
		assert.ErrorContains(t, Validate(cfg), "duplicate pool name")
	})

	t.Run("EmptyPoolNameFails", func(t *testing.T) {
		cfg := valid()
		cfg.Pools = []PoolConfig{{Name: ""}}
		assert.Error(t, Validate(cfg))
	})
}

func TestNewCluster(t *testing.T) {
	t.Run("CreatesConfiguredPools", func(t *testing.T) {
		cfg := &Config{Pools: []PoolConfig{{Name: "images"}, {Name: "volumes"}}}
		ApplyDefaults(cfg)

		cluster, err := NewCluster(cfg)
		require.NoError(t, err)

		assert.NotNil(t, cluster.Pool("images"))
		assert.NotNil(t, cluster.Pool("volumes"))
		assert.Nil(t, cluster.Pool("absent"))
	})

	t.Run("BadgerBackend", func(t *testing.T) {
		cfg := &Config{Omap: OmapConfig{Type: "badger"}}
		ApplyDefaults(cfg)

		cluster, err := NewCluster(cfg)
		require.NoError(t, err)
		require.NotNil(t, cluster.Pool("rbd"))
		require.NoError(t, cluster.DeletePool("rbd"))
	})

	t.Run("UnknownBackendFails", func(t *testing.T) {
		cfg := &Config{Omap: OmapConfig{Type: "cassandra"}, Pools: []PoolConfig{{Name: "rbd"}}}
		_, err := NewCluster(cfg)
		assert.Error(t, err)
	})
}

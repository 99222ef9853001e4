package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questguild/questguild/internal/advisor"
	"github.com/questguild/questguild/internal/model"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"QUESTGUILD_STORAGE", "QUESTGUILD_DB", "QUESTGUILD_REDIS_URL", "GEMINI_API_KEY", "QUESTGUILD_LOG_LEVEL", "QUESTGUILD_SEED"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def, cfg)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, advisor.ProviderTemplate, cfg.Advisor.Provider)
	assert.Equal(t, model.DefaultRequiredLevel, cfg.Challenge.DefaultTargetLevel)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: Redis
  redis:
    url: redis://cache:6379/2
advisor:
  provider: gemini
  api_key: k
  timeout: 3s
challenge:
  default_target_level: 5
  seed: 42
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.Storage.Redis.URL)
	assert.Equal(t, 10, cfg.Storage.Redis.PoolSize, "unset fields keep defaults")
	assert.Equal(t, advisor.ProviderGemini, cfg.Advisor.Provider)
	assert.Equal(t, 3*time.Second, cfg.Advisor.Timeout)
	assert.Equal(t, 5, cfg.Challenge.DefaultTargetLevel)
	assert.Equal(t, uint64(42), cfg.Challenge.Seed)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cases := map[string]string{
		"backend": "storage:\n  backend: floppy\n",
		"target":  "challenge:\n  default_target_level: 11\n",
		"yaml":    "storage: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUESTGUILD_STORAGE", "memory")
	t.Setenv("QUESTGUILD_DB", "/tmp/q.db")
	t.Setenv("QUESTGUILD_REDIS_URL", "redis://other:6379/0")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("QUESTGUILD_LOG_LEVEL", "debug")
	t.Setenv("QUESTGUILD_SEED", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/q.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "redis://other:6379/0", cfg.Storage.Redis.URL)
	assert.Equal(t, "gem-key", cfg.Advisor.APIKey)
	assert.Equal(t, advisor.ProviderGemini, cfg.Advisor.Provider)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, uint64(7), cfg.Challenge.Seed)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Storage.Backend = BackendMemory
	cfg.Advisor.Timeout = 2 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

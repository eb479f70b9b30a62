package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	ApiKey   string `json:"apikey" envconfig:"APIKEY"`
	Database string `json:"database"`
	Workers  int    `json:"workers"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "metamob.json5")

	err := os.WriteFile(name, []byte(`{
		// base config
		apikey: "base-key",
		database: "metamob.db",
		workers: 1,
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "base-key", cfg.ApiKey)
	require.Equal(t, "metamob.db", cfg.Database)
	require.Equal(t, 1, cfg.Workers)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "metamob.json5")

	err := os.WriteFile(name, []byte(`{apikey: "base-key", workers: 1}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "metamob.local.json5"),
		[]byte(`{apikey: "local-key"}`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "local-key", cfg.ApiKey)
	require.Equal(t, 1, cfg.Workers)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "metamob.json5")

	err := os.WriteFile(name, []byte(`{apikey: "file-key", database: "metamob.db"}`), 0600)
	require.NoError(t, err)

	t.Setenv("METAMOB_APIKEY", "env-key")

	cfg, err := ReadConfigEnv[testConfig](name, "metamob")
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.ApiKey)
	require.Equal(t, "metamob.db", cfg.Database)
}

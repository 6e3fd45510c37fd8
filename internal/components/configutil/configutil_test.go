package configutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string   `json:"name"`
	Retries int      `json:"retries"`
	Wait    Duration `json:"wait"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "app.json5"), []byte(`{
		// comments are fine in json5
		name: "base",
		retries: 5,
		wait: "2s",
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{ name: "local" }`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
	require.Equal(t, 5, cfg.Retries)
	require.Equal(t, 2*time.Second, cfg.Wait.Std())
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "none.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestMergeKeepsSetFields(t *testing.T) {
	cfg := testConfig{Name: "set"}
	err := Merge(&cfg, testConfig{Name: "default", Retries: 5})
	require.NoError(t, err)
	require.Equal(t, "set", cfg.Name)
	require.Equal(t, 5, cfg.Retries)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIGUTIL_TEST_STR", "from-env")
	t.Setenv("CONFIGUTIL_TEST_INT", "7")
	t.Setenv("CONFIGUTIL_TEST_BAD", "seven")

	s := "default"
	EnvString(&s, "CONFIGUTIL_TEST_STR")
	require.Equal(t, "from-env", s)

	n := 1
	EnvInt(&n, "CONFIGUTIL_TEST_INT")
	require.Equal(t, 7, n)
	EnvInt(&n, "CONFIGUTIL_TEST_BAD")
	require.Equal(t, 7, n)
}

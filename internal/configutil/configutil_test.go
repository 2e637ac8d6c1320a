package configutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string            `json:"base_url"`
	Timeout int               `json:"timeout"`
	Labels  map[string]string `json:"labels"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "kvbackup.local.json5"), LocalPath(filepath.Join("conf", "kvbackup.json5")))
	require.Equal(t, "noext.local.", LocalPath("noext"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kvbackup.json5"), `{
		// comments and trailing commas are allowed
		base_url: "https://splunk.internal:8089",
		timeout: 10,
		labels: {team: "infra"},
	}`)
	writeFile(t, filepath.Join(dir, "kvbackup.local.json5"), `{timeout: 30}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "kvbackup.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://splunk.internal:8089", cfg.BaseUrl)
	require.Equal(t, 30, cfg.Timeout)
	require.Equal(t, "infra", cfg.Labels["team"])
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kvbackup.local.json5"), `{timeout: 5}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "kvbackup.json5"))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Timeout)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "kvbackup.json5"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kvbackup.json5"), `{timeout: }`)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "kvbackup.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0777))
	writeFile(t, filepath.Join(root, "a", "kvbackup.json5"), `{base_url: "https://found"}`)

	cfg, path, err := ReadRecursively[testConfig](nested, "kvbackup.json5")
	require.NoError(t, err)
	require.Equal(t, "https://found", cfg.BaseUrl)
	require.Equal(t, filepath.Join(root, "a", "kvbackup.json5"), path)
}

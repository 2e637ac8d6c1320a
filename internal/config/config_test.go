package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kvbackup/internal/table"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, found, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	require.Equal(t, "", found)
	require.Equal(t, "https://127.0.0.1:8389", cfg.BaseUrl)
	require.Equal(t, "backup", cfg.OutputDir)
	require.True(t, cfg.SkipVerify())
	require.Equal(t, time.Duration(0), cfg.RequestTimeout())

	mode, err := cfg.SchemaMode()
	require.NoError(t, err)
	require.Equal(t, table.SchemaFirstRecord, mode)
	policy, err := cfg.ExtraKeyPolicy()
	require.NoError(t, err)
	require.Equal(t, table.ExtraKeysIgnore, policy)
}

func TestLoadFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{
		base_url: "https://splunk.example.com:8089",
		insecure_skip_verify: false,
		timeout: 20,
		schema: "union",
		history: {file: "history.db"},
	}`), 0600)
	require.NoError(t, err)

	cfg, found, err := Load(dir, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, FileName), found)
	require.Equal(t, "https://splunk.example.com:8089", cfg.BaseUrl)
	require.Equal(t, "backup", cfg.OutputDir)
	require.False(t, cfg.SkipVerify())
	require.Equal(t, 20*time.Second, cfg.RequestTimeout())
	require.Equal(t, "union", cfg.Schema)
	require.Equal(t, "ignore", cfg.ExtraKeys)
	require.Equal(t, "history.db", cfg.History.File)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, _, err := Load(".", filepath.Join(t.TempDir(), "missing.json5"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(cfg *Config) {}, valid: true},
		{name: "negative timeout", mutate: func(cfg *Config) { cfg.Timeout = -1 }},
		{name: "unknown schema", mutate: func(cfg *Config) { cfg.Schema = "explicit" }},
		{name: "unknown extra keys", mutate: func(cfg *Config) { cfg.ExtraKeys = "pad" }},
		{name: "strict extra keys", mutate: func(cfg *Config) { cfg.ExtraKeys = "fail" }, valid: true},
		{name: "empty output dir", mutate: func(cfg *Config) { cfg.OutputDir = "" }},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(&cfg)
			err := cfg.Validate()
			if test.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

// Package config holds the kvbackup configuration file format and its defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"kvbackup/internal/components/telemetry"
	"kvbackup/internal/configutil"
	"kvbackup/internal/history"
	"kvbackup/internal/kvstore"
	"kvbackup/internal/table"

	"dario.cat/mergo"
)

// FileName is the name of the config file searched for from the working directory upwards.
const FileName = "kvbackup.json5"

type Config struct {
	BaseUrl   string `json:"base_url"`
	OutputDir string `json:"output_dir"`
	// Timeout is the request timeout in seconds, 0 means no timeout.
	Timeout int `json:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification, it defaults to true
	// since Splunk management ports usually serve a self-signed certificate.
	InsecureSkipVerify *bool  `json:"insecure_skip_verify"`
	Schema             string `json:"schema"`
	ExtraKeys          string `json:"extra_keys"`

	History   history.Config   `json:"history"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func Default() Config {
	insecure := true
	return Config{
		BaseUrl:            kvstore.DefaultBaseUrl,
		OutputDir:          "backup",
		InsecureSkipVerify: &insecure,
		Schema:             string(table.SchemaFirstRecord),
		ExtraKeys:          string(table.ExtraKeysIgnore),
	}
}

// SkipVerify reports whether TLS verification is disabled.
func (c Config) SkipVerify() bool {
	return c.InsecureSkipVerify == nil || *c.InsecureSkipVerify
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) SchemaMode() (table.SchemaMode, error) {
	return table.ParseSchemaMode(c.Schema)
}

func (c Config) ExtraKeyPolicy() (table.ExtraKeyPolicy, error) {
	return table.ParseExtraKeyPolicy(c.ExtraKeys)
}

func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", c.Timeout)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if _, err := c.SchemaMode(); err != nil {
		return err
	}
	if _, err := c.ExtraKeyPolicy(); err != nil {
		return err
	}
	return nil
}

// withDefaults fills every field left empty by the config file.
func withDefaults(cfg Config) (Config, error) {
	err := mergo.Merge(&cfg, Default())
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Load reads the config at `path`. When path is empty the config file is searched for
// from `dir` upwards and a missing file results in the defaults.
func Load(dir, path string) (Config, string, error) {
	var (
		cfg   Config
		found string
		err   error
	)
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
		found = path
	} else {
		cfg, found, err = configutil.ReadRecursively[Config](dir, FileName)
		if errors.Is(err, fs.ErrNotExist) {
			cfg, err = Default(), nil
		}
	}
	if err != nil {
		return Config{}, "", err
	}

	cfg, err = withDefaults(cfg)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, found, nil
}

// Package config loads the environment's settings from an INI file, the
// way the teacher's server/conf package loads mysqld.cnf-style files with
// gopkg.in/ini.v1, trimmed to the handful of settings this engine needs.
package config

import (
	"github.com/juju/errors"
	"gopkg.in/ini.v1"
)

// Config bundles the settings needed to stand up an Environment.
type Config struct {
	// DataDir is the directory holding all "<relation>.db" record-store
	// files — the spec's "environment" directory.
	DataDir string `ini:"data_dir"`
	// LogLevel is one of debug|info|warn|error.
	LogLevel string `ini:"log_level"`
	// PageCacheTables, if true, keeps every loaded relation in the
	// catalog's table cache for the process lifetime (§4.D); false
	// forces a fresh load from _columns on every get_table call, useful
	// for tests exercising cache-eviction edge cases.
	PageCacheTables bool `ini:"page_cache_tables"`
}

// Default returns the zero-configuration defaults: current directory,
// info-level logging, table cache enabled.
func Default() Config {
	return Config{
		DataDir:         ".",
		LogLevel:        "info",
		PageCacheTables: true,
	}
}

// Load reads settings from an INI file at path, falling back to Default()
// for any key the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	file, err := ini.Load(path)
	if err != nil {
		return cfg, errors.Annotatef(err, "loading config %q", path)
	}
	section := file.Section("")
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
	cfg.LogLevel = section.Key("log_level").MustString(cfg.LogLevel)
	cfg.PageCacheTables = section.Key("page_cache_tables").MustBool(cfg.PageCacheTables)
	return cfg, nil
}

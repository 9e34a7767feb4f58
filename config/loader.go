package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileName and FileNameAlt are the config file names Load looks for in a
// given directory, mirroring leapsql's yaml/yml fallback pair.
const (
	FileName    = "qail.yaml"
	FileNameAlt = "qail.yml"

	// EnvPrefix is stripped from environment variables before they're
	// folded into the koanf tree, so QAIL_POOL__MAX_CONNECTIONS overrides
	// pool.max_connections.
	EnvPrefix = "QAIL_"
)

// Load reads qail.yaml/qail.yml from dir (if present), layers environment
// variable overrides on top, and returns a Config with defaults applied.
// A missing file is not an error — env vars and defaults alone produce a
// usable Config, since a library caller may configure entirely by env.
func Load(dir string) (*Config, error) {
	k := koanf.New(".")

	if path := findConfigFile(dir); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Double underscore marks nesting (QAIL_POOL__MAX_CONNECTIONS ->
	// pool.max_connections); a single underscore stays part of the key,
	// matching the multi-word koanf tags in ConnectionConfig/PoolConfig.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func findConfigFile(dir string) string {
	if dir == "" {
		return ""
	}
	if p := filepath.Join(dir, FileName); fileExists(p) {
		return p
	}
	if p := filepath.Join(dir, FileNameAlt); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

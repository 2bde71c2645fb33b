// Package config loads dibs configuration: embedded defaults, then the
// user's config file, then DIBS_ environment overrides, highest last.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dibs-cli/dibs/pkg/errors"
)

//go:embed default.toml
var defaultConfig []byte

// Config is the resolved view the rest of dibs consumes.
type Config struct {
	PlatformTimeout time.Duration
	DutiPath        string
	StoreDir        string
}

// Load resolves configuration from defaults, the config file at path (or
// the default location when path is empty), and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawBytesProvider{defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "embedded defaults are invalid")
	}

	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not parse %s", path)
			}
		}
	}

	// DIBS_PLATFORM_TIMEOUT=5 -> platform.timeout = 5; only the first
	// underscore separates section from key, so DIBS_PLATFORM_DUTI_PATH
	// still reaches platform.duti_path.
	if err := k.Load(env.Provider("DIBS_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "DIBS_"))
		return strings.Replace(s, "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "could not read environment overrides")
	}

	timeout := k.Int("platform.timeout")
	if timeout <= 0 {
		return nil, errors.Newf(errors.ErrConfigParse,
			"platform.timeout must be positive, got %d", timeout)
	}

	return &Config{
		PlatformTimeout: time.Duration(timeout) * time.Second,
		DutiPath:        k.String("platform.duti_path"),
		StoreDir:        k.String("store.dir"),
	}, nil
}

func defaultConfigPath() string {
	path, err := xdg.ConfigFile(filepath.Join("dibs", "dibs.toml"))
	if err != nil {
		return ""
	}
	return path
}

// rawBytesProvider feeds embedded bytes into koanf.
type rawBytesProvider struct {
	bytes []byte
}

func (p rawBytesProvider) ReadBytes() ([]byte, error) {
	return p.bytes, nil
}

func (p rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "rawBytesProvider does not support Read")
}

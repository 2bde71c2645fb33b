package config

import (
	"io"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/dibs-cli/dibs/pkg/errors"
)

// fileConfig mirrors the on-disk TOML shape for generation.
type fileConfig struct {
	Platform struct {
		Timeout  int    `toml:"timeout"`
		DutiPath string `toml:"duti_path"`
	} `toml:"platform"`
	Store struct {
		Dir string `toml:"dir"`
	} `toml:"store"`
}

// WriteDefault emits a commented starting-point config reflecting the
// built-in defaults. Used by 'dibs genconfig'.
func WriteDefault(w io.Writer) error {
	cfg, err := Load("")
	if err != nil {
		return err
	}

	var out fileConfig
	out.Platform.Timeout = int(cfg.PlatformTimeout.Seconds())
	out.Platform.DutiPath = cfg.DutiPath
	out.Store.Dir = cfg.StoreDir

	header := "# dibs configuration. Defaults shown; delete what you do not change.\n\n"
	if _, err := io.WriteString(w, header); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not write config header")
	}

	enc := gotoml.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not encode config")
	}
	return nil
}

package cli

import (
	"github.com/rs/zerolog"

	"github.com/dibs-cli/dibs/pkg/config"
	"github.com/dibs-cli/dibs/pkg/logging"
	"github.com/dibs-cli/dibs/pkg/platform"
	"github.com/dibs-cli/dibs/pkg/rollback"
	"github.com/dibs-cli/dibs/pkg/store"
)

// app bundles the collaborators every command needs: resolved config,
// the binding store, and a logger. The platform handler is acquired
// separately because store-only commands must work on any OS.
type app struct {
	cfg    *config.Config
	store  *store.Store
	logger zerolog.Logger
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.StoreDir)
	if err != nil {
		return nil, err
	}

	platform.Configure(platform.Options{
		Timeout:  cfg.PlatformTimeout,
		DutiPath: cfg.DutiPath,
	})

	return &app{
		cfg:    cfg,
		store:  st,
		logger: logging.GetLogger("cli"),
	}, nil
}

// handler returns the platform handler for the current OS.
func (a *app) handler() (platform.Handler, error) {
	return platform.GetHandler()
}

// coordinator wraps the handler for mutating operations.
func (a *app) coordinator() (*rollback.Coordinator, error) {
	h, err := a.handler()
	if err != nil {
		return nil, err
	}
	return rollback.New(h), nil
}

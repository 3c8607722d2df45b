package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/sigmaguard/config"
	"github.com/rustyeddy/sigmaguard/feed"
	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/pkg/logger"
	"github.com/rustyeddy/sigmaguard/state"
)

// app is the wired set of collaborators a command works with.
type app struct {
	cfg    *config.Config
	prices feed.Source
	ledger journal.Ledger
	store  state.Store
}

func loadConfig(rc *RootConfig) (*config.Config, error) {
	var cfg *config.Config
	if rc.ConfigPath == "" {
		cfg = config.Default()
		cfg.ApplyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	} else {
		var err error
		if cfg, err = config.LoadFromFile(rc.ConfigPath); err != nil {
			return nil, err
		}
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.LogFormat != "" {
		cfg.Log.Format = rc.LogFormat
	}
	if _, err := logger.Setup(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads the config and opens the ledger, the state store and the
// price source. withState is false for commands that never touch priors.
func openApp(ctx context.Context, rc *RootConfig, withState bool) (*app, error) {
	cfg, err := loadConfig(rc)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		prices: feed.NewGuarded(feed.NewDir(cfg.DataDir), cfg.Feed),
	}

	if a.ledger, err = openLedger(cfg.Ledger); err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if withState {
		if a.store, err = openStore(ctx, cfg.State, a.ledger); err != nil {
			a.ledger.Close()
			return nil, fmt.Errorf("open state: %w", err)
		}
	}
	log.Debug().Str("ledger", cfg.Ledger.Kind).Str("state", cfg.State.Kind).
		Str("data", cfg.DataDir).Msg("opened")
	return a, nil
}

func openLedger(c config.LedgerConfig) (journal.Ledger, error) {
	switch c.Kind {
	case "sqlite":
		if err := mkdirFor(c.DBPath); err != nil {
			return nil, err
		}
		return journal.NewSQLite(c.DBPath)
	default:
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return nil, err
		}
		return journal.NewCSV(c.Dir)
	}
}

func openStore(ctx context.Context, c config.StateConfig, l journal.Ledger) (state.Store, error) {
	switch c.Kind {
	case "memory":
		return state.NewMemory(), nil
	case "sqlite":
		if err := mkdirFor(c.DBPath); err != nil {
			return nil, err
		}
		return state.NewSQLite(c.DBPath)
	case "redis":
		return state.NewRedis(ctx, c.Redis.Addr, c.Redis.Password, c.Redis.DB)
	default:
		return state.NewLedger(l), nil
	}
}

func mkdirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.ledger.Close())
	return errors.Join(errs...)
}

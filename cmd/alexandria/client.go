package main

import (
	"context"
	"log/slog"

	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
	"alexandria/internal/store"
)

// withDaemon hands fn a client for the configured lbrynet. The daemon is
// never started from here; an unreachable daemon surfaces as an error.
func withDaemon(cfg *config.Config, fn func(*lbrynet.Client) error) error {
	return fn(lbrynet.NewClient(cfg.DaemonURL))
}

func withStore(cfg *config.Config, fn func(*store.Store) error) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// recordHistory adds an event to the local history. Failures are logged and
// never fail the command.
func recordHistory(ctx context.Context, cfg *config.Config, e store.Event) {
	err := withStore(cfg, func(st *store.Store) error {
		_, err := st.RecordEvent(ctx, e)
		return err
	})
	if err != nil {
		slog.Debug("record history", "kind", e.Kind, "error", err)
	}
}

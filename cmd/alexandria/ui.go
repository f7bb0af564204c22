package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"alexandria/internal/api"
	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
	"alexandria/internal/server"
	"alexandria/internal/store"
	"alexandria/internal/thumbcache"
)

func newUICmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Serve the local web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}
			addr, err := server.ListenAddr(cfg.UIURL)
			if err != nil {
				return err
			}

			lock, err := server.AcquireLock(cfg.LockPath())
			if errors.Is(err, server.ErrLocked) {
				if pingErr := api.NewClient(cfg.UIURL).Ping(cmd.Context()); pingErr == nil {
					return writePlain("alexandria ui already running at %s\n", cfg.UIURL)
				}
				return err
			}
			if err != nil {
				return err
			}
			defer lock.Unlock()

			logger := slog.Default().With("component", "server")
			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if cfg.Search.CacheTTL.Duration > 0 {
				if n, err := st.PruneSearches(cmd.Context(), cfg.Search.CacheTTL.Duration); err != nil {
					logger.Warn("prune search cache", "error", err)
				} else if n > 0 {
					logger.Debug("pruned search cache", "entries", n)
				}
			}

			var thumbs server.Thumbnails
			cache, err := thumbcache.New(cfg.ThumbnailDir(), st, slog.Default().With("component", "thumbcache"))
			if err != nil {
				logger.Warn("thumbnails disabled", "error", err)
			} else {
				thumbs = cache
			}

			daemon := lbrynet.NewClient(cfg.DaemonURL)
			if err := daemon.Ping(cmd.Context()); err != nil {
				logger.Warn("lbrynet not reachable; the ui shows it as stopped", "daemon_url", cfg.DaemonURL, "error", err)
			}

			srv := server.New(server.Options{
				Addr:         addr,
				DaemonURL:    cfg.DaemonURL,
				PasswordHash: cfg.UI.PasswordHash,
				DownloadDir:  cfg.DownloadDir,
				OwnDir:       cfg.OwnDir,
				PageSize:     cfg.Search.PageSize,
				CacheTTL:     cfg.Search.CacheTTL.Duration,
				Workers:      cfg.Workers,
			}, daemon, st, thumbs, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := writePlain("alexandria ui listening on %s\n", cfg.UIURL); err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}
}


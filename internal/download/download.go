// Package download asks the daemon to fetch streams to disk.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"alexandria/internal/claims"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
)

const unknownChannel = "@_Unknown_"

// Daemon is the part of the lbrynet API downloads need.
type Daemon interface {
	search.Daemon
	Get(ctx context.Context, params lbrynet.GetParams) (lbrynet.File, error)
}

// Downloader resolves an item and hands it to the daemon's get method.
type Downloader struct {
	daemon Daemon
	search *search.Service
	logger *slog.Logger
}

// New creates a downloader.
func New(daemon Daemon, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{daemon: daemon, search: search.New(daemon, logger), logger: logger}
}

// Request selects an item and where to save it.
type Request struct {
	URI     string
	ClaimID string
	Name    string
	// Dir defaults to ~/Downloads.
	Dir string
	// OwnDir saves into a subdirectory named after the channel.
	OwnDir bool
	// SaveFile false only starts the stream, which is enough for playback.
	SaveFile bool
}

// Result is the downloaded file and the claim it belongs to.
type Result struct {
	Claim lbrynet.Claim `json:"claim" yaml:"claim"`
	File  lbrynet.File  `json:"file" yaml:"file"`
	Dir   string        `json:"download_directory" yaml:"download_directory"`
}

// Single downloads one stream.
func (d *Downloader) Single(ctx context.Context, req Request) (Result, error) {
	item, err := d.search.Item(ctx, search.Query{
		URI:          req.URI,
		ClaimID:      req.ClaimID,
		Name:         req.Name,
		FollowRepost: true,
	})
	if err != nil {
		return Result{}, err
	}
	if item.IsChannel() {
		return Result{}, fmt.Errorf("%w: %s is a channel, not a stream", search.ErrInvalidQuery, item.CanonicalURL)
	}

	dir := req.Dir
	if dir == "" {
		dir, err = DefaultDir()
		if err != nil {
			return Result{}, err
		}
	}
	if req.OwnDir {
		dir = filepath.Join(dir, ChannelDir(item))
	}
	if req.SaveFile {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create download directory: %w", err)
		}
	}

	uri := item.CanonicalURL
	if uri == "" {
		uri = item.Name + "#" + item.ClaimID
	}
	save := req.SaveFile
	file, err := d.daemon.Get(ctx, lbrynet.GetParams{
		URI:               uri,
		DownloadDirectory: dir,
		SaveFile:          &save,
	})
	if err != nil {
		return Result{}, fmt.Errorf("get %s: %w", uri, err)
	}
	d.logger.Info("download started",
		"uri", uri,
		"claim_id", item.ClaimID,
		"dir", dir,
		"save_file", save,
		"path", file.DownloadPath)
	return Result{Claim: item, File: file, Dir: dir}, nil
}

// ChannelDir is the directory name for a claim's channel:
// the channel URL without lbry:// and with # replaced by _.
func ChannelDir(c lbrynet.Claim) string {
	if c.SigningChannel == nil || c.SigningChannel.CanonicalURL == "" {
		return unknownChannel
	}
	name := claims.StripScheme(c.SigningChannel.CanonicalURL)
	return strings.ReplaceAll(name, "#", "_")
}

// DefaultDir is ~/Downloads.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}

// Package server serves the local web UI and its JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"alexandria/internal/auth"
	"alexandria/internal/download"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
	"alexandria/internal/store"
)

const (
	allowRemoteEnvKey      = "ALEXANDRIA_ALLOW_REMOTE"
	readHeaderTimeout      = 5 * time.Second
	readTimeout            = 30 * time.Second
	writeTimeout           = 5 * time.Minute
	idleTimeout            = 60 * time.Second
	shutdownTimeout        = 5 * time.Second
	searchConcurrencyLimit = 4
	defaultPageSize        = 20
	maxPageSize            = 50
)

// ErrLocked is returned when another UI server holds the instance lock.
var ErrLocked = errors.New("another alexandria ui is already running")

// Daemon is the part of the lbrynet API the UI needs.
type Daemon interface {
	download.Daemon
	Status(ctx context.Context) (lbrynet.Status, error)
}

// Store keeps history and caches for the UI.
type Store interface {
	store.HistoryStore
	store.CacheStore
}

// Thumbnails fetches and serves claim thumbnails.
type Thumbnails interface {
	Fetch(ctx context.Context, claimID, url string) (*store.Thumbnail, error)
	Open(ctx context.Context, claimID string) (*os.File, *store.Thumbnail, error)
}

// Options configures a Server.
type Options struct {
	Addr         string
	DaemonURL    string
	PasswordHash string
	DownloadDir  string
	OwnDir       bool
	PageSize     int
	CacheTTL     time.Duration
	Workers      int
}

// Server wraps HTTP handlers for the alexandria UI.
type Server struct {
	opts          Options
	daemon        Daemon
	search        *search.Service
	downloader    *download.Downloader
	store         Store
	thumbs        Thumbnails
	verifier      *auth.Verifier
	authLimiter   *passwordLimiter
	logger        *slog.Logger
	searchLimiter chan struct{}
}

// New creates a new server instance. thumbs may be nil.
func New(opts Options, daemon Daemon, st Store, thumbs Thumbnails, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	return &Server{
		opts:          opts,
		daemon:        daemon,
		search:        search.New(daemon, logger.With("component", "search")),
		downloader:    download.New(daemon, logger.With("component", "download")),
		store:         st,
		thumbs:        thumbs,
		verifier:      auth.NewVerifier(opts.PasswordHash),
		authLimiter:   newPasswordLimiter(passwordMaxFailures, passwordFailureWindow, passwordBlockedFor),
		logger:        logger,
		searchLimiter: make(chan struct{}, searchConcurrencyLimit),
	}
}

// Handler returns the routed handler with logging and auth applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("ui listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log().Info("starting ui server", "addr", listener.Addr().String(), "daemon_url", s.opts.DaemonURL)
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// AcquireLock takes the single-instance lock at path. The caller unlocks it.
func AcquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock, nil
}

// ListenAddr converts a base UI URL into a listen address.
func ListenAddr(uiURL string) (string, error) {
	if uiURL == "" {
		return "", fmt.Errorf("ui url is required")
	}
	if u, err := url.Parse(uiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(uiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return uiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}

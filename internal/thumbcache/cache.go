// Package thumbcache keeps local copies of claim thumbnails.
package thumbcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
	"syscall"
	"time"

	"alexandria/internal/store"
)

const (
	// DefaultMaxBytes caps a single thumbnail.
	DefaultMaxBytes = 4 << 20
	fetchTimeout    = 15 * time.Second
)

var (
	// ErrNotCached is returned by Open when a claim has no stored thumbnail.
	ErrNotCached = errors.New("thumbnail not cached")
	// ErrPrivateHost is returned by Fetch when the image host resolves to a
	// loopback, private or link-local address.
	ErrPrivateHost = errors.New("thumbnail host is not public")
)

// Index records which image belongs to which claim.
type Index interface {
	PutThumbnail(ctx context.Context, t store.Thumbnail) error
	GetThumbnail(ctx context.Context, claimID string) (*store.Thumbnail, error)
}

// Cache downloads thumbnails once and serves them from disk.
type Cache struct {
	cas          *localCAS
	index        Index
	http         *http.Client
	allowPrivate bool
	maxBytes     int64
	logger       *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient replaces the client used to fetch images. The caller's
// client is used as is, without the public host check.
func WithHTTPClient(c *http.Client) Option {
	return func(cache *Cache) { cache.http = c }
}

// WithMaxBytes changes the size cap.
func WithMaxBytes(n int64) Option {
	return func(cache *Cache) { cache.maxBytes = n }
}

// AllowPrivateHosts lets Fetch reach loopback and private addresses.
func AllowPrivateHosts() Option {
	return func(cache *Cache) { cache.allowPrivate = true }
}

// New creates a cache rooted at dir.
func New(dir string, index Index, logger *slog.Logger, opts ...Option) (*Cache, error) {
	cas, err := newLocalCAS(dir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		cas:      cas,
		index:    index,
		maxBytes: DefaultMaxBytes,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newFetchClient(c.allowPrivate)
	}
	return c, nil
}

// newFetchClient checks every dialed address, so redirects and DNS answers
// cannot point a fetch at the local network.
func newFetchClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: fetchTimeout}
	if !allowPrivate {
		dialer.Control = refusePrivateAddr
	}
	return &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func refusePrivateAddr(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrivateHost, host)
	}
	if !isPublicAddr(ip) {
		return fmt.Errorf("%w: %s", ErrPrivateHost, ip)
	}
	return nil
}

func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(), ip.IsUnspecified(), ip.IsLoopback(), ip.IsPrivate():
		return false
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(), ip.IsInterfaceLocalMulticast():
		return false
	}
	return true
}

// Fetch downloads the image at url for a claim unless the same url is
// already cached.
func (c *Cache) Fetch(ctx context.Context, claimID, url string) (*store.Thumbnail, error) {
	claimID = strings.TrimSpace(claimID)
	url = strings.TrimSpace(url)
	if claimID == "" || url == "" {
		return nil, fmt.Errorf("claim id and url are required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported thumbnail url %q", url)
	}

	existing, err := c.index.GetThumbnail(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.URL == url {
		return existing, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch thumbnail: unexpected status %d", resp.StatusCode)
	}
	mediaType := mediaTypeOf(resp.Header.Get("Content-Type"))
	if mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("fetch thumbnail: not an image (%s)", mediaType)
	}

	res, err := c.cas.put(ctx, resp.Body, c.maxBytes)
	if err != nil {
		return nil, err
	}
	thumb := store.Thumbnail{
		ClaimID:   claimID,
		URL:       url,
		Digest:    res.Digest,
		SizeBytes: res.SizeBytes,
		MediaType: mediaType,
	}
	if err := c.index.PutThumbnail(ctx, thumb); err != nil {
		return nil, err
	}
	c.logger.Debug("thumbnail cached", "claim_id", claimID, "digest", res.Digest, "bytes", res.SizeBytes)
	return &thumb, nil
}

// Open returns the cached image for a claim.
func (c *Cache) Open(ctx context.Context, claimID string) (*os.File, *store.Thumbnail, error) {
	thumb, err := c.index.GetThumbnail(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	if thumb == nil {
		return nil, nil, ErrNotCached
	}
	f, err := c.cas.open(ctx, thumb.Digest)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotCached
	}
	if err != nil {
		return nil, nil, err
	}
	return f, thumb, nil
}

// Read is Open followed by reading the whole image.
func (c *Cache) Read(ctx context.Context, claimID string) ([]byte, *store.Thumbnail, error) {
	f, thumb, err := c.Open(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	return data, thumb, err
}

func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

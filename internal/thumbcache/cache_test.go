package thumbcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"alexandria/internal/store"
)

func testCache(t *testing.T, opts ...Option) (*Cache, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	c, err := New(filepath.Join(t.TempDir(), "thumbs"), st, nil, opts...)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c, st
}

func TestFetchStoresOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c, _ := testCache(t, AllowPrivateHosts())
	ctx := context.Background()

	first, err := c.Fetch(ctx, "cid", srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if first.MediaType != "image/png" || first.SizeBytes != int64(len("png-bytes")) || len(first.Digest) != 64 {
		t.Fatalf("unexpected thumbnail: %+v", first)
	}
	if _, err := c.Fetch(ctx, "cid", srv.URL+"/a.png"); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one download, got %d", hits.Load())
	}

	data, thumb, err := c.Read(ctx, "cid")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" || thumb.Digest != first.Digest {
		t.Fatalf("unexpected cached bytes %q", data)
	}
}

func TestFetchRejectsLargeAndNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".html") {
			w.Header().Set("Content-Type", "text/html")
		} else {
			w.Header().Set("Content-Type", "image/jpeg")
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	c, _ := testCache(t, WithMaxBytes(16), AllowPrivateHosts())
	if _, err := c.Fetch(context.Background(), "cid", srv.URL+"/big.jpg"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := c.Fetch(context.Background(), "cid", srv.URL+"/page.html"); err == nil {
		t.Fatal("expected non-image error")
	}
	if _, err := c.Fetch(context.Background(), "cid", "ftp://example.com/a.png"); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}

func TestFetchRefusesPrivateHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c, st := testCache(t)
	_, err := c.Fetch(context.Background(), "cid", srv.URL+"/a.png")
	if !errors.Is(err, ErrPrivateHost) {
		t.Fatalf("expected ErrPrivateHost, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no request to reach the server, got %d", hits.Load())
	}
	if thumb, err := st.GetThumbnail(context.Background(), "cid"); err != nil || thumb != nil {
		t.Fatalf("expected nothing indexed, got %+v %v", thumb, err)
	}
}

func TestIsPublicAddr(t *testing.T) {
	cases := map[string]bool{
		"93.184.216.34":   true,
		"2606:4700::6810": true,
		"127.0.0.1":       false,
		"::1":             false,
		"10.1.2.3":        false,
		"172.16.0.9":      false,
		"192.168.1.1":     false,
		"169.254.169.254": false,
		"fe80::1":         false,
		"fd00::1":         false,
		"0.0.0.0":         false,
		"::ffff:10.0.0.1": false,
	}
	for addr, want := range cases {
		if got := isPublicAddr(netip.MustParseAddr(addr)); got != want {
			t.Errorf("isPublicAddr(%s) = %v, want %v", addr, got, want)
		}
	}
}

func TestOpenNotCached(t *testing.T) {
	c, _ := testCache(t)
	if _, _, err := c.Open(context.Background(), "missing"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestCASDedupesContent(t *testing.T) {
	cas, err := newLocalCAS(t.TempDir())
	if err != nil {
		t.Fatalf("new cas: %v", err)
	}
	first, err := cas.put(context.Background(), strings.NewReader("hello"), 1024)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := cas.put(context.Background(), strings.NewReader("hello"), 1024)
	if err != nil {
		t.Fatalf("put again: %v", err)
	}
	if first.Key != second.Key || !strings.HasPrefix(first.Key, "sha256/"+first.Digest[:2]+"/") {
		t.Fatalf("unexpected keys: %+v %+v", first, second)
	}
	if _, err := cas.open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected invalid digest error")
	}
}

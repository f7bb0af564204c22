package thumbcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const casAlgorithmPrefix = "sha256"

// ErrTooLarge is returned when an image exceeds the size cap.
var ErrTooLarge = errors.New("thumbnail exceeds size limit")

// putResult describes one stored image.
type putResult struct {
	Digest    string
	SizeBytes int64
	Key       string
}

// localCAS stores image bytes in a content-addressed tree.
type localCAS struct {
	root string
}

func newLocalCAS(root string) (*localCAS, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("thumbnail cache root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &localCAS{root: abs}, nil
}

// put streams at most maxBytes, hashes them and stores them by digest.
func (c *localCAS) put(ctx context.Context, r io.Reader, maxBytes int64) (putResult, error) {
	var zero putResult
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(c.root, "tmp"), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), io.LimitReader(r, maxBytes+1))
	if err != nil {
		cleanup()
		return zero, err
	}
	if n > maxBytes {
		cleanup()
		return zero, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxBytes)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	digest := hex.EncodeToString(h.Sum(nil))
	key := keyFromDigest(digest)
	dst := filepath.Join(c.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return zero, err
	}

	res := putResult{Digest: digest, SizeBytes: n, Key: key}
	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return res, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return zero, err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return res, nil
		}
		cleanup()
		return zero, err
	}
	return res, nil
}

func (c *localCAS) open(ctx context.Context, digest string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validDigest(digest) {
		return nil, fmt.Errorf("invalid thumbnail digest")
	}
	return os.Open(filepath.Join(c.root, filepath.FromSlash(keyFromDigest(digest))))
}

func keyFromDigest(digest string) string {
	return fmt.Sprintf("%s/%s/%s/%s", casAlgorithmPrefix, digest[0:2], digest[2:4], digest)
}

func validDigest(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	passwordMaxFailures   = 5
	passwordFailureWindow = time.Minute
	passwordBlockedFor    = 5 * time.Minute
)

// passwordLimiter blocks a client after repeated wrong UI passwords.
type passwordLimiter struct {
	mu            sync.Mutex
	entries       map[string]passwordLimitEntry
	maxFailures   int
	window        time.Duration
	blockedFor    time.Duration
	staleAfter    time.Duration
	opCount       int
	cleanupEveryN int
}

type passwordLimitEntry struct {
	failures       int
	firstFailureAt time.Time
	blockedUntil   time.Time
	lastSeenAt     time.Time
}

func newPasswordLimiter(maxFailures int, window, blockedFor time.Duration) *passwordLimiter {
	if maxFailures <= 0 || window <= 0 || blockedFor <= 0 {
		return nil
	}
	staleAfter := max(window, blockedFor) * 2
	if staleAfter < 10*time.Minute {
		staleAfter = 10 * time.Minute
	}
	return &passwordLimiter{
		entries:       make(map[string]passwordLimitEntry),
		maxFailures:   maxFailures,
		window:        window,
		blockedFor:    blockedFor,
		staleAfter:    staleAfter,
		cleanupEveryN: 64,
	}
}

// Allow reports whether key may try a password now.
func (l *passwordLimiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	entry.lastSeenAt = now
	if !entry.blockedUntil.IsZero() && now.Before(entry.blockedUntil) {
		l.entries[key] = entry
		l.maybeCleanupLocked(now)
		return false
	}
	if !entry.firstFailureAt.IsZero() && now.Sub(entry.firstFailureAt) > l.window {
		entry.failures = 0
		entry.firstFailureAt = time.Time{}
	}
	entry.blockedUntil = time.Time{}
	l.entries[key] = entry
	l.maybeCleanupLocked(now)
	return true
}

// RegisterFailure counts a wrong password and blocks key once the
// failures within the window reach the limit.
func (l *passwordLimiter) RegisterFailure(key string, now time.Time) {
	if l == nil || key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	if entry.firstFailureAt.IsZero() || now.Sub(entry.firstFailureAt) > l.window {
		entry.failures = 0
		entry.firstFailureAt = now
	}
	entry.failures++
	if entry.failures >= l.maxFailures {
		entry.blockedUntil = now.Add(l.blockedFor)
		entry.failures = 0
		entry.firstFailureAt = time.Time{}
	}
	entry.lastSeenAt = now
	l.entries[key] = entry
	l.maybeCleanupLocked(now)
}

func (l *passwordLimiter) Reset(key string) {
	if l == nil || key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

func (l *passwordLimiter) maybeCleanupLocked(now time.Time) {
	l.opCount++
	if l.opCount%l.cleanupEveryN != 0 {
		return
	}
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeenAt) > l.staleAfter {
			delete(l.entries, key)
		}
	}
}

// requestClientIP is the limiter key: the remote host without its port.
func requestClientIP(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}

package main

import (
	"context"
	"errors"
	"net"
	"strings"

	"alexandria/internal/api"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
	"alexandria/internal/server"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var blocked *search.BlockedError
	if errors.As(err, &blocked) {
		lines = append(lines, "hint: the hub hides this claim; another hub may still serve it.")
		return uniqueLines(lines)
	}
	if errors.Is(err, search.ErrInvalidQuery) {
		lines = append(lines, "hint: pass a URI such as lbry://@channel#3/name#1, or --claim-id / --name.")
		return uniqueLines(lines)
	}
	if errors.Is(err, server.ErrLocked) {
		lines = append(lines, "hint: stop the other ui first, or open the running one in a browser.")
		return uniqueLines(lines)
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: set ALEXANDRIA_UI_PASSWORD to the ui password.")
		case "resource_exhausted":
			lines = append(lines, "hint: retry shortly; the ui limits concurrent searches.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify ui_url points to an alexandria ui.")
		}
		return uniqueLines(lines)
	}

	var rpcErr *lbrynet.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Status == 404 || rpcErr.Status == 405 {
			lines = append(lines, "hint: verify daemon_url points to the lbrynet JSON-RPC api.")
		}
		if strings.Contains(strings.ToLower(rpcErr.Name+" "+rpcErr.Message), "wallet") {
			lines = append(lines, "hint: the daemon wallet may still be loading; check: alexandria status")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		lines = append(lines, "hint: request timed out; the daemon may be busy syncing. Increase ALEXANDRIA_HTTP_TIMEOUT for slow lookups.")
		return uniqueLines(lines)
	}

	if lbrynet.IsUnavailable(err) {
		lines = append(lines,
			"hint: ensure lbrynet (the LBRY daemon) is running at daemon_url.",
			"hint: start it with: lbrynet start",
			"hint: point elsewhere with --daemon-url or ALEXANDRIA_DAEMON_URL.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"alexandria/internal/search"
)

func (q *itemQuery) query(args []string) search.Query {
	sq := search.Query{
		ClaimID:      q.claimID,
		Name:         q.name,
		Offline:      q.offline,
		FollowRepost: !q.noRepost,
	}
	if len(args) > 0 {
		sq.URI = args[0]
	}
	return sq
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// readListFile reads one entry per line, skipping blanks and # comments.
func readListFile(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

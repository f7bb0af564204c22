package supports

import (
	"fmt"
	"strings"

	"alexandria/internal/claims"
)

// ListOptions controls which supports Lines prints and how.
type ListOptions struct {
	ShowClaimID bool
	InvalidOnly bool
	// Combine adds the four trending scores into one.
	Combine  bool
	Claims   bool
	Channels bool
	Sanitize bool
	Sep      string
}

// DefaultListOptions shows every unspent support with a combined trending score.
func DefaultListOptions() ListOptions {
	return ListOptions{Combine: true, Claims: true, Channels: true, Sep: ";"}
}

// Lines renders one line per unspent support:
// index, name, our amount, existing support, trending, title.
func Lines(inv Inventory, opts ListOptions) []string {
	sep := opts.Sep
	if sep == "" {
		sep = ";"
	}
	total := len(inv.All)
	out := make([]string, 0, total)

	for i, e := range inv.All {
		if e.IsSpent {
			continue
		}
		if e.Valid() && opts.InvalidOnly {
			continue
		}

		var name, title string
		if e.Valid() {
			name = claims.StripScheme(e.Resolved.ShortURL)
			title = e.Resolved.Value.Title
			if title == "" {
				title = "(no title)"
			}
		} else {
			name = e.Name
			title = "[" + e.Name + "]"
		}
		if opts.Sanitize {
			name = claims.Sanitize(name)
			title = claims.Sanitize(title)
		}

		isChannel := strings.HasPrefix(name, "@")
		if isChannel && !opts.Channels {
			continue
		}
		if !isChannel && !opts.Claims {
			continue
		}

		var obj strings.Builder
		if opts.ShowClaimID {
			fmt.Fprintf(&obj, "%q%s ", e.ClaimID, sep)
		}
		quoted := `"` + name + `"`
		if !e.Valid() {
			quoted = "[" + quoted + "]"
		}
		fmt.Fprintf(&obj, "%-60s", quoted)

		ours := e.Amount.Float()
		var existing float64
		var gl, gr, loc, mix float64
		if e.Valid() {
			meta := e.Resolved.Meta
			existing = e.Resolved.Amount.Float() + meta.SupportAmount.Float()
			gl, gr, loc, mix = meta.TrendingGlobal, meta.TrendingGroup, meta.TrendingLocal, meta.TrendingMixed
		} else {
			existing = ours
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%3d/%3d%s ", i+1, total, sep)
		fmt.Fprintf(&b, "%s%s %14.8f%s ", obj.String(), sep, ours, sep)
		fmt.Fprintf(&b, "%15.8f%s ", existing, sep)
		if opts.Combine {
			fmt.Fprintf(&b, "combined: %7.2f%s ", gl+gr+loc+mix, sep)
		} else {
			fmt.Fprintf(&b, "mix: %7.2f%s ", mix, sep)
			fmt.Fprintf(&b, "glob: %7.2f%s ", gl, sep)
			fmt.Fprintf(&b, "grp: %7.2f%s ", gr, sep)
			fmt.Fprintf(&b, "loc: %7.2f%s ", loc, sep)
		}
		b.WriteString(title)
		out = append(out, b.String())
	}
	return out
}

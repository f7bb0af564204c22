package claims

import (
	"fmt"
	"strings"

	"alexandria/internal/lbrynet"
)

const bytesPerGiB = 1024 * 1024 * 1024

// Summary is the total size and playing time of a set of claims.
type Summary struct {
	Claims   int     `json:"claims" yaml:"claims"`
	Size     int64   `json:"size" yaml:"size"`
	Duration int64   `json:"duration" yaml:"duration"`
	SizeGB   float64 `json:"size_gb" yaml:"size_gb"`
	Hours    int64   `json:"d_h" yaml:"d_h"`
	Minutes  int64   `json:"d_min" yaml:"d_min"`
	Seconds  int64   `json:"d_s" yaml:"d_s"`
	Days     float64 `json:"days" yaml:"days"`
}

// Text renders the summary paragraph.
func (s Summary) Text() string {
	return strings.Join([]string{
		fmt.Sprintf("Claims: %d", s.Claims),
		fmt.Sprintf("Total size: %.4f GB", s.SizeGB),
		fmt.Sprintf("Total duration: %d h %d min %d s, or %.4f days", s.Hours, s.Minutes, s.Seconds, s.Days),
	}, "\n")
}

// SummarizeClaims totals claims resolved online.
func SummarizeClaims(items []lbrynet.Claim) Summary {
	var size, seconds int64
	for _, c := range items {
		if c.Value.Source != nil {
			size += int64(c.Value.Source.Size)
		}
		seconds += c.Value.Duration()
	}
	return summarize(len(items), size, seconds)
}

// SummarizeFiles totals claims downloaded locally.
func SummarizeFiles(items []lbrynet.File) Summary {
	var size, seconds int64
	for _, f := range items {
		if f.Metadata.Source != nil {
			size += int64(f.Metadata.Source.Size)
		}
		seconds += f.Metadata.Duration()
	}
	return summarize(len(items), size, seconds)
}

func summarize(n int, size, seconds int64) Summary {
	return Summary{
		Claims:   n,
		Size:     size,
		Duration: seconds,
		SizeGB:   float64(size) / bytesPerGiB,
		Hours:    seconds / 3600,
		Minutes:  (seconds % 3600) / 60,
		Seconds:  (seconds % 3600) % 60,
		Days:     float64(seconds) / 3600 / 24,
	}
}

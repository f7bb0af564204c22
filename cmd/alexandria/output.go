package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"alexandria/internal/claims"
	"alexandria/internal/format"
	"alexandria/internal/lbrynet"
)

var (
	outputFormatter format.Formatter = format.JSONFormatter{Indent: true}
	stdout          io.Writer        = os.Stdout
)

func writeJSON(payload any) error {
	return outputFormatter.Write(stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	for _, line := range lines {
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// writeTable draws bordered tables on terminals and plain columns elsewhere.
func writeTable(headers []string, rows [][]string, aligns []format.Align) error {
	if len(rows) == 0 {
		return nil
	}
	return writePlain("%s\n", format.Table(headers, rows, aligns, !format.ShouldColorize(stdout)))
}

var claimTableHeaders = []string{"#", "Released", "Claim ID", "Channel", "Name", "Size", "Duration"}

var claimTableAligns = []format.Align{
	format.AlignRight, format.AlignLeft, format.AlignLeft, format.AlignLeft,
	format.AlignLeft, format.AlignRight, format.AlignRight,
}

func claimRows(items []lbrynet.Claim) [][]string {
	rows := make([][]string, 0, len(items))
	for i, c := range items {
		var size int64
		if c.Value.Source != nil {
			size = int64(c.Value.Source.Size)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			format.Unix(claims.ReleaseTime(c)),
			c.ClaimID,
			c.ChannelName(),
			c.Name,
			format.Size(size),
			format.Duration(c.Value.Duration()),
		})
	}
	return rows
}

func fileRows(items []lbrynet.File) [][]string {
	rows := make([][]string, 0, len(items))
	for i, f := range items {
		size := f.TotalBytes
		if size == 0 && f.Metadata.Source != nil {
			size = int64(f.Metadata.Source.Size)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			format.Unix(claims.FileReleaseTime(f)),
			f.ClaimID,
			f.ChannelName,
			f.ClaimName,
			format.Size(size),
			format.Duration(f.Metadata.Duration()),
		})
	}
	return rows
}

// claimDetail renders one claim as key: value lines.
func claimDetail(c lbrynet.Claim) []string {
	lines := []string{
		"canonical_url: " + c.CanonicalURL,
		"claim_id: " + c.ClaimID,
		"name: " + c.Name,
		"title: " + c.Title(),
	}
	if ch := c.ChannelName(); ch != "" {
		lines = append(lines, "channel: "+ch)
	}
	if c.ValueType != "" {
		lines = append(lines, "type: "+c.ValueType)
	}
	lines = append(lines,
		"release_time: "+format.Unix(claims.ReleaseTime(c)),
		fmt.Sprintf("amount: %.8f", c.Amount.Float()),
	)
	if src := c.Value.Source; src != nil {
		lines = append(lines, "size: "+format.Size(int64(src.Size)))
		if src.MediaType != "" {
			lines = append(lines, "media_type: "+src.MediaType)
		}
	}
	if d := c.Value.Duration(); d > 0 {
		lines = append(lines, "duration: "+format.Duration(d))
	}
	if fee := c.Value.Fee; fee != nil && fee.Amount != "" {
		lines = append(lines, fmt.Sprintf("fee: %s %s", fee.Amount, fee.Currency))
	}
	return lines
}

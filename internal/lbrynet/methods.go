package lbrynet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxPageSize asks the daemon for everything in a single page.
const MaxPageSize = 99000

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var resp Status
	err := c.Call(ctx, "status", nil, &resp)
	return resp, err
}

// Ping checks whether the daemon answers API calls.
func (c *Client) Ping(ctx context.Context) error {
	return c.Call(ctx, "status", nil, nil)
}

// EntryError is the per-URI failure embedded in a resolve result.
type EntryError struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

func (e *EntryError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name != "" {
		return e.Name + ", " + e.Text
	}
	return e.Text
}

// ResolveEntry is the outcome of resolving one URI.
type ResolveEntry struct {
	Claim *Claim
	Err   *EntryError
}

// Resolve resolves one or more URIs. Each URI gets an entry; failures for
// individual URIs are reported in the entry, not as the returned error.
func (c *Client) Resolve(ctx context.Context, uris ...string) (map[string]ResolveEntry, error) {
	if len(uris) == 0 {
		return map[string]ResolveEntry{}, nil
	}
	params := map[string]any{"urls": uris}
	if len(uris) == 1 {
		params["urls"] = uris[0]
	}

	var raw json.RawMessage
	if err := c.Call(ctx, "resolve", params, &raw); err != nil {
		return nil, err
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode resolve result: %w", err)
	}

	out := make(map[string]ResolveEntry, len(entries))
	for uri, body := range entries {
		if errVal := gjson.GetBytes(body, "error"); errVal.Exists() {
			out[uri] = ResolveEntry{Err: entryError(errVal)}
			continue
		}
		var claim Claim
		if err := json.Unmarshal(body, &claim); err != nil {
			return nil, fmt.Errorf("decode resolved claim %s: %w", uri, err)
		}
		out[uri] = ResolveEntry{Claim: &claim}
	}
	return out, nil
}

func entryError(v gjson.Result) *EntryError {
	if v.IsObject() {
		return &EntryError{Name: v.Get("name").String(), Text: v.Get("text").String()}
	}
	return &EntryError{Text: v.String()}
}

// ClaimSearchParams are the claim_search filters the client uses.
type ClaimSearchParams struct {
	Text        string   `json:"text,omitempty"`
	Name        string   `json:"name,omitempty"`
	ClaimID     string   `json:"claim_id,omitempty"`
	ClaimIDs    []string `json:"claim_ids,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	ClaimType   []string `json:"claim_type,omitempty"`
	StreamTypes []string `json:"stream_types,omitempty"`
	Height      string   `json:"height,omitempty"`
	OrderBy     []string `json:"order_by,omitempty"`
	Page        int      `json:"page,omitempty"`
	PageSize    int      `json:"page_size,omitempty"`
	NoTotals    bool     `json:"no_totals,omitempty"`
}

// ClaimSearch runs claim_search.
func (c *Client) ClaimSearch(ctx context.Context, params ClaimSearchParams) (ClaimPage, error) {
	var resp ClaimPage
	err := c.Call(ctx, "claim_search", params, &resp)
	return resp, err
}

// FileListParams are the file_list filters the client uses.
type FileListParams struct {
	ClaimID     string `json:"claim_id,omitempty"`
	ClaimName   string `json:"claim_name,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// FileList runs file_list.
func (c *Client) FileList(ctx context.Context, params FileListParams) (FilePage, error) {
	var resp FilePage
	err := c.Call(ctx, "file_list", params, &resp)
	return resp, err
}

// SupportListParams are the support_list filters the client uses.
type SupportListParams struct {
	ClaimID  string `json:"claim_id,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// SupportList runs support_list.
func (c *Client) SupportList(ctx context.Context, params SupportListParams) (SupportPage, error) {
	var resp SupportPage
	err := c.Call(ctx, "support_list", params, &resp)
	return resp, err
}

// SupportCreate deposits amount LBC as support on a claim.
func (c *Client) SupportCreate(ctx context.Context, claimID string, amount float64) (Transaction, error) {
	var resp Transaction
	params := map[string]string{
		"claim_id": claimID,
		"amount":   FormatAmount(amount),
	}
	err := c.Call(ctx, "support_create", params, &resp)
	return resp, err
}

// SupportAbandon removes our supports on a claim. A positive keep leaves
// that amount deposited.
func (c *Client) SupportAbandon(ctx context.Context, claimID string, keep float64) (Transaction, error) {
	var resp Transaction
	params := map[string]string{"claim_id": claimID}
	if keep > 0 {
		params["keep"] = FormatAmount(keep)
	}
	err := c.Call(ctx, "support_abandon", params, &resp)
	return resp, err
}

// GetParams are the arguments of the get method.
type GetParams struct {
	URI               string `json:"uri"`
	DownloadDirectory string `json:"download_directory,omitempty"`
	FileName          string `json:"file_name,omitempty"`
	SaveFile          *bool  `json:"save_file,omitempty"`
	Timeout           int    `json:"timeout,omitempty"`
}

// Get asks the daemon to fetch a stream, optionally saving it to disk.
func (c *Client) Get(ctx context.Context, params GetParams) (File, error) {
	var file File
	if strings.TrimSpace(params.URI) == "" {
		return file, fmt.Errorf("uri is required")
	}

	var raw json.RawMessage
	if err := c.Call(ctx, "get", params, &raw); err != nil {
		return file, err
	}
	if errVal := gjson.GetBytes(raw, "error"); errVal.Exists() && errVal.String() != "" {
		return file, &RPCError{Method: "get", Message: errVal.String()}
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("decode get result: %w", err)
	}
	return file, nil
}

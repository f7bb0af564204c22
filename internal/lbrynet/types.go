package lbrynet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes integers the daemon sends either as JSON numbers or as strings.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = FlexInt(v)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", raw)
	}
	*n = FlexInt(int64(f))
	return nil
}

// Amount is an LBC quantity as the daemon reports it, a decimal string.
type Amount string

// UnmarshalJSON accepts both strings and numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(string(data))
	return nil
}

// Float returns the amount as a float; unparsable values count as zero.
func (a Amount) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders an LBC quantity the way the daemon accepts it.
// The smallest unit is 0.00000001 LBC.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

// Source describes the file behind a stream claim.
type Source struct {
	Name      string  `json:"name,omitempty"`
	Size      FlexInt `json:"size,omitempty"`
	MediaType string  `json:"media_type,omitempty"`
	SDHash    string  `json:"sd_hash,omitempty"`
}

// Media carries playback information of audio and video streams.
type Media struct {
	Duration FlexInt `json:"duration,omitempty"`
	Width    FlexInt `json:"width,omitempty"`
	Height   FlexInt `json:"height,omitempty"`
}

// Thumbnail points at a claim's preview image.
type Thumbnail struct {
	URL string `json:"url,omitempty"`
}

// Fee is the price set by the publisher to access a stream.
type Fee struct {
	Amount   Amount `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address,omitempty"`
}

// ClaimValue is the metadata published with a claim.
type ClaimValue struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ReleaseTime FlexInt    `json:"release_time,omitempty"`
	StreamType  string     `json:"stream_type,omitempty"`
	Source      *Source    `json:"source,omitempty"`
	Video       *Media     `json:"video,omitempty"`
	Audio       *Media     `json:"audio,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	Fee         *Fee       `json:"fee,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Languages   []string   `json:"languages,omitempty"`
}

// Duration returns the stream length in seconds, preferring video over audio.
func (v ClaimValue) Duration() int64 {
	if v.Video != nil {
		return int64(v.Video.Duration)
	}
	if v.Audio != nil {
		return int64(v.Audio.Duration)
	}
	return 0
}

// ClaimMeta holds values computed by the hub for a claim.
type ClaimMeta struct {
	SupportAmount     Amount  `json:"support_amount,omitempty"`
	EffectiveAmount   Amount  `json:"effective_amount,omitempty"`
	TrendingGlobal    float64 `json:"trending_global,omitempty"`
	TrendingGroup     float64 `json:"trending_group,omitempty"`
	TrendingLocal     float64 `json:"trending_local,omitempty"`
	TrendingMixed     float64 `json:"trending_mixed,omitempty"`
	CreationHeight    int64   `json:"creation_height,omitempty"`
	CreationTimestamp int64   `json:"creation_timestamp,omitempty"`
	ClaimsInChannel   int64   `json:"claims_in_channel,omitempty"`
}

// Claim is a named entry on the LBRY blockchain as returned by resolve and claim_search.
type Claim struct {
	ClaimID        string     `json:"claim_id"`
	Name           string     `json:"name"`
	CanonicalURL   string     `json:"canonical_url,omitempty"`
	ShortURL       string     `json:"short_url,omitempty"`
	PermanentURL   string     `json:"permanent_url,omitempty"`
	Amount         Amount     `json:"amount,omitempty"`
	Timestamp      FlexInt    `json:"timestamp,omitempty"`
	Height         int64      `json:"height,omitempty"`
	ValueType      string     `json:"value_type,omitempty"`
	Value          ClaimValue `json:"value"`
	Meta           ClaimMeta  `json:"meta"`
	SigningChannel *Claim     `json:"signing_channel,omitempty"`
	RepostedClaim  *Claim     `json:"reposted_claim,omitempty"`
}

// IsChannel reports whether the claim is a channel.
func (c Claim) IsChannel() bool {
	return c.ValueType == "channel" || strings.HasPrefix(c.Name, "@")
}

// Title returns the published title, or the claim name when there is none.
func (c Claim) Title() string {
	if c.Value.Title != "" {
		return c.Value.Title
	}
	return c.Name
}

// ChannelName returns the name of the signing channel, if any.
func (c Claim) ChannelName() string {
	if c.SigningChannel == nil {
		return ""
	}
	return c.SigningChannel.Name
}

// BlockingChannel is a channel whose moderation hides claims on a hub.
type BlockingChannel struct {
	Blocked int   `json:"blocked"`
	Channel Claim `json:"channel"`
}

// Blocked lists the hub moderation that applied to a search.
type Blocked struct {
	Total    int               `json:"total"`
	Channels []BlockingChannel `json:"channels"`
}

// ClaimPage is one page of claim_search results.
type ClaimPage struct {
	Items      []Claim  `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalItems int      `json:"total_items"`
	TotalPages int      `json:"total_pages"`
	Blocked    *Blocked `json:"blocked,omitempty"`
}

// File is a stream the daemon knows about locally, from file_list or get.
type File struct {
	ClaimID           string     `json:"claim_id"`
	ClaimName         string     `json:"claim_name"`
	StreamName        string     `json:"stream_name,omitempty"`
	ChannelName       string     `json:"channel_name,omitempty"`
	ChannelClaimID    string     `json:"channel_claim_id,omitempty"`
	MimeType          string     `json:"mime_type,omitempty"`
	Metadata          ClaimValue `json:"metadata"`
	Timestamp         FlexInt    `json:"timestamp,omitempty"`
	DownloadPath      string     `json:"download_path,omitempty"`
	DownloadDirectory string     `json:"download_directory,omitempty"`
	FileName          string     `json:"file_name,omitempty"`
	Completed         bool       `json:"completed"`
	WrittenBytes      int64      `json:"written_bytes,omitempty"`
	TotalBytes        int64      `json:"total_bytes,omitempty"`
	StreamingURL      string     `json:"streaming_url,omitempty"`
	Outpoint          string     `json:"outpoint,omitempty"`
	Status            string     `json:"status,omitempty"`
}

// AsClaim converts a local file record into the claim shape used elsewhere.
func (f File) AsClaim() Claim {
	c := Claim{
		ClaimID:   f.ClaimID,
		Name:      f.ClaimName,
		Timestamp: f.Timestamp,
		ValueType: "stream",
		Value:     f.Metadata,
	}
	if f.ChannelName != "" {
		c.SigningChannel = &Claim{ClaimID: f.ChannelClaimID, Name: f.ChannelName}
	}
	return c
}

// FilePage is one page of file_list results.
type FilePage struct {
	Items      []File `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalItems int    `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

// Support is LBC deposited by this wallet on a claim.
type Support struct {
	ClaimID string `json:"claim_id"`
	Name    string `json:"name"`
	Amount  Amount `json:"amount"`
	IsSpent bool   `json:"is_spent"`
	Txid    string `json:"txid,omitempty"`
	Nout    int    `json:"nout,omitempty"`
}

// SupportPage is one page of support_list results.
type SupportPage struct {
	Items      []Support `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalItems int       `json:"total_items"`
	TotalPages int       `json:"total_pages"`
}

// Transaction summarizes a wallet transaction created by the daemon.
type Transaction struct {
	Txid        string `json:"txid"`
	TotalInput  Amount `json:"total_input"`
	TotalOutput Amount `json:"total_output"`
	TotalFee    Amount `json:"total_fee"`
}

// Status is the subset of the daemon status the client reports.
type Status struct {
	IsRunning       bool            `json:"is_running"`
	InstallationID  string          `json:"installation_id,omitempty"`
	StartupStatus   map[string]bool `json:"startup_status,omitempty"`
	ConnectionState struct {
		Code string `json:"code"`
	} `json:"connection_status"`
	Wallet struct {
		BestBlockchain string `json:"best_blockchain,omitempty"`
		Blocks         int64  `json:"blocks"`
		BlocksBehind   int64  `json:"blocks_behind"`
		Servers        []struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		} `json:"servers,omitempty"`
	} `json:"wallet"`
}

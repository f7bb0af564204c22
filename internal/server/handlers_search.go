package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"alexandria/internal/api"
	"alexandria/internal/download"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
	"alexandria/internal/store"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("q is required"), ErrCodeMissingRequired))
		return
	}
	page, err := queryIntDefault(r, "page", 1)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	pageSize, err := queryIntDefault(r, "page_size", s.opts.PageSize)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode(fmt.Errorf("page_size must be between 1 and %d", maxPageSize), ErrCodeInvalidQuery))
		return
	}

	s.withLimiter(w, r, s.searchLimiter, "search", func() {
		resp := api.SearchResponse{Query: text, Page: page, PageSize: pageSize}
		items, cached, err := s.searchCached(r.Context(), text, page, pageSize)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		resp.Items = api.SummarizeAll(items)
		resp.Cached = cached

		s.record(r.Context(), store.Event{
			Kind:   store.EventSearch,
			Query:  text,
			Detail: strconv.Itoa(len(items)) + " results",
		})
		s.writeJSON(w, http.StatusOK, resp)
	})
}

// searchCached serves a search from the store while its entry is fresh.
func (s *Server) searchCached(ctx context.Context, text string, page, pageSize int) ([]lbrynet.Claim, bool, error) {
	key := store.SearchKey(text, page, pageSize)
	if s.store != nil && s.opts.CacheTTL > 0 {
		payload, ok, err := s.store.GetSearch(ctx, key, s.opts.CacheTTL)
		if err != nil {
			s.log().Warn("read search cache", "error", err)
		}
		if ok {
			var items []lbrynet.Claim
			if err := json.Unmarshal(payload, &items); err == nil {
				return items, true, nil
			}
			s.log().Warn("discard corrupt search cache entry", "key", key)
		}
	}

	items, err := s.search.Text(ctx, search.TextQuery{Text: text, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, false, err
	}
	if s.store == nil {
		return items, false, nil
	}
	if err := s.store.PutClaims(ctx, items); err != nil {
		s.log().Warn("cache claims", "error", err)
	}
	if s.opts.CacheTTL > 0 {
		payload, err := json.Marshal(items)
		if err == nil {
			err = s.store.PutSearch(ctx, key, text, payload)
		}
		if err != nil {
			s.log().Warn("write search cache", "error", err)
		}
	}
	return items, false, nil
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offline, err := queryBool(r, "offline")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	noRepost, err := queryBool(r, "no_repost")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	query := search.Query{
		URI:          q.Get("uri"),
		ClaimID:      q.Get("claim_id"),
		Name:         q.Get("name"),
		Offline:      offline,
		FollowRepost: !noRepost,
	}

	item, err := s.search.Item(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.store != nil {
		if err := s.store.PutClaims(r.Context(), []lbrynet.Claim{item}); err != nil {
			s.log().Warn("cache claim", "claim_id", item.ClaimID, "error", err)
		}
	}
	s.record(r.Context(), store.Event{
		Kind:    store.EventResolve,
		Query:   firstNonEmpty(query.URI, query.ClaimID, query.Name),
		ClaimID: item.ClaimID,
		URI:     item.CanonicalURL,
		Title:   item.Title(),
	})
	s.writeJSON(w, http.StatusOK, api.ResolveResponse{Summary: api.Summarize(item), Claim: item})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req api.DownloadRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	res, err := s.downloader.Single(r.Context(), download.Request{
		URI:      req.URI,
		ClaimID:  req.ClaimID,
		Name:     req.Name,
		Dir:      s.opts.DownloadDir,
		OwnDir:   s.opts.OwnDir,
		SaveFile: !req.Stream,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	detail := res.File.DownloadPath
	if req.Stream {
		detail = "stream"
	}
	s.record(r.Context(), store.Event{
		Kind:    store.EventDownload,
		Query:   firstNonEmpty(req.URI, req.ClaimID, req.Name),
		ClaimID: res.Claim.ClaimID,
		URI:     res.Claim.CanonicalURL,
		Title:   res.Claim.Title(),
		Detail:  detail,
	})
	s.writeJSON(w, http.StatusOK, api.DownloadResponse{
		Summary:      api.Summarize(res.Claim),
		Directory:    res.Dir,
		Path:         res.File.DownloadPath,
		StreamingURL: res.File.StreamingURL,
		MimeType:     res.File.MimeType,
		Completed:    res.File.Completed,
	})
}

// record adds a history event. History is best effort and never fails a request.
func (s *Server) record(ctx context.Context, e store.Event) {
	if s.store == nil {
		return
	}
	if _, err := s.store.RecordEvent(ctx, e); err != nil {
		s.log().Warn("record history", "kind", e.Kind, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

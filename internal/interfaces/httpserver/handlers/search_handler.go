package handlers

import (
	"context"
	"encoding/json"

	domain "sitesearch/internal/domain/search"
	"sitesearch/internal/infrastructure/searchclient"
)

// HitView is one result with its sanitized highlight fragments.
type HitView struct {
	Highlight map[string][]string `json:"highlight"`
}

// ResultView is what the widget renders: the hit count plus per-hit fragments.
type ResultView struct {
	Total int       `json:"total"`
	Hits  []HitView `json:"hits"`
}

// SearchHandler invokes domain logic for search use cases.
type SearchHandler struct {
	service domain.Service
}

// NewSearchHandler wires dependencies for search routes.
func NewSearchHandler(service domain.Service) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// Search runs term through the query builder and the configured index.
func (h *SearchHandler) Search(ctx context.Context, term string) (ResultView, error) {
	resp, err := h.service.Search(ctx, term)
	if err != nil {
		return ResultView{}, err
	}
	return toResultView(resp), nil
}

// SearchRaw sends the caller's body verbatim to the index, bypassing the
// query builder.
func (h *SearchHandler) SearchRaw(ctx context.Context, body json.RawMessage) (ResultView, error) {
	resp, err := h.service.SearchWithOptions(ctx, domain.RequestOptions{
		Method: "POST",
		Body:   body,
	})
	if err != nil {
		return ResultView{}, err
	}
	return toResultView(resp), nil
}

// Recent returns the latest recorded searches.
func (h *SearchHandler) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	return h.service.Recent(ctx, limit)
}

func toResultView(resp *domain.Response) ResultView {
	view := ResultView{
		Total: resp.Hits.Total,
		Hits:  make([]HitView, 0, len(resp.Hits.Hits)),
	}
	for _, hit := range resp.Hits.Hits {
		view.Hits = append(view.Hits, HitView{
			Highlight: searchclient.SanitizeHighlights(hit.Highlight),
		})
	}
	return view
}

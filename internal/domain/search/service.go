package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Credentials carries optional basic-auth material for an override request.
type Credentials struct {
	Username string
	Password string
}

// RequestOptions mirrors the fetch layer's request shape. When a caller
// supplies one, it is passed through verbatim to the JSON client and the
// query builder is bypassed entirely.
type RequestOptions struct {
	Method      string
	Headers     map[string]string
	Body        any
	Credentials *Credentials
}

// Searcher issues searches against the configured remote index.
type Searcher interface {
	Search(ctx context.Context, term string) (*Response, error)
	SearchWithOptions(ctx context.Context, opts RequestOptions) (*Response, error)
}

// Service describes the business logic surface for search operations.
type Service interface {
	Search(ctx context.Context, term string) (*Response, error)
	SearchWithOptions(ctx context.Context, opts RequestOptions) (*Response, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
}

type service struct {
	client  Searcher
	history HistoryRepository
	log     zerolog.Logger
}

// NewService wires the search service with its remote client and history store.
func NewService(client Searcher, history HistoryRepository, log zerolog.Logger) Service {
	return &service{
		client:  client,
		history: history,
		log:     log.With().Str("component", "search-service").Logger(),
	}
}

func (s *service) Search(ctx context.Context, term string) (*Response, error) {
	start := time.Now()
	resp, err := s.client.Search(ctx, term)
	if err != nil {
		s.log.Error().Err(err).Str("term", term).Msg("search failed")
		return nil, err
	}

	s.recordHistory(ctx, term, resp.Hits.Total, time.Since(start))
	return resp, nil
}

func (s *service) SearchWithOptions(ctx context.Context, opts RequestOptions) (*Response, error) {
	resp, err := s.client.SearchWithOptions(ctx, opts)
	if err != nil {
		s.log.Error().Err(err).Str("method", opts.Method).Msg("override search failed")
		return nil, err
	}
	return resp, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Record, error) {
	return s.history.Recent(ctx, limit)
}

// recordHistory is best effort: a failed write never fails the search itself.
func (s *service) recordHistory(ctx context.Context, term string, total int, duration time.Duration) {
	rec := Record{
		Term:      term,
		Total:     total,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("term", term).Msg("record search history")
	}
}

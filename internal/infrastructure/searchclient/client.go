package searchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel/attribute"

	domainsearch "sitesearch/internal/domain/search"
	"sitesearch/internal/infrastructure/httpclient"
	"sitesearch/internal/infrastructure/metrics"
	"sitesearch/internal/infrastructure/observability"
)

// Transport selects how queries reach the remote index.
type Transport string

const (
	// TransportXHR posts the query as a JSON body.
	TransportXHR Transport = "xhr"
	// TransportJSONP rides the query on a script-injection GET, for indexes
	// that only allow cross-origin reads via a callback parameter.
	TransportJSONP Transport = "jsonp"
)

// ClientConfig captures the knobs exposed to operators for the index client.
type ClientConfig struct {
	// Endpoint is set once before first use. An unset endpoint is not
	// validated locally; it surfaces as a transport failure from the fetch
	// layer, same as any unreachable remote.
	Endpoint      string
	Transport     Transport
	CallbackParam string
	JSONPTimeout  time.Duration
	Headers       map[string]string
	Username      string
	Password      string
}

// Client implements domainsearch.Searcher against a remote search index.
type Client struct {
	cfg     ClientConfig
	fetcher *httpclient.Client
	log     zerolog.Logger
}

var _ domainsearch.Searcher = (*Client)(nil)

// NewClient wires the index client over the shared fetch layer.
func NewClient(cfg ClientConfig, fetcher *httpclient.Client) *Client {
	if cfg.Transport == "" {
		cfg.Transport = TransportXHR
	}
	return &Client{
		cfg:     cfg,
		fetcher: fetcher,
		log:     log.With().Str("component", "searchclient").Logger(),
	}
}

// Search builds the match query for term and executes it over the configured
// transport.
func (c *Client) Search(ctx context.Context, term string) (*domainsearch.Response, error) {
	ctx, span := observability.StartSpan(ctx, "search.query",
		attribute.String("search.transport", string(c.cfg.Transport)))
	defer span.End()

	start := time.Now()
	query := domainsearch.BuildMatchQuery(term)

	var raw json.RawMessage
	var err error
	switch c.cfg.Transport {
	case TransportJSONP:
		raw, err = c.searchViaJSONP(ctx, query)
	default:
		raw, err = c.fetcher.FetchJSON(ctx, c.cfg.Endpoint, httpclient.RequestOptions{
			Method:      http.MethodPost,
			Headers:     c.cfg.Headers,
			Body:        query,
			Credentials: c.credentials(),
		})
	}

	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		metrics.RecordSearch(string(c.cfg.Transport), "error", elapsed)
		return nil, err
	}
	metrics.RecordSearch(string(c.cfg.Transport), "ok", elapsed)

	return c.decodeResponse(raw, term)
}

// SearchWithOptions passes the caller's request shape through verbatim,
// bypassing the query builder.
func (c *Client) SearchWithOptions(ctx context.Context, opts domainsearch.RequestOptions) (*domainsearch.Response, error) {
	ctx, span := observability.StartSpan(ctx, "search.override",
		attribute.String("http.method", opts.Method))
	defer span.End()

	start := time.Now()
	raw, err := c.fetcher.FetchJSON(ctx, c.cfg.Endpoint, httpclient.RequestOptions{
		Method:      opts.Method,
		Headers:     opts.Headers,
		Body:        opts.Body,
		Credentials: overrideCredentials(opts.Credentials, c.credentials()),
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		metrics.RecordSearch(string(TransportXHR), "error", elapsed)
		return nil, err
	}
	metrics.RecordSearch(string(TransportXHR), "ok", elapsed)

	return c.decodeResponse(raw, "")
}

// searchViaJSONP serializes the query into a source parameter, the GET-only
// shape JSONP-capable indexes accept.
func (c *Client) searchViaJSONP(ctx context.Context, query domainsearch.Query) (json.RawMessage, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	scriptURL := httpclient.AppendQuery(c.cfg.Endpoint, "source="+string(payload))
	return c.fetcher.FetchJSONP(ctx, scriptURL, httpclient.JSONPOptions{
		Timeout:       c.cfg.JSONPTimeout,
		CallbackParam: c.cfg.CallbackParam,
	})
}

func (c *Client) decodeResponse(raw json.RawMessage, term string) (*domainsearch.Response, error) {
	var resp domainsearch.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &httpclient.FetchError{
			Kind:    httpclient.FailureDecode,
			Message: fmt.Sprintf("decode search response: %v", err),
			Err:     err,
		}
	}

	if err := ValidateResponse(&resp); err != nil {
		c.log.Warn().Err(err).Str("term", term).Msg("search response failed validation")
	}
	return &resp, nil
}

func (c *Client) credentials() *httpclient.Credentials {
	if c.cfg.Username == "" {
		return nil
	}
	return &httpclient.Credentials{Username: c.cfg.Username, Password: c.cfg.Password}
}

func overrideCredentials(override *domainsearch.Credentials, fallback *httpclient.Credentials) *httpclient.Credentials {
	if override == nil {
		return fallback
	}
	return &httpclient.Credentials{Username: override.Username, Password: override.Password}
}

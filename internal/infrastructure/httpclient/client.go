package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 15 * time.Second

// Credentials carries optional basic-auth material for an outgoing request.
type Credentials struct {
	Username string
	Password string
}

// RequestOptions describes a single outgoing request.
//
// Body handling depends on the method: for GET and DELETE a map or struct body
// is reinterpreted as query-string parameters and appended to the URL, never
// transmitted as a payload; for every other method a non-string body is
// serialized to JSON before transmission. HEAD requests must not materialize
// a body at all.
type RequestOptions struct {
	Method      string // defaults to GET
	Headers     map[string]string
	Body        any
	Credentials *Credentials
}

// ClientConfig captures construction knobs for the fetch client.
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
	// ScriptHost overrides the default script loader used by FetchJSONP.
	// Tests use this to simulate callback and timeout orderings.
	ScriptHost ScriptHost
}

// Client performs HTTP exchanges and normalizes outcomes into FetchError values.
// It also owns the pending-callback registry for script-injection reads, so no
// process-global state leaks across instances.
type Client struct {
	http *resty.Client
	host ScriptHost
	log  zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingCallback
}

// NewClient wires a fetch client with connection defaults matching the rest of
// the service.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "sitesearch/1.0"
	}

	httpClient := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout).
		SetRetryCount(0)

	c := &Client{
		http:    httpClient,
		log:     log.With().Str("component", "httpclient").Logger(),
		pending: make(map[string]*pendingCallback),
	}
	if cfg.ScriptHost != nil {
		c.host = cfg.ScriptHost
	} else {
		c.host = newScriptLoader(httpClient, c.Dispatch)
	}
	return c
}

// Fetch performs one HTTP exchange. A single logical attempt, no retry.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts RequestOptions) (string, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	targetURL := rawURL
	var payload string
	hasPayload := false

	switch method {
	case http.MethodGet, http.MethodDelete:
		if opts.Body != nil {
			pairs, ok := queryPairs(opts.Body)
			if !ok {
				return "", &FetchError{
					Kind:    FailureRequest,
					Message: fmt.Sprintf("%s body must be a map or struct, got %T", method, opts.Body),
				}
			}
			targetURL = AppendQuery(targetURL, strings.Join(pairs, "&"))
		}
	default:
		if opts.Body != nil {
			if s, ok := opts.Body.(string); ok {
				payload = s
			} else {
				raw, err := json.Marshal(opts.Body)
				if err != nil {
					return "", &FetchError{
						Kind:    FailureRequest,
						Message: fmt.Sprintf("encode %s body: %v", method, err),
						Err:     err,
					}
				}
				payload = string(raw)
			}
			hasPayload = true
		}
	}

	if method == http.MethodHead && hasPayload && payload != "" {
		return "", &FetchError{
			Kind:    FailureRequest,
			Message: "HEAD request must not carry a body",
		}
	}

	req := c.http.R().SetContext(ctx)
	for name, value := range opts.Headers {
		req.SetHeader(name, value)
	}
	if opts.Credentials != nil && opts.Credentials.Username != "" {
		req.SetBasicAuth(opts.Credentials.Username, opts.Credentials.Password)
	}
	if hasPayload {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, targetURL)
	if err != nil {
		return "", c.classifyTransportError(targetURL, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest || resp.StatusCode() == 0 {
		return "", &FetchError{
			Kind:       FailureTransport,
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}

	return resp.String(), nil
}

// FetchJSON performs a fetch that is guaranteed to carry a JSON content type
// and returns the parsed response body. An explicit Content-Type set by the
// caller is never overridden.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, opts RequestOptions) (json.RawMessage, error) {
	headers := make(map[string]string, len(opts.Headers)+1)
	for name, value := range opts.Headers {
		headers[name] = value
	}
	if !hasHeader(headers, "Content-Type") {
		headers["Content-Type"] = "application/json"
	}
	opts.Headers = headers

	body, err := c.Fetch(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	var parsed json.RawMessage
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &FetchError{
			Kind:    FailureDecode,
			Message: fmt.Sprintf("decode response body: %v", err),
			Err:     err,
		}
	}
	return parsed, nil
}

func (c *Client) classifyTransportError(rawURL string, err error) *FetchError {
	switch {
	case errors.Is(err, context.Canceled):
		return &FetchError{Kind: FailureTransport, Message: "request aborted", Err: err}
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return &FetchError{Kind: FailureTransport, Message: "request timed out", Err: err}
	default:
		c.log.Debug().Err(err).Str("url", rawURL).Msg("transport failure")
		return &FetchError{Kind: FailureTransport, Message: err.Error(), Err: err}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// queryPairs flattens a map or struct body into key=value pairs. Values are
// inserted verbatim with no percent-encoding, matching the widget's historical
// wire shape. Map keys are sorted for determinism; struct fields keep their
// declaration order and honor json tags.
func queryPairs(body any) ([]string, bool) {
	v := reflect.ValueOf(body)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := make([]string, 0, v.Len())
		for _, key := range v.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, key+"="+formatQueryValue(v.MapIndex(reflect.ValueOf(key))))
		}
		return pairs, true
	case reflect.Struct:
		t := v.Type()
		pairs := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue
			}
			name := field.Name
			if tag := field.Tag.Get("json"); tag != "" {
				tagName := strings.Split(tag, ",")[0]
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			pairs = append(pairs, name+"="+formatQueryValue(v.Field(i)))
		}
		return pairs, true
	default:
		return nil, false
	}
}

func formatQueryValue(v reflect.Value) string {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// AppendQuery joins a pre-built query fragment onto rawURL, using ? when the
// URL has no query string yet, else &.
func AppendQuery(rawURL, query string) string {
	if query == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + query
}

func hasHeader(headers map[string]string, name string) bool {
	for key := range headers {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

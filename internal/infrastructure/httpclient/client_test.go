package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(ClientConfig{Timeout: 5 * time.Second})
}

func TestFetch_GetBodyBecomesQueryString(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t)
	body, err := client.Fetch(context.Background(), server.URL+"/search", RequestOptions{
		Method: http.MethodGet,
		Body: struct {
			Q     string `json:"q"`
			Limit int    `json:"limit"`
		}{Q: "x", Limit: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, "/search?q=x&limit=5", gotURI)
}

func TestFetch_GetAppendsToExistingQueryString(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Fetch(context.Background(), server.URL+"/search?page=1", RequestOptions{
		Body: map[string]string{"q": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/search?page=1&q=x", gotURI)
}

func TestFetch_GetNonObjectBodyFailsBeforeIO(t *testing.T) {
	client := newTestClient(t)

	// No server behind this URL; the request must fail before any dial.
	_, err := client.Fetch(context.Background(), "http://127.0.0.1:1/search", RequestOptions{
		Method: http.MethodGet,
		Body:   "plain string",
	})
	require.Error(t, err)
	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, FailureRequest, fe.Kind)
}

func TestFetch_DeleteBodyBecomesQueryString(t *testing.T) {
	var gotURI, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotMethod = r.Method
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Fetch(context.Background(), server.URL+"/items", RequestOptions{
		Method: http.MethodDelete,
		Body:   map[string]string{"id": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/items?id=42", gotURI)
}

func TestFetch_HeadWithBodyFailsBeforeIO(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Fetch(context.Background(), "http://127.0.0.1:1/", RequestOptions{
		Method: http.MethodHead,
		Body:   map[string]string{"q": "x"},
	})
	require.Error(t, err)
	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, FailureRequest, fe.Kind)
	assert.Contains(t, fe.Message, "HEAD")
}

func TestFetch_PostSerializesBodyAsJSON(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Fetch(context.Background(), server.URL, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"q": "chair"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"q":"chair"}`, string(gotBody))
}

func TestFetch_PostStringBodyPassesThroughVerbatim(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Fetch(context.Background(), server.URL, RequestOptions{
		Method: http.MethodPost,
		Body:   `{"already":"encoded"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"already":"encoded"}`, string(gotBody))
}

func TestFetch_ErrorStatusCarriesRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Error"))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Fetch(context.Background(), server.URL, RequestOptions{})
	require.Error(t, err)
	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, fe.Kind)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Equal(t, "Internal Error", fe.Message)
}

func TestFetch_CancelledContextReportsAborted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	client := newTestClient(t)
	_, err := client.Fetch(ctx, server.URL, RequestOptions{})
	require.Error(t, err)
	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, fe.Kind)
	assert.Equal(t, "request aborted", fe.Message)
}

func TestFetch_TimeoutReportsTimedOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Timeout: 100 * time.Millisecond})
	_, err := client.Fetch(context.Background(), server.URL, RequestOptions{})
	require.Error(t, err)
	fe, ok := AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, fe.Kind)
	assert.Equal(t, "request timed out", fe.Message)
}

func TestFetch_BasicAuthForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t)
	body, err := client.Fetch(context.Background(), server.URL, RequestOptions{
		Credentials: &Credentials{Username: "alice", Password: "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestFetchJSON_DefaultsContentType(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t)
	raw, err := client.FetchJSON(context.Background(), server.URL, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"q": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestFetchJSON_CallerContentTypeWins(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.FetchJSON(context.Background(), server.URL, RequestOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"content-type": "application/x-ndjson"},
		Body:    "{}",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/x-ndjson", gotContentType)
}

func TestFetchJSON_InvalidBodyIsDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.FetchJSON(context.Background(), server.URL, RequestOptions{})
	require.Error(t, err)
	assert.True(t, IsKind(err, FailureDecode))
}

func TestQueryPairs(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
		ok   bool
	}{
		{
			name: "map keys sorted",
			body: map[string]any{"b": 2, "a": "one"},
			want: "a=one&b=2",
			ok:   true,
		},
		{
			name: "struct honors json tags",
			body: struct {
				Term string `json:"term"`
				Skip string `json:"-"`
				Page int
			}{Term: "x", Skip: "hidden", Page: 3},
			want: "term=x&Page=3",
			ok:   true,
		},
		{
			name: "slice rejected",
			body: []string{"a"},
			ok:   false,
		},
		{
			name: "number rejected",
			body: 42,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, ok := queryPairs(tt.body)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, strings.Join(pairs, "&"))
			}
		})
	}
}

func TestAppendQuery(t *testing.T) {
	assert.Equal(t, "http://e/s?q=x", AppendQuery("http://e/s", "q=x"))
	assert.Equal(t, "http://e/s?a=1&q=x", AppendQuery("http://e/s?a=1", "q=x"))
	assert.Equal(t, "http://e/s", AppendQuery("http://e/s", ""))
}

func TestFetch_NoRetryOnFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Fetch(context.Background(), server.URL, RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestParseCallbackInvocation(t *testing.T) {
	name, payload, ok := parseCallbackInvocation(`jsonp_abc({"hits":{"total":2}})`)
	require.True(t, ok)
	assert.Equal(t, "jsonp_abc", name)
	assert.True(t, json.Valid(payload))

	_, _, ok = parseCallbackInvocation("not a script")
	assert.False(t, ok)

	_, _, ok = parseCallbackInvocation("cb(not json)")
	assert.False(t, ok)
}

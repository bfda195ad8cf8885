package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/xid"

	"sitesearch/internal/infrastructure/metrics"
)

const (
	defaultJSONPTimeout  = 5 * time.Second
	defaultCallbackParam = "callback"
)

// JSONPOptions configures a script-injection read.
type JSONPOptions struct {
	// Timeout bounds how long the call waits for the callback. Default 5s.
	Timeout time.Duration
	// CallbackParam is the query parameter carrying the callback name. Default "callback".
	CallbackParam string
	// CallbackName overrides the generated callback name. Callers supplying
	// explicit names must keep them unique across in-flight calls; two calls
	// sharing a name collide and the registry does not serialize them.
	CallbackName string
}

// ScriptHost loads and disposes of remote scripts. It stands in for the
// document <head> a browser widget would inject <script> elements into.
type ScriptHost interface {
	// Inject starts loading the script identified by id from url. Delivery of
	// the callback invocation happens out of band via the client's registry.
	Inject(ctx context.Context, id, url string)
	// Remove disposes of the script identified by id. Must tolerate ids that
	// were never injected or are already gone.
	Remove(id string)
}

type jsonpOutcome struct {
	payload json.RawMessage
	err     error
}

type pendingCallback struct {
	scriptID string
	timer    *time.Timer
	outcome  chan jsonpOutcome
}

// FetchJSONP performs a GET-only cross-origin read by loading a script that
// invokes a named callback with a JSON payload. The temporary callback lives
// in the client's registry for exactly the duration of the call: it is
// unregistered, its script removed, and its timer stopped exactly once,
// whichever of success or timeout fires first. The losing trigger is a no-op.
func (c *Client) FetchJSONP(ctx context.Context, rawURL string, opts JSONPOptions) (json.RawMessage, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultJSONPTimeout
	}
	param := opts.CallbackParam
	if param == "" {
		param = defaultCallbackParam
	}
	name := opts.CallbackName
	if name == "" {
		name = "jsonp_" + xid.New().String()
	}

	scriptID := param + "_" + name
	scriptURL := AppendQuery(rawURL, param+"="+name)

	pc := &pendingCallback{
		scriptID: scriptID,
		outcome:  make(chan jsonpOutcome, 1),
	}

	// The timer is armed and the entry published under the same lock: settle
	// only sees pc through the registry, so it always observes pc.timer set,
	// even when the timeout fires before this critical section ends.
	c.mu.Lock()
	pc.timer = time.AfterFunc(timeout, func() {
		c.settle(name, jsonpOutcome{err: &FetchError{
			Kind:    FailureCallbackTimeout,
			Message: fmt.Sprintf("jsonp request to %s timed out", rawURL),
		}})
	})
	c.pending[name] = pc
	c.mu.Unlock()
	metrics.JSONPInFlight.Inc()

	c.log.Debug().
		Str("callback", name).
		Str("script_id", scriptID).
		Str("url", scriptURL).
		Msg("injecting jsonp script")
	c.host.Inject(ctx, scriptID, scriptURL)

	select {
	case out := <-pc.outcome:
		if out.err != nil {
			metrics.RecordJSONP("timeout")
			return nil, out.err
		}
		metrics.RecordJSONP("ok")
		return out.payload, nil
	case <-ctx.Done():
		c.settle(name, jsonpOutcome{err: &FetchError{
			Kind:    FailureTransport,
			Message: "request aborted",
			Err:     ctx.Err(),
		}})
		out := <-pc.outcome
		metrics.RecordJSONP("aborted")
		return nil, out.err
	}
}

// Dispatch delivers a payload to the named pending callback. Unknown names are
// dropped: a callback firing after its timeout already cleaned up must be a
// no-op.
func (c *Client) Dispatch(name string, payload json.RawMessage) {
	c.settle(name, jsonpOutcome{payload: payload})
}

// settle resolves one pending callback and runs its cleanup. The registry
// delete under the mutex is what guarantees cleanup runs at most once per
// call, regardless of which trigger raced here first.
func (c *Client) settle(name string, out jsonpOutcome) {
	c.mu.Lock()
	pc, ok := c.pending[name]
	if ok {
		delete(c.pending, name)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	if pc.timer != nil {
		pc.timer.Stop()
	}
	c.host.Remove(pc.scriptID)
	metrics.JSONPInFlight.Dec()
	pc.outcome <- out
}

// scriptLoader is the default ScriptHost. It fetches the script over HTTP and
// evaluates the single callback invocation the wire contract promises:
// the response must be a script of the form <name>(<jsonPayload>).
type scriptLoader struct {
	http     *resty.Client
	dispatch func(name string, payload json.RawMessage)
}

func newScriptLoader(http *resty.Client, dispatch func(string, json.RawMessage)) *scriptLoader {
	return &scriptLoader{http: http, dispatch: dispatch}
}

func (l *scriptLoader) Inject(ctx context.Context, id, url string) {
	go func() {
		resp, err := l.http.R().SetContext(ctx).Get(url)
		if err != nil || resp.IsError() {
			// A failed script load never fires the callback; the caller's
			// timeout is the only escape hatch, as with a real script element.
			return
		}
		name, payload, ok := parseCallbackInvocation(resp.String())
		if !ok {
			return
		}
		l.dispatch(name, payload)
	}()
}

func (l *scriptLoader) Remove(string) {
	// Nothing is retained after evaluation; removal only matters for hosts
	// that hold real resources.
}

func parseCallbackInvocation(script string) (string, json.RawMessage, bool) {
	open := strings.Index(script, "(")
	closing := strings.LastIndex(script, ")")
	if open < 1 || closing < open {
		return "", nil, false
	}
	name := strings.TrimSpace(script[:open])
	payload := strings.TrimSpace(script[open+1 : closing])
	if name == "" || !json.Valid([]byte(payload)) {
		return "", nil, false
	}
	return name, json.RawMessage(payload), true
}

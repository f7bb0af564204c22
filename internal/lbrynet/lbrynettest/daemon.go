// Package lbrynettest provides a fake lbrynet daemon for tests.
package lbrynettest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Handler answers one JSON-RPC method. Returning a non-nil *Error sends an
// error member instead of a result.
type Handler func(params json.RawMessage) (any, *Error)

// Error is a JSON-RPC error member.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name string `json:"name,omitempty"`
	} `json:"data"`
}

// NewError builds an error with a daemon exception name.
func NewError(name, message string) *Error {
	e := &Error{Code: -32500, Message: message}
	e.Data.Name = name
	return e
}

// Call is one request the fake daemon received.
type Call struct {
	Method string
	Params json.RawMessage
}

// Daemon is a scripted lbrynet stand-in served over httptest.
type Daemon struct {
	t        testing.TB
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New starts a fake daemon that is closed with the test.
func New(t testing.TB) *Daemon {
	t.Helper()
	d := &Daemon{t: t, handlers: map[string]Handler{}}
	d.server = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.server.Close)
	return d
}

// URL is the address to hand to lbrynet.NewClient.
func (d *Daemon) URL() string {
	return d.server.URL
}

// Handle registers the handler for a method.
func (d *Daemon) Handle(method string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = h
}

// Result registers a method that always returns result.
func (d *Daemon) Result(method string, result any) {
	d.Handle(method, func(json.RawMessage) (any, *Error) { return result, nil })
}

// Calls returns the requests received for method, or all requests when method is empty.
func (d *Daemon) Calls(method string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, 0, len(d.calls))
	for _, c := range d.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (d *Daemon) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64           `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{Method: req.Method, Params: req.Params})
	h, ok := d.handlers[req.Method]
	d.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = NewError("MethodNotFound", "unknown method "+req.Method)
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		d.t.Errorf("encode fake daemon response: %v", err)
	}
}

// Param decodes one named parameter from a request. Handlers run on the
// server goroutine, so failures are reported with Errorf.
func Param[T any](t testing.TB, params json.RawMessage, name string) T {
	t.Helper()
	var m map[string]json.RawMessage
	var zero T
	if err := json.Unmarshal(params, &m); err != nil {
		t.Errorf("decode params: %v", err)
		return zero
	}
	raw, ok := m[name]
	if !ok {
		return zero
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Errorf("decode param %s: %v", name, err)
		return zero
	}
	return v
}

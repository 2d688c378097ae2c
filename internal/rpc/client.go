// internal/rpc/client.go
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/finch-bridge/internal/finch"
)

const (
	DefaultService = "finch.high"
	DefaultTimeout = 6000 * time.Millisecond
)

// Config is minimal transport config.
type Config struct {
	URL     string
	Service string
	Timeout time.Duration

	// HTTPClient overrides http.DefaultClient (tests).
	HTTPClient *http.Client
}

// Client is a JSON-RPC client speaking the qooxdoo envelope used by
// the Finch bridge server. Safe for concurrent use.
type Client struct {
	url     string
	service string
	timeout time.Duration
	http    *http.Client
	nextID  atomic.Int64
}

// New creates a client. No connection is made until the first call.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rpc: url required")
	}
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		url:     cfg.URL,
		service: cfg.Service,
		timeout: cfg.Timeout,
		http:    hc,
	}, nil
}

// ---- wire envelope ----

type request struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	ID      int64  `json:"id"`
	Params  []any  `json:"params"`
}

type remoteError struct {
	Origin  int    `json:"origin"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("remote error (origin=%d): %s", e.Origin, e.Message)
}

type response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *remoteError    `json:"error"`
}

// ---- async ----

// call is the Handle returned by CallAsync.
type call struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (c *call) Abort() {
	c.once.Do(c.cancel)
}

// CallAsync issues method on its own goroutine and returns immediately.
// cb is invoked exactly once, also after Abort (with a cancellation error).
func (c *Client) CallAsync(cb Callback, method string, params ...any) Handle {
	id := c.nextID.Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	h := &call{cancel: cancel}

	go func() {
		defer h.Abort()
		result, err := c.do(ctx, id, method, params)
		if cb != nil {
			cb(result, err, id)
		}
	}()

	return h
}

func (c *Client) do(ctx context.Context, id int64, method string, params []any) (json.RawMessage, error) {
	fail := func(code int, err error) error {
		return &finch.TransportError{Method: method, ID: id, Code: code, Err: err}
	}

	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(request{
		Service: c.service,
		Method:  method,
		ID:      id,
		Params:  params,
	})
	if err != nil {
		return nil, fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fail(0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fail(0, fmt.Errorf("http status %d", resp.StatusCode))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fail(0, fmt.Errorf("decode response: %w", err))
	}
	if out.Error != nil {
		return nil, fail(out.Error.Code, out.Error)
	}
	if out.ID != id {
		return nil, fail(0, fmt.Errorf("id mismatch: got=%d want=%d", out.ID, id))
	}

	return out.Result, nil
}

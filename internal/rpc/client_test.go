// internal/rpc/client_test.go
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tamzrod/finch-bridge/internal/finch"
)

type outcome struct {
	result json.RawMessage
	err    error
	id     int64
}

func newServer(t *testing.T, handle func(req request) response) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(handle(req))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCallAsync_Success(t *testing.T) {
	var got request
	srv := newServer(t, func(req request) response {
		got = req
		return response{ID: req.ID, Result: json.RawMessage(`{"temperature":21.5}`)}
	})

	c, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	done := make(chan outcome, 1)
	c.CallAsync(func(result json.RawMessage, err error, id int64) {
		done <- outcome{result, err, id}
	}, finch.MethodSetLED, 1, 2, 3)

	select {
	case o := <-done:
		if o.err != nil {
			t.Fatalf("unexpected error: %v", o.err)
		}
		if string(o.result) != `{"temperature":21.5}` {
			t.Fatalf("unexpected result: %s", o.result)
		}
		if o.id != got.ID {
			t.Fatalf("id mismatch: got=%d want=%d", o.id, got.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("callback not invoked")
	}

	if got.Service != DefaultService {
		t.Fatalf("service: got=%s want=%s", got.Service, DefaultService)
	}
	if got.Method != "setLED" || len(got.Params) != 3 {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestCallAsync_RemoteError(t *testing.T) {
	srv := newServer(t, func(req request) response {
		return response{ID: req.ID, Error: &remoteError{Origin: 2, Code: 42, Message: "no robot"}}
	})

	c, _ := New(Config{URL: srv.URL})

	done := make(chan error, 1)
	c.CallAsync(func(_ json.RawMessage, err error, _ int64) {
		done <- err
	}, finch.MethodGetAllSensors)

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("callback not invoked")
	}
	if !errors.Is(err, finch.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	var te *finch.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if te.Code != 42 || te.Method != finch.MethodGetAllSensors {
		t.Fatalf("unexpected error fields: %+v", te)
	}
}

func TestCallAsync_AbortDeliversCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := New(Config{URL: srv.URL, Timeout: 5 * time.Second})

	done := make(chan outcome, 1)
	h := c.CallAsync(func(result json.RawMessage, err error, id int64) {
		done <- outcome{result, err, id}
	}, finch.MethodGetAllSensors)

	h.Abort()
	h.Abort() // idempotent

	select {
	case o := <-done:
		if !errors.Is(o.err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", o.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("callback not invoked after abort")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

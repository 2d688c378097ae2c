// internal/rpc/transport.go
package rpc

import "encoding/json"

// Callback receives the outcome of one asynchronous call.
// Exactly one of result / err is meaningful.
type Callback func(result json.RawMessage, err error, id int64)

// Handle is a cancellable reference to an outstanding call.
// Abort on a finished call is a no-op.
type Handle interface {
	Abort()
}

// Transport issues asynchronous calls. CallAsync MUST return without
// waiting for the remote side; cb runs later on another goroutine.
type Transport interface {
	CallAsync(cb Callback, method string, params ...any) Handle
}

package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures at the remote operation boundary.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindTimeout    Kind = "timeout"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindRemote     Kind = "remote"
)

// Error reports a failed remote operation.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	return fmt.Sprintf("rpc %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindRemote when err did not come from the boundary.
func KindOf(err error) Kind {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind
	}
	return KindRemote
}

// IsNotFound reports whether the remote side answered not found.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindRemote
	}
}

func transportError(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Kind: KindTimeout, Message: "operation timed out", Err: err}
	}
	return &Error{Op: op, Kind: KindTransport, Err: err}
}

// Package rpc implements the remote operation boundary: operations are
// addressed by name, take a request object and return a response object.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/odyssey-erp/productmaster/internal/platform/httpx"
)

// Invoker calls a named remote operation. A nil response discards the reply.
type Invoker interface {
	Invoke(ctx context.Context, op string, request, response any) error
}

// Observer receives the outcome of every call.
type Observer interface {
	ObserveCall(op string, kind string, elapsed time.Duration)
}

// RequestIDHeader propagates the caller request id.
const RequestIDHeader = "X-Request-ID"

// envelope is the body shape shared by client and server.
type envelope struct {
	Request json.RawMessage `json:"request"`
}

// HTTPClient invokes operations over HTTP on {baseURL}/rpc/{op}.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	observer Observer
	logger   *slog.Logger
}

// ClientOption customises an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) { h.client = c }
}

// WithObserver installs a call observer.
func WithObserver(o Observer) ClientOption {
	return func(h *HTTPClient) { h.observer = o }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(h *HTTPClient) { h.logger = l }
}

// NewHTTPClient builds a client bounding every call by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		timeout: timeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke posts request to op and decodes the reply into response.
func (c *HTTPClient) Invoke(ctx context.Context, op string, request, response any) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			kind := "ok"
			if err != nil {
				kind = string(KindOf(err))
			}
			c.observer.ObserveCall(op, kind, time.Since(start))
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf("encode request: %w", err)}
	}
	body, err := json.Marshal(envelope{Request: payload})
	if err != nil {
		return &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf("encode envelope: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+op, bytes.NewReader(body))
	if err != nil {
		return transportError(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID(ctx))

	res, err := c.client.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return transportError(op, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		var problem httpx.ProblemDetail
		message := ""
		if json.Unmarshal(raw, &problem) == nil {
			message = problem.Detail
			if message == "" {
				message = problem.Title
			}
		}
		if message == "" {
			message = http.StatusText(res.StatusCode)
		}
		c.logger.Debug("rpc call rejected", slog.String("op", op), slog.Int("status", res.StatusCode), slog.String("message", message))
		return &Error{Op: op, Kind: kindForStatus(res.StatusCode), Status: res.StatusCode, Message: message}
	}

	if response == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, response); err != nil {
		return &Error{Op: op, Kind: KindRemote, Status: res.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

package product

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"sync"

	"github.com/odyssey-erp/productmaster/internal/shell"
)

type invocation struct {
	Op      string
	Request map[string]any
}

// recordingInvoker answers operations from canned JSON and records every call.
type recordingInvoker struct {
	mu        sync.Mutex
	calls     []invocation
	responses map[string]string
	errs      map[string]error
}

func newRecordingInvoker() *recordingInvoker {
	return &recordingInvoker{responses: map[string]string{}, errs: map[string]error{}}
}

func (r *recordingInvoker) Invoke(ctx context.Context, op string, request, response any) error {
	raw, err := json.Marshal(request)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	r.mu.Lock()
	r.calls = append(r.calls, invocation{Op: op, Request: fields})
	body, hasBody := r.responses[op]
	callErr := r.errs[op]
	r.mu.Unlock()

	if callErr != nil {
		return callErr
	}
	if response == nil || !hasBody {
		return nil
	}
	return json.Unmarshal([]byte(body), response)
}

func (r *recordingInvoker) callsTo(op string) []invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invocation
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingInvoker) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type recordingConfirmations struct {
	prompts []DeletePrompt
}

func (c *recordingConfirmations) DeleteConfirmation(ctx context.Context, prompt DeletePrompt) (template.HTML, error) {
	c.prompts = append(c.prompts, prompt)
	return template.HTML(fmt.Sprintf("<p>delete %d</p>", prompt.ID)), nil
}

func shellContext() (context.Context, *shell.Shell) {
	sh := shell.NewRegistry(0, nil, nil).Get("session-1")
	return shell.WithShell(context.Background(), sh), sh
}

const productJSON = `{"id":42,"name":"Widget","code":"W-1","unit":"ea","default_price":9.99,"standard_stock_quantity":5,"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02 03:04:05"}`

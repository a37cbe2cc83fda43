package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/blinxlabs/blinx/internal/schema"
	"github.com/blinxlabs/blinx/internal/shared/llmutils"
	"github.com/blinxlabs/blinx/internal/tools"
)

// Dispatcher executes one batch of tool calls requested by a run.
type Dispatcher struct {
	registry    *tools.Registry
	concurrency int
}

func NewDispatcher(registry *tools.Registry, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{registry: registry, concurrency: concurrency}
}

// Dispatch runs every call and returns one output per call, in request order.
// A failing call never affects its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []schema.ToolCallRequest) []schema.ToolOutput {
	outputs := make([]schema.ToolOutput, len(calls))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, tc := range calls {
		g.Go(func() error {
			outputs[i] = schema.ToolOutput{ToolCallID: tc.ID, Output: d.invoke(ctx, tc).Encode()}
			return nil
		})
	}
	_ = g.Wait()

	return outputs
}

func (d *Dispatcher) invoke(ctx context.Context, tc schema.ToolCallRequest) (res schema.Result) {
	slog.Info("Tool call", "name", tc.Name, "id", tc.ID, "args", llmutils.Truncate(tc.Arguments, 200))

	tool, ok := d.registry.Lookup(tc.Name)
	if !ok {
		return schema.Failuref("Tool '%s' not found", tc.Name)
	}

	params, err := parseArguments(tc.Arguments)
	if err != nil {
		slog.Warn("Tool arguments rejected", "name", tc.Name, "err", err)
		return schema.Failuref("Invalid arguments for tool '%s': %v", tc.Name, err)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tool panicked", "name", tc.Name, "panic", r)
			res = schema.Failuref("Tool '%s' failed unexpectedly: %v", tc.Name, r)
		}
	}()
	return tool.Invoke(ctx, params)
}

// parseArguments decodes the serialised argument object. An empty string is
// treated as no arguments.
func parseArguments(raw string) (map[string]any, error) {
	params := map[string]any{}
	if raw == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

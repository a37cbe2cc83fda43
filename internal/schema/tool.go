// Package schema contains the core contracts shared across blinx packages.
// Concrete implementations live in their respective packages; this package is the
// single canonical source of truth for every interface definition.
package schema

import (
	"context"
	"encoding/json"
)

// Definition describes a tool to the assistant service.
type Definition struct {
	Name        string
	Description string
	// Parameters is the JSON Schema (as raw JSON bytes) for the tool's arguments.
	Parameters json.RawMessage
}

// Tool is the interface every assistant-callable tool must satisfy.
//
// Invoke receives the decoded argument object and must never panic or return
// a transport fault to the caller: every failure is folded into the Result.
type Tool interface {
	Definition() Definition
	Invoke(ctx context.Context, params map[string]any) Result
}

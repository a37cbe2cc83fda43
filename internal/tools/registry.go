package tools

import (
	"sort"

	"github.com/blinxlabs/blinx/internal/schema"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolFetchTrendingTokens ToolName = "fetch_trending_tokens"
	ToolFetchTopHolders     ToolName = "fetch_top_holders"
	ToolFetchMarketcap      ToolName = "fetch_marketcap"
	ToolFetchFirstTopBuyer  ToolName = "fetch_first_top_buyer"
	ToolTrade               ToolName = "trade"
)

// Registry holds a fixed set of named tools. It is read-only once built.
type Registry struct {
	tools map[ToolName]schema.Tool
}

// Lookup returns the tool registered under name. The name comes straight from
// the assistant service, so an unknown name is an expected outcome, not a bug.
func (r *Registry) Lookup(name string) (schema.Tool, bool) {
	t, ok := r.tools[ToolName(name)]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []ToolName {
	names := make([]ToolName, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Definitions returns every tool definition, sorted by name.
func (r *Registry) Definitions() []schema.Definition {
	names := r.Names()
	defs := make([]schema.Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/blinxlabs/blinx/internal/schema"
)

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Truncate shortens a string to at most n bytes, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint renders a short summary of tool calls for logs, e.g.
// `fetch_top_holders("So111…")`. Arguments that are not a JSON object are
// summarised by name only.
func ToolHint(calls []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(calls))
	for _, tc := range calls {
		var firstVal string
		if args := gjson.Parse(tc.Arguments); args.IsObject() {
			args.ForEach(func(_, v gjson.Result) bool {
				firstVal = v.String()
				return false
			})
		}
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}

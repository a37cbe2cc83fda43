// Package errorsx tags errors with short machine-readable reason codes so
// tool failures can be classified in logs without string matching.
package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonToolValidation ReasonCode = "tool_validation"
	ReasonToolConfig     ReasonCode = "tool_config"
	ReasonToolTransport  ReasonCode = "tool_transport"
	ReasonToolDecode     ReasonCode = "tool_decode"
	ReasonToolBroadcast  ReasonCode = "tool_broadcast"

	ReasonRunFailed     ReasonCode = "run_failed"
	ReasonPollExhausted ReasonCode = "poll_exhausted"
)

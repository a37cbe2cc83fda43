package schema

import (
	"encoding/json"
	"fmt"
)

// Status is the structured object tools return for failures, empty result
// sets and write operations.
type Status struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature,omitempty"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

// Result is the outcome of one tool invocation. Its payload is serialised
// verbatim as the tool output, so each tool decides its own success shape
// (a list of records, a scalar, or a Status).
type Result struct {
	payload any
	ok      bool
}

// Success wraps a successful payload.
func Success(payload any) Result {
	return Result{payload: payload, ok: true}
}

// Empty is the success shape for a query that matched nothing.
func Empty(message string) Result {
	return Success(Status{Success: true, Message: message, Data: []any{}})
}

// Failure builds the {success:false, message} shape.
func Failure(message string) Result {
	return Result{payload: Status{Success: false, Message: message}}
}

// Failuref is Failure with fmt formatting.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.ok }

// Encode serialises the payload for submission as a tool output.
func (r Result) Encode() string {
	data, err := json.Marshal(r.payload)
	if err != nil {
		fallback, _ := json.Marshal(Status{Message: "encode result: " + err.Error()})
		return string(fallback)
	}
	return string(data)
}

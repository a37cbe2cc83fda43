package tools

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mitchellh/mapstructure"

	"github.com/blinxlabs/blinx/internal/errorsx"
	"github.com/blinxlabs/blinx/internal/schema"
)

// base58Pattern matches a Solana address: 32–44 base58 characters.
const base58Pattern = "[1-9A-HJ-NP-Za-km-z]{32,44}"

var reBase58Address = regexp.MustCompile("^" + base58Pattern + "$")

// decodeArgs copies the assistant-supplied argument object into out, keyed by
// the struct's json tags. Numeric strings are accepted for number fields.
func decodeArgs(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return errorsx.Wrap(fmt.Errorf("invalid arguments: %w", err), errorsx.ReasonToolValidation)
	}
	return nil
}

// validateAddress rejects anything that is not a base58 Solana address.
func validateAddress(field, value string) error {
	if value == "" {
		return errorsx.Errorf(errorsx.ReasonToolValidation, "%s is required", field)
	}
	if !reBase58Address.MatchString(value) {
		return errorsx.Errorf(errorsx.ReasonToolValidation, "%s %q is not a valid base58 address", field, value)
	}
	return nil
}

// validatePositive rejects zero and negative counts.
func validatePositive(field string, value int) error {
	if value <= 0 {
		return errorsx.Errorf(errorsx.ReasonToolValidation, "%s must be a positive number, got %d", field, value)
	}
	return nil
}

// fail logs err with its reason code and folds it into the failure shape.
func fail(tool ToolName, prefix string, err error) schema.Result {
	level := slog.LevelWarn
	if errorsx.HasReason(err, errorsx.ReasonToolValidation) {
		// The assistant sent bad arguments; the failure output tells it so.
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, "Tool failed", "tool", tool, "reason", errorsx.Reason(err), "err", err)
	return schema.Failure(prefix + err.Error())
}

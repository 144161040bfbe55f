package api

import (
	"encoding/json"
	"errors"

	"github.com/classense/attention-core/internal/store"
)

// isJSONArray reports whether the raw JSON value is an array. The batch
// create endpoints switch on this to accept one document or many.
func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '['
	}
	return false
}

// createErrorMessage extracts the client-facing message from a create
// failure. Unexpected errors are masked so storage internals never leak
// into batch error lists.
func createErrorMessage(err error) string {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "Internal server error"
}

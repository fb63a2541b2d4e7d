// ABOUTME: Shared input decoding for tool handlers.
// ABOUTME: Unmarshals handler arguments and applies struct-tag validation.

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeInput parses a handler's JSON arguments into dst and validates its
// `validate` struct tags. A nil/empty input leaves dst at its zero value but
// still runs validation, so required fields fail cleanly.
func decodeInput(input json.RawMessage, dst any) error {
	if len(input) > 0 {
		if err := json.Unmarshal(input, dst); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// Package label validates and serializes the string key/value labels attached
// to sessions for filtering and search.
package label

import (
	"encoding/json"
	"strings"

	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"
)

// Validation messages returned to callers verbatim.
const (
	MsgEmptyLabelSet = "Labels cannot be empty. Please provide at least one label."
	MsgEmptyKey      = "Label keys cannot be empty or whitespace-only. Please provide valid keys."
	MsgEmptyValue    = "Label values cannot be empty or whitespace-only. Please provide valid values."
)

// Validate checks a label map before it is sent to the backend. Whitespace-only
// strings count as empty for both keys and values. All keys are checked before
// any value.
func Validate(labels map[string]string) error {
	if len(labels) == 0 {
		return apperrors.New(apperrors.ErrCodeLabelInvalid, MsgEmptyLabelSet, nil)
	}
	for key := range labels {
		if strings.TrimSpace(key) == "" {
			return apperrors.New(apperrors.ErrCodeLabelInvalid, MsgEmptyKey, nil)
		}
	}
	for _, value := range labels {
		if strings.TrimSpace(value) == "" {
			return apperrors.New(apperrors.ErrCodeLabelInvalid, MsgEmptyValue, nil)
		}
	}
	return nil
}

// Encode serializes a label map to its wire form. Output is deterministic:
// JSON object with keys in sorted order.
func Encode(labels map[string]string) (string, error) {
	if len(labels) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return "", apperrors.New(apperrors.ErrCodeLabelInvalid, "failed to encode labels", err)
	}
	return string(data), nil
}

// Decode parses the wire form back into a label map. Malformed or empty input
// yields an empty map; absence of labels is the default state, not an error.
func Decode(raw string) map[string]string {
	labels := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return labels
	}
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return make(map[string]string)
	}
	return labels
}

package models

import (
	"bytes"
	"encoding/json"

	"github.com/samber/mo"
)

// decodeOption maps a missing or null JSON value to None. mo.Option's own decoder
// reports null as present.
func decodeOption[T any](raw json.RawMessage) (mo.Option[T], error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return mo.None[T](), nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return mo.None[T](), err
	}
	return mo.Some(value), nil
}

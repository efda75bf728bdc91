// Package blob converts between typed sub-objects and the JSON columns that
// hold them on stored documents.
//
// Reads are tolerant: an empty, null or malformed column decodes to the zero
// value of the target type (an empty object or an empty slice). Writes always
// serialise the whole sub-object.
package blob

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx/types"
)

var (
	emptyObject = types.JSONText("{}")
	emptyArray  = types.JSONText("[]")
)

// EmptyObject returns a fresh "{}" column value.
func EmptyObject() types.JSONText {
	return append(types.JSONText(nil), emptyObject...)
}

// EmptyArray returns a fresh "[]" column value.
func EmptyArray() types.JSONText {
	return append(types.JSONText(nil), emptyArray...)
}

// Decode reads an object column into T, falling back to the zero T.
func Decode[T any](raw types.JSONText) T {
	var out T
	if isBlank(raw) {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero
	}
	return out
}

// DecodeList reads an array column into []T, falling back to an empty slice.
func DecodeList[T any](raw types.JSONText) []T {
	out := make([]T, 0)
	if isBlank(raw) {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return make([]T, 0)
	}
	return out
}

// Encode serialises an object sub-structure. A nil value encodes as "{}".
func Encode(v interface{}) (types.JSONText, error) {
	if v == nil {
		return EmptyObject(), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode blob: %w", err)
	}
	if bytes.Equal(raw, []byte("null")) {
		return EmptyObject(), nil
	}
	return types.JSONText(raw), nil
}

// EncodeList serialises a list sub-structure. A nil slice encodes as "[]".
func EncodeList[T any](items []T) (types.JSONText, error) {
	if items == nil {
		return EmptyArray(), nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode blob list: %w", err)
	}
	return types.JSONText(raw), nil
}

// Value dereferences an optional blob member, yielding the zero value for nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to v, used when populating optional blob members.
func Ptr[T any](v T) *T {
	return &v
}

// AnySet reports whether any of the supplied presence flags is set.
func AnySet(present ...bool) bool {
	for _, p := range present {
		if p {
			return true
		}
	}
	return false
}

func isBlank(raw types.JSONText) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

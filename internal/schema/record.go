package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Record is one import record: field name to raw or resolved value
type Record map[string]any

// Reference is a relation value that has been resolved to a stored row
type Reference struct {
	Kind string
	ID   uint
	Row  any
}

func (r Reference) String() string {
	return fmt.Sprintf("%s(%d)", r.Kind, r.ID)
}

// MarshalJSON renders the reference as "Kind(id)" in record snapshots
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// ParseRecord decodes a JSON object, keeping numbers as json.Number so that
// integer literals can be told apart from decimals
func ParseRecord(raw json.RawMessage) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record must be a JSON object, got %s", describe(value))
	}
	return Record(obj), nil
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String renders the record as JSON with sorted keys
func (r Record) String() string {
	data, err := json.Marshal(map[string]any(r))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(r))
	}
	return string(data)
}

// AsInt reports whether v is an integer and returns it. JSON numbers with a
// fraction or exponent part are not integers.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// Truthy reports whether v counts as present for natural key checks:
// nil, empty strings, zero numbers, false and empty collections do not
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case Reference:
		return x.ID != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	rv := reflect.ValueOf(v)
	if rv.CanInt() {
		return rv.Int() != 0
	}
	if rv.CanUint() {
		return rv.Uint() != 0
	}
	return true
}

// Normalize converts json.Number to int64 or float64 so the value can be bound as a query argument
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case Reference:
		return x.ID
	default:
		return v
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

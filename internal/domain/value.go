package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ValueKind tags the payload held by a Value.
type ValueKind string

const (
	ValueString      ValueKind = "string"
	ValueNumber      ValueKind = "number"
	ValueBoolean     ValueKind = "boolean"
	ValueDatetime    ValueKind = "datetime"
	ValueEnumeration ValueKind = "enumeration"
)

// Value is one entry of an annotation's label or value dictionary.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind    ValueKind
	Text    string
	Number  float64
	Boolean bool
	Time    time.Time
}

// KindForType maps a declared annotation type to the value kind its dictionary holds.
func KindForType(t AnnotationType) ValueKind {
	switch t {
	case AnnotationTypeNumeric:
		return ValueNumber
	case AnnotationTypeBoolean:
		return ValueBoolean
	case AnnotationTypeDatetime:
		return ValueDatetime
	case AnnotationTypeEnumeration:
		return ValueEnumeration
	default:
		return ValueString
	}
}

// DecodeValue parses a raw JSON value as the given kind.
// Datetimes are RFC 3339 strings.
// Parameters:
//   - kind: expected value kind.
//   - raw: JSON-encoded value.
// Returns:
//   - Value: decoded tagged value.
//   - error: non-nil if raw does not hold a value of kind.
func DecodeValue(kind ValueKind, raw json.RawMessage) (Value, error) {
	v := Value{Kind: kind}
	switch kind {
	case ValueNumber:
		if err := json.Unmarshal(raw, &v.Number); err != nil {
			return Value{}, fmt.Errorf("expected number: %w", err)
		}
	case ValueBoolean:
		if err := json.Unmarshal(raw, &v.Boolean); err != nil {
			return Value{}, fmt.Errorf("expected boolean: %w", err)
		}
	case ValueDatetime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("expected datetime string: %w", err)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Value{}, fmt.Errorf("expected RFC 3339 datetime: %w", err)
		}
		v.Time = t
	default:
		if err := json.Unmarshal(raw, &v.Text); err != nil {
			return Value{}, fmt.Errorf("expected %s: %w", kind, err)
		}
	}
	return v, nil
}

// String renders the value the way it appears in tabular resources.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return fmt.Sprintf("%g", v.Number)
	case ValueBoolean:
		return fmt.Sprintf("%t", v.Boolean)
	case ValueDatetime:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Text
	}
}

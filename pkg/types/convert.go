package types

import (
	"context"
	"fmt"
)

// ContextKey is the type used for values this library stores on a context.
type ContextKey string

const (
	// ContextKeyOperation names the store operation in flight, for telemetry.
	ContextKeyOperation ContextKey = "hybridstore_operation"
	// ContextKeyCollection names the target collection, for telemetry.
	ContextKeyCollection ContextKey = "hybridstore_collection"
)

// WithOperation annotates ctx with the operation and collection being
// executed so error telemetry can attribute failures.
func WithOperation(ctx context.Context, operation, collection string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyOperation, operation)
	if collection != "" {
		ctx = context.WithValue(ctx, ContextKeyCollection, collection)
	}
	return ctx
}

// TypeConversionError represents an error during type conversion from
// database records.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// AsString safely converts an interface{} to string.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}

// AsInt64 safely converts an interface{} to int64, accepting the integer
// widths database drivers hand back.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// AsFloat64 safely converts an interface{} to float64.
func AsFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int64:
		return float64(f), true
	}
	return 0, false
}

// AsBool safely converts an interface{} to bool.
func AsBool(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// AsMap safely converts an interface{} to map[string]any.
func AsMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// AsAnySlice safely converts an interface{} to []any.
func AsAnySlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// MustString converts an interface{} to string or returns a
// TypeConversionError naming the field.
func MustString(v any, field string) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", &TypeConversionError{Expected: "string", Actual: fmt.Sprintf("%T", v), Field: field}
	}
	return s, nil
}

// MustMap converts an interface{} to map[string]any or returns a
// TypeConversionError naming the field.
func MustMap(v any, field string) (map[string]any, error) {
	m, ok := AsMap(v)
	if !ok {
		return nil, &TypeConversionError{Expected: "map[string]any", Actual: fmt.Sprintf("%T", v), Field: field}
	}
	return m, nil
}

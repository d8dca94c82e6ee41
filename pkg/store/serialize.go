package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// JSONSafe converts an arbitrary value into JSON-safe primitives: ids and
// times are stringified, nested structures are walked recursively, and
// reference cycles are cut (the repeated reference becomes nil) instead of
// recursing forever. Payloads handed to the store are caller data and are
// not assumed to be acyclic.
func JSONSafe(v any) any {
	return jsonSafe(reflect.ValueOf(v), map[uintptr]struct{}{})
}

func jsonSafe(v reflect.Value, seen map[uintptr]struct{}) any {
	if !v.IsValid() {
		return nil
	}

	switch concrete := v.Interface().(type) {
	case nil:
		return nil
	case uuid.UUID:
		return concrete.String()
	case time.Time:
		return concrete.UTC().Format(time.RFC3339Nano)
	case json.Number:
		return concrete.String()
	case error:
		return concrete.Error()
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return jsonSafe(v.Elem(), seen)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if _, ok := seen[ptr]; ok {
			return nil
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)
		return jsonSafe(v.Elem(), seen)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if _, ok := seen[ptr]; ok {
			return nil
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)

		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = jsonSafe(iter.Value(), seen)
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
		ptr := v.Pointer()
		if _, ok := seen[ptr]; ok {
			return nil
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)
		return sliceSafe(v, seen)

	case reflect.Array:
		return sliceSafe(v, seen)

	case reflect.Struct:
		out := make(map[string]any)
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, ok := field.Tag.Lookup("json"); ok {
				tagName, _, _ := splitTag(tag)
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			out[name] = jsonSafe(v.Field(i), seen)
		}
		return out

	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()

	default:
		return fmt.Sprint(v.Interface())
	}
}

func sliceSafe(v reflect.Value, seen map[uintptr]struct{}) []any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = jsonSafe(v.Index(i), seen)
	}
	return out
}

func mapKey(k reflect.Value) string {
	if s, ok := k.Interface().(string); ok {
		return s
	}
	return fmt.Sprint(k.Interface())
}

func splitTag(tag string) (name string, opts string, found bool) {
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i], tag[i+1:], true
		}
	}
	return tag, "", false
}

// marshalPayload serializes a payload snapshot through the cycle-safe walk.
func marshalPayload(payload map[string]any) (string, error) {
	safe := JSONSafe(payload)
	data, err := json.Marshal(safe)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload: %w", err)
	}
	return string(data), nil
}

package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Firestore's REST API types every field: {"stringValue": "x"},
// {"doubleValue": 1.5}, {"mapValue": {"fields": {...}}} and so on. The codec
// below maps between that representation and plain JSON-shaped values
// (string, float64, bool, nil, []any, map[string]any) so domain records can
// round-trip through encoding/json untouched.

// encodeFields converts a JSON-shaped map into Firestore document fields.
func encodeFields(m map[string]any) map[string]any {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		fields[k] = encodeValue(v)
	}
	return fields
}

func encodeValue(v any) map[string]any {
	switch val := v.(type) {
	case nil:
		return map[string]any{"nullValue": nil}
	case bool:
		return map[string]any{"booleanValue": val}
	case string:
		return map[string]any{"stringValue": val}
	case float64:
		// All JSON numbers travel as doubles so decode never has to guess.
		return map[string]any{"doubleValue": val}
	case []any:
		values := make([]any, len(val))
		for i, item := range val {
			values[i] = encodeValue(item)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}
	case map[string]any:
		return map[string]any{"mapValue": map[string]any{"fields": encodeFields(val)}}
	default:
		return map[string]any{"stringValue": fmt.Sprint(val)}
	}
}

// decodeFields converts Firestore document fields back into a JSON-shaped map.
func decodeFields(fields map[string]any) (map[string]any, error) {
	m := make(map[string]any, len(fields))
	for k, v := range fields {
		typed, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s: not a typed value", k)
		}
		decoded, err := decodeValue(typed)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		m[k] = decoded
	}
	return m, nil
}

func decodeValue(v map[string]any) (any, error) {
	if _, ok := v["nullValue"]; ok {
		return nil, nil
	}
	if b, ok := v["booleanValue"]; ok {
		return b, nil
	}
	if s, ok := v["stringValue"]; ok {
		return s, nil
	}
	if d, ok := v["doubleValue"]; ok {
		return d, nil
	}
	if ts, ok := v["timestampValue"]; ok {
		return ts, nil
	}
	if i, ok := v["integerValue"]; ok {
		// Integers arrive as decimal strings on the wire.
		s, ok := i.(string)
		if !ok {
			return i, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("integer value %q: %w", s, err)
		}
		return n, nil
	}
	if arr, ok := v["arrayValue"]; ok {
		wrapper, _ := arr.(map[string]any)
		raw, _ := wrapper["values"].([]any)
		values := make([]any, len(raw))
		for i, item := range raw {
			typed, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("array item %d: not a typed value", i)
			}
			decoded, err := decodeValue(typed)
			if err != nil {
				return nil, err
			}
			values[i] = decoded
		}
		return values, nil
	}
	if mv, ok := v["mapValue"]; ok {
		wrapper, _ := mv.(map[string]any)
		fields, _ := wrapper["fields"].(map[string]any)
		return decodeFields(fields)
	}
	return nil, fmt.Errorf("unsupported value type %v", v)
}

// recordToFields marshals a domain record into Firestore document fields.
func recordToFields(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("reshaping record: %w", err)
	}
	return encodeFields(m), nil
}

// fieldsToRecord unmarshals Firestore document fields into a domain record.
func fieldsToRecord(fields map[string]any, out any) error {
	m, err := decodeFields(fields)
	if err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("reshaping document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshaling document: %w", err)
	}
	return nil
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type MetaKind int

const (
	MetaNull MetaKind = iota
	MetaString
	MetaNumber
	MetaBool
	MetaComplex
)

func (k MetaKind) String() string {
	switch k {
	case MetaNull:
		return "null"
	case MetaString:
		return "string"
	case MetaNumber:
		return "number"
	case MetaBool:
		return "bool"
	case MetaComplex:
		return "complex"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MetaValue is a scalar metadata value. Complex values hold their canonical JSON encoding.
type MetaValue struct {
	Kind MetaKind
	Str  string
	Num  float64
	Bool bool
}

func NullValue() MetaValue {
	return MetaValue{Kind: MetaNull}
}

func StringValue(s string) MetaValue {
	return MetaValue{Kind: MetaString, Str: s}
}

func NumberValue(n float64) MetaValue {
	return MetaValue{Kind: MetaNumber, Num: n}
}

func BoolValue(b bool) MetaValue {
	return MetaValue{Kind: MetaBool, Bool: b}
}

func ComplexValue(encoded string) MetaValue {
	return MetaValue{Kind: MetaComplex, Str: encoded}
}

// Interface returns the plain Go value: nil, string, float64 or bool.
func (v MetaValue) Interface() interface{} {
	switch v.Kind {
	case MetaString, MetaComplex:
		return v.Str
	case MetaNumber:
		return v.Num
	case MetaBool:
		return v.Bool
	}
	return nil
}

func (v MetaValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts scalars only. A complex value read back from storage is a string.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = NullValue()
	case string:
		*v = StringValue(val)
	case float64:
		*v = NumberValue(val)
	case bool:
		*v = BoolValue(val)
	default:
		return fmt.Errorf("metadata value must be scalar, got %T", raw)
	}
	return nil
}

// FlatMap is metadata restricted to scalar values.
type FlatMap map[string]MetaValue

func (m FlatMap) Clone() FlatMap {
	if m == nil {
		return nil
	}
	out := make(FlatMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m FlatMap) GetString(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	switch v.Kind {
	case MetaString, MetaComplex:
		return v.Str
	case MetaNumber, MetaBool:
		return fmt.Sprint(v.Interface())
	}
	return ""
}

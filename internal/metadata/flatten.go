// Package metadata turns arbitrary metadata into the scalar-only FlatMap the stores accept.
package metadata

import (
	"encoding/json"
	"fmt"

	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

// Flatten copies scalar values and encodes everything else as canonical JSON under the same key.
func Flatten(raw map[string]interface{}) model.FlatMap {
	out := make(model.FlatMap, len(raw))
	for key, value := range raw {
		out[key] = Normalize(value)
	}
	return out
}

// Merge flattens each source in order. The later source wins for a key unless the two values
// have different non-null kinds, which is reported as a MetadataError.
func Merge(sources ...map[string]interface{}) (model.FlatMap, error) {
	out := make(model.FlatMap)
	for _, src := range sources {
		for key, value := range Flatten(src) {
			prev, ok := out[key]
			if ok && !compatible(prev, value) {
				return nil, appErr.New(appErr.ErrMetadata, "key %q has conflicting types %s and %s", key, prev.Kind, value.Kind)
			}
			out[key] = value
		}
	}
	return out, nil
}

func compatible(a, b model.MetaValue) bool {
	if a.Kind == model.MetaNull || b.Kind == model.MetaNull {
		return true
	}
	return a.Kind == b.Kind
}

// Normalize resolves one value into the tagged variant.
func Normalize(value interface{}) model.MetaValue {
	switch v := value.(type) {
	case nil:
		return model.NullValue()
	case model.MetaValue:
		return v
	case string:
		return model.StringValue(v)
	case bool:
		return model.BoolValue(v)
	case int:
		return model.NumberValue(float64(v))
	case int8:
		return model.NumberValue(float64(v))
	case int16:
		return model.NumberValue(float64(v))
	case int32:
		return model.NumberValue(float64(v))
	case int64:
		return model.NumberValue(float64(v))
	case uint:
		return model.NumberValue(float64(v))
	case uint8:
		return model.NumberValue(float64(v))
	case uint16:
		return model.NumberValue(float64(v))
	case uint32:
		return model.NumberValue(float64(v))
	case uint64:
		return model.NumberValue(float64(v))
	case float32:
		return model.NumberValue(float64(v))
	case float64:
		return model.NumberValue(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return model.NumberValue(f)
		}
		return model.StringValue(v.String())
	}
	return model.ComplexValue(canonical(value))
}

// canonical relies on encoding/json sorting map keys.
func canonical(value interface{}) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

func TestFlatten(t *testing.T) {
	raw := map[string]interface{}{
		"source_ref": "repo/a.py",
		"ordinal":    2,
		"score":      float32(0.5),
		"private":    true,
		"owner":      nil,
		"labels":     map[string]interface{}{"z": 1, "a": []string{"x", "y"}},
		"paths":      []interface{}{"a", 1, false},
	}
	flat := Flatten(raw)

	require.Len(t, flat, len(raw))
	require.Equal(t, model.StringValue("repo/a.py"), flat["source_ref"])
	require.Equal(t, model.NumberValue(2), flat["ordinal"])
	require.Equal(t, model.NumberValue(0.5), flat["score"])
	require.Equal(t, model.BoolValue(true), flat["private"])
	require.Equal(t, model.NullValue(), flat["owner"])
	require.Equal(t, model.ComplexValue(`{"a":["x","y"],"z":1}`), flat["labels"])
	require.Equal(t, model.ComplexValue(`["a",1,false]`), flat["paths"])
}

func TestFlattenIsCanonical(t *testing.T) {
	var a, b map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"m":{"b":1,"a":{"d":2,"c":3}}}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"m":{"a":{"c":3,"d":2},"b":1}}`), &b))
	require.Equal(t, Flatten(a)["m"], Flatten(b)["m"])
}

func TestFlattenJSONNumber(t *testing.T) {
	flat := Flatten(map[string]interface{}{"n": json.Number("42")})
	require.Equal(t, model.NumberValue(42), flat["n"])
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		sources []map[string]interface{}
		want    model.FlatMap
		wantErr bool
	}{
		{
			name: "later source wins on same kind",
			sources: []map[string]interface{}{
				{"source_type": "doc", "team": "infra"},
				{"source_type": "github"},
			},
			want: model.FlatMap{
				"source_type": model.StringValue("github"),
				"team":        model.StringValue("infra"),
			},
		},
		{
			name: "null is compatible with anything",
			sources: []map[string]interface{}{
				{"ordinal": nil},
				{"ordinal": 1},
			},
			want: model.FlatMap{"ordinal": model.NumberValue(1)},
		},
		{
			name: "conflicting kinds fail",
			sources: []map[string]interface{}{
				{"ordinal": "first"},
				{"ordinal": 0},
			},
			wantErr: true,
		},
		{
			name:    "no sources",
			sources: nil,
			want:    model.FlatMap{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.sources...)
			if tt.wantErr {
				require.ErrorIs(t, err, appErr.ErrMetadata)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

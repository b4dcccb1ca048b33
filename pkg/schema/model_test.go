package schema_test

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-typed-pipeline/pkg/schema"
)

type sample struct {
	Attr1 string `json:"attr1"`
	Attr2 int    `json:"attr2"`
}

type withOptional struct {
	Name    string   `json:"name" validate:"required"`
	Score   float64  `json:"score,omitempty" validate:"gte=0"`
	Tags    []string `json:"tags,omitempty"`
	Ignored string   `json:"-"`
	hidden  int
}

type Base struct {
	ID string `json:"id"`
}

type nested struct {
	Base
	Inner sample `json:"inner"`
	Ptr   *sample
}

func TestIsModel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		typ      reflect.Type
		expected bool
	}{
		"struct":         {typ: reflect.TypeOf(sample{}), expected: true},
		"struct pointer": {typ: reflect.TypeOf(&sample{}), expected: true},
		"int":            {typ: reflect.TypeOf(0), expected: false},
		"map":            {typ: reflect.TypeOf(map[string]any{}), expected: false},
		"pointer to int": {typ: reflect.TypeOf(new(int)), expected: false},
		"nil":            {typ: nil, expected: false},
		"empty struct":   {typ: reflect.TypeOf(struct{}{}), expected: true},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, schema.IsModel(tc.typ))
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	fields, err := schema.Fields(reflect.TypeOf(withOptional{}))
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Name)
	assert.False(t, fields[0].Optional)
	assert.Equal(t, "score", fields[1].Name)
	assert.True(t, fields[1].Optional)
	assert.Equal(t, reflect.TypeOf(float64(0)), fields[1].Type)
	assert.Equal(t, "tags", fields[2].Name)

	names, err := schema.FieldNames(reflect.TypeOf(&nested{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "inner", "Ptr"}, names)

	_, err = schema.Fields(reflect.TypeOf(1))
	assert.ErrorIs(t, err, schema.ErrNotModel)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	got, err := schema.Decode(reflect.TypeOf(sample{}), map[string]any{"attr1": "sample1", "attr2": 1})
	require.NoError(t, err)
	assert.Equal(t, sample{Attr1: "sample1", Attr2: 1}, got.Interface())

	gotPtr, err := schema.Decode(reflect.TypeOf(&sample{}), map[string]any{"attr1": "a", "attr2": int64(2), "extra": true})
	require.NoError(t, err)
	assert.Equal(t, &sample{Attr1: "a", Attr2: 2}, gotPtr.Interface())
}

func TestDecodeConversions(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		value   any
		wantErr bool
	}{
		"int":              {value: 3},
		"int8":             {value: int8(3)},
		"uint":             {value: uint(3)},
		"integral float":   {value: 3.0},
		"fractional float": {value: 3.5, wantErr: true},
		"string":           {value: "3", wantErr: true},
		"bool":             {value: true, wantErr: true},
		"nil":              {value: nil, wantErr: true},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := schema.Into[sample](map[string]any{"attr1": "x", "attr2": tc.value})
			if tc.wantErr {
				var verr *schema.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.True(t, verr.Has("attr2"))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, got.Attr2)
		})
	}
}

func TestDecodeMissingFields(t *testing.T) {
	t.Parallel()

	_, err := schema.Decode(reflect.TypeOf(sample{}), map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInvalid)

	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.True(t, verr.Has("attr1"))
	assert.True(t, verr.Has("attr2"))
	assert.Contains(t, err.Error(), "field required")
}

func TestDecodeValidateTags(t *testing.T) {
	t.Parallel()

	got, err := schema.Into[withOptional](map[string]any{"name": "ok"})
	require.NoError(t, err)
	assert.Equal(t, withOptional{Name: "ok"}, got)

	_, err = schema.Into[withOptional](map[string]any{"name": "", "score": -1.0})
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("name"))
	assert.True(t, verr.Has("score"))
}

func TestDecodeNested(t *testing.T) {
	t.Parallel()

	got, err := schema.Into[nested](map[string]any{
		"id":    "n1",
		"inner": map[string]any{"attr1": "a", "attr2": 1},
		"Ptr":   nil,
	})
	require.NoError(t, err)
	assert.Equal(t, nested{Base: Base{ID: "n1"}, Inner: sample{Attr1: "a", Attr2: 1}}, got)

	_, err = schema.Into[nested](map[string]any{
		"id":    "n1",
		"inner": map[string]any{"attr1": "a"},
		"Ptr":   &sample{},
	})
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("inner.attr2"))
}

func TestEncode(t *testing.T) {
	t.Parallel()

	got, err := schema.Encode(sample{Attr1: "sample1", Attr2: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"attr1": "sample1", "attr2": 1}, got)

	got, err = schema.Encode(&nested{Base: Base{ID: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "x", got["id"])
	assert.Len(t, got, 3)

	_, err = schema.Encode((*sample)(nil))
	assert.ErrorIs(t, err, schema.ErrNilModel)

	_, err = schema.Encode(nil)
	assert.ErrorIs(t, err, schema.ErrNilModel)

	_, err = schema.Encode(42)
	assert.ErrorIs(t, err, schema.ErrNotModel)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	in := withOptional{Name: "n", Score: 1.5, Tags: []string{"a"}}
	values, err := schema.Encode(in)
	require.NoError(t, err)
	out, err := schema.Into[withOptional](values)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

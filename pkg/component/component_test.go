package component_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-typed-pipeline/pkg/component"
	"github.com/askiada/go-typed-pipeline/pkg/schema"
)

type sampleOutput struct {
	Attr1 string `json:"attr1"`
	Attr2 int    `json:"attr2"`
}

type generator struct{}

func (g *generator) Run(ctx context.Context) (sampleOutput, error) {
	return sampleOutput{Attr1: "sample1", Attr2: 1}, nil
}

type echoInput struct {
	Input1 string `json:"input1"`
	Suffix string `json:"suffix,omitempty"`
}

type echoOutput struct {
	Attr1 string `json:"attr1"`
}

type echo struct{}

func (e *echo) Run(ctx context.Context, in echoInput) (*echoOutput, error) {
	return &echoOutput{Attr1: in.Input1 + in.Suffix}, nil
}

// shared by every mapper, like a cache attached to a method of the type.
var mapperOutputs = component.OutputTypes("value", 0)

type mapper struct{}

func (m *mapper) Run(ctx context.Context, in map[string]any) (map[string]any, error) {
	return map[string]any{"value": len(in)}, nil
}

func (m *mapper) OutputTypes() component.OutputSockets {
	return mapperOutputs
}

type asyncMapper struct {
	mapper
	async component.OutputSockets
}

func (m *asyncMapper) RunAsync(ctx context.Context, in map[string]any) (map[string]any, error) {
	return m.Run(ctx, in)
}

func (m *asyncMapper) AsyncOutputTypes() component.OutputSockets {
	return m.async
}

type intReturner struct{}

func (i *intReturner) Run(ctx context.Context) (int, error) {
	return 1, nil
}

type noRun struct{}

type badSignature struct{}

func (b *badSignature) Run(in string) (map[string]any, error) {
	return nil, nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	c, err := component.New(&echo{})
	require.NoError(t, err)
	assert.Equal(t, "*component_test.echo", c.Name())
	require.NotNil(t, c.Run())
	assert.Nil(t, c.RunAsync())
	assert.Equal(t, reflect.TypeOf(&echoOutput{}), c.Run().ReturnType())

	inputs := c.InputSockets()
	assert.Equal(t, []string{"input1", "suffix"}, inputs.Names())
	assert.True(t, inputs["input1"].IsMandatory())
	assert.False(t, inputs["suffix"].IsMandatory())
	assert.Equal(t, "", inputs["suffix"].Default)

	_, err = component.New(nil)
	assert.ErrorIs(t, err, component.ErrNilValue)

	_, err = component.New(&badSignature{})
	assert.ErrorIs(t, err, component.ErrInvalidSignature)
}

func TestMethodCall(t *testing.T) {
	t.Parallel()

	c := component.MustNew(&echo{})
	out, err := c.Run().Call(context.Background(), map[string]any{"input1": "a", "suffix": "b"})
	require.NoError(t, err)
	assert.Equal(t, &echoOutput{Attr1: "ab"}, out)

	_, err = c.Run().Call(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, schema.ErrInvalid)

	m := component.MustNew(&mapper{})
	assert.Nil(t, m.Run().ReturnType())
	out, err = m.Run().Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": 0}, out)
}

func TestOutputSocketsFromModel(t *testing.T) {
	t.Parallel()

	c := component.MustNew(&generator{})
	got, err := c.OutputSockets()
	require.NoError(t, err)
	assert.Equal(t, []string{"attr1", "attr2"}, got.Names())
	assert.Equal(t, reflect.TypeOf(""), got["attr1"].Type)
	assert.Equal(t, reflect.TypeOf(0), got["attr2"].Type)

	again, err := c.OutputSockets()
	require.NoError(t, err)
	assert.Same(t, got["attr1"], again["attr1"])
	assert.Equal(t, got, again)
}

func TestOutputSocketsExplicit(t *testing.T) {
	t.Parallel()

	explicit := component.OutputTypes("custom", "")
	c := component.MustNew(&intReturner{}, component.WithOutputTypes(explicit))
	got, err := c.OutputSockets()
	require.NoError(t, err)
	assert.True(t, explicit.Equal(got))

	err = c.SetOutputTypes(component.OutputTypes("other", 0))
	assert.ErrorIs(t, err, component.ErrOutputAlreadySet)

	late := component.MustNew(&mapper{})
	require.NoError(t, late.SetOutputTypes(component.OutputTypes("late", 0)))
	got, err = late.OutputSockets()
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, got.Names())
}

func TestOutputSocketsFromCache(t *testing.T) {
	t.Parallel()

	first := component.MustNew(&mapper{})
	second := component.MustNew(&mapper{})

	firstSockets, err := first.OutputSockets()
	require.NoError(t, err)
	secondSockets, err := second.OutputSockets()
	require.NoError(t, err)

	assert.True(t, firstSockets.Equal(mapperOutputs))
	firstSockets["value"].Receivers = append(firstSockets["value"].Receivers, "other.in")
	assert.Empty(t, secondSockets["value"].Receivers)
	assert.Empty(t, mapperOutputs["value"].Receivers)
	assert.NotSame(t, firstSockets["value"], secondSockets["value"])
}

func TestOutputSocketsErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		value    any
		expected error
	}{
		"missing run": {
			value:    &noRun{},
			expected: component.ErrMissingRun,
		},
		"int return type": {
			value:    &intReturner{},
			expected: component.ErrInvalidReturnType,
		},
		"async mismatch": {
			value:    &asyncMapper{async: component.OutputTypes("value", "")},
			expected: component.ErrOutputMismatch,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := component.MustNew(tc.value)
			_, err := c.OutputSockets()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expected)

			var contractErr *component.ContractError
			require.ErrorAs(t, err, &contractErr)
			assert.Equal(t, component.MustNew(tc.value).Name(), contractErr.Component)
		})
	}
}

func TestOutputSocketsAsyncMatch(t *testing.T) {
	t.Parallel()

	c := component.MustNew(&asyncMapper{async: component.OutputTypes("value", 0)})
	got, err := c.OutputSockets()
	require.NoError(t, err)
	assert.Equal(t, []string{"value"}, got.Names())
}

func TestDeriverLookup(t *testing.T) {
	t.Parallel()

	calls := 0
	d := component.Deriver{Lookup: func(m *component.Method) component.OutputSockets {
		calls++
		return component.OutputTypes("injected", true)
	}}

	c := component.MustNew(&mapper{}, component.WithDeriver(d))
	got, err := c.OutputSockets()
	require.NoError(t, err)
	assert.Equal(t, []string{"injected"}, got.Names())

	_, err = c.OutputSockets()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSetRun(t *testing.T) {
	t.Parallel()

	c := component.MustNew(&generator{})
	original := c.Run()
	adapter := component.NewMethod("adapter", nil, func(ctx context.Context, inputs map[string]any) (any, error) {
		return map[string]any{}, nil
	})
	c.SetRun(adapter)
	assert.Same(t, adapter, c.Run())
	c.SetRun(original)
	assert.Same(t, original, c.Run())
}

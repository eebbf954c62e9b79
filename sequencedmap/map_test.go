package sequencedmap_test

import (
	"slices"
	"testing"

	"github.com/speakeasy-api/csdl/sequencedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMap_Set_PreservesOrder_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New[string, int]()
	m.Set("Order", 1)
	m.Set("Customer", 2)
	m.Set("Address", 3)
	m.Set("Order", 4)

	assert.Equal(t, 3, m.Len(), "overwriting should not add a new entry")
	assert.Equal(t, []string{"Order", "Customer", "Address"}, slices.Collect(m.Keys()))
	assert.Equal(t, 4, m.GetOrZero("Order"), "should hold the latest value")
}

func TestMap_ZeroValue_Success(t *testing.T) {
	t.Parallel()

	var m sequencedmap.Map[string, int]
	m.Set("a", 1)
	m.Set("b", 2)
	assert.Equal(t, []string{"a", "b"}, slices.Collect(m.Keys()), "should be usable without New")

	var decoded sequencedmap.Map[string, int]
	require.NoError(t, yaml.Unmarshal([]byte("z: 1\na: 2\n"), &decoded))
	assert.Equal(t, []string{"z", "a"}, slices.Collect(decoded.Keys()))
}

func TestMap_Delete_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(
		sequencedmap.NewElem("a", 1),
		sequencedmap.NewElem("b", 2),
		sequencedmap.NewElem("c", 3),
	)
	m.Delete("b")
	m.Delete("missing")

	assert.False(t, m.Has("b"))
	assert.Equal(t, []string{"a", "c"}, slices.Collect(m.Keys()))
	assert.Equal(t, []int{1, 3}, slices.Collect(m.Values()))
}

func TestMap_NilSafe_Success(t *testing.T) {
	t.Parallel()

	var m *sequencedmap.Map[string, int]
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("a"))
	v, ok := m.Get("a")
	assert.False(t, ok)
	assert.Zero(t, v)
	m.Delete("a")
	assert.Empty(t, slices.Collect(m.Keys()))
	assert.Equal(t, 0, m.Clone().Len(), "clone of nil should be empty")
}

func TestMap_Clone_Independent_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(sequencedmap.NewElem("a", 1))
	c := m.Clone()
	c.Set("b", 2)
	c.Delete("a")

	assert.Equal(t, []string{"a"}, slices.Collect(m.Keys()), "original should be untouched")
	assert.Equal(t, []string{"b"}, slices.Collect(c.Keys()))
}

func TestMap_AnyAccess_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(sequencedmap.NewElem("a", 1))
	keys := slices.Collect(m.KeysAny())
	require.Len(t, keys, 1)

	v, ok := m.GetAny("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = m.GetAny(42)
	assert.False(t, ok, "should reject a key of the wrong type")
}

func TestMap_YAMLRoundTrip_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.New(
		sequencedmap.NewElem("zeta", "z"),
		sequencedmap.NewElem("alpha", "a"),
	)

	data, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "zeta: z\nalpha: a\n", string(data), "should keep insertion order")

	decoded := sequencedmap.New[string, string]()
	require.NoError(t, yaml.Unmarshal(data, decoded))
	assert.Equal(t, []string{"zeta", "alpha"}, slices.Collect(decoded.Keys()))
}

func TestMap_UnmarshalYAML_Error(t *testing.T) {
	t.Parallel()

	decoded := sequencedmap.New[string, string]()
	err := yaml.Unmarshal([]byte("- a\n- b\n"), decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected mapping node")
}

func TestKeySet_From_Success(t *testing.T) {
	t.Parallel()

	m := sequencedmap.From(sequencedmap.New(sequencedmap.NewElem("x", 1), sequencedmap.NewElem("y", 2)).All())
	assert.Equal(t, map[string]struct{}{"x": {}, "y": {}}, sequencedmap.KeySet(m))
	assert.Equal(t, 2, sequencedmap.Len(m))
}

package hashing_test

import (
	"testing"

	"github.com/speakeasy-api/csdl/hashing"
	"github.com/speakeasy-api/csdl/sequencedmap"
	"github.com/stretchr/testify/assert"
)

type testEnum string

const testEnumA testEnum = "hello"

type property struct {
	Name     string
	Type     string
	Nullable bool
}

type entity struct {
	Name       string
	Properties []property
	Source     string
	Notes      string `hash:"-"`
}

type schema struct {
	Namespace string
	Types     *sequencedmap.Map[string, *entity]
}

func TestHash_Primitives_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        any
		wantHash string
	}{
		{
			name:     "nil",
			v:        nil,
			wantHash: "cbf29ce484222325",
		},
		{
			name:     "string",
			v:        "hello",
			wantHash: "dcdd4ba1ec7623eb",
		},
		{
			name:     "enum",
			v:        testEnumA,
			wantHash: "dcdd4ba1ec7623eb",
		},
		{
			name:     "pointer",
			v:        func() *string { s := "hello"; return &s }(),
			wantHash: "dcdd4ba1ec7623eb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantHash, hashing.Hash(tt.v))
		})
	}
}

func TestHash_IgnoresDeclarationMetadata_Success(t *testing.T) {
	t.Parallel()

	a := &entity{Name: "Order", Properties: []property{{Name: "ID", Type: "Edm.Int32"}}, Source: "a.xml", Notes: "first"}
	b := &entity{Name: "Order", Properties: []property{{Name: "ID", Type: "Edm.Int32"}}, Source: "b.xml", Notes: "second"}

	assert.Equal(t, hashing.Hash(a), hashing.Hash(b), "should ignore Source and hash:\"-\" fields")
	assert.True(t, hashing.Equal(a, b))
}

func TestHash_DetectsContentChanges_Success(t *testing.T) {
	t.Parallel()

	base := &entity{Name: "Order", Properties: []property{{Name: "ID", Type: "Edm.Int32"}}}
	tests := []struct {
		name  string
		other *entity
	}{
		{
			name:  "different property type",
			other: &entity{Name: "Order", Properties: []property{{Name: "ID", Type: "Edm.Int64"}}},
		},
		{
			name:  "extra property",
			other: &entity{Name: "Order", Properties: []property{{Name: "ID", Type: "Edm.Int32"}, {Name: "Total", Type: "Edm.Decimal"}}},
		},
		{
			name:  "nullable flag",
			other: &entity{Name: "Order", Properties: []property{{Name: "ID", Type: "Edm.Int32", Nullable: true}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEqual(t, hashing.Hash(base), hashing.Hash(tt.other))
		})
	}
}

func TestHash_SliceBoundaries_Success(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, hashing.Hash([]string{"ab", "c"}), hashing.Hash([]string{"a", "bc"}), "element boundaries should matter")
	assert.NotEqual(t, hashing.Hash([]string{"a", "b"}), hashing.Hash([]string{"b", "a"}), "slice order should matter")
}

func TestHash_DelimitersInValues_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    any
		b    any
	}{
		{name: "comma in slice item", a: []string{"a,b"}, b: []string{"a", "b"}},
		{name: "semicolon in field", a: property{Name: "a;Type=b"}, b: property{Name: "a", Type: "b"}},
		{name: "colon in map key", a: map[string]string{"a:b": "c"}, b: map[string]string{"a": "b:c"}},
		{name: "nested struct boundary", a: entity{Name: "x", Properties: []property{{Name: "p"}}}, b: entity{Name: "x", Properties: []property{{Name: "p},{Name=p"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEqual(t, hashing.Hash(tt.a), hashing.Hash(tt.b), "delimiters inside values should not collide")
			assert.False(t, hashing.Equal(tt.a, tt.b))
		})
	}
}

func TestHash_SequencedMapOrderInsensitive_Success(t *testing.T) {
	t.Parallel()

	first := &schema{Namespace: "Sales", Types: sequencedmap.New(
		sequencedmap.NewElem("Order", &entity{Name: "Order"}),
		sequencedmap.NewElem("Customer", &entity{Name: "Customer"}),
	)}
	second := &schema{Namespace: "Sales", Types: sequencedmap.New(
		sequencedmap.NewElem("Customer", &entity{Name: "Customer"}),
		sequencedmap.NewElem("Order", &entity{Name: "Order"}),
	)}

	assert.Equal(t, hashing.Hash(first), hashing.Hash(second))
}

func TestHash_NilAndEmptyMapEquivalent_Success(t *testing.T) {
	t.Parallel()

	withNil := &schema{Namespace: "Sales"}
	withEmpty := &schema{Namespace: "Sales", Types: sequencedmap.New[string, *entity]()}

	assert.Equal(t, hashing.Hash(withNil), hashing.Hash(withEmpty))
}

func TestHash_Maps_Success(t *testing.T) {
	t.Parallel()

	a := map[string]string{"hello": "world", "nice": "day"}
	b := map[string]string{"nice": "day", "hello": "world"}
	assert.Equal(t, hashing.Hash(a), hashing.Hash(b))
	assert.Len(t, hashing.Hash(a), 16)
}

package csdl

import (
	"context"
	"os"
	"testing"

	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/references"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseDocument_Success(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/sales.xml")
	require.NoError(t, err)

	doc, err := Parser{}.ParseDocument(context.Background(), "testdata/sales.xml", data)
	require.NoError(t, err)

	assert.Equal(t, references.DocumentID("testdata/sales.xml"), doc.ID)
	assert.Equal(t, "4.01", doc.Version)
	require.Len(t, doc.References, 1)
	assert.Equal(t, "common.xml", doc.References[0].URI)

	require.Len(t, doc.Schemas, 2)
	sales := doc.Schemas[0]
	assert.Equal(t, "Sales", sales.Namespace)
	assert.Equal(t, "s", sales.Alias)
	assert.Equal(t, references.DocumentID("testdata/sales.xml"), sales.Source)

	customer, ok := sales.EntityTypes.Get("Customer")
	require.True(t, ok, "should parse entity types by name")
	assert.Equal(t, []string{"ID"}, customer.Key)
	require.Len(t, customer.Properties, 3)
	assert.False(t, customer.Properties[0].Nullable, "should honour Nullable=false")
	assert.True(t, customer.Properties[1].Nullable, "should default Nullable to true")
	require.Len(t, customer.NavigationProperties, 1)
	assert.Equal(t, "Collection(Sales.Order)", customer.NavigationProperties[0].Type)
	assert.Equal(t, references.DocumentID("testdata/sales.xml"), customer.Source)

	order := sales.EntityTypes.GetOrZero("Order")
	require.NotNil(t, order)
	assert.True(t, order.Abstract)

	status := sales.EnumTypes.GetOrZero("Status")
	require.NotNil(t, status)
	assert.True(t, status.IsFlags)
	assert.Equal(t, []EnumMember{{Name: "Open", Value: "1"}, {Name: "Closed", Value: "2"}}, status.Members)

	assert.Equal(t, "Edm.Decimal", sales.TypeDefinitions.GetOrZero("Money").UnderlyingType)
	assert.Equal(t, []string{"EntityType", "Property"}, sales.Terms.GetOrZero("Audited").AppliesTo)

	require.Len(t, sales.Functions, 2, "should keep both overloads")
	assert.Equal(t, Signature{"Edm.Int32"}, sales.Functions[0].Signature())
	assert.Equal(t, Signature{"Edm.Int32", "Edm.String"}, sales.Functions[1].Signature())
	assert.True(t, sales.Functions[0].IsComposable)
	require.NotNil(t, sales.Functions[0].ReturnType)

	require.Len(t, sales.Actions, 1)
	assert.True(t, sales.Actions[0].IsBound)

	container := sales.EntityContainers.GetOrZero("Service")
	require.NotNil(t, container)
	assert.Equal(t, []string{"Customers", "Orders", "Me", "TopCustomers"}, container.MemberNames())
	assert.Equal(t, []NavigationPropertyBinding{{Path: "Orders", Target: "Orders"}}, container.EntitySets[0].NavigationPropertyBindings)

	require.Len(t, sales.Annotations, 1)
	assert.Equal(t, "Sales.Customer", sales.Annotations[0].Target)
	assert.Equal(t, []string{"s.Audited"}, sales.Annotations[0].Terms)

	reporting := doc.Schemas[1]
	assert.Equal(t, "Sales.Reporting", reporting.Namespace)
	assert.True(t, reporting.ComplexTypes.GetOrZero("Summary").OpenType)
}

func TestParser_Parse_BareSchema_Success(t *testing.T) {
	t.Parallel()

	schemas, err := Parser{}.Parse(context.Background(), "common.xml", []byte(`<Schema Namespace="Common" xmlns="http://docs.oasis-open.org/odata/ns/edm">
  <ComplexType Name="Address"><Property Name="Street" Type="Edm.String"/></ComplexType>
</Schema>`))
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "Common", schemas[0].Namespace)
	assert.Equal(t, 1, schemas[0].Len())
}

func TestParser_Parse_SameNamespaceTwice_FoldsSchemas(t *testing.T) {
	t.Parallel()

	schemas, err := Parser{}.Parse(context.Background(), "split.xml", []byte(`<edmx:Edmx xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx"><edmx:DataServices>
  <Schema Namespace="Split"><EntityType Name="A"/></Schema>
  <Schema Namespace="Split"><EntityType Name="B"/></Schema>
</edmx:DataServices></edmx:Edmx>`))
	require.NoError(t, err)
	require.Len(t, schemas, 1, "should produce one fragment per namespace")
	assert.Equal(t, []string{"A", "B"}, names(schemas[0].ElementsOfKind(KindEntityType)))
}

func TestParser_Parse_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "malformed xml",
			data:    `<edmx:Edmx><broken>`,
			wantErr: errors.ErrInvalidDocument,
		},
		{
			name:    "unexpected root",
			data:    `<Service/>`,
			wantErr: errors.ErrInvalidDocument,
		},
		{
			name:    "schema without namespace",
			data:    `<Schema><EntityType Name="A"/></Schema>`,
			wantErr: errors.ErrInvalidDocument,
		},
		{
			name:    "element without name",
			data:    `<Schema Namespace="X"><ComplexType/></Schema>`,
			wantErr: errors.ErrInvalidDocument,
		},
		{
			name:    "duplicate entity type",
			data:    `<Schema Namespace="X"><EntityType Name="A"/><EntityType Name="A"/></Schema>`,
			wantErr: errors.ErrDuplicateElement,
		},
		{
			name: "duplicate function signature",
			data: `<Schema Namespace="X">
  <Function Name="F"><Parameter Name="a" Type="Edm.String"/></Function>
  <Function Name="F"><Parameter Name="b" Type="Edm.String"/></Function>
</Schema>`,
			wantErr: errors.ErrDuplicateElement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parser{}.Parse(context.Background(), "bad.xml", []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "bad.xml", "should name the document")
		})
	}
}

func TestParser_Parse_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parser{}.Parse(ctx, "x.xml", []byte(`<Schema Namespace="X"/>`))
	require.ErrorIs(t, err, context.Canceled)
}

func names(elements []Element) []string {
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		out = append(out, el.GetName())
	}
	return out
}

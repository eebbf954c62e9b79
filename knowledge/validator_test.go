package knowledge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/knowledge"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesDocument = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:Reference Uri="common.xml">
    <edmx:Include Namespace="Common" Alias="cm"/>
  </edmx:Reference>
  <edmx:DataServices>
    <Schema Namespace="Sales" Alias="s" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="Customer" BaseType="cm.Entity">
        <Property Name="Name" Type="Edm.String"/>
        <Property Name="Address" Type="cm.Address"/>
        <NavigationProperty Name="Orders" Type="Collection(s.Order)"/>
      </EntityType>
      <EntityType Name="Order">
        <Key><PropertyRef Name="ID"/></Key>
        <Property Name="ID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="Status" Type="Sales.Status"/>
      </EntityType>
      <EnumType Name="Status">
        <Member Name="Open"/>
      </EnumType>
      <Function Name="Recent">
        <Parameter Name="days" Type="Edm.Int32"/>
        <ReturnType Type="Collection(Sales.Order)"/>
      </Function>
      <EntityContainer Name="Service">
        <EntitySet Name="Customers" EntityType="Sales.Customer"/>
        <Singleton Name="Latest" Type="s.Order"/>
      </EntityContainer>
      <Annotations Target="s.Customer/Name">
        <Annotation Term="cm.Label"/>
      </Annotations>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`

func parseDocument(t *testing.T, id, data string) *csdl.Document {
	t.Helper()
	doc, err := csdl.Parser{}.ParseDocument(context.Background(), references.DocumentID(id), []byte(data))
	require.NoError(t, err)
	return doc
}

func bareSchema(body string) string {
	return `<Schema Namespace="Test" xmlns="http://docs.oasis-open.org/odata/ns/edm">` + body + `</Schema>`
}

func rules(errs []error) []string {
	var out []string
	for _, err := range errs {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			out = append(out, vErr.Rule)
		}
	}
	return out
}

func TestValidator_ValidateDocument_Valid(t *testing.T) {
	t.Parallel()

	doc := parseDocument(t, "sales.xml", salesDocument)
	report, err := knowledge.NewValidator(baseline(), knowledge.WithCommit(true)).ValidateDocument(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, report.Valid, "should accept the document: %v", report.Errors)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.NotEmpty(t, report.RunID)

	meta, ok := report.Namespaces.Get("Sales")
	require.True(t, ok)
	assert.Equal(t, "s", meta.Alias)
	assert.Equal(t, 3, meta.Types)
	assert.Equal(t, []references.DocumentID{"sales.xml"}, meta.Sources)
	assert.Equal(t, []string{"Common"}, meta.Imports)

	require.NotNil(t, report.Committed, "should commit valid runs")
	assert.True(t, report.Committed.IsTypeDefined("Sales.Customer"))
	assert.True(t, report.Committed.IsTypeDefined("Common.Address"))
}

func TestValidator_ValidateDocument_NoCommitByDefault(t *testing.T) {
	t.Parallel()

	doc := parseDocument(t, "sales.xml", salesDocument)
	report, err := knowledge.NewValidator(baseline()).ValidateDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Nil(t, report.Committed)
}

func TestValidator_ValidateDocument_Findings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "complex type extending entity type",
			body:       `<EntityType Name="E"/><ComplexType Name="C" BaseType="Test.E"/>`,
			wantErrors: []string{validation.RuleValidationInvalidInheritance},
		},
		{
			name:       "unresolved property type",
			body:       `<EntityType Name="E"><Property Name="P" Type="Test.Missing"/></EntityType>`,
			wantErrors: []string{validation.RuleValidationUnresolvedType},
		},
		{
			name:       "namespace known but not included",
			body:       `<ComplexType Name="C"><Property Name="A" Type="Common.Address"/></ComplexType>`,
			wantErrors: []string{validation.RuleValidationNamespaceNotImported},
		},
		{
			name:       "unresolved base type",
			body:       `<EntityType Name="E" BaseType="Test.Missing"/>`,
			wantErrors: []string{validation.RuleValidationUnresolvedType},
		},
		{
			name:       "entity set of complex type",
			body:       `<ComplexType Name="C"/><EntityContainer Name="S"><EntitySet Name="Cs" EntityType="Test.C"/></EntityContainer>`,
			wantErrors: []string{validation.RuleValidationInvalidContainerEntry},
		},
		{
			name:       "unresolved return type",
			body:       `<Function Name="F"><ReturnType Type="Test.Missing"/></Function>`,
			wantErrors: []string{validation.RuleValidationUnresolvedType},
		},
		{
			name:       "unknown base term",
			body:       `<Term Name="T" Type="Edm.String" BaseTerm="Test.Missing"/>`,
			wantErrors: []string{validation.RuleValidationUnknownTerm},
		},
		{
			name:         "annotation on missing target",
			body:         `<Term Name="T" Type="Edm.String"/><Annotations Target="Test.Nothing"><Annotation Term="Test.T"/></Annotations>`,
			wantWarnings: []string{validation.RuleValidationInvalidAnnotation},
		},
		{
			name:         "annotation with unknown term",
			body:         `<EntityType Name="E"/><Annotations Target="Test.E"><Annotation Term="Test.Nope"/></Annotations>`,
			wantWarnings: []string{validation.RuleValidationUnknownTerm},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parseDocument(t, "test.xml", bareSchema(tt.body))
			report, err := knowledge.NewValidator(baseline(), knowledge.WithCommit(true)).ValidateDocument(context.Background(), doc)
			require.NoError(t, err)

			assert.Equal(t, tt.wantErrors, rules(report.Errors))
			assert.Equal(t, tt.wantWarnings, rules(report.Warnings))
			assert.Equal(t, len(tt.wantErrors) == 0, report.Valid)
			if !report.Valid {
				assert.Nil(t, report.Committed, "should not commit invalid runs")
			}
		})
	}
}

func TestValidator_ValidateDocument_IgnoredRules(t *testing.T) {
	t.Parallel()

	doc := parseDocument(t, "test.xml", bareSchema(`<EntityType Name="E"><Property Name="P" Type="Test.Missing"/></EntityType>`))
	v := knowledge.NewValidator(nil, knowledge.WithValidationOptions(validation.WithIgnoredRules(validation.RuleValidationUnresolvedType)))

	report, err := v.ValidateDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
}

func TestValidator_ValidateDocument_SeverityOverride(t *testing.T) {
	t.Parallel()

	doc := parseDocument(t, "test.xml", bareSchema(`<EntityType Name="E"><Property Name="P" Type="Test.Missing"/></EntityType>`))
	v := knowledge.NewValidator(nil, knowledge.WithValidationOptions(validation.WithSeverity(validation.RuleValidationUnresolvedType, validation.SeverityWarning)))

	report, err := v.ValidateDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, report.Valid, "should only fail on error severity")
	assert.Equal(t, []string{validation.RuleValidationUnresolvedType}, rules(report.Warnings))
}

func TestValidator_ValidateRegistry_CrossNamespace(t *testing.T) {
	t.Parallel()

	common := csdl.NewSchema("Common")
	common.Add(&csdl.ComplexType{Name: "Address", Source: "common.xml"})

	sales := csdl.NewSchema("Sales")
	sales.Add(&csdl.EntityType{Name: "Customer", Properties: []csdl.Property{{Name: "Address", Type: "Common.Address"}}, Source: "sales.xml"})

	registry := merge.NewRegistry()
	for _, s := range []*csdl.Schema{common, sales} {
		s.Source = references.DocumentID(s.Namespace + ".xml")
		_, err := merge.Merger{}.MergeInto(s, registry, merge.ThrowError)
		require.NoError(t, err)
	}

	report, err := knowledge.NewValidator(nil, knowledge.WithCommit(true)).ValidateRegistry(context.Background(), registry)
	require.NoError(t, err)
	assert.True(t, report.Valid, "should resolve references between merged namespaces: %v", report.Errors)
	assert.Equal(t, []string{"Common", "Sales"}, keys(report))
	require.NotNil(t, report.Committed)
	assert.Equal(t, []string{"Common", "Sales"}, report.Committed.Namespaces())
}

func TestValidator_ValidateRegistry_Cancelled(t *testing.T) {
	t.Parallel()

	registry := merge.NewRegistry()
	_, err := merge.Merger{}.MergeInto(csdl.NewSchema("A"), registry, merge.ThrowError)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = knowledge.NewValidator(nil).ValidateRegistry(ctx, registry)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func keys(report *knowledge.ValidationReport) []string {
	var out []string
	for k := range report.Namespaces.Keys() {
		out = append(out, k)
	}
	return out
}

func TestValidator_ValidateRegistry_IncludeAliases(t *testing.T) {
	t.Parallel()

	common := csdl.NewSchema("Common")
	common.Add(&csdl.ComplexType{Name: "Address"})
	sales := csdl.NewSchema("Sales")
	sales.Add(&csdl.EntityType{Name: "Customer", Properties: []csdl.Property{{Name: "Address", Type: "c.Address"}}})

	registry := merge.NewRegistry()
	for _, s := range []*csdl.Schema{common, sales} {
		_, err := merge.Merger{}.MergeInto(s, registry, merge.ThrowError)
		require.NoError(t, err)
	}

	report, err := knowledge.NewValidator(nil).ValidateRegistry(context.Background(), registry)
	require.NoError(t, err)
	assert.False(t, report.Valid, "should not resolve an undeclared alias")

	report, err = knowledge.NewValidator(nil, knowledge.WithAliases(map[string]string{"c": "Common"})).ValidateRegistry(context.Background(), registry)
	require.NoError(t, err)
	assert.True(t, report.Valid, "should resolve include aliases: %v", report.Errors)
}

func TestValidator_ValidateDocument_BaseTypeUsesLaterAlias(t *testing.T) {
	t.Parallel()

	doc := parseDocument(t, "two.xml", `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:DataServices>
    <Schema Namespace="First" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="Derived" BaseType="sec.Base"/>
    </Schema>
    <Schema Namespace="Second" Alias="sec" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="Base" Abstract="true"/>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`)

	report, err := knowledge.NewValidator(nil, knowledge.WithCommit(true)).ValidateDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, report.Valid, "should resolve an alias declared by a later schema: %v", report.Errors)

	require.NotNil(t, report.Committed)
	derived, ok := report.Committed.LookupType("First.Derived")
	require.True(t, ok)
	assert.Equal(t, "Second.Base", derived.BaseType, "should store the resolved base type")
}

func TestValidator_ValidateRegistry_BaseTypeUsesLaterAlias(t *testing.T) {
	t.Parallel()

	first := csdl.NewSchema("First")
	first.Add(&csdl.EntityType{Name: "Derived", BaseType: "sec.Base"})
	second := csdl.NewSchema("Second")
	second.Alias = "sec"
	second.Add(&csdl.EntityType{Name: "Base"})

	registry := merge.NewRegistry()
	for _, s := range []*csdl.Schema{first, second} {
		_, err := merge.Merger{}.MergeInto(s, registry, merge.ThrowError)
		require.NoError(t, err)
	}

	report, err := knowledge.NewValidator(nil).ValidateRegistry(context.Background(), registry)
	require.NoError(t, err)
	assert.True(t, report.Valid, "should resolve an alias of a namespace merged later: %v", report.Errors)
}

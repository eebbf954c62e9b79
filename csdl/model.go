package csdl

import (
	"strings"

	"github.com/speakeasy-api/csdl/references"
)

// Element is a named definition declared by a schema.
type Element interface {
	Kind() Kind
	GetName() string
	GetSource() references.DocumentID
}

// Overload is an element that can be overloaded by signature.
type Overload interface {
	Element
	Signature() Signature
}

// Signature is the ordered list of parameter types of an action or function.
type Signature []string

// Equal reports whether both signatures list the same types in the same order.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	return "(" + strings.Join(s, ",") + ")"
}

type Property struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Nullable     bool   `yaml:"nullable"`
	DefaultValue string `yaml:"defaultValue,omitempty"`
}

type NavigationProperty struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Partner        string `yaml:"partner,omitempty"`
	Nullable       bool   `yaml:"nullable"`
	ContainsTarget bool   `yaml:"containsTarget,omitempty"`
}

// EntityType is a keyed structured type.
type EntityType struct {
	Name                 string                `yaml:"name"`
	BaseType             string                `yaml:"baseType,omitempty"`
	Abstract             bool                  `yaml:"abstract,omitempty"`
	OpenType             bool                  `yaml:"openType,omitempty"`
	HasStream            bool                  `yaml:"hasStream,omitempty"`
	Key                  []string              `yaml:"key,omitempty"`
	Properties           []Property            `yaml:"properties,omitempty"`
	NavigationProperties []NavigationProperty  `yaml:"navigationProperties,omitempty"`
	Source               references.DocumentID `yaml:"source,omitempty"`
}

func (e *EntityType) Kind() Kind                       { return KindEntityType }
func (e *EntityType) GetName() string                  { return e.Name }
func (e *EntityType) GetSource() references.DocumentID { return e.Source }

// ComplexType is a keyless structured type.
type ComplexType struct {
	Name                 string                `yaml:"name"`
	BaseType             string                `yaml:"baseType,omitempty"`
	Abstract             bool                  `yaml:"abstract,omitempty"`
	OpenType             bool                  `yaml:"openType,omitempty"`
	Properties           []Property            `yaml:"properties,omitempty"`
	NavigationProperties []NavigationProperty  `yaml:"navigationProperties,omitempty"`
	Source               references.DocumentID `yaml:"source,omitempty"`
}

func (c *ComplexType) Kind() Kind                       { return KindComplexType }
func (c *ComplexType) GetName() string                  { return c.Name }
func (c *ComplexType) GetSource() references.DocumentID { return c.Source }

type EnumMember struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

type EnumType struct {
	Name           string                `yaml:"name"`
	UnderlyingType string                `yaml:"underlyingType,omitempty"`
	IsFlags        bool                  `yaml:"isFlags,omitempty"`
	Members        []EnumMember          `yaml:"members,omitempty"`
	Source         references.DocumentID `yaml:"source,omitempty"`
}

func (e *EnumType) Kind() Kind                       { return KindEnumType }
func (e *EnumType) GetName() string                  { return e.Name }
func (e *EnumType) GetSource() references.DocumentID { return e.Source }

type TypeDefinition struct {
	Name           string                `yaml:"name"`
	UnderlyingType string                `yaml:"underlyingType"`
	Source         references.DocumentID `yaml:"source,omitempty"`
}

func (t *TypeDefinition) Kind() Kind                       { return KindTypeDefinition }
func (t *TypeDefinition) GetName() string                  { return t.Name }
func (t *TypeDefinition) GetSource() references.DocumentID { return t.Source }

type Term struct {
	Name         string                `yaml:"name"`
	Type         string                `yaml:"type"`
	BaseTerm     string                `yaml:"baseTerm,omitempty"`
	AppliesTo    []string              `yaml:"appliesTo,omitempty"`
	DefaultValue string                `yaml:"defaultValue,omitempty"`
	Nullable     bool                  `yaml:"nullable"`
	Source       references.DocumentID `yaml:"source,omitempty"`
}

func (t *Term) Kind() Kind                       { return KindTerm }
func (t *Term) GetName() string                  { return t.Name }
func (t *Term) GetSource() references.DocumentID { return t.Source }

type Parameter struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

type ReturnType struct {
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

type Action struct {
	Name          string                `yaml:"name"`
	IsBound       bool                  `yaml:"isBound,omitempty"`
	EntitySetPath string                `yaml:"entitySetPath,omitempty"`
	Parameters    []Parameter           `yaml:"parameters,omitempty"`
	ReturnType    *ReturnType           `yaml:"returnType,omitempty"`
	Source        references.DocumentID `yaml:"source,omitempty"`
}

func (a *Action) Kind() Kind                       { return KindAction }
func (a *Action) GetName() string                  { return a.Name }
func (a *Action) GetSource() references.DocumentID { return a.Source }
func (a *Action) Signature() Signature             { return parameterTypes(a.Parameters) }

type Function struct {
	Name          string                `yaml:"name"`
	IsBound       bool                  `yaml:"isBound,omitempty"`
	IsComposable  bool                  `yaml:"isComposable,omitempty"`
	EntitySetPath string                `yaml:"entitySetPath,omitempty"`
	Parameters    []Parameter           `yaml:"parameters,omitempty"`
	ReturnType    *ReturnType           `yaml:"returnType,omitempty"`
	Source        references.DocumentID `yaml:"source,omitempty"`
}

func (f *Function) Kind() Kind                       { return KindFunction }
func (f *Function) GetName() string                  { return f.Name }
func (f *Function) GetSource() references.DocumentID { return f.Source }
func (f *Function) Signature() Signature             { return parameterTypes(f.Parameters) }

func parameterTypes(params []Parameter) Signature {
	sig := make(Signature, 0, len(params))
	for _, p := range params {
		sig = append(sig, p.Type)
	}
	return sig
}

type NavigationPropertyBinding struct {
	Path   string `yaml:"path"`
	Target string `yaml:"target"`
}

type EntitySet struct {
	Name                       string                      `yaml:"name"`
	EntityType                 string                      `yaml:"entityType"`
	NavigationPropertyBindings []NavigationPropertyBinding `yaml:"navigationPropertyBindings,omitempty"`
}

type Singleton struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type ActionImport struct {
	Name      string `yaml:"name"`
	Action    string `yaml:"action"`
	EntitySet string `yaml:"entitySet,omitempty"`
}

type FunctionImport struct {
	Name                     string `yaml:"name"`
	Function                 string `yaml:"function"`
	EntitySet                string `yaml:"entitySet,omitempty"`
	IncludeInServiceDocument bool   `yaml:"includeInServiceDocument,omitempty"`
}

// EntityContainer is the service entry point of a schema.
type EntityContainer struct {
	Name            string                `yaml:"name"`
	Extends         string                `yaml:"extends,omitempty"`
	EntitySets      []EntitySet           `yaml:"entitySets,omitempty"`
	Singletons      []Singleton           `yaml:"singletons,omitempty"`
	ActionImports   []ActionImport        `yaml:"actionImports,omitempty"`
	FunctionImports []FunctionImport      `yaml:"functionImports,omitempty"`
	Source          references.DocumentID `yaml:"source,omitempty"`
}

func (c *EntityContainer) Kind() Kind                       { return KindEntityContainer }
func (c *EntityContainer) GetName() string                  { return c.Name }
func (c *EntityContainer) GetSource() references.DocumentID { return c.Source }

// MemberNames returns the names of every entity set, singleton and import of the container.
func (c *EntityContainer) MemberNames() []string {
	names := make([]string, 0, len(c.EntitySets)+len(c.Singletons)+len(c.ActionImports)+len(c.FunctionImports))
	for _, es := range c.EntitySets {
		names = append(names, es.Name)
	}
	for _, s := range c.Singletons {
		names = append(names, s.Name)
	}
	for _, ai := range c.ActionImports {
		names = append(names, ai.Name)
	}
	for _, fi := range c.FunctionImports {
		names = append(names, fi.Name)
	}
	return names
}

// AnnotationGroup is an out-of-line Annotations element applying terms to a target.
type AnnotationGroup struct {
	Target    string                `yaml:"target"`
	Qualifier string                `yaml:"qualifier,omitempty"`
	Terms     []string              `yaml:"terms,omitempty"`
	Source    references.DocumentID `yaml:"source,omitempty"`
}

package csdl

import (
	"slices"

	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/sequencedmap"
)

// Schema is one namespace's worth of definitions as declared by one document
// (a schema fragment), or the merged definitions of a namespace.
type Schema struct {
	Namespace        string                                      `yaml:"namespace"`
	Alias            string                                      `yaml:"alias,omitempty"`
	EntityTypes      *sequencedmap.Map[string, *EntityType]      `yaml:"entityTypes,omitempty"`
	ComplexTypes     *sequencedmap.Map[string, *ComplexType]     `yaml:"complexTypes,omitempty"`
	EnumTypes        *sequencedmap.Map[string, *EnumType]        `yaml:"enumTypes,omitempty"`
	TypeDefinitions  *sequencedmap.Map[string, *TypeDefinition]  `yaml:"typeDefinitions,omitempty"`
	Terms            *sequencedmap.Map[string, *Term]            `yaml:"terms,omitempty"`
	Actions          []*Action                                   `yaml:"actions,omitempty"`
	Functions        []*Function                                 `yaml:"functions,omitempty"`
	EntityContainers *sequencedmap.Map[string, *EntityContainer] `yaml:"entityContainers,omitempty"`
	Annotations      []*AnnotationGroup                          `yaml:"annotations,omitempty"`
	Source           references.DocumentID                       `yaml:"source,omitempty"`
}

// NewSchema returns an empty schema for the namespace.
func NewSchema(namespace string) *Schema {
	return &Schema{
		Namespace:        namespace,
		EntityTypes:      sequencedmap.New[string, *EntityType](),
		ComplexTypes:     sequencedmap.New[string, *ComplexType](),
		EnumTypes:        sequencedmap.New[string, *EnumType](),
		TypeDefinitions:  sequencedmap.New[string, *TypeDefinition](),
		Terms:            sequencedmap.New[string, *Term](),
		EntityContainers: sequencedmap.New[string, *EntityContainer](),
	}
}

// Clone returns a copy of the schema whose collections can be changed without
// affecting s. Elements themselves are shared and must be treated as immutable.
func (s *Schema) Clone() *Schema {
	return &Schema{
		Namespace:        s.Namespace,
		Alias:            s.Alias,
		EntityTypes:      s.EntityTypes.Clone(),
		ComplexTypes:     s.ComplexTypes.Clone(),
		EnumTypes:        s.EnumTypes.Clone(),
		TypeDefinitions:  s.TypeDefinitions.Clone(),
		Terms:            s.Terms.Clone(),
		Actions:          slices.Clone(s.Actions),
		Functions:        slices.Clone(s.Functions),
		EntityContainers: s.EntityContainers.Clone(),
		Annotations:      slices.Clone(s.Annotations),
		Source:           s.Source,
	}
}

// Elements returns every element of the schema, grouped by kind in Kinds order.
func (s *Schema) Elements() []Element {
	var elements []Element
	for _, kind := range Kinds {
		elements = append(elements, s.ElementsOfKind(kind)...)
	}
	return elements
}

// ElementsOfKind returns the elements of one kind in declaration order.
func (s *Schema) ElementsOfKind(kind Kind) []Element {
	var elements []Element
	switch kind {
	case KindEntityType:
		for v := range s.EntityTypes.Values() {
			elements = append(elements, v)
		}
	case KindComplexType:
		for v := range s.ComplexTypes.Values() {
			elements = append(elements, v)
		}
	case KindEnumType:
		for v := range s.EnumTypes.Values() {
			elements = append(elements, v)
		}
	case KindTypeDefinition:
		for v := range s.TypeDefinitions.Values() {
			elements = append(elements, v)
		}
	case KindTerm:
		for v := range s.Terms.Values() {
			elements = append(elements, v)
		}
	case KindAction:
		for _, v := range s.Actions {
			elements = append(elements, v)
		}
	case KindFunction:
		for _, v := range s.Functions {
			elements = append(elements, v)
		}
	case KindEntityContainer:
		for v := range s.EntityContainers.Values() {
			elements = append(elements, v)
		}
	}
	return elements
}

// Lookup returns the elements of the kind with the name. Only overloadable kinds can return more than one.
func (s *Schema) Lookup(kind Kind, name string) []Element {
	var found []Element
	for _, el := range s.ElementsOfKind(kind) {
		if el.GetName() == name {
			found = append(found, el)
		}
	}
	return found
}

// Count returns the number of elements of the kind.
func (s *Schema) Count(kind Kind) int {
	switch kind {
	case KindAction:
		return len(s.Actions)
	case KindFunction:
		return len(s.Functions)
	default:
		return len(s.ElementsOfKind(kind))
	}
}

// Names returns the distinct element names of the kind.
func (s *Schema) Names(kind Kind) map[string]struct{} {
	names := map[string]struct{}{}
	for _, el := range s.ElementsOfKind(kind) {
		names[el.GetName()] = struct{}{}
	}
	return names
}

// Add adds an element. Elements of non-overloadable kinds replace a same-named element in place.
func (s *Schema) Add(el Element) {
	s.ensure()
	switch v := el.(type) {
	case *EntityType:
		s.EntityTypes.Set(v.Name, v)
	case *ComplexType:
		s.ComplexTypes.Set(v.Name, v)
	case *EnumType:
		s.EnumTypes.Set(v.Name, v)
	case *TypeDefinition:
		s.TypeDefinitions.Set(v.Name, v)
	case *Term:
		s.Terms.Set(v.Name, v)
	case *Action:
		s.Actions = append(s.Actions, v)
	case *Function:
		s.Functions = append(s.Functions, v)
	case *EntityContainer:
		s.EntityContainers.Set(v.Name, v)
	}
}

// Replace swaps old for el, keeping old's position.
func (s *Schema) Replace(old, el Element) {
	switch v := el.(type) {
	case *Action:
		if i := slices.IndexFunc(s.Actions, func(a *Action) bool { return Element(a) == old }); i >= 0 {
			s.Actions[i] = v
			return
		}
	case *Function:
		if i := slices.IndexFunc(s.Functions, func(f *Function) bool { return Element(f) == old }); i >= 0 {
			s.Functions[i] = v
			return
		}
	}
	s.Add(el)
}

// Remove removes the element. Overloadable elements are matched by identity, others by name.
func (s *Schema) Remove(el Element) {
	switch v := el.(type) {
	case *EntityType:
		s.EntityTypes.Delete(v.Name)
	case *ComplexType:
		s.ComplexTypes.Delete(v.Name)
	case *EnumType:
		s.EnumTypes.Delete(v.Name)
	case *TypeDefinition:
		s.TypeDefinitions.Delete(v.Name)
	case *Term:
		s.Terms.Delete(v.Name)
	case *Action:
		s.Actions = slices.DeleteFunc(s.Actions, func(a *Action) bool { return a == v })
	case *Function:
		s.Functions = slices.DeleteFunc(s.Functions, func(f *Function) bool { return f == v })
	case *EntityContainer:
		s.EntityContainers.Delete(v.Name)
	}
}

// Len returns the total number of elements.
func (s *Schema) Len() int {
	total := 0
	for _, kind := range Kinds {
		total += s.Count(kind)
	}
	return total
}

// QualifiedName returns the namespace qualified name of an element of the schema.
func (s *Schema) QualifiedName(name string) string {
	return QualifiedName(s.Namespace, name)
}

func (s *Schema) ensure() {
	if s.EntityTypes == nil {
		s.EntityTypes = sequencedmap.New[string, *EntityType]()
	}
	if s.ComplexTypes == nil {
		s.ComplexTypes = sequencedmap.New[string, *ComplexType]()
	}
	if s.EnumTypes == nil {
		s.EnumTypes = sequencedmap.New[string, *EnumType]()
	}
	if s.TypeDefinitions == nil {
		s.TypeDefinitions = sequencedmap.New[string, *TypeDefinition]()
	}
	if s.Terms == nil {
		s.Terms = sequencedmap.New[string, *Term]()
	}
	if s.EntityContainers == nil {
		s.EntityContainers = sequencedmap.New[string, *EntityContainer]()
	}
}

// Document is a parsed CSDL document.
type Document struct {
	ID         references.DocumentID  `yaml:"id"`
	Version    string                 `yaml:"version,omitempty"`
	References []references.Reference `yaml:"references,omitempty"`
	Schemas    []*Schema              `yaml:"schemas,omitempty"`
}

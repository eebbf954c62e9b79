// Package knowledge holds a queryable registry of accepted types, namespaces
// and terms, and validates documents against it before accepting them.
package knowledge

import (
	"maps"
	"slices"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/references"
)

// TypeDefinition is a named type known to the knowledge base.
type TypeDefinition struct {
	FullName string                `yaml:"fullName"`
	Kind     csdl.Kind             `yaml:"kind"`
	BaseType string                `yaml:"baseType,omitempty"`
	Abstract bool                  `yaml:"abstract,omitempty"`
	Source   references.DocumentID `yaml:"source,omitempty"`
}

// Namespace returns the namespace part of the full name.
func (t TypeDefinition) Namespace() string {
	ns, _ := csdl.SplitQualifiedName(t.FullName)
	return ns
}

// TermDefinition is a vocabulary term known to the knowledge base.
type TermDefinition struct {
	FullName  string   `yaml:"fullName"`
	Type      string   `yaml:"type"`
	AppliesTo []string `yaml:"appliesTo,omitempty"`
}

// ServiceDefinition is the entity container a namespace exposes.
type ServiceDefinition struct {
	Namespace  string            `yaml:"namespace"`
	Container  string            `yaml:"container"`
	EntitySets map[string]string `yaml:"entitySets,omitempty"`
	Singletons map[string]string `yaml:"singletons,omitempty"`
}

// KnowledgeBase is an immutable snapshot of accepted definitions. It is only
// created by a Builder.
type KnowledgeBase struct {
	types       map[string]TypeDefinition
	inheritance map[string]string
	namespaces  map[string]struct{}
	aliases     map[string]string
	services    map[string]ServiceDefinition
	terms       map[string]TermDefinition
}

// Empty returns a knowledge base without definitions.
func Empty() *KnowledgeBase {
	return NewBuilder().Build()
}

// LookupType returns the type with the full name.
func (kb *KnowledgeBase) LookupType(fullName string) (TypeDefinition, bool) {
	if kb == nil {
		return TypeDefinition{}, false
	}
	t, ok := kb.types[fullName]
	return t, ok
}

// IsTypeDefined reports whether the type is known.
func (kb *KnowledgeBase) IsTypeDefined(fullName string) bool {
	_, ok := kb.LookupType(fullName)
	return ok
}

// BaseType returns the full name of the type's base type.
func (kb *KnowledgeBase) BaseType(fullName string) (string, bool) {
	if kb == nil {
		return "", false
	}
	base, ok := kb.inheritance[fullName]
	return base, ok
}

// IsNamespaceRegistered reports whether the namespace is known.
func (kb *KnowledgeBase) IsNamespaceRegistered(namespace string) bool {
	if kb == nil {
		return false
	}
	_, ok := kb.namespaces[namespace]
	return ok
}

// ResolveAlias returns the namespace an alias stands for.
func (kb *KnowledgeBase) ResolveAlias(alias string) (string, bool) {
	if kb == nil {
		return "", false
	}
	ns, ok := kb.aliases[alias]
	return ns, ok
}

// LookupTerm returns the term with the full name.
func (kb *KnowledgeBase) LookupTerm(fullName string) (TermDefinition, bool) {
	if kb == nil {
		return TermDefinition{}, false
	}
	t, ok := kb.terms[fullName]
	return t, ok
}

// IsTermDefined reports whether the term is known.
func (kb *KnowledgeBase) IsTermDefined(fullName string) bool {
	_, ok := kb.LookupTerm(fullName)
	return ok
}

// Service returns the service a namespace exposes.
func (kb *KnowledgeBase) Service(namespace string) (ServiceDefinition, bool) {
	if kb == nil {
		return ServiceDefinition{}, false
	}
	s, ok := kb.services[namespace]
	return s, ok
}

// Namespaces returns the known namespaces, sorted.
func (kb *KnowledgeBase) Namespaces() []string {
	if kb == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(kb.namespaces))
}

// Types returns every known type, sorted by full name.
func (kb *KnowledgeBase) Types() []TypeDefinition {
	if kb == nil {
		return nil
	}
	types := make([]TypeDefinition, 0, len(kb.types))
	for _, name := range slices.Sorted(maps.Keys(kb.types)) {
		types = append(types, kb.types[name])
	}
	return types
}

// TypesIn returns the number of types known in the namespace.
func (kb *KnowledgeBase) TypesIn(namespace string) int {
	count := 0
	for _, t := range kb.Types() {
		if t.Namespace() == namespace {
			count++
		}
	}
	return count
}

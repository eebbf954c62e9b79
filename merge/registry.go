package merge

import (
	"iter"
	"maps"
	"slices"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/sequencedmap"
)

// elementKey identifies an element within a namespace. Sig is only set for overloads.
type elementKey struct {
	Kind      csdl.Kind
	Namespace string
	Name      string
	Sig       string
}

func keyOf(namespace string, el csdl.Element) elementKey {
	key := elementKey{Kind: el.Kind(), Namespace: namespace, Name: el.GetName()}
	if o, ok := el.(csdl.Overload); ok {
		key.Sig = o.Signature().String()
	}
	return key
}

// Registry holds the merged definition of every namespace, in first-merge order.
type Registry struct {
	schemas    *sequencedmap.Map[string, *csdl.Schema]
	sources    map[string][]references.DocumentID
	tombstones map[elementKey][]references.DocumentID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas:    sequencedmap.New[string, *csdl.Schema](),
		sources:    map[string][]references.DocumentID{},
		tombstones: map[elementKey][]references.DocumentID{},
	}
}

// Get returns the merged schema of the namespace.
func (r *Registry) Get(namespace string) (*csdl.Schema, bool) {
	return r.schemas.Get(namespace)
}

// Has reports whether the namespace has been merged.
func (r *Registry) Has(namespace string) bool {
	return r.schemas.Has(namespace)
}

// Namespaces returns the merged namespaces in first-merge order.
func (r *Registry) Namespaces() []string {
	return slices.Collect(r.schemas.Keys())
}

// All iterates the merged schemas in first-merge order.
func (r *Registry) All() iter.Seq2[string, *csdl.Schema] {
	return r.schemas.All()
}

// Len returns the number of namespaces.
func (r *Registry) Len() int {
	return r.schemas.Len()
}

// Sources returns the documents that contributed a fragment to the namespace.
func (r *Registry) Sources(namespace string) []references.DocumentID {
	return slices.Clone(r.sources[namespace])
}

// Skipped reports whether an element with the name was dropped by SkipConflicts.
func (r *Registry) Skipped(kind csdl.Kind, namespace, name string) bool {
	for key := range r.tombstones {
		if key.Kind == kind && key.Namespace == namespace && key.Name == name {
			return true
		}
	}
	return false
}

// Lookup finds the elements of the kind named by a namespace qualified name.
func (r *Registry) Lookup(kind csdl.Kind, qualified string) []csdl.Element {
	namespace, name := csdl.SplitQualifiedName(qualified)
	schema, ok := r.schemas.Get(namespace)
	if !ok {
		return nil
	}
	return schema.Lookup(kind, name)
}

// Clone returns a registry that can be merged into without affecting r.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		schemas:    sequencedmap.New[string, *csdl.Schema](),
		sources:    make(map[string][]references.DocumentID, len(r.sources)),
		tombstones: maps.Clone(r.tombstones),
	}
	for ns, schema := range r.schemas.All() {
		c.schemas.Set(ns, schema.Clone())
	}
	for ns, sources := range r.sources {
		c.sources[ns] = slices.Clone(sources)
	}
	return c
}

func (r *Registry) addSource(namespace string, source references.DocumentID) {
	if source == "" || slices.Contains(r.sources[namespace], source) {
		return
	}
	r.sources[namespace] = append(r.sources[namespace], source)
}

// MarshalYAML renders the merged schemas keyed by namespace.
func (r *Registry) MarshalYAML() (interface{}, error) {
	return r.schemas, nil
}

package knowledge

import (
	"maps"

	"github.com/speakeasy-api/csdl/csdl"
)

// Builder accumulates definitions for a new KnowledgeBase.
type Builder struct {
	types      map[string]TypeDefinition
	namespaces map[string]struct{}
	aliases    map[string]string
	services   map[string]ServiceDefinition
	terms      map[string]TermDefinition
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		types:      map[string]TypeDefinition{},
		namespaces: map[string]struct{}{},
		aliases:    map[string]string{},
		services:   map[string]ServiceDefinition{},
		terms:      map[string]TermDefinition{},
	}
}

// NewBuilderFrom creates a builder holding every definition of kb.
func NewBuilderFrom(kb *KnowledgeBase) *Builder {
	b := NewBuilder()
	if kb == nil {
		return b
	}
	maps.Copy(b.types, kb.types)
	maps.Copy(b.namespaces, kb.namespaces)
	maps.Copy(b.aliases, kb.aliases)
	maps.Copy(b.services, kb.services)
	maps.Copy(b.terms, kb.terms)
	return b
}

func (b *Builder) AddTypeDefinition(t TypeDefinition) *Builder {
	b.types[t.FullName] = t
	b.namespaces[t.Namespace()] = struct{}{}
	return b
}

func (b *Builder) AddNamespace(namespace string) *Builder {
	b.namespaces[namespace] = struct{}{}
	return b
}

func (b *Builder) AddAlias(alias, namespace string) *Builder {
	b.aliases[alias] = namespace
	return b
}

func (b *Builder) AddService(s ServiceDefinition) *Builder {
	b.services[s.Namespace] = s
	b.namespaces[s.Namespace] = struct{}{}
	return b
}

func (b *Builder) AddTerm(t TermDefinition) *Builder {
	b.terms[t.FullName] = t
	ns, _ := csdl.SplitQualifiedName(t.FullName)
	b.namespaces[ns] = struct{}{}
	return b
}

// AddSchema adds every type, term and service a schema declares. Base types
// qualified with the schema's alias are stored with the full namespace.
func (b *Builder) AddSchema(schema *csdl.Schema) *Builder {
	resolve := func(name string) string {
		ns, simple := csdl.SplitQualifiedName(name)
		if ns != "" && ns == schema.Alias {
			return csdl.QualifiedName(schema.Namespace, simple)
		}
		if target, ok := b.aliases[ns]; ok {
			return csdl.QualifiedName(target, simple)
		}
		return name
	}

	for _, t := range typeDefinitions(schema, resolve) {
		b.AddTypeDefinition(t)
	}
	for _, t := range termDefinitions(schema) {
		b.AddTerm(t)
	}
	for _, s := range serviceDefinitions(schema, resolve) {
		b.AddService(s)
	}

	b.AddNamespace(schema.Namespace)
	if schema.Alias != "" {
		b.AddAlias(schema.Alias, schema.Namespace)
	}
	return b
}

// merge copies every definition of other into b.
func (b *Builder) merge(other *Builder) *Builder {
	maps.Copy(b.types, other.types)
	maps.Copy(b.namespaces, other.namespaces)
	maps.Copy(b.aliases, other.aliases)
	maps.Copy(b.services, other.services)
	maps.Copy(b.terms, other.terms)
	return b
}

// Build returns an immutable snapshot of the definitions added so far. The
// builder can keep being used without affecting the snapshot.
func (b *Builder) Build() *KnowledgeBase {
	kb := &KnowledgeBase{
		types:       maps.Clone(b.types),
		inheritance: map[string]string{},
		namespaces:  maps.Clone(b.namespaces),
		aliases:     maps.Clone(b.aliases),
		services:    maps.Clone(b.services),
		terms:       maps.Clone(b.terms),
	}
	for name, t := range kb.types {
		if t.BaseType != "" {
			kb.inheritance[name] = t.BaseType
		}
	}
	return kb
}

func typeDefinitions(schema *csdl.Schema, resolve func(string) string) []TypeDefinition {
	var types []TypeDefinition
	for _, el := range schema.Elements() {
		t := TypeDefinition{
			FullName: schema.QualifiedName(el.GetName()),
			Kind:     el.Kind(),
			Source:   el.GetSource(),
		}
		switch v := el.(type) {
		case *csdl.EntityType:
			t.BaseType = resolveOptional(v.BaseType, resolve)
			t.Abstract = v.Abstract
		case *csdl.ComplexType:
			t.BaseType = resolveOptional(v.BaseType, resolve)
			t.Abstract = v.Abstract
		case *csdl.EnumType, *csdl.TypeDefinition:
		default:
			continue
		}
		types = append(types, t)
	}
	return types
}

func termDefinitions(schema *csdl.Schema) []TermDefinition {
	var terms []TermDefinition
	for term := range schema.Terms.Values() {
		terms = append(terms, TermDefinition{
			FullName:  schema.QualifiedName(term.Name),
			Type:      term.Type,
			AppliesTo: term.AppliesTo,
		})
	}
	return terms
}

func serviceDefinitions(schema *csdl.Schema, resolve func(string) string) []ServiceDefinition {
	var services []ServiceDefinition
	for container := range schema.EntityContainers.Values() {
		s := ServiceDefinition{
			Namespace:  schema.Namespace,
			Container:  container.Name,
			EntitySets: map[string]string{},
			Singletons: map[string]string{},
		}
		for _, es := range container.EntitySets {
			s.EntitySets[es.Name] = resolve(es.EntityType)
		}
		for _, single := range container.Singletons {
			s.Singletons[single.Name] = resolve(single.Type)
		}
		services = append(services, s)
	}
	return services
}

func resolveOptional(name string, resolve func(string) string) string {
	if name == "" {
		return ""
	}
	return resolve(name)
}

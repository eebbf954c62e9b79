// Package merge combines schema fragments that share a namespace into one
// definition per namespace, detecting and resolving conflicting definitions.
package merge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/hashing"
	"github.com/speakeasy-api/csdl/references"
)

// Merger merges schema fragments into a Registry.
type Merger struct{}

type collision struct {
	existing csdl.Element // nil when the name was dropped by SkipConflicts
	incoming csdl.Element
}

// MergeInto merges the fragment into its namespace in the registry and returns
// the conflicts it resolved. Every merge is computed on a copy of the namespace
// and published only on success: when an error is returned the registry is unchanged.
func (m Merger) MergeInto(fragment *csdl.Schema, registry *Registry, policy Policy) ([]Conflict, error) {
	namespace := fragment.Namespace

	existing, ok := registry.Get(namespace)
	if !ok {
		registry.schemas.Set(namespace, fragment.Clone())
		registry.addSource(namespace, fragment.Source)
		return nil, nil
	}

	if Identical(existing, fragment) {
		registry.addSource(namespace, fragment.Source)
		return nil, nil
	}

	work := existing.Clone()
	incoming := fragment.Elements()

	var collisions []collision
	for _, el := range incoming {
		if _, skipped := registry.tombstones[keyOf(namespace, el)]; skipped {
			collisions = append(collisions, collision{incoming: el})
			continue
		}

		match := findMatch(work, el)
		if match == nil {
			work.Add(el)
			continue
		}
		collisions = append(collisions, collision{existing: match, incoming: el})
	}

	if alias := fragment.Alias; alias != "" && work.Alias == "" {
		work.Alias = alias
	}
	work.Annotations = append(work.Annotations, fragment.Annotations...)

	if len(collisions) == 0 {
		registry.schemas.Set(namespace, work)
		registry.addSource(namespace, fragment.Source)
		return nil, nil
	}

	if policy == AutoMerge {
		merged, err := autoMerge(work, namespace, collisions)
		if err != nil {
			return nil, err
		}
		registry.schemas.Set(namespace, work)
		registry.addSource(namespace, fragment.Source)
		return merged, nil
	}

	conflicts := make([]Conflict, 0, len(collisions))
	tombstones := map[elementKey][]references.DocumentID{}
	resolution := policy.resolution()

	for _, c := range collisions {
		key := keyOf(namespace, c.incoming)

		if c.existing == nil {
			locations := append(slices.Clip(registry.tombstones[key]), c.incoming.GetSource())
			tombstones[key] = locations
			conflicts = append(conflicts, elementConflict(ConflictDuplicateElement, namespace, c.incoming, locations, ResolutionSkipped,
				"was already dropped as conflicting"))
			continue
		}

		locations := []references.DocumentID{c.existing.GetSource(), c.incoming.GetSource()}
		conflict := elementConflict(ConflictDuplicateElement, namespace, c.incoming, locations, resolution,
			fmt.Sprintf("is defined in both %s and %s", c.existing.GetSource(), c.incoming.GetSource()))

		switch policy {
		case ThrowError:
			first := namespaceConflict(registry, fragment, incoming, collisions, conflict)
			return []Conflict{first}, &ConflictError{Conflicts: []Conflict{first}}
		case KeepFirst:
		case KeepLast:
			work.Replace(c.existing, c.incoming)
		case SkipConflicts:
			work.Remove(c.existing)
			tombstones[key] = locations
		}

		conflicts = append(conflicts, conflict)
	}

	if len(collisions) == len(incoming) {
		conflicts = append(conflicts, namespaceConflict(registry, fragment, incoming, collisions, conflicts[0]))
	}

	registry.schemas.Set(namespace, work)
	registry.addSource(namespace, fragment.Source)
	for key, locations := range tombstones {
		registry.tombstones[key] = locations
	}

	return conflicts, nil
}

// namespaceConflict returns a namespace level conflict when every element of the
// fragment collided, and first otherwise.
func namespaceConflict(registry *Registry, fragment *csdl.Schema, incoming []csdl.Element, collisions []collision, first Conflict) Conflict {
	if len(collisions) != len(incoming) {
		return first
	}

	locations := append(registry.Sources(fragment.Namespace), fragment.Source)
	return Conflict{
		Kind:       ConflictDuplicateNamespaceSchema,
		Namespace:  fragment.Namespace,
		Locations:  locations,
		Resolution: first.Resolution,
		Message: fmt.Sprintf("schema %s in %s redefines all %d of its elements already defined in %s",
			fragment.Namespace, fragment.Source, len(incoming), joinIDs(registry.Sources(fragment.Namespace))),
	}
}

// autoMerge settles collisions that provably lose nothing: identical operations
// and entity containers with disjoint members. Types and terms are never merged.
func autoMerge(work *csdl.Schema, namespace string, collisions []collision) ([]Conflict, error) {
	var merged, failures []Conflict

	for _, c := range collisions {
		if c.existing == nil {
			failures = append(failures, elementConflict(ConflictCannotAutoMerge, namespace, c.incoming,
				[]references.DocumentID{c.incoming.GetSource()}, ResolutionRejected, "was already dropped as conflicting"))
			continue
		}

		locations := []references.DocumentID{c.existing.GetSource(), c.incoming.GetSource()}

		if c.incoming.Kind().Structural() {
			failures = append(failures, elementConflict(ConflictCannotAutoMerge, namespace, c.incoming, locations, ResolutionRejected,
				"must be defined once but is defined in "+joinIDs(locations)))
			continue
		}

		if hashing.Equal(c.existing, c.incoming) {
			merged = append(merged, elementConflict(ConflictDuplicateElement, namespace, c.incoming, locations, ResolutionMerged,
				"is defined identically in "+joinIDs(locations)))
			continue
		}

		if a, ok := c.existing.(*csdl.EntityContainer); ok {
			if union, ok := unionContainers(a, c.incoming.(*csdl.EntityContainer)); ok {
				work.Replace(c.existing, union)
				merged = append(merged, elementConflict(ConflictDuplicateElement, namespace, c.incoming, locations, ResolutionMerged,
					"has disjoint members in "+joinIDs(locations)+" and was combined"))
				continue
			}
			failures = append(failures, elementConflict(ConflictCannotAutoMerge, namespace, c.incoming, locations, ResolutionRejected,
				"has overlapping members in "+joinIDs(locations)))
			continue
		}

		failures = append(failures, elementConflict(ConflictCannotAutoMerge, namespace, c.incoming, locations, ResolutionRejected,
			"has different definitions in "+joinIDs(locations)))
	}

	if len(failures) > 0 {
		return nil, &ConflictError{Conflicts: failures}
	}
	return merged, nil
}

// unionContainers combines two containers whose members do not overlap.
func unionContainers(a, b *csdl.EntityContainer) (*csdl.EntityContainer, bool) {
	if a.Extends != "" && b.Extends != "" && a.Extends != b.Extends {
		return nil, false
	}

	members := map[string]struct{}{}
	for _, name := range a.MemberNames() {
		members[name] = struct{}{}
	}
	for _, name := range b.MemberNames() {
		if _, ok := members[name]; ok {
			return nil, false
		}
	}

	union := &csdl.EntityContainer{
		Name:            a.Name,
		Extends:         a.Extends,
		EntitySets:      slices.Concat(a.EntitySets, b.EntitySets),
		Singletons:      slices.Concat(a.Singletons, b.Singletons),
		ActionImports:   slices.Concat(a.ActionImports, b.ActionImports),
		FunctionImports: slices.Concat(a.FunctionImports, b.FunctionImports),
		Source:          a.Source,
	}
	if union.Extends == "" {
		union.Extends = b.Extends
	}
	return union, true
}

func findMatch(schema *csdl.Schema, el csdl.Element) csdl.Element {
	for _, candidate := range schema.Lookup(el.Kind(), el.GetName()) {
		o, ok := el.(csdl.Overload)
		if !ok {
			return candidate
		}
		if candidate.(csdl.Overload).Signature().Equal(o.Signature()) {
			return candidate
		}
	}
	return nil
}

// Identical reports whether two fragments of a namespace declare the same elements
// with the same content, regardless of the document they were declared in.
func Identical(a, b *csdl.Schema) bool {
	for _, kind := range csdl.Kinds {
		if a.Count(kind) != b.Count(kind) {
			return false
		}
	}
	for _, kind := range csdl.Kinds {
		if !sameNames(a.Names(kind), b.Names(kind)) {
			return false
		}
	}
	return hashing.Hash(a) == hashing.Hash(b)
}

func sameNames(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			return false
		}
	}
	return true
}

func joinIDs(ids []references.DocumentID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}

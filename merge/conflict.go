package merge

import (
	"fmt"
	"strings"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/references"
)

// ConflictKind classifies a conflict.
type ConflictKind string

const (
	ConflictDuplicateElement         ConflictKind = "DuplicateElement"
	ConflictDuplicateNamespaceSchema ConflictKind = "DuplicateNamespaceSchema"
	ConflictCircularDependency       ConflictKind = "CircularDependency"
	ConflictCannotAutoMerge          ConflictKind = "CannotAutoMerge"
)

// Err returns the error sentinel matching the conflict kind.
func (k ConflictKind) Err() errors.Error {
	switch k {
	case ConflictDuplicateNamespaceSchema:
		return errors.ErrDuplicateNamespaceSchema
	case ConflictCircularDependency:
		return errors.ErrCircularDependency
	case ConflictCannotAutoMerge:
		return errors.ErrCannotAutoMerge
	default:
		return errors.ErrDuplicateElement
	}
}

// Resolution records what was done about a conflict.
type Resolution string

const (
	ResolutionKeptFirst Resolution = "kept-first"
	ResolutionKeptLast  Resolution = "kept-last"
	ResolutionSkipped   Resolution = "skipped"
	ResolutionRejected  Resolution = "rejected"
	ResolutionReported  Resolution = "reported"
	// ResolutionMerged marks a collision AutoMerge settled without losing a definition.
	ResolutionMerged Resolution = "merged"
)

// Conflict is an incompatible pair of definitions, or a reference cycle.
type Conflict struct {
	Kind        ConflictKind            `yaml:"kind"`
	Namespace   string                  `yaml:"namespace,omitempty"`
	ElementKind csdl.Kind               `yaml:"elementKind,omitempty"`
	ElementName string                  `yaml:"elementName,omitempty"`
	Signature   csdl.Signature          `yaml:"signature,omitempty"`
	Locations   []references.DocumentID `yaml:"locations"`
	Resolution  Resolution              `yaml:"resolution"`
	Message     string                  `yaml:"message"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s (%s)", c.Kind, c.Message, c.Resolution)
}

// QualifiedName returns the namespace qualified name of the conflicting element, with its
// signature for overloads.
func (c Conflict) QualifiedName() string {
	name := csdl.QualifiedName(c.Namespace, c.ElementName)
	if c.ElementKind.Overloadable() {
		name += c.Signature.String()
	}
	return name
}

// ConflictError aborts a merge.
type ConflictError struct {
	Conflicts []Conflict
}

var _ error = (*ConflictError)(nil)

func (e *ConflictError) Error() string {
	messages := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		messages = append(messages, c.Message)
	}
	kind := ConflictDuplicateElement
	if len(e.Conflicts) > 0 {
		kind = e.Conflicts[0].Kind
	}
	return fmt.Sprintf("%s -- %s", kind.Err(), strings.Join(messages, "; "))
}

func (e *ConflictError) Unwrap() error {
	if len(e.Conflicts) == 0 {
		return errors.ErrDuplicateElement
	}
	return e.Conflicts[0].Kind.Err()
}

// CycleConflict records a circular reference that was allowed to load.
func CycleConflict(cycle []references.DocumentID) Conflict {
	parts := make([]string, 0, len(cycle))
	for _, id := range cycle {
		parts = append(parts, id.String())
	}
	return Conflict{
		Kind:       ConflictCircularDependency,
		Locations:  cycle,
		Resolution: ResolutionReported,
		Message:    "circular reference " + strings.Join(parts, " -> "),
	}
}

func elementConflict(kind ConflictKind, namespace string, el csdl.Element, locations []references.DocumentID, resolution Resolution, message string) Conflict {
	c := Conflict{
		Kind:        kind,
		Namespace:   namespace,
		ElementKind: el.Kind(),
		ElementName: el.GetName(),
		Locations:   locations,
		Resolution:  resolution,
	}
	if o, ok := el.(csdl.Overload); ok {
		c.Signature = o.Signature()
	}
	c.Message = fmt.Sprintf("%s %s %s", el.Kind(), c.QualifiedName(), message)
	return c
}

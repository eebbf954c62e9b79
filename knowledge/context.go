package knowledge

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/validation"
)

// ErrAlreadyCommitted is returned when a validation context is committed twice.
const ErrAlreadyCommitted errors.Error = "validation context already committed"

// ValidationContext is the scratch state of one validation run. Reads see the
// baseline snapshot and then the run's own overlay; writes only go to the overlay
// until Commit publishes both as a new snapshot.
type ValidationContext struct {
	RunID uuid.UUID

	baseline *KnowledgeBase
	overlay  *Builder
	findings context.Context

	referenced        map[string]struct{}
	imported          map[string]struct{}
	current           map[string]struct{}
	aliases           map[string]string
	annotationTargets map[string]struct{}
	resolved          map[string]error

	committed bool
}

// NewValidationContext starts a run over the baseline. A nil baseline is empty.
func NewValidationContext(baseline *KnowledgeBase, opts ...validation.Option) *ValidationContext {
	if baseline == nil {
		baseline = Empty()
	}
	return &ValidationContext{
		RunID:             uuid.New(),
		baseline:          baseline,
		overlay:           NewBuilder(),
		findings:          validation.ContextWithValidationContext(context.Background(), opts...),
		referenced:        map[string]struct{}{},
		imported:          map[string]struct{}{},
		current:           map[string]struct{}{},
		aliases:           map[string]string{},
		annotationTargets: map[string]struct{}{},
		resolved:          map[string]error{},
	}
}

// Baseline returns the snapshot the run started from.
func (vc *ValidationContext) Baseline() *KnowledgeBase {
	return vc.baseline
}

func (vc *ValidationContext) LookupType(fullName string) (TypeDefinition, bool) {
	if t, ok := vc.baseline.LookupType(fullName); ok {
		return t, true
	}
	t, ok := vc.overlay.types[fullName]
	return t, ok
}

func (vc *ValidationContext) IsTypeDefined(fullName string) bool {
	_, ok := vc.LookupType(fullName)
	return ok
}

func (vc *ValidationContext) IsNamespaceRegistered(namespace string) bool {
	if vc.baseline.IsNamespaceRegistered(namespace) {
		return true
	}
	_, ok := vc.overlay.namespaces[namespace]
	return ok
}

func (vc *ValidationContext) IsTermDefined(fullName string) bool {
	if vc.baseline.IsTermDefined(fullName) {
		return true
	}
	_, ok := vc.overlay.terms[fullName]
	return ok
}

// IsValidInheritance reports whether child may derive from parent: both must be
// known types of the same structured kind, parent must be reachable through the
// chain of base types, and the chain must not loop.
func (vc *ValidationContext) IsValidInheritance(child, parent string) bool {
	c, ok := vc.LookupType(child)
	if !ok {
		return false
	}
	p, ok := vc.LookupType(parent)
	if !ok {
		return false
	}
	if c.Kind != p.Kind || (c.Kind != csdl.KindEntityType && c.Kind != csdl.KindComplexType) {
		return false
	}

	found := false
	visited := map[string]struct{}{child: {}}
	for cur := c; cur.BaseType != ""; {
		base := cur.BaseType
		if _, seen := visited[base]; seen {
			return false
		}
		visited[base] = struct{}{}
		if base == parent {
			found = true
		}

		next, ok := vc.LookupType(base)
		if !ok {
			break
		}
		cur = next
	}

	return found
}

func (vc *ValidationContext) AddTemporaryTypeDefinition(t TypeDefinition) {
	vc.overlay.AddTypeDefinition(t)
}

func (vc *ValidationContext) AddTemporaryNamespace(namespace string) {
	vc.overlay.AddNamespace(namespace)
}

func (vc *ValidationContext) AddTemporaryService(s ServiceDefinition) {
	vc.overlay.AddService(s)
}

func (vc *ValidationContext) AddTemporaryTerm(t TermDefinition) {
	vc.overlay.AddTerm(t)
}

// AddCurrentNamespace marks a namespace as declared by the documents being validated.
func (vc *ValidationContext) AddCurrentNamespace(namespace string) {
	vc.current[namespace] = struct{}{}
}

// AddImportedNamespace marks a namespace as included through a reference.
func (vc *ValidationContext) AddImportedNamespace(namespace string) {
	vc.imported[namespace] = struct{}{}
}

// AddAlias registers an alias usable in qualified names for the rest of the run.
func (vc *ValidationContext) AddAlias(alias, namespace string) {
	vc.aliases[alias] = namespace
	vc.overlay.AddAlias(alias, namespace)
}

func (vc *ValidationContext) AddAnnotationTarget(target string) {
	vc.annotationTargets[target] = struct{}{}
}

func (vc *ValidationContext) IsAnnotationTarget(target string) bool {
	_, ok := vc.annotationTargets[target]
	return ok
}

// ReferencedNamespaces returns the namespaces type references pointed into, sorted.
func (vc *ValidationContext) ReferencedNamespaces() []string {
	return slices.Sorted(maps.Keys(vc.referenced))
}

// ResolveQualifiedName replaces a leading alias with its namespace.
func (vc *ValidationContext) ResolveQualifiedName(name string) string {
	ns, simple := csdl.SplitQualifiedName(name)
	if ns == "" {
		return name
	}
	if target, ok := vc.aliases[ns]; ok {
		return csdl.QualifiedName(target, simple)
	}
	if target, ok := vc.baseline.ResolveAlias(ns); ok {
		return csdl.QualifiedName(target, simple)
	}
	return name
}

// ValidateTypeReference checks that a type reference, optionally wrapped in
// Collection(...), names a built-in type or a known type of a namespace the run
// declares or imports.
func (vc *ValidationContext) ValidateTypeReference(ref string) error {
	typ, _ := csdl.CollectionElementType(ref)
	if typ == "" {
		return errors.ErrUnresolvedTypeReference.Wrapf("empty type reference")
	}
	if csdl.IsEdmType(typ) {
		return nil
	}

	fullName := vc.ResolveQualifiedName(typ)
	if err, ok := vc.resolved[fullName]; ok {
		return err
	}

	namespace, _ := csdl.SplitQualifiedName(fullName)
	vc.referenced[namespace] = struct{}{}

	var err error
	_, isCurrent := vc.current[namespace]
	_, isImported := vc.imported[namespace]
	switch {
	case !isCurrent && !isImported && vc.IsNamespaceRegistered(namespace):
		err = errors.ErrNamespaceNotImported.Wrapf("type %s: namespace %s is known but not included", ref, namespace)
	case !isCurrent && !isImported:
		err = errors.ErrUnresolvedTypeReference.Wrapf("type %s: unknown namespace %q", ref, namespace)
	case !vc.IsTypeDefined(fullName):
		err = errors.ErrUnresolvedTypeReference.Wrapf("type %s is not defined in namespace %s", ref, namespace)
	}

	vc.resolved[fullName] = err
	return err
}

// AddFinding records a validation finding.
func (vc *ValidationContext) AddFinding(finding *validation.Error) {
	validation.AddValidationError(vc.findings, finding)
}

// Errors returns the findings of error severity, sorted.
func (vc *ValidationContext) Errors() []error {
	return vc.bySeverity(func(s validation.Severity) bool { return s == validation.SeverityError })
}

// Warnings returns every other finding, sorted.
func (vc *ValidationContext) Warnings() []error {
	return vc.bySeverity(func(s validation.Severity) bool { return s != validation.SeverityError })
}

func (vc *ValidationContext) bySeverity(match func(validation.Severity) bool) []error {
	var out []error
	for _, err := range validation.GetValidationErrors(vc.findings) {
		var vErr *validation.Error
		if errors.As(err, &vErr) && match(vErr.Severity) {
			out = append(out, err)
		}
	}
	validation.SortValidationErrors(out)
	return out
}

// Commit publishes the baseline and the run's overlay as a new snapshot. A
// context can only be committed once.
func (vc *ValidationContext) Commit() (*KnowledgeBase, error) {
	if vc.committed {
		return nil, ErrAlreadyCommitted.Wrapf("run %s", vc.RunID)
	}
	vc.committed = true
	return NewBuilderFrom(vc.baseline).merge(vc.overlay).Build(), nil
}

// trimPath returns the qualified name a target path starts with.
func trimPath(target string) string {
	if i := strings.IndexAny(target, "/("); i >= 0 {
		return target[:i]
	}
	return target
}

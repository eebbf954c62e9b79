package knowledge

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/merge"
	"github.com/speakeasy-api/csdl/references"
	"github.com/speakeasy-api/csdl/sequencedmap"
	"github.com/speakeasy-api/csdl/validation"
)

// NamespaceMetadata summarises a validated namespace.
type NamespaceMetadata struct {
	Namespace string                  `yaml:"namespace"`
	Alias     string                  `yaml:"alias,omitempty"`
	Sources   []references.DocumentID `yaml:"sources,omitempty"`
	Types     int                     `yaml:"types"`
	Terms     int                     `yaml:"terms"`
	Imports   []string                `yaml:"imports,omitempty"`
}

// ValidationReport is the outcome of a validation run.
type ValidationReport struct {
	RunID      string                                         `yaml:"runId"`
	Valid      bool                                           `yaml:"valid"`
	Errors     []error                                        `yaml:"errors,omitempty"`
	Warnings   []error                                        `yaml:"warnings,omitempty"`
	Namespaces *sequencedmap.Map[string, NamespaceMetadata] `yaml:"namespaces"`

	// Committed is the new snapshot when the run was valid and committing is enabled.
	Committed *KnowledgeBase `yaml:"-"`
}

type ValidatorOption func(v *Validator)

// WithCommit commits valid runs, returning the new snapshot in the report.
func WithCommit(commit bool) ValidatorOption {
	return func(v *Validator) {
		v.commit = commit
	}
}

// WithValidationOptions filters and re-grades findings.
func WithValidationOptions(opts ...validation.Option) ValidatorOption {
	return func(v *Validator) {
		v.options = append(v.options, opts...)
	}
}

// WithAliases registers include aliases for a run over a registry, where the
// documents that declared them are no longer at hand.
func WithAliases(aliases map[string]string) ValidatorOption {
	return func(v *Validator) {
		if v.aliases == nil {
			v.aliases = map[string]string{}
		}
		maps.Copy(v.aliases, aliases)
	}
}

// Validator checks documents against a knowledge base.
type Validator struct {
	baseline *KnowledgeBase
	commit   bool
	options  []validation.Option
	aliases  map[string]string
}

// NewValidator creates a validator over baseline. A nil baseline is empty.
func NewValidator(baseline *KnowledgeBase, opts ...ValidatorOption) *Validator {
	v := &Validator{baseline: baseline}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateDocument validates one parsed document. Namespaces it includes through
// references must already be known to the baseline for their types to resolve.
func (v *Validator) ValidateDocument(ctx context.Context, doc *csdl.Document) (*ValidationReport, error) {
	vc := NewValidationContext(v.baseline, v.options...)

	for _, ref := range doc.References {
		for _, include := range ref.Includes {
			vc.AddImportedNamespace(include.Namespace)
			if include.Alias != "" {
				vc.AddAlias(include.Alias, include.Namespace)
			}
		}
		for _, include := range ref.IncludeAnnotations {
			vc.AddImportedNamespace(include.TermNamespace)
		}
	}

	imports := slices.Sorted(maps.Keys(vc.imported))

	return v.run(ctx, vc, doc.Schemas, func(schema *csdl.Schema) NamespaceMetadata {
		return NamespaceMetadata{Sources: []references.DocumentID{doc.ID}, Imports: imports}
	})
}

// ValidateRegistry validates every merged namespace of a registry as one unit.
func (v *Validator) ValidateRegistry(ctx context.Context, registry *merge.Registry) (*ValidationReport, error) {
	vc := NewValidationContext(v.baseline, v.options...)

	schemas := make([]*csdl.Schema, 0, registry.Len())
	for _, schema := range registry.All() {
		schemas = append(schemas, schema)
	}

	return v.run(ctx, vc, schemas, func(schema *csdl.Schema) NamespaceMetadata {
		return NamespaceMetadata{Sources: registry.Sources(schema.Namespace)}
	})
}

func (v *Validator) run(ctx context.Context, vc *ValidationContext, schemas []*csdl.Schema, metadata func(*csdl.Schema) NamespaceMetadata) (*ValidationReport, error) {
	for alias, namespace := range v.aliases {
		vc.AddAlias(alias, namespace)
	}
	for _, schema := range schemas {
		registerNamespace(vc, schema)
	}
	for _, schema := range schemas {
		register(vc, schema)
	}

	report := &ValidationReport{
		RunID:      vc.RunID.String(),
		Namespaces: sequencedmap.New[string, NamespaceMetadata](),
	}

	for _, schema := range schemas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		validateSchema(vc, schema)

		meta := metadata(schema)
		meta.Namespace = schema.Namespace
		meta.Alias = schema.Alias
		meta.Types = len(typeDefinitions(schema, vc.ResolveQualifiedName))
		meta.Terms = schema.Count(csdl.KindTerm)
		report.Namespaces.Set(schema.Namespace, meta)
	}

	report.Errors = vc.Errors()
	report.Warnings = vc.Warnings()
	report.Valid = len(report.Errors) == 0

	if report.Valid && v.commit {
		kb, err := vc.Commit()
		if err != nil {
			return nil, err
		}
		report.Committed = kb
	}

	return report, nil
}

// registerNamespace makes the schema's namespace and alias known to the run. It
// runs for every schema before any definition is registered, so base types may
// use the alias of a schema that comes later.
func registerNamespace(vc *ValidationContext, schema *csdl.Schema) {
	vc.AddCurrentNamespace(schema.Namespace)
	vc.AddTemporaryNamespace(schema.Namespace)
	if schema.Alias != "" {
		vc.AddAlias(schema.Alias, schema.Namespace)
	}
}

// register adds the schema's definitions and annotation targets to the run.
func register(vc *ValidationContext, schema *csdl.Schema) {
	for _, t := range typeDefinitions(schema, vc.ResolveQualifiedName) {
		vc.AddTemporaryTypeDefinition(t)
	}
	for _, t := range termDefinitions(schema) {
		vc.AddTemporaryTerm(t)
	}
	for _, s := range serviceDefinitions(schema, vc.ResolveQualifiedName) {
		vc.AddTemporaryService(s)
	}

	for _, el := range schema.Elements() {
		full := schema.QualifiedName(el.GetName())
		vc.AddAnnotationTarget(full)

		switch v := el.(type) {
		case *csdl.EntityType:
			addMemberTargets(vc, full, v.Properties, v.NavigationProperties)
		case *csdl.ComplexType:
			addMemberTargets(vc, full, v.Properties, v.NavigationProperties)
		case *csdl.EnumType:
			for _, m := range v.Members {
				vc.AddAnnotationTarget(full + "/" + m.Name)
			}
		case *csdl.Action:
			addOperationTargets(vc, full, v.Signature(), v.Parameters)
		case *csdl.Function:
			addOperationTargets(vc, full, v.Signature(), v.Parameters)
		case *csdl.EntityContainer:
			for _, name := range v.MemberNames() {
				vc.AddAnnotationTarget(full + "/" + name)
			}
		}
	}
}

func addOperationTargets(vc *ValidationContext, full string, sig csdl.Signature, params []csdl.Parameter) {
	vc.AddAnnotationTarget(full + sig.String())
	for _, p := range params {
		vc.AddAnnotationTarget(full + "/" + p.Name)
	}
}

func addMemberTargets(vc *ValidationContext, full string, props []csdl.Property, navs []csdl.NavigationProperty) {
	for _, p := range props {
		vc.AddAnnotationTarget(full + "/" + p.Name)
	}
	for _, n := range navs {
		vc.AddAnnotationTarget(full + "/" + n.Name)
	}
}

func validateSchema(vc *ValidationContext, schema *csdl.Schema) {
	for _, el := range schema.Elements() {
		full := schema.QualifiedName(el.GetName())
		doc := el.GetSource().String()

		checkType := func(ref, member string) {
			if ref == "" {
				return
			}
			if err := vc.ValidateTypeReference(ref); err != nil {
				vc.AddFinding(validation.NewValidationError(validation.SeverityError, ruleFor(err), err, doc, joinMember(full, member)))
			}
		}

		switch v := el.(type) {
		case *csdl.EntityType:
			checkBaseType(vc, full, v.BaseType, doc)
			checkMembers(checkType, v.Properties, v.NavigationProperties)
		case *csdl.ComplexType:
			checkBaseType(vc, full, v.BaseType, doc)
			checkMembers(checkType, v.Properties, v.NavigationProperties)
		case *csdl.EnumType:
			checkType(v.UnderlyingType, "")
		case *csdl.TypeDefinition:
			checkType(v.UnderlyingType, "")
		case *csdl.Term:
			checkType(v.Type, "")
			if v.BaseTerm != "" && !vc.IsTermDefined(vc.ResolveQualifiedName(v.BaseTerm)) {
				vc.AddFinding(validation.NewValidationError(validation.SeverityError, validation.RuleValidationUnknownTerm,
					fmt.Errorf("base term %s is not defined", v.BaseTerm), doc, full))
			}
		case *csdl.Action:
			checkOperation(checkType, v.Parameters, v.ReturnType)
		case *csdl.Function:
			checkOperation(checkType, v.Parameters, v.ReturnType)
		case *csdl.EntityContainer:
			for _, es := range v.EntitySets {
				checkContainerEntry(vc, checkType, es.EntityType, es.Name, full, doc)
			}
			for _, s := range v.Singletons {
				checkContainerEntry(vc, checkType, s.Type, s.Name, full, doc)
			}
		}
	}

	for _, group := range schema.Annotations {
		checkAnnotations(vc, group)
	}
}

func checkMembers(checkType func(ref, member string), props []csdl.Property, navs []csdl.NavigationProperty) {
	for _, p := range props {
		checkType(p.Type, p.Name)
	}
	for _, n := range navs {
		checkType(n.Type, n.Name)
	}
}

func checkOperation(checkType func(ref, member string), params []csdl.Parameter, ret *csdl.ReturnType) {
	for _, p := range params {
		checkType(p.Type, p.Name)
	}
	if ret != nil {
		checkType(ret.Type, "$ReturnType")
	}
}

func checkBaseType(vc *ValidationContext, full, baseType, doc string) {
	if baseType == "" {
		return
	}
	if err := vc.ValidateTypeReference(baseType); err != nil {
		vc.AddFinding(validation.NewValidationError(validation.SeverityError, ruleFor(err), err, doc, full))
		return
	}

	parent := vc.ResolveQualifiedName(baseType)
	if !vc.IsValidInheritance(full, parent) {
		child, _ := vc.LookupType(full)
		base, _ := vc.LookupType(parent)
		err := errors.ErrInvalidInheritance.Wrapf("%s %s cannot derive from %s %s", child.Kind, full, base.Kind, parent)
		vc.AddFinding(validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidInheritance, err, doc, full))
	}
}

func checkContainerEntry(vc *ValidationContext, checkType func(ref, member string), ref, member, full, doc string) {
	if vc.ValidateTypeReference(ref) != nil {
		checkType(ref, member)
		return
	}
	name, _ := csdl.CollectionElementType(ref)
	if t, ok := vc.LookupType(vc.ResolveQualifiedName(name)); ok && t.Kind != csdl.KindEntityType {
		vc.AddFinding(validation.NewValidationError(validation.SeverityError, validation.RuleValidationInvalidContainerEntry,
			fmt.Errorf("%s is a %s, not an entity type", ref, t.Kind), doc, joinMember(full, member)))
	}
}

func checkAnnotations(vc *ValidationContext, group *csdl.AnnotationGroup) {
	doc := group.Source.String()
	target := vc.ResolveQualifiedName(group.Target)

	if !vc.IsAnnotationTarget(target) && !vc.IsTypeDefined(trimPath(target)) {
		vc.AddFinding(validation.NewValidationError(validation.SeverityWarning, validation.RuleValidationInvalidAnnotation,
			fmt.Errorf("annotation target %s does not exist", group.Target), doc, group.Target))
	}

	for _, term := range group.Terms {
		if !vc.IsTermDefined(vc.ResolveQualifiedName(term)) {
			vc.AddFinding(validation.NewValidationError(validation.SeverityWarning, validation.RuleValidationUnknownTerm,
				fmt.Errorf("term %s is not defined", term), doc, group.Target))
		}
	}
}

func ruleFor(err error) string {
	if errors.Is(err, errors.ErrNamespaceNotImported) {
		return validation.RuleValidationNamespaceNotImported
	}
	return validation.RuleValidationUnresolvedType
}

func joinMember(full, member string) string {
	if member == "" {
		return full
	}
	return full + "/" + member
}

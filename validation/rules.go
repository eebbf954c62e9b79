package validation

const (
	// Resolution Rules
	RuleResolutionSourceNotFound    = "resolution-source-not-found"
	RuleResolutionMaxDepth          = "resolution-max-depth"
	RuleResolutionCircularReference = "resolution-circular-reference"
	RuleResolutionInvalidDocument   = "resolution-invalid-document"

	// Merge Rules
	RuleMergeDuplicateElement = "merge-duplicate-element"
	RuleMergeCannotAutoMerge  = "merge-cannot-auto-merge"

	// Type Validation Rules
	RuleValidationUnresolvedType        = "validation-unresolved-type"
	RuleValidationNamespaceNotImported  = "validation-namespace-not-imported"
	RuleValidationInvalidInheritance    = "validation-invalid-inheritance"
	RuleValidationUnknownTerm           = "validation-unknown-term"
	RuleValidationInvalidAnnotation     = "validation-invalid-annotation-target"
	RuleValidationInvalidContainerEntry = "validation-invalid-container-entry"
)

// RuleInfo describes a rule for reports and documentation.
type RuleInfo struct {
	Summary     string
	Description string
	HowToFix    string
}

var rules = map[string]RuleInfo{
	RuleResolutionSourceNotFound: {
		Summary:     "Referenced document not found.",
		Description: "Every edmx:Reference must name a document one of the configured locators can load.",
		HowToFix:    "Fix the reference URI or make the document available to the resolver.",
	},
	RuleResolutionMaxDepth: {
		Summary:     "Reference chain too deep.",
		Description: "Reference chains longer than the configured maximum depth are rejected.",
		HowToFix:    "Flatten the reference chain or raise the maximum dependency depth.",
	},
	RuleResolutionCircularReference: {
		Summary:     "Circular reference.",
		Description: "Documents reference each other in a cycle. Cycles are only loaded when explicitly allowed.",
		HowToFix:    "Remove one of the references in the cycle or allow circular dependencies.",
	},
	RuleResolutionInvalidDocument: {
		Summary:     "Invalid document.",
		Description: "The document is not well formed CSDL XML.",
		HowToFix:    "Fix the XML syntax or the missing Name and Namespace attributes.",
	},
	RuleMergeDuplicateElement: {
		Summary:     "Duplicate element.",
		Description: "Two documents define the same element in the same namespace.",
		HowToFix:    "Remove one of the definitions or rename it.",
	},
	RuleMergeCannotAutoMerge: {
		Summary:     "Conflicting definitions cannot be merged.",
		Description: "Only identical elements and entity containers with disjoint members can be merged automatically.",
		HowToFix:    "Make the definitions identical or choose another conflict resolution.",
	},
	RuleValidationUnresolvedType: {
		Summary:     "Unresolved type reference.",
		Description: "A type reference names a type that is not defined in any available namespace.",
		HowToFix:    "Define the type or reference the document that defines it.",
	},
	RuleValidationNamespaceNotImported: {
		Summary:     "Namespace not imported.",
		Description: "A type reference names a known namespace that the document does not include.",
		HowToFix:    "Add an edmx:Reference with an edmx:Include for the namespace.",
	},
	RuleValidationInvalidInheritance: {
		Summary:     "Invalid inheritance.",
		Description: "Entity types may only derive from entity types and complex types from complex types, without cycles.",
		HowToFix:    "Change the base type to a type of the same kind.",
	},
	RuleValidationUnknownTerm: {
		Summary:     "Unknown term.",
		Description: "An annotation applies a term that is not defined in any available namespace.",
		HowToFix:    "Reference the vocabulary that defines the term.",
	},
	RuleValidationInvalidAnnotation: {
		Summary:     "Unknown annotation target.",
		Description: "An annotation targets an element that is not defined.",
		HowToFix:    "Fix the annotation target path.",
	},
	RuleValidationInvalidContainerEntry: {
		Summary:     "Invalid entity container entry.",
		Description: "Entity sets and singletons must reference entity types.",
		HowToFix:    "Point the entity set or singleton at an entity type.",
	},
}

// RuleInfoForID returns the description of a rule.
func RuleInfoForID(ruleID string) (RuleInfo, bool) {
	info, ok := rules[ruleID]
	return info, ok
}

// RuleSummary returns the one line summary of a rule, or "" for unknown rules.
func RuleSummary(ruleID string) string {
	return rules[ruleID].Summary
}

package errors

const (
	// ErrSourceNotFound is returned when a root or referenced document cannot be read by any locator.
	ErrSourceNotFound Error = "source not found"
	// ErrMaxDepthExceeded is returned when reference discovery goes deeper than the configured bound.
	ErrMaxDepthExceeded Error = "max dependency depth exceeded"
	// ErrCircularDependency is returned when circular references are found and not allowed.
	ErrCircularDependency Error = "circular dependency"
	// ErrDuplicateElement reports two same-named definitions competing for one namespace slot.
	ErrDuplicateElement Error = "duplicate element"
	// ErrDuplicateNamespaceSchema reports a namespace declared by incompatible fragments.
	ErrDuplicateNamespaceSchema Error = "duplicate namespace schema"
	// ErrCannotAutoMerge is returned by the auto-merge policy for definitions that must be unique.
	ErrCannotAutoMerge Error = "cannot auto-merge"
	// ErrUnresolvedTypeReference reports a type name that resolves to no known definition.
	ErrUnresolvedTypeReference Error = "unresolved type reference"
	// ErrInvalidInheritance reports an illegal or cyclic base type relationship.
	ErrInvalidInheritance Error = "invalid inheritance"
	// ErrNamespaceNotImported reports use of a known namespace that the document does not reference.
	ErrNamespaceNotImported Error = "namespace not imported"
	// ErrInvalidDocument is returned when document bytes are not a readable CSDL document.
	ErrInvalidDocument Error = "invalid document"
)

var taxonomy = []Error{
	ErrSourceNotFound,
	ErrMaxDepthExceeded,
	ErrCircularDependency,
	ErrDuplicateElement,
	ErrDuplicateNamespaceSchema,
	ErrCannotAutoMerge,
	ErrUnresolvedTypeReference,
	ErrInvalidInheritance,
	ErrNamespaceNotImported,
	ErrInvalidDocument,
}

// Classify returns the taxonomy error err matches, or false if it matches none.
func Classify(err error) (Error, bool) {
	if err == nil {
		return "", false
	}
	for _, kind := range taxonomy {
		if Is(err, kind) {
			return kind, true
		}
	}
	return "", false
}

// IsFatal reports whether err always aborts a resolution regardless of policy.
func IsFatal(err error) bool {
	return Is(err, ErrSourceNotFound) || Is(err, ErrMaxDepthExceeded) || Is(err, ErrInvalidDocument)
}

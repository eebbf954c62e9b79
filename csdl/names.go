package csdl

import "strings"

// EdmNamespace is the namespace of the built-in primitive and abstract types.
const EdmNamespace = "Edm"

// QualifiedName joins a namespace and a simple name.
func QualifiedName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// SplitQualifiedName splits a qualified name at its last dot. Namespaces may themselves contain dots.
func SplitQualifiedName(qualified string) (namespace, name string) {
	i := strings.LastIndex(qualified, ".")
	if i < 0 {
		return "", qualified
	}
	return qualified[:i], qualified[i+1:]
}

// CollectionElementType strips a Collection(...) wrapper, reporting whether one was present.
func CollectionElementType(typ string) (string, bool) {
	typ = strings.TrimSpace(typ)
	if strings.HasPrefix(typ, "Collection(") && strings.HasSuffix(typ, ")") {
		return strings.TrimSpace(typ[len("Collection(") : len(typ)-1]), true
	}
	return typ, false
}

// IsEdmType reports whether the qualified name is a built-in Edm type.
func IsEdmType(qualified string) bool {
	namespace, _ := SplitQualifiedName(qualified)
	return namespace == EdmNamespace
}

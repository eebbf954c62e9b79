package csdl

import (
	"fmt"
)

// Kind identifies the category of a schema element.
type Kind int

const (
	KindEntityType Kind = iota + 1
	KindComplexType
	KindEnumType
	KindTypeDefinition
	KindTerm
	KindAction
	KindFunction
	KindEntityContainer
)

// Kinds lists every element kind in the order elements are reported.
var Kinds = []Kind{
	KindEntityType,
	KindComplexType,
	KindEnumType,
	KindTypeDefinition,
	KindTerm,
	KindAction,
	KindFunction,
	KindEntityContainer,
}

var kindNames = map[Kind]string{
	KindEntityType:      "EntityType",
	KindComplexType:     "ComplexType",
	KindEnumType:        "EnumType",
	KindTypeDefinition:  "TypeDefinition",
	KindTerm:            "Term",
	KindAction:          "Action",
	KindFunction:        "Function",
	KindEntityContainer: "EntityContainer",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Overloadable reports whether several elements of this kind may share a name when their signatures differ.
func (k Kind) Overloadable() bool {
	return k == KindAction || k == KindFunction
}

// Structural reports whether the kind declares a type whose single definition must be unique.
func (k Kind) Structural() bool {
	switch k {
	case KindEntityType, KindComplexType, KindEnumType, KindTypeDefinition, KindTerm:
		return true
	default:
		return false
	}
}

// ParseKind returns the kind with the given element name.
func ParseKind(s string) (Kind, error) {
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown element kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

package merge

import (
	"fmt"
)

// Policy decides what happens when two fragments of a namespace define the same element.
type Policy int

const (
	// ThrowError aborts the merge on the first conflict, leaving the registry untouched.
	ThrowError Policy = iota
	// KeepFirst keeps the element already in the registry.
	KeepFirst
	// KeepLast replaces the element already in the registry with the incoming one.
	KeepLast
	// SkipConflicts drops both elements and rejects any later definition of the name.
	SkipConflicts
	// AutoMerge collapses identical operations and unions entity containers with
	// disjoint members. Any other conflict, including a repeated type or term,
	// aborts the merge.
	AutoMerge
)

var policyNames = map[Policy]string{
	ThrowError:    "ThrowError",
	KeepFirst:     "KeepFirst",
	KeepLast:      "KeepLast",
	SkipConflicts: "SkipConflicts",
	AutoMerge:     "AutoMerge",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy returns the policy with the given name.
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown conflict resolution %q", s)
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Policy) resolution() Resolution {
	switch p {
	case KeepFirst:
		return ResolutionKeptFirst
	case KeepLast:
		return ResolutionKeptLast
	case SkipConflicts:
		return ResolutionSkipped
	default:
		return ResolutionRejected
	}
}

package validation

import (
	"fmt"
)

// Severity is how serious a validation finding is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityHint    Severity = "hint"
)

func (s Severity) String() string {
	return string(s)
}

// rank orders severities from most to least serious.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityHint:
		return 2
	default:
		return 3
	}
}

// Error represents a validation finding and the document and element it was found in.
type Error struct {
	UnderlyingError  error    `yaml:"-"`
	Severity         Severity `yaml:"severity"`
	Rule             string   `yaml:"rule"`
	DocumentLocation string   `yaml:"document,omitempty"`
	Element          string   `yaml:"element,omitempty"`
}

var _ error = (*Error)(nil)

// NewValidationError creates a finding for the element of the document.
func NewValidationError(severity Severity, rule string, err error, document, element string) *Error {
	return &Error{
		UnderlyingError:  err,
		Severity:         severity,
		Rule:             rule,
		DocumentLocation: document,
		Element:          element,
	}
}

func (e *Error) Error() string {
	msg := e.UnderlyingError.Error()
	if e.Element != "" {
		msg = fmt.Sprintf("%s: %s", e.Element, msg)
	}
	if e.DocumentLocation != "" {
		msg = fmt.Sprintf("[%s] %s", e.DocumentLocation, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.UnderlyingError
}

// MarshalYAML renders the finding with its message.
func (e *Error) MarshalYAML() (interface{}, error) {
	return struct {
		Severity Severity `yaml:"severity"`
		Rule     string   `yaml:"rule"`
		Document string   `yaml:"document,omitempty"`
		Element  string   `yaml:"element,omitempty"`
		Message  string   `yaml:"message"`
	}{
		Severity: e.Severity,
		Rule:     e.Rule,
		Document: e.DocumentLocation,
		Element:  e.Element,
		Message:  e.UnderlyingError.Error(),
	}, nil
}

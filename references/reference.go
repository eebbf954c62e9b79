package references

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DocumentID is the canonical identifier of a document: a cleaned slash separated
// file path, an embedded resource path prefixed with "embedded:", or a normalised URL.
type DocumentID string

var _ fmt.Stringer = DocumentID("")

func (id DocumentID) String() string {
	return string(id)
}

// IsURL reports whether the document is addressed by a network URL.
func (id DocumentID) IsURL() bool {
	loc, err := Classify(string(id))
	return err == nil && loc.Type == LocationURL
}

// IsEmbedded reports whether the document is an embedded resource.
func (id DocumentID) IsEmbedded() bool {
	return strings.HasPrefix(string(id), EmbeddedScheme)
}

// Base returns the last path element of the document, for display.
func (id DocumentID) Base() string {
	s := strings.TrimPrefix(string(id), EmbeddedScheme)
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Path != "" {
		s = u.Path
	}
	return path.Base(s)
}

// Include is an edmx:Include of a reference, naming a namespace the referenced document contributes.
type Include struct {
	Namespace string `yaml:"namespace"`
	Alias     string `yaml:"alias,omitempty"`
}

// IncludeAnnotations is an edmx:IncludeAnnotations of a reference.
type IncludeAnnotations struct {
	TermNamespace   string `yaml:"termNamespace"`
	Qualifier       string `yaml:"qualifier,omitempty"`
	TargetNamespace string `yaml:"targetNamespace,omitempty"`
}

// Reference is a raw edmx:Reference declared by a document.
type Reference struct {
	URI                string               `yaml:"uri"`
	Includes           []Include            `yaml:"includes,omitempty"`
	IncludeAnnotations []IncludeAnnotations `yaml:"includeAnnotations,omitempty"`
}

// Namespaces returns the namespaces the reference includes, in declaration order.
func (r Reference) Namespaces() []string {
	namespaces := make([]string, 0, len(r.Includes))
	for _, include := range r.Includes {
		namespaces = append(namespaces, include.Namespace)
	}
	return namespaces
}

// Aliases maps each include alias to its namespace.
func (r Reference) Aliases() map[string]string {
	aliases := map[string]string{}
	for _, include := range r.Includes {
		if include.Alias != "" {
			aliases[include.Alias] = include.Namespace
		}
	}
	return aliases
}

// Validate checks the reference is well formed.
func (r Reference) Validate() error {
	if strings.TrimSpace(r.URI) == "" {
		return errors.New("reference uri is empty")
	}

	if _, err := url.Parse(r.URI); err != nil {
		return fmt.Errorf("invalid reference uri: %w", err)
	}

	if len(r.Includes) == 0 && len(r.IncludeAnnotations) == 0 {
		return fmt.Errorf("reference %s includes nothing", r.URI)
	}

	for _, include := range r.Includes {
		if include.Namespace == "" {
			return fmt.Errorf("reference %s has an include without namespace", r.URI)
		}
	}

	for _, include := range r.IncludeAnnotations {
		if include.TermNamespace == "" {
			return fmt.Errorf("reference %s has an include annotations without term namespace", r.URI)
		}
	}

	return nil
}

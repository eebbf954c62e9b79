package references

import (
	"aqwari.net/xml/xmltree"
	"github.com/speakeasy-api/csdl/errors"
)

// Extractor finds the reference declarations of a raw document. It works on the
// document bytes independently of the schema parser so that every raw edge is
// seen, including several references contributing the same namespace.
type Extractor interface {
	Extract(data []byte) ([]Reference, error)
}

// XMLExtractor extracts edmx:Reference elements that are direct children of the document root.
type XMLExtractor struct{}

var _ Extractor = XMLExtractor{}

func (XMLExtractor) Extract(data []byte) ([]Reference, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, errors.ErrInvalidDocument.Wrap(err)
	}

	return FromElement(root), nil
}

// FromElement collects the references declared by an already parsed document root.
func FromElement(root *xmltree.Element) []Reference {
	var refs []Reference
	for i := range root.Children {
		el := &root.Children[i]
		if el.Name.Local != "Reference" {
			continue
		}

		ref := Reference{URI: el.Attr("", "Uri")}
		if ref.URI == "" {
			ref.URI = el.Attr("", "URI")
		}

		for j := range el.Children {
			child := &el.Children[j]
			switch child.Name.Local {
			case "Include":
				ref.Includes = append(ref.Includes, Include{
					Namespace: child.Attr("", "Namespace"),
					Alias:     child.Attr("", "Alias"),
				})
			case "IncludeAnnotations":
				ref.IncludeAnnotations = append(ref.IncludeAnnotations, IncludeAnnotations{
					TermNamespace:   child.Attr("", "TermNamespace"),
					Qualifier:       child.Attr("", "Qualifier"),
					TargetNamespace: child.Attr("", "TargetNamespace"),
				})
			}
		}

		refs = append(refs, ref)
	}

	return refs
}

package csdl

import (
	"context"
	"fmt"
	"strings"

	"aqwari.net/xml/xmltree"
	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/references"
)

// Parser reads CSDL XML documents, either an edmx:Edmx envelope or a bare Schema element.
type Parser struct{}

// Parse returns the schema fragments declared by the document, one per namespace.
func (p Parser) Parse(ctx context.Context, id references.DocumentID, data []byte) ([]*Schema, error) {
	doc, err := p.ParseDocument(ctx, id, data)
	if err != nil {
		return nil, err
	}
	return doc.Schemas, nil
}

// ParseDocument parses the whole document including its references.
func (p Parser) ParseDocument(ctx context.Context, id references.DocumentID, data []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, errors.ErrInvalidDocument.Wrapf("%s: %w", id, err)
	}

	doc := &Document{ID: id}

	var schemaElements []*xmltree.Element
	switch root.Name.Local {
	case "Edmx":
		doc.Version = root.Attr("", "Version")
		doc.References = references.FromElement(root)
		for i := range root.Children {
			child := &root.Children[i]
			if child.Name.Local != "DataServices" {
				continue
			}
			for j := range child.Children {
				if child.Children[j].Name.Local == "Schema" {
					schemaElements = append(schemaElements, &child.Children[j])
				}
			}
		}
	case "Schema":
		schemaElements = append(schemaElements, root)
	default:
		return nil, errors.ErrInvalidDocument.Wrapf("%s: unexpected root element %q", id, root.Name.Local)
	}

	byNamespace := map[string]*Schema{}
	for _, el := range schemaElements {
		namespace := el.Attr("", "Namespace")
		if namespace == "" {
			return nil, errors.ErrInvalidDocument.Wrapf("%s: schema without namespace", id)
		}

		schema, ok := byNamespace[namespace]
		if !ok {
			schema = NewSchema(namespace)
			schema.Source = id
			byNamespace[namespace] = schema
			doc.Schemas = append(doc.Schemas, schema)
		}
		if alias := el.Attr("", "Alias"); alias != "" {
			schema.Alias = alias
		}

		if err := parseSchema(schema, el, id); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func parseSchema(schema *Schema, el *xmltree.Element, id references.DocumentID) error {
	for i := range el.Children {
		child := &el.Children[i]

		var element Element
		switch child.Name.Local {
		case "EntityType":
			element = parseEntityType(child, id)
		case "ComplexType":
			element = parseComplexType(child, id)
		case "EnumType":
			element = parseEnumType(child, id)
		case "TypeDefinition":
			element = &TypeDefinition{
				Name:           child.Attr("", "Name"),
				UnderlyingType: child.Attr("", "UnderlyingType"),
				Source:         id,
			}
		case "Term":
			element = parseTerm(child, id)
		case "Action":
			element = parseAction(child, id)
		case "Function":
			element = parseFunction(child, id)
		case "EntityContainer":
			element = parseEntityContainer(child, id)
		case "Annotations":
			schema.Annotations = append(schema.Annotations, parseAnnotations(child, id))
			continue
		default:
			continue
		}

		if element.GetName() == "" {
			return errors.ErrInvalidDocument.Wrapf("%s: %s without name in namespace %s", id, element.Kind(), schema.Namespace)
		}

		if err := checkDuplicate(schema, element); err != nil {
			return errors.ErrDuplicateElement.Wrapf("%s: %w", id, err)
		}

		schema.Add(element)
	}

	return nil
}

func checkDuplicate(schema *Schema, element Element) error {
	for _, existing := range schema.Lookup(element.Kind(), element.GetName()) {
		o, ok := element.(Overload)
		if !ok {
			return fmt.Errorf("%s %s declared twice", element.Kind(), schema.QualifiedName(element.GetName()))
		}
		if existing.(Overload).Signature().Equal(o.Signature()) {
			return fmt.Errorf("%s %s%s declared twice", element.Kind(), schema.QualifiedName(element.GetName()), o.Signature())
		}
	}
	return nil
}

func parseEntityType(el *xmltree.Element, id references.DocumentID) *EntityType {
	et := &EntityType{
		Name:      el.Attr("", "Name"),
		BaseType:  el.Attr("", "BaseType"),
		Abstract:  boolAttr(el, "Abstract", false),
		OpenType:  boolAttr(el, "OpenType", false),
		HasStream: boolAttr(el, "HasStream", false),
		Source:    id,
	}

	for i := range el.Children {
		child := &el.Children[i]
		switch child.Name.Local {
		case "Key":
			for j := range child.Children {
				if ref := &child.Children[j]; ref.Name.Local == "PropertyRef" {
					et.Key = append(et.Key, ref.Attr("", "Name"))
				}
			}
		case "Property":
			et.Properties = append(et.Properties, parseProperty(child))
		case "NavigationProperty":
			et.NavigationProperties = append(et.NavigationProperties, parseNavigationProperty(child))
		}
	}

	return et
}

func parseComplexType(el *xmltree.Element, id references.DocumentID) *ComplexType {
	ct := &ComplexType{
		Name:     el.Attr("", "Name"),
		BaseType: el.Attr("", "BaseType"),
		Abstract: boolAttr(el, "Abstract", false),
		OpenType: boolAttr(el, "OpenType", false),
		Source:   id,
	}

	for i := range el.Children {
		child := &el.Children[i]
		switch child.Name.Local {
		case "Property":
			ct.Properties = append(ct.Properties, parseProperty(child))
		case "NavigationProperty":
			ct.NavigationProperties = append(ct.NavigationProperties, parseNavigationProperty(child))
		}
	}

	return ct
}

func parseProperty(el *xmltree.Element) Property {
	return Property{
		Name:         el.Attr("", "Name"),
		Type:         el.Attr("", "Type"),
		Nullable:     boolAttr(el, "Nullable", true),
		DefaultValue: el.Attr("", "DefaultValue"),
	}
}

func parseNavigationProperty(el *xmltree.Element) NavigationProperty {
	return NavigationProperty{
		Name:           el.Attr("", "Name"),
		Type:           el.Attr("", "Type"),
		Partner:        el.Attr("", "Partner"),
		Nullable:       boolAttr(el, "Nullable", true),
		ContainsTarget: boolAttr(el, "ContainsTarget", false),
	}
}

func parseEnumType(el *xmltree.Element, id references.DocumentID) *EnumType {
	et := &EnumType{
		Name:           el.Attr("", "Name"),
		UnderlyingType: el.Attr("", "UnderlyingType"),
		IsFlags:        boolAttr(el, "IsFlags", false),
		Source:         id,
	}

	for i := range el.Children {
		if child := &el.Children[i]; child.Name.Local == "Member" {
			et.Members = append(et.Members, EnumMember{
				Name:  child.Attr("", "Name"),
				Value: child.Attr("", "Value"),
			})
		}
	}

	return et
}

func parseTerm(el *xmltree.Element, id references.DocumentID) *Term {
	term := &Term{
		Name:         el.Attr("", "Name"),
		Type:         el.Attr("", "Type"),
		BaseTerm:     el.Attr("", "BaseTerm"),
		DefaultValue: el.Attr("", "DefaultValue"),
		Nullable:     boolAttr(el, "Nullable", true),
		Source:       id,
	}
	if appliesTo := strings.Fields(el.Attr("", "AppliesTo")); len(appliesTo) > 0 {
		term.AppliesTo = appliesTo
	}
	return term
}

func parseOperation(el *xmltree.Element) ([]Parameter, *ReturnType) {
	var params []Parameter
	var ret *ReturnType

	for i := range el.Children {
		child := &el.Children[i]
		switch child.Name.Local {
		case "Parameter":
			params = append(params, Parameter{
				Name:     child.Attr("", "Name"),
				Type:     child.Attr("", "Type"),
				Nullable: boolAttr(child, "Nullable", true),
			})
		case "ReturnType":
			ret = &ReturnType{
				Type:     child.Attr("", "Type"),
				Nullable: boolAttr(child, "Nullable", true),
			}
		}
	}

	return params, ret
}

func parseAction(el *xmltree.Element, id references.DocumentID) *Action {
	params, ret := parseOperation(el)
	return &Action{
		Name:          el.Attr("", "Name"),
		IsBound:       boolAttr(el, "IsBound", false),
		EntitySetPath: el.Attr("", "EntitySetPath"),
		Parameters:    params,
		ReturnType:    ret,
		Source:        id,
	}
}

func parseFunction(el *xmltree.Element, id references.DocumentID) *Function {
	params, ret := parseOperation(el)
	return &Function{
		Name:          el.Attr("", "Name"),
		IsBound:       boolAttr(el, "IsBound", false),
		IsComposable:  boolAttr(el, "IsComposable", false),
		EntitySetPath: el.Attr("", "EntitySetPath"),
		Parameters:    params,
		ReturnType:    ret,
		Source:        id,
	}
}

func parseEntityContainer(el *xmltree.Element, id references.DocumentID) *EntityContainer {
	ec := &EntityContainer{
		Name:    el.Attr("", "Name"),
		Extends: el.Attr("", "Extends"),
		Source:  id,
	}

	for i := range el.Children {
		child := &el.Children[i]
		switch child.Name.Local {
		case "EntitySet":
			es := EntitySet{
				Name:       child.Attr("", "Name"),
				EntityType: child.Attr("", "EntityType"),
			}
			for j := range child.Children {
				if b := &child.Children[j]; b.Name.Local == "NavigationPropertyBinding" {
					es.NavigationPropertyBindings = append(es.NavigationPropertyBindings, NavigationPropertyBinding{
						Path:   b.Attr("", "Path"),
						Target: b.Attr("", "Target"),
					})
				}
			}
			ec.EntitySets = append(ec.EntitySets, es)
		case "Singleton":
			ec.Singletons = append(ec.Singletons, Singleton{
				Name: child.Attr("", "Name"),
				Type: child.Attr("", "Type"),
			})
		case "ActionImport":
			ec.ActionImports = append(ec.ActionImports, ActionImport{
				Name:      child.Attr("", "Name"),
				Action:    child.Attr("", "Action"),
				EntitySet: child.Attr("", "EntitySet"),
			})
		case "FunctionImport":
			ec.FunctionImports = append(ec.FunctionImports, FunctionImport{
				Name:                     child.Attr("", "Name"),
				Function:                 child.Attr("", "Function"),
				EntitySet:                child.Attr("", "EntitySet"),
				IncludeInServiceDocument: boolAttr(child, "IncludeInServiceDocument", false),
			})
		}
	}

	return ec
}

func parseAnnotations(el *xmltree.Element, id references.DocumentID) *AnnotationGroup {
	group := &AnnotationGroup{
		Target:    el.Attr("", "Target"),
		Qualifier: el.Attr("", "Qualifier"),
		Source:    id,
	}
	for i := range el.Children {
		if child := &el.Children[i]; child.Name.Local == "Annotation" {
			group.Terms = append(group.Terms, child.Attr("", "Term"))
		}
	}
	return group
}

func boolAttr(el *xmltree.Element, name string, def bool) bool {
	switch strings.TrimSpace(el.Attr("", name)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}

package cmdutil

import (
	"fmt"
	"io"

	"github.com/speakeasy-api/jsonpath/pkg/jsonpath"
	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// Format is an output format of a command.
type Format string

const (
	FormatText    Format = "text"
	FormatYAML    Format = "yaml"
	FormatMermaid Format = "mermaid"
)

// ParseFormat validates a --format value against the formats a command supports.
func ParseFormat(s string, supported ...Format) (Format, error) {
	for _, f := range supported {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q, expected one of %v", s, supported)
}

// QueryEngine selects the JSONPath implementation used by --query.
type QueryEngine string

const (
	// QueryEngineRFC9535 follows RFC 9535.
	QueryEngineRFC9535 QueryEngine = "rfc9535"
	// QueryEngineLegacy accepts the older yamlpath dialect.
	QueryEngineLegacy QueryEngine = "legacy"
)

// Query selects nodes of a YAML document.
type Query interface {
	Find(root *yaml.Node) ([]*yaml.Node, error)
}

type rfcQuery struct {
	path *jsonpath.JSONPath
}

func (q rfcQuery) Find(root *yaml.Node) ([]*yaml.Node, error) {
	return q.path.Query(root), nil
}

type legacyQuery struct {
	path *yamlpath.Path
}

func (q legacyQuery) Find(root *yaml.Node) ([]*yaml.Node, error) {
	return q.path.Find(root)
}

// NewQuery compiles a JSONPath expression with the given engine.
func NewQuery(expr string, engine QueryEngine) (Query, error) {
	switch engine {
	case QueryEngineRFC9535, "":
		path, err := jsonpath.NewPath(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid query %q: %w", expr, err)
		}
		return rfcQuery{path: path}, nil
	case QueryEngineLegacy:
		path, err := yamlpath.NewPath(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid query %q: %w", expr, err)
		}
		return legacyQuery{path: path}, nil
	default:
		return nil, fmt.Errorf("unknown query engine %q", engine)
	}
}

// WriteYAML encodes v as YAML. When query is not nil only the selected nodes are
// written: a single match as is, several as a sequence.
func WriteYAML(w io.Writer, v any, query Query) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	out := &node
	if query != nil {
		doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{&node}}
		matches, err := query.Find(doc)
		if err != nil {
			return err
		}
		switch len(matches) {
		case 1:
			out = matches[0]
		default:
			out = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: matches}
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return enc.Close()
}

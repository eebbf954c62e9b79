package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMermaid_Success(t *testing.T) {
	t.Parallel()

	g := New("docs/a.xml")
	g.AddEdge("docs/a.xml", "docs/b.xml")
	g.AddEdge("docs/b.xml", "docs/a.xml")
	g.backEdges = append(g.backEdges, Edge{From: "docs/b.xml", To: "docs/a.xml"})

	expected := `graph LR
  n0["a.xml"]
  n1["b.xml"]
  n0 --> n1
  n1 -.-> n0
`
	assert.Equal(t, expected, Mermaid(g), "should draw back edges dotted")
}

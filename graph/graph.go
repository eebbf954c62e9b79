// Package graph builds the document dependency graph of a root document and
// plans cycle-safe load orders over it.
package graph

import (
	"slices"

	"github.com/speakeasy-api/csdl/references"
)

// Edge is a reference from one document to another.
type Edge struct {
	From references.DocumentID `yaml:"from"`
	To   references.DocumentID `yaml:"to"`
}

// Graph is the dependency graph discovered from a root document. Nodes and edges
// keep discovery order so that every traversal over the graph is deterministic.
type Graph struct {
	root      references.DocumentID
	nodes     []references.DocumentID
	edges     map[references.DocumentID][]references.DocumentID
	loading   map[references.DocumentID]struct{}
	finished  map[references.DocumentID]struct{}
	backEdges []Edge
}

// New creates an empty graph for the root document.
func New(root references.DocumentID) *Graph {
	return &Graph{
		root:     root,
		edges:    map[references.DocumentID][]references.DocumentID{},
		loading:  map[references.DocumentID]struct{}{},
		finished: map[references.DocumentID]struct{}{},
	}
}

// Root returns the root document.
func (g *Graph) Root() references.DocumentID {
	return g.root
}

// Nodes returns every document in discovery order.
func (g *Graph) Nodes() []references.DocumentID {
	return slices.Clone(g.nodes)
}

// Len returns the number of documents.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Has reports whether the document is part of the graph.
func (g *Graph) Has(id references.DocumentID) bool {
	_, ok := g.edges[id]
	return ok
}

// Dependencies returns the documents id references, in first-reference order.
func (g *Graph) Dependencies(id references.DocumentID) []references.DocumentID {
	return slices.Clone(g.edges[id])
}

// Edges returns every edge, grouped by source in discovery order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.nodes {
		for _, to := range g.edges[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// BackEdges returns the edges found to point at a document still being discovered.
func (g *Graph) BackEdges() []Edge {
	return slices.Clone(g.backEdges)
}

// AddNode adds a document. Adding a known document is a no-op.
func (g *Graph) AddNode(id references.DocumentID) {
	if g.Has(id) {
		return
	}
	g.nodes = append(g.nodes, id)
	g.edges[id] = nil
}

// AddEdge adds an edge, adding both documents if needed. Repeated edges collapse into the first.
func (g *Graph) AddEdge(from, to references.DocumentID) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

func (g *Graph) isLoading(id references.DocumentID) bool {
	_, ok := g.loading[id]
	return ok
}

func (g *Graph) isFinished(id references.DocumentID) bool {
	_, ok := g.finished[id]
	return ok
}

package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/references"
)

// DefaultMaxDepth is the deepest reference chain followed when none is configured.
const DefaultMaxDepth = 10

// Discoverer returns the target of every raw reference of a document, one per
// raw reference in document order.
type Discoverer func(ctx context.Context, id references.DocumentID) ([]references.DocumentID, error)

// MaxDepthError reports a reference chain deeper than the configured maximum.
type MaxDepthError struct {
	Chain    []references.DocumentID
	MaxDepth int
}

var _ error = (*MaxDepthError)(nil)

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("%s -- limit %d: %s", errors.ErrMaxDepthExceeded, e.MaxDepth, joinChain(e.Chain))
}

func (e *MaxDepthError) Unwrap() error {
	return errors.ErrMaxDepthExceeded
}

// Builder discovers the dependency graph of a root document.
type Builder struct {
	Discover Discoverer
	MaxDepth int
}

// NewBuilder creates a builder. A non positive maxDepth means DefaultMaxDepth.
func NewBuilder(discover Discoverer, maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Builder{Discover: discover, MaxDepth: maxDepth}
}

// Build discovers every document reachable from root. A reference to a document
// still being discovered is recorded as a back edge and not followed. Discovery
// errors and chains deeper than MaxDepth abort the build.
func (b *Builder) Build(ctx context.Context, root references.DocumentID) (*Graph, error) {
	g := New(root)
	if err := b.visit(ctx, g, root, 0, nil); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *Builder) visit(ctx context.Context, g *Graph, id references.DocumentID, depth int, chain []references.DocumentID) error {
	if g.isFinished(id) {
		return nil
	}
	if g.isLoading(id) {
		g.backEdges = append(g.backEdges, Edge{From: chain[len(chain)-1], To: id})
		return nil
	}

	chain = append(chain, id)
	if depth > b.MaxDepth {
		return &MaxDepthError{Chain: append([]references.DocumentID(nil), chain...), MaxDepth: b.MaxDepth}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	g.AddNode(id)
	g.loading[id] = struct{}{}

	targets, err := b.Discover(ctx, id)
	if err != nil {
		return err
	}

	for _, target := range targets {
		g.AddEdge(id, target)
	}
	for _, target := range targets {
		if err := b.visit(ctx, g, target, depth+1, chain); err != nil {
			return err
		}
	}

	delete(g.loading, id)
	g.finished[id] = struct{}{}

	return nil
}

func joinChain(chain []references.DocumentID) string {
	parts := make([]string, 0, len(chain))
	for _, id := range chain {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, " -> ")
}

package graph

import (
	"slices"

	"github.com/speakeasy-api/csdl/references"
)

// LoadOrder returns every document with its dependencies before it. Edges that
// close a cycle are ignored, and root is always last.
func LoadOrder(g *Graph, root references.DocumentID) []references.DocumentID {
	const (
		temporary = iota + 1
		permanent
	)

	marks := map[references.DocumentID]int{}
	order := make([]references.DocumentID, 0, len(g.nodes))

	for _, start := range g.nodes {
		if marks[start] != 0 {
			continue
		}

		marks[start] = temporary
		stack := []*frame{{node: start}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			neighbours := g.edges[top.node]

			if top.next >= len(neighbours) {
				marks[top.node] = permanent
				order = append(order, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			next := neighbours[top.next]
			top.next++

			if marks[next] != 0 {
				continue
			}

			marks[next] = temporary
			stack = append(stack, &frame{node: next})
		}
	}

	if i := slices.Index(order, root); i >= 0 && i != len(order)-1 {
		order = append(slices.Delete(order, i, i+1), root)
	}

	return order
}

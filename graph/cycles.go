package graph

import (
	"fmt"
	"strings"

	"github.com/speakeasy-api/csdl/errors"
	"github.com/speakeasy-api/csdl/references"
)

// Cycle is a closed reference path; its last document repeats an earlier one.
type Cycle []references.DocumentID

func (c Cycle) String() string {
	return joinChain(c)
}

// CycleError reports circular references found when they are not allowed.
type CycleError struct {
	Cycles []Cycle
}

var _ error = (*CycleError)(nil)

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, "["+c.String()+"]")
	}
	return fmt.Sprintf("%s -- %s", errors.ErrCircularDependency, strings.Join(parts, ", "))
}

func (e *CycleError) Unwrap() error {
	return errors.ErrCircularDependency
}

type frame struct {
	node references.DocumentID
	next int
}

// DetectCycles walks the whole graph depth first, starting from every unvisited
// document in discovery order, and returns at most one cycle per starting point:
// the first edge that closes a path back onto itself.
func DetectCycles(g *Graph) []Cycle {
	var cycles []Cycle
	visited := map[references.DocumentID]struct{}{}

	for _, start := range g.nodes {
		if _, ok := visited[start]; ok {
			continue
		}

		visited[start] = struct{}{}
		stack := []*frame{{node: start}}
		onPath := map[references.DocumentID]int{start: 0}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			neighbours := g.edges[top.node]

			if top.next >= len(neighbours) {
				delete(onPath, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			next := neighbours[top.next]
			top.next++

			if idx, ok := onPath[next]; ok {
				cycle := make(Cycle, 0, len(stack)-idx+1)
				for _, f := range stack[idx:] {
					cycle = append(cycle, f.node)
				}
				cycles = append(cycles, append(cycle, next))
				break
			}

			if _, ok := visited[next]; ok {
				continue
			}

			visited[next] = struct{}{}
			onPath[next] = len(stack)
			stack = append(stack, &frame{node: next})
		}
	}

	return cycles
}

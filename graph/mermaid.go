package graph

import (
	"fmt"
	"slices"
	"strings"
)

// Mermaid renders the graph as a Mermaid flowchart. Nodes are numbered in
// discovery order; edges that close a cycle are drawn dotted.
func Mermaid(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	ids := make(map[string]string, len(g.nodes))
	for i, node := range g.nodes {
		id := fmt.Sprintf("n%d", i)
		ids[string(node)] = id
		fmt.Fprintf(&sb, "  %s[%q]\n", id, mermaidLabel(node.Base()))
	}

	back := g.BackEdges()
	for _, e := range g.Edges() {
		arrow := "-->"
		if slices.Contains(back, e) {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", ids[string(e.From)], arrow, ids[string(e.To)])
	}

	return sb.String()
}

func mermaidLabel(s string) string {
	return strings.NewReplacer(`"`, "'", "[", "(", "]", ")").Replace(s)
}

package graph

import (
	"sort"

	"archmap/internal/pattern"
)

// Edge represents a directed, kind-tagged connection between two named
// components.
type Edge struct {
	From string
	To   string
	Kind string
}

type edgeKey struct {
	from string
	to   string
}

// Graph is an adjacency-map view over component relationships. One
// edge exists per (from, to) pair; recording the same pair again
// overwrites the kind. Multiplicity questions belong to the raw
// relationship list, never to the graph.
type Graph struct {
	nodes map[string]struct{}
	edges map[edgeKey]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[edgeKey]string),
	}
}

// FromRelationships builds the graph for a final, merged relationship
// list.
func FromRelationships(rels []pattern.Relationship) *Graph {
	g := NewGraph()
	for _, rel := range rels {
		g.AddEdge(rel.From, rel.To, rel.Kind)
	}
	return g
}

// AddEdge records both endpoints as nodes and the directed edge
// between them, overwriting the kind of an existing edge.
func (g *Graph) AddEdge(from, to, kind string) {
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}
	g.edges[edgeKey{from: from, to: to}] = kind
}

// HasNode reports whether a name appears in any recorded edge.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// EdgeKind returns the kind recorded for the (from, to) pair.
func (g *Graph) EdgeKind(from, to string) (string, bool) {
	kind, ok := g.edges[edgeKey{from: from, to: to}]
	return kind, ok
}

// NodeCount returns the number of distinct component names.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct (from, to) pairs.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns every component name in sorted order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Edges returns every edge sorted by source, then target.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for key, kind := range g.edges {
		out = append(out, Edge{From: key.from, To: key.to, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// GetDependencies returns the names the given component points at,
// sorted.
func (g *Graph) GetDependencies(name string) []string {
	var deps []string
	for key := range g.edges {
		if key.from == name {
			deps = append(deps, key.to)
		}
	}
	sort.Strings(deps)
	return deps
}

// GetDependents returns the names pointing at the given component,
// sorted.
func (g *Graph) GetDependents(name string) []string {
	var deps []string
	for key := range g.edges {
		if key.to == name {
			deps = append(deps, key.from)
		}
	}
	sort.Strings(deps)
	return deps
}

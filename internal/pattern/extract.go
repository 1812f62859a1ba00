package pattern

import (
	"strings"

	"archmap/internal/syntax"
)

// Contains is the relationship kind recorded between a component and a
// component declared inside its subtree.
const Contains = "contains"

// Relationship is one containment edge between two named components.
type Relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"type"`
}

// Data-flow directions, inferred lexically.
const (
	DirectionIn            = "in"
	DirectionOut           = "out"
	DirectionBidirectional = "bidirectional"
)

// FlowPattern records one node matched by a flow category.
type FlowPattern struct {
	Category  Category    `json:"type"`
	Name      string      `json:"name"`
	NodeKind  string      `json:"node_type"`
	Location  syntax.Span `json:"location"`
	Direction string      `json:"direction,omitempty"`
}

// ExtractName pulls a display name out of a node: its own text when
// present, otherwise the text of its first identifier-like descendant.
// Nodes with neither yield an empty name.
func ExtractName(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	if n.Text != "" {
		return n.Text
	}
	if id := syntax.FirstDescendant(n, "identifier", "field_identifier"); id != nil {
		return id.Text
	}
	return ""
}

// Relationships walks the tree and records a containment edge each time
// a component-matching node sits inside another matched component. The
// name of the nearest matched ancestor travels down as walk context; a
// matched node whose name cannot be extracted still produces an edge
// under its ancestor but does not replace the context.
//
// A matched component with no matched ancestor produces no edge at all,
// so top-level components stay invisible to consumers that derive the
// component set from edge endpoints.
func Relationships(t *Table, root *syntax.Node) []Relationship {
	var rels []Relationship
	syntax.Walk(root, "", func(n *syntax.Node, parent string) string {
		if !t.Match(n, Component) {
			return parent
		}
		name := ExtractName(n)
		if parent != "" {
			rels = append(rels, Relationship{From: parent, To: name, Kind: Contains})
		}
		if name == "" {
			return parent
		}
		return name
	})
	return rels
}

// Flows records a FlowPattern for every node matching the category.
// Each extractor pass is independent, so a node and its matching
// ancestor both produce entries and nothing is de-duplicated.
func Flows(t *Table, root *syntax.Node, cat Category) []FlowPattern {
	var patterns []FlowPattern
	syntax.Walk(root, "", func(n *syntax.Node, ctx string) string {
		if !t.Match(n, cat) {
			return ctx
		}
		p := FlowPattern{
			Category: cat,
			Name:     ExtractName(n),
			NodeKind: n.Kind,
			Location: n.Span(),
		}
		if cat == DataFlow {
			p.Direction = DataDirection(n)
		}
		patterns = append(patterns, p)
		return ctx
	})
	return patterns
}

// DataDirection infers a node's flow orientation from its text. The
// inbound cues are checked before the outbound ones, so text carrying
// both (like "data_in_out_buffer") reads as inbound. Text matching
// neither family is bidirectional.
func DataDirection(n *syntax.Node) string {
	text := strings.ToLower(n.Text)
	for _, cue := range []string{"input", "in", "receive"} {
		if strings.Contains(text, cue) {
			return DirectionIn
		}
	}
	for _, cue := range []string{"output", "out", "send"} {
		if strings.Contains(text, cue) {
			return DirectionOut
		}
	}
	return DirectionBidirectional
}

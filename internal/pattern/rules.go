package pattern

import (
	"strings"

	"archmap/internal/syntax"
)

// Category labels the architectural role a rule matches.
type Category string

const (
	Component   Category = "component"
	ControlFlow Category = "control_flow"
	DataFlow    Category = "data_flow"
	State       Category = "state"
)

// Rule pairs the lexical cues that place a node in a category. Keywords
// match case-insensitive substrings of a node's text; kinds match the
// node kind exactly (compared case-folded).
type Rule struct {
	Category Category
	Keywords []string
	Kinds    []string
}

// Table holds category rules in a fixed order. The order is the
// priority contract for classifiers that stop at the first match;
// the generic extractors query categories independently.
type Table struct {
	rules []Rule
	index map[Category]int
}

// NewTable builds a table from rules in the given order. Keywords and
// kinds are folded to lower case once, up front.
func NewTable(rules ...Rule) *Table {
	t := &Table{index: make(map[Category]int, len(rules))}
	for _, r := range rules {
		t.rules = append(t.rules, Rule{
			Category: r.Category,
			Keywords: lowerAll(r.Keywords),
			Kinds:    lowerAll(r.Kinds),
		})
		t.index[r.Category] = len(t.rules) - 1
	}
	return t
}

// DefaultTable returns the built-in generic rule set.
func DefaultTable() *Table {
	return NewTable(
		Rule{
			Category: Component,
			Keywords: []string{
				"component", "module", "unit", "block", "element",
				"processor", "core", "engine", "accelerator",
			},
			Kinds: []string{
				"struct_type", "interface_type", "class_declaration",
				"type_declaration",
			},
		},
		Rule{
			Category: ControlFlow,
			Keywords: []string{
				"control", "schedule", "dispatch", "orchestrate",
				"execute", "step", "cycle", "tick", "clock",
			},
			Kinds: []string{
				"function_declaration", "method_declaration",
				"if_statement", "switch_statement", "for_statement",
			},
		},
		Rule{
			Category: DataFlow,
			Keywords: []string{
				"data", "input", "output", "stream", "flow", "buffer",
				"queue", "channel", "port", "signal",
			},
			Kinds: []string{
				"field_declaration", "variable_declaration",
				"channel_type", "array_type",
			},
		},
		Rule{
			Category: State,
			Keywords: []string{
				"state", "status", "mode", "configuration", "setting",
				"parameter", "register",
			},
			Kinds: []string{
				"field_declaration", "variable_declaration",
				"const_declaration",
			},
		},
	)
}

// Categories lists the table's categories in rule order.
func (t *Table) Categories() []Category {
	out := make([]Category, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r.Category)
	}
	return out
}

// Rule returns the rule registered for a category.
func (t *Table) Rule(cat Category) (Rule, bool) {
	i, ok := t.index[cat]
	if !ok {
		return Rule{}, false
	}
	return t.rules[i], true
}

// Extend appends extra keywords to a category's rule. Unknown
// categories are ignored, so configuration overlays cannot invent
// categories the extractors do not walk.
func (t *Table) Extend(cat Category, keywords ...string) {
	i, ok := t.index[cat]
	if !ok {
		return
	}
	t.rules[i].Keywords = append(t.rules[i].Keywords, lowerAll(keywords)...)
}

// Match reports whether the node falls into the category: either its
// kind is one of the rule's kinds, or its text contains one of the
// rule's keywords. A node without text can only match by kind.
func (t *Table) Match(n *syntax.Node, cat Category) bool {
	r, ok := t.Rule(cat)
	if !ok || n == nil {
		return false
	}

	kind := strings.ToLower(n.Kind)
	for _, k := range r.Kinds {
		if kind == k {
			return true
		}
	}

	if n.Text == "" {
		return false
	}
	text := strings.ToLower(n.Text)
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}

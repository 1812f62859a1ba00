package cgra

import (
	"strings"

	"archmap/internal/pattern"
	"archmap/internal/syntax"
)

// categoryRule pairs a taxonomy category with the name fragments that
// select it.
type categoryRule struct {
	category string
	keywords []string
}

// rules are evaluated top to bottom and the first hit wins, so a name
// like "PEController" lands in processing_elements, never in controls.
var rules = []categoryRule{
	{ProcessingElements, []string{"processingelement", "pe", "alu", "functionalunit"}},
	{Interconnects, []string{"network", "interconnect", "router", "switch"}},
	{Memories, []string{"memory", "buffer", "cache", "register"}},
	{Controls, []string{"controller", "scheduler", "mapper"}},
	{Configurations, []string{"config", "configuration", "setting"}},
}

// Classify returns the taxonomy category for a node, or "" when the
// node carries no text or its text matches no category. Classification
// is purely lexical: only the node's own text is consulted.
func Classify(n *syntax.Node) string {
	if n == nil || n.Text == "" {
		return ""
	}
	text := strings.ToLower(n.Text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.category
			}
		}
	}
	return ""
}

// AnalyzeComponents classifies every node of the tree and collects the
// matches into a category-keyed mapping. The nearest matched ancestor's
// category travels down as walk context, producing one category-level
// containment edge per match found under a context. A match with no
// matched ancestor produces no edge.
func AnalyzeComponents(root *syntax.Node) *Components {
	comps := NewComponents()
	syntax.Walk(root, "", func(n *syntax.Node, parent string) string {
		category := Classify(n)
		if category == "" {
			return parent
		}
		comps.add(Component{
			Category:  category,
			Name:      n.Text,
			Location:  n.Span(),
			Interface: extractInterface(n),
		})
		if parent != "" {
			comps.Relationships = append(comps.Relationships, pattern.Relationship{
				From: parent,
				To:   category,
				Kind: pattern.Contains,
			})
		}
		return category
	})
	return comps
}

// AnalyzeDataflow collects every send and receive statement in the
// tree. Events are recorded raw: no pairing, no channel resolution.
func AnalyzeDataflow(root *syntax.Node) *Dataflow {
	flow := NewDataflow()
	syntax.Walk(root, "", func(n *syntax.Node, ctx string) string {
		if n.Kind == SendStatement || n.Kind == ReceiveStatement {
			flow.Channels = append(flow.Channels, ChannelEvent{
				Kind:     n.Kind,
				Location: n.Span(),
			})
		}
		return ctx
	})
	return flow
}

// extractInterface lifts fields and methods off a matched struct or
// interface node. Only the node's immediate children are scanned; any
// other node kind yields the empty interface shape.
func extractInterface(n *syntax.Node) Interface {
	iface := Interface{
		Inputs:     []Field{},
		Outputs:    []Field{},
		Parameters: []Field{},
		Methods:    []Method{},
	}
	if n.Kind != "struct_type" && n.Kind != "interface_type" {
		return iface
	}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case "field_declaration":
			iface.Parameters = append(iface.Parameters, extractField(child))
		case "method_declaration":
			iface.Methods = append(iface.Methods, extractMethod(child))
		}
	}
	return iface
}

func extractField(n *syntax.Node) Field {
	field := Field{Tags: []string{}}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case "field_identifier":
			field.Name = child.Text
		case "type_identifier":
			field.Type = child.Text
		case "tag":
			field.Tags = append(field.Tags, child.Text)
		}
	}
	return field
}

func extractMethod(n *syntax.Node) Method {
	method := Method{Parameters: []Param{}}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case "field_identifier":
			method.Name = child.Text
		case "parameter_list":
			method.Parameters = extractParams(child)
		case "receiver":
			recv := extractParam(child)
			method.Receiver = &recv
		}
	}
	return method
}

func extractParams(list *syntax.Node) []Param {
	params := []Param{}
	for _, child := range list.Children {
		if child == nil || child.Kind != "parameter_declaration" {
			continue
		}
		params = append(params, extractParam(child))
	}
	return params
}

func extractParam(n *syntax.Node) Param {
	var p Param
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case "identifier":
			p.Name = child.Text
		case "type_identifier":
			p.Type = child.Text
		}
	}
	return p
}

package cgra

import (
	"archmap/internal/pattern"
	"archmap/internal/syntax"
)

// Category labels of the hardware taxonomy, in classification priority
// order. The labels double as the keys of the components mapping in the
// project document.
const (
	ProcessingElements = "processing_elements"
	Interconnects      = "interconnects"
	Memories           = "memories"
	Controls           = "controls"
	Configurations     = "configurations"
)

// Node kinds recognized by the channel detector.
const (
	SendStatement    = "send_statement"
	ReceiveStatement = "receive_statement"
)

// Component is one classified hardware component occurrence.
type Component struct {
	Category  string      `json:"type"`
	Name      string      `json:"name"`
	Location  syntax.Span `json:"location"`
	Interface Interface   `json:"interface"`
}

// Interface describes the shape a component exposes. Inputs and outputs
// are reserved document fields and stay empty; struct and interface
// declarations fill parameters and methods.
type Interface struct {
	Inputs     []Field  `json:"inputs"`
	Outputs    []Field  `json:"outputs"`
	Parameters []Field  `json:"parameters"`
	Methods    []Method `json:"methods"`
}

// Field is a named, typed struct field with its raw tag strings.
type Field struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Tags []string `json:"tags"`
}

// Method is a method signature lifted from an interface body. The
// return type is a reserved document field and stays empty.
type Method struct {
	Name       string  `json:"name"`
	Parameters []Param `json:"parameters"`
	ReturnType string  `json:"return_type"`
	Receiver   *Param  `json:"receiver"`
}

// Param is a name/type pair used for parameters and receivers.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ChannelEvent is one send or receive construct found in a tree.
type ChannelEvent struct {
	Kind     string      `json:"type"`
	Location syntax.Span `json:"location"`
}

// Components is the category-keyed component mapping of one file or of
// a whole project, with the category-level containment edges seen
// between matched components.
type Components struct {
	ProcessingElements []Component            `json:"processing_elements"`
	Interconnects      []Component            `json:"interconnects"`
	Memories           []Component            `json:"memories"`
	Controls           []Component            `json:"controls"`
	Configurations     []Component            `json:"configurations"`
	Relationships      []pattern.Relationship `json:"relationships"`
}

// NewComponents returns a mapping with every list present, so the
// JSON form always carries all six keys.
func NewComponents() *Components {
	return &Components{
		ProcessingElements: []Component{},
		Interconnects:      []Component{},
		Memories:           []Component{},
		Controls:           []Component{},
		Configurations:     []Component{},
		Relationships:      []pattern.Relationship{},
	}
}

// Labels returns the mapping's keys in document order, the
// relationships list included.
func Labels() []string {
	return []string{
		ProcessingElements, Interconnects, Memories,
		Controls, Configurations, "relationships",
	}
}

func (c *Components) add(comp Component) {
	switch comp.Category {
	case ProcessingElements:
		c.ProcessingElements = append(c.ProcessingElements, comp)
	case Interconnects:
		c.Interconnects = append(c.Interconnects, comp)
	case Memories:
		c.Memories = append(c.Memories, comp)
	case Controls:
		c.Controls = append(c.Controls, comp)
	case Configurations:
		c.Configurations = append(c.Configurations, comp)
	}
}

// Merge appends another mapping's entries onto this one, list by list.
func (c *Components) Merge(other *Components) {
	if other == nil {
		return
	}
	c.ProcessingElements = append(c.ProcessingElements, other.ProcessingElements...)
	c.Interconnects = append(c.Interconnects, other.Interconnects...)
	c.Memories = append(c.Memories, other.Memories...)
	c.Controls = append(c.Controls, other.Controls...)
	c.Configurations = append(c.Configurations, other.Configurations...)
	c.Relationships = append(c.Relationships, other.Relationships...)
}

// Total counts every entry in the mapping. The containment edges count
// too, matching how the document's summary has always been computed.
func (c *Components) Total() int {
	return len(c.ProcessingElements) + len(c.Interconnects) + len(c.Memories) +
		len(c.Controls) + len(c.Configurations) + len(c.Relationships)
}

// Dataflow is the channel-event side of the project document.
// Connections and patterns are reserved fields and stay empty.
type Dataflow struct {
	Channels    []ChannelEvent `json:"channels"`
	Connections []ChannelEvent `json:"connections"`
	Patterns    []ChannelEvent `json:"patterns"`
}

// NewDataflow returns a dataflow block with every list present.
func NewDataflow() *Dataflow {
	return &Dataflow{
		Channels:    []ChannelEvent{},
		Connections: []ChannelEvent{},
		Patterns:    []ChannelEvent{},
	}
}

// Merge appends another block's events onto this one.
func (d *Dataflow) Merge(other *Dataflow) {
	if other == nil {
		return
	}
	d.Channels = append(d.Channels, other.Channels...)
	d.Connections = append(d.Connections, other.Connections...)
	d.Patterns = append(d.Patterns, other.Patterns...)
}

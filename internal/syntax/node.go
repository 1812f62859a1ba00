package syntax

// Point is a zero-based row/column position in a source file.
type Point struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Span marks the source region a record was extracted from.
type Span struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Node is one vertex of a parsed syntax tree. Leaves carry the source
// text they cover; interior nodes carry children instead. Both fields
// may be absent in hand-built or foreign trees, and everything that
// consumes nodes treats an absent field as empty.
type Node struct {
	Kind     string  `json:"type"`
	Start    Point   `json:"start_point"`
	End      Point   `json:"end_point"`
	Children []*Node `json:"children"`
	Text     string  `json:"text,omitempty"`
}

// Span returns the region the node covers.
func (n *Node) Span() Span {
	return Span{Start: n.Start, End: n.End}
}

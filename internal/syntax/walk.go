package syntax

// Visitor inspects a node together with the context inherited from its
// nearest ancestor and returns the context for the node's subtree.
type Visitor func(n *Node, ctx string) string

// Walk visits every node depth-first in pre-order, threading a context
// string top-down. Whatever the visitor returns becomes the context for
// that node's children. The traversal runs on an explicit worklist, so
// tree depth is bounded by memory rather than by the goroutine stack.
func Walk(root *Node, ctx string, visit Visitor) {
	if root == nil {
		return
	}

	type frame struct {
		node *Node
		ctx  string
	}

	stack := []frame{{node: root, ctx: ctx}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next := visit(f.node, f.ctx)

		// Children pushed in reverse so the first child is popped first,
		// keeping source order.
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			if c := f.node.Children[i]; c != nil {
				stack = append(stack, frame{node: c, ctx: next})
			}
		}
	}
}

// FirstDescendant returns the first node below root, in pre-order, whose
// kind matches one of the given kinds. The root itself is not a
// candidate. Returns nil when nothing matches.
func FirstDescendant(root *Node, kinds ...string) *Node {
	if root == nil {
		return nil
	}

	stack := make([]*Node, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		if c := root.Children[i]; c != nil {
			stack = append(stack, c)
		}
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, kind := range kinds {
			if n.Kind == kind {
				return n
			}
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c != nil {
				stack = append(stack, c)
			}
		}
	}
	return nil
}

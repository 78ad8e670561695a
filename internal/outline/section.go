// Package outline recovers the hierarchical outline of a loosely structured
// report: which spans of text belong to which heading and how headings nest.
//
// Local extraction is deterministic: independent heading families are
// scanned, competing detections collapsed, and a parent-linked tree is built
// with a level-ordered stack. Reconcile merges that tree with an untrusted
// structure proposal from an external service so that no section present in
// either hypothesis is lost.
package outline

// Candidate is a detected, level-tagged heading position before the tree is
// built.
type Candidate struct {
	Offset   int    // byte offset of the heading line in the source text
	RawTitle string // text the family matched
	Level    int    // 1 (top) to 3
	Tag      string // family tag, also used as node id prefix
}

// SectionNode is a finalized, parented, content-bearing unit of the outline.
// ID, Level and ParentID are the structural contract consumed downstream and
// must not be changed after extraction.
type SectionNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	ParentID string `json:"parentId,omitempty"`
	Content  string `json:"content"`

	// Start and End delimit the node's span in the source text. Only set for
	// locally extracted nodes; a local node's End is always past its Start,
	// so End is omitted for nodes that carry no span.
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n SectionNode) IsRoot() bool {
	return n.ParentID == ""
}

// CountLevel returns how many nodes sit at the given level.
func CountLevel(nodes []SectionNode, level int) int {
	c := 0
	for _, n := range nodes {
		if n.Level == level {
			c++
		}
	}
	return c
}

// Clone returns a copy of nodes that shares no backing array with the input.
func Clone(nodes []SectionNode) []SectionNode {
	if nodes == nil {
		return nil
	}
	out := make([]SectionNode, len(nodes))
	copy(out, nodes)
	return out
}

// TreeNode is a nested view of a SectionNode list, used for rendering.
type TreeNode struct {
	Section  SectionNode `json:"section"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Nest turns a flat parent-linked list into a forest. Nodes whose parent is
// missing are returned as roots.
func Nest(nodes []SectionNode) []*TreeNode {
	byID := make(map[string]*TreeNode, len(nodes))
	var roots []*TreeNode
	for _, n := range nodes {
		tn := &TreeNode{Section: n}
		if parent, ok := byID[n.ParentID]; ok && n.ParentID != "" {
			parent.Children = append(parent.Children, tn)
		} else {
			roots = append(roots, tn)
		}
		if _, dup := byID[n.ID]; !dup {
			byID[n.ID] = tn
		}
	}
	return roots
}

// Walk visits the forest depth-first with each node's depth (0 for roots).
func Walk(roots []*TreeNode, fn func(n *TreeNode, depth int)) {
	var walk func([]*TreeNode, int)
	walk = func(children []*TreeNode, depth int) {
		for _, c := range children {
			fn(c, depth)
			walk(c.Children, depth+1)
		}
	}
	walk(roots, 0)
}

package workflowy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// TreeNode wraps a Node with its position in a rebuilt outline.
type TreeNode struct {
	Node Node

	// Children are in the order they appeared in the source list.
	Children []*TreeNode

	forest *Forest
	index  int
	parent int // index into forest.nodes, -1 for roots
}

// Parent returns the parent tree node, or nil for roots.
func (t *TreeNode) Parent() *TreeNode {
	if t.parent < 0 {
		return nil
	}
	return t.forest.nodes[t.parent]
}

// IsRoot reports whether t has no parent.
func (t *TreeNode) IsRoot() bool {
	return t.parent < 0
}

// Size returns the number of nodes in the subtree rooted at t.
func (t *TreeNode) Size() int {
	n := 0
	walk([]*TreeNode{t}, func(*TreeNode, int) bool {
		n++
		return true
	})
	return n
}

// Walk visits t and its descendants depth-first, parents before children.
// t has depth 0. Returning false from fn skips the node's children.
func (t *TreeNode) Walk(fn func(n *TreeNode, depth int) bool) {
	walk([]*TreeNode{t}, fn)
}

// Forest is an outline rebuilt from a flat node list.
type Forest struct {
	Roots []*TreeNode

	// Orphans lists the ids of nodes whose parent was not part of the input.
	// Orphans are kept as roots.
	Orphans []string

	nodes []*TreeNode
	index map[string]int
}

// Len returns the number of nodes in the forest.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Lookup returns the tree node with the given id.
func (f *Forest) Lookup(id string) (*TreeNode, bool) {
	i, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return f.nodes[i], true
}

// Walk visits every node depth-first, parents before children, roots in
// order. Returning false from fn skips the node's children.
func (f *Forest) Walk(fn func(t *TreeNode, depth int) bool) {
	walk(f.Roots, fn)
}

func walk(roots []*TreeNode, fn func(*TreeNode, int) bool) {
	type frame struct {
		node  *TreeNode
		depth int
	}

	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(top.node, top.depth) {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.node.Children[i], top.depth + 1})
		}
	}
}

// DuplicateNodeError is returned when the same id appears more than once.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node id %q", e.ID)
}

// CycleError is returned when parent references form a cycle. IDs lists
// every node that cannot be reached from a root, sorted.
type CycleError struct {
	IDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("parent references form a cycle involving %d node(s): %s",
		len(e.IDs), strings.Join(e.IDs, ", "))
}

// BuildTree links a flat node list, such as the result of ExportNodes, into
// a forest. Nodes without a parent become roots. Nodes whose parent is not
// in the list become roots as well and are recorded in Forest.Orphans.
// BuildTree fails on duplicate ids and on parent cycles.
func BuildTree(nodes []Node) (*Forest, error) {
	f := &Forest{
		Roots: []*TreeNode{},
		nodes: make([]*TreeNode, len(nodes)),
		index: make(map[string]int, len(nodes)),
	}

	for i := range nodes {
		id := nodes[i].ID
		if _, ok := f.index[id]; ok {
			return nil, &DuplicateNodeError{ID: id}
		}
		f.index[id] = i
		f.nodes[i] = &TreeNode{
			Node:   nodes[i],
			forest: f,
			index:  i,
			parent: -1,
		}
	}

	for _, t := range f.nodes {
		if !t.Node.HasParent() {
			f.Roots = append(f.Roots, t)
			continue
		}

		p, ok := f.index[strings.TrimSpace(t.Node.ParentID)]
		if !ok {
			f.Orphans = append(f.Orphans, t.Node.ID)
			f.Roots = append(f.Roots, t)
			continue
		}

		t.parent = p
		f.nodes[p].Children = append(f.nodes[p].Children, t)
	}

	// Anything not reachable from a root sits on, or under, a cycle.
	reached := make([]bool, len(f.nodes))
	count := 0
	f.Walk(func(t *TreeNode, _ int) bool {
		reached[t.index] = true
		count++
		return true
	})
	if count != len(f.nodes) {
		ids := make([]string, 0, len(f.nodes)-count)
		for i, ok := range reached {
			if !ok {
				ids = append(ids, f.nodes[i].Node.ID)
			}
		}
		sort.Strings(ids)
		return nil, &CycleError{IDs: ids}
	}

	return f, nil
}

// Verify checks the structural invariants of the forest: roots have no
// parent, every node is reachable exactly once and every non-root node is
// listed exactly once among its parent's children.
func (f *Forest) Verify() error {
	var result *multierror.Error

	for _, r := range f.Roots {
		if !r.IsRoot() {
			result = multierror.Append(result,
				fmt.Errorf("root %q has a parent", r.Node.ID))
		}
	}

	seen := make(map[int]int, len(f.nodes))
	f.Walk(func(t *TreeNode, _ int) bool {
		seen[t.index]++
		return seen[t.index] == 1
	})
	total := 0
	for i, n := range seen {
		total += n
		if n > 1 {
			result = multierror.Append(result,
				fmt.Errorf("node %q reached %d times", f.nodes[i].Node.ID, n))
		}
	}
	if total != len(f.nodes) {
		result = multierror.Append(result,
			fmt.Errorf("reached %d nodes, want %d", total, len(f.nodes)))
	}

	for _, t := range f.nodes {
		p := t.Parent()
		if p == nil {
			continue
		}
		n := 0
		for _, c := range p.Children {
			if c == t {
				n++
			}
		}
		if n != 1 {
			result = multierror.Append(result,
				fmt.Errorf("node %q listed %d times under parent %q", t.Node.ID, n, p.Node.ID))
		}
	}

	return result.ErrorOrNil()
}

// MarshalJSON encodes the node in its wire form with an extra "children"
// array.
func (t *TreeNode) MarshalJSON() ([]byte, error) {
	node, err := json.Marshal(t.Node)
	if err != nil {
		return nil, err
	}
	children := t.Children
	if children == nil {
		children = []*TreeNode{}
	}
	kids, err := json.Marshal(children)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(node) + len(kids) + 14)
	buf.Write(bytes.TrimSuffix(bytes.TrimSpace(node), []byte("}")))
	buf.WriteString(`,"children":`)
	buf.Write(kids)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the forest as {"roots": [...], "orphans": [...]}.
func (f *Forest) MarshalJSON() ([]byte, error) {
	orphans := f.Orphans
	if orphans == nil {
		orphans = []string{}
	}
	return json.Marshal(struct {
		Roots   []*TreeNode `json:"roots"`
		Orphans []string    `json:"orphans"`
	}{f.Roots, orphans})
}

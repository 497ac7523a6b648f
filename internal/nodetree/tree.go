// Package nodetree rebuilds node hierarchies from flat, index-addressed node arrays.
//
// Two addressing schemes exist in the dumps: gamez nodes carry a back-pointer
// parent index, mechlib nodes carry forward-pointer children lists. The caller
// picks the scheme; it is never guessed from the data.
package nodetree

import (
	"fmt"

	"mech3-scene/internal/schema"
)

// Entry is an arena slot. Parent and Children are arena indices.
type Entry struct {
	Node     *schema.Node
	Index    int // position in the source array
	Parent   int // -1 for roots
	Children []int
}

// Tree is a forest over an arena of entries; slot i is source node i.
type Tree struct {
	Entries []Entry
	Roots   []int
}

// ParentOptions tune FromParents.
type ParentOptions struct {
	// SkipKinds lists node kinds that are dropped entirely: they are neither
	// roots nor attached to their parent.
	SkipKinds []schema.Kind
}

func (o ParentOptions) skips(k schema.Kind) bool {
	for _, s := range o.SkipKinds {
		if s == k {
			return true
		}
	}
	return false
}

// FromParents builds the forest from parent back-pointers. Nodes without a
// parent are roots; children keep array order.
func FromParents(nodes []schema.Node, opts ParentOptions) (*Tree, error) {
	t := newArena(nodes)

	// Validate every index and every chain before linking anything.
	for i := range nodes {
		p := nodes[i].Parent
		if p == nil {
			continue
		}
		if *p < 0 || *p >= len(nodes) {
			return nil, fmt.Errorf("nodetree: node %d (%q): parent index %d out of range [0,%d): %w",
				i, nodes[i].Name, *p, len(nodes), schema.ErrMalformedInput)
		}
		if *p == i {
			return nil, fmt.Errorf("nodetree: node %d (%q) is its own parent: %w",
				i, nodes[i].Name, schema.ErrMalformedInput)
		}
	}
	if err := checkParentCycles(nodes); err != nil {
		return nil, err
	}

	for i := range nodes {
		if opts.skips(nodes[i].Kind) {
			continue
		}
		p := nodes[i].Parent
		if p == nil {
			t.Roots = append(t.Roots, i)
			continue
		}
		t.Entries[i].Parent = *p
		t.Entries[*p].Children = append(t.Entries[*p].Children, i)
	}
	return t, nil
}

// checkParentCycles follows every parent chain, colouring nodes so each one
// is walked at most once.
func checkParentCycles(nodes []schema.Node) error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make([]int, len(nodes))
	for start := range nodes {
		if state[start] != unvisited {
			continue
		}
		var chain []int
		cur := start
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == inProgress {
				return fmt.Errorf("nodetree: node %d (%q) is its own ancestor: %w",
					cur, nodes[cur].Name, schema.ErrMalformedInput)
			}
			state[cur] = inProgress
			chain = append(chain, cur)
			p := nodes[cur].Parent
			if p == nil {
				break
			}
			cur = *p
		}
		for _, i := range chain {
			state[i] = done
		}
	}
	return nil
}

// FromChildren builds the forest from forward children lists, starting at the
// designated roots. Nodes not reachable from a root are left out.
func FromChildren(nodes []schema.Node, roots ...int) (*Tree, error) {
	t := newArena(nodes)
	seen := make([]bool, len(nodes))
	onPath := make([]bool, len(nodes))

	var visit func(i, parent int) error
	visit = func(i, parent int) error {
		if i < 0 || i >= len(nodes) {
			return fmt.Errorf("nodetree: child index %d of node %d out of range [0,%d): %w",
				i, parent, len(nodes), schema.ErrMalformedInput)
		}
		if onPath[i] {
			return fmt.Errorf("nodetree: node %d (%q) is its own descendant: %w",
				i, nodes[i].Name, schema.ErrMalformedInput)
		}
		if seen[i] {
			return fmt.Errorf("nodetree: node %d (%q) has more than one parent: %w",
				i, nodes[i].Name, schema.ErrMalformedInput)
		}
		seen[i] = true
		onPath[i] = true
		defer func() { onPath[i] = false }()

		t.Entries[i].Parent = parent
		for _, c := range nodes[i].Children {
			if err := visit(c, i); err != nil {
				return err
			}
			t.Entries[i].Children = append(t.Entries[i].Children, c)
		}
		return nil
	}

	for _, r := range roots {
		if err := visit(r, -1); err != nil {
			return nil, err
		}
		t.Roots = append(t.Roots, r)
	}
	return t, nil
}

func newArena(nodes []schema.Node) *Tree {
	t := &Tree{Entries: make([]Entry, len(nodes))}
	for i := range nodes {
		t.Entries[i] = Entry{Node: &nodes[i], Index: i, Parent: -1}
	}
	return t
}

// Node returns the source node in slot i.
func (t *Tree) Node(i int) *schema.Node {
	return t.Entries[i].Node
}

// Children returns the child slots of i in order.
func (t *Tree) Children(i int) []int {
	return t.Entries[i].Children
}

// Walk visits every node reachable from the roots depth-first, parents before
// children. Returning a non-nil error from fn stops the walk.
func (t *Tree) Walk(fn func(i, depth int) error) error {
	var visit func(i, depth int) error
	visit = func(i, depth int) error {
		if err := fn(i, depth); err != nil {
			return err
		}
		for _, c := range t.Entries[i].Children {
			if err := visit(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range t.Roots {
		if err := visit(r, 0); err != nil {
			return err
		}
	}
	return nil
}

// Len counts the nodes reachable from the roots.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(int, int) error {
		n++
		return nil
	})
	return n
}

// Scheme selects how node records address each other.
type Scheme int

const (
	// ByChildren follows forward children lists from node 0 (mechlib).
	ByChildren Scheme = iota
	// ByParents follows parent back-pointers (gamez).
	ByParents
)

func (s Scheme) String() string {
	switch s {
	case ByChildren:
		return "children"
	case ByParents:
		return "parents"
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme maps a config name to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "children":
		return ByChildren, nil
	case "parents":
		return ByParents, nil
	}
	return 0, fmt.Errorf("nodetree: unknown addressing scheme %q", name)
}

// Build reconstructs the forest with the given scheme. ByChildren starts at
// node 0; opts only apply to ByParents.
func Build(nodes []schema.Node, scheme Scheme, opts ParentOptions) (*Tree, error) {
	switch scheme {
	case ByChildren:
		if len(nodes) == 0 {
			return nil, fmt.Errorf("nodetree: no nodes: %w", schema.ErrMalformedInput)
		}
		return FromChildren(nodes, 0)
	case ByParents:
		return FromParents(nodes, opts)
	}
	return nil, fmt.Errorf("nodetree: unknown scheme %v", scheme)
}

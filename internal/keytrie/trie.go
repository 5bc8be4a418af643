// Package keytrie stores key-chord bindings in a trie. The core only
// performs lookups; input dispatch lives with the UI.
package keytrie

// Node is one trie node. Leaves carry a bound command.
type Node struct {
	children map[string]*Node

	// Command is the bound command name; empty on inner nodes.
	Command string
	// Desc is a short human-readable description of the binding.
	Desc string
}

// New creates an empty trie root.
func New() *Node {
	return &Node{children: make(map[string]*Node)}
}

// Insert binds the key sequence keys to command, overwriting an existing
// binding.
func (n *Node) Insert(keys []string, command, desc string) {
	cur := n
	for _, key := range keys {
		child, ok := cur.children[key]
		if !ok {
			child = &Node{children: make(map[string]*Node)}
			cur.children[key] = child
		}
		cur = child
	}
	cur.Command = command
	cur.Desc = desc
}

// Lookup follows keys from n. It returns the reached node (nil if no
// binding starts with the sequence; an unbound prefix yields its inner
// node with an empty Command) and whether more keys could extend it.
func (n *Node) Lookup(keys []string) (node *Node, prefix bool) {
	cur := n
	for _, key := range keys {
		child, ok := cur.children[key]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, len(cur.children) > 0
}

// Remove unbinds the key sequence, pruning empty branches. Reports
// whether a binding was removed.
func (n *Node) Remove(keys []string) bool {
	if len(keys) == 0 {
		if n.Command == "" {
			return false
		}
		n.Command, n.Desc = "", ""
		return true
	}
	child, ok := n.children[keys[0]]
	if !ok {
		return false
	}
	removed := child.Remove(keys[1:])
	if removed && child.Command == "" && len(child.children) == 0 {
		delete(n.children, keys[0])
	}
	return removed
}

// Walk visits every binding as (keys, node), depth-first in no
// particular key order.
func (n *Node) Walk(fn func(keys []string, node *Node)) {
	n.walk(nil, fn)
}

func (n *Node) walk(prefix []string, fn func(keys []string, node *Node)) {
	if n.Command != "" {
		fn(append([]string(nil), prefix...), n)
	}
	for key, child := range n.children {
		child.walk(append(prefix, key), fn)
	}
}

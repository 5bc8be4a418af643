package keytrie

import "testing"

func TestInsertLookup(t *testing.T) {
	root := New()
	root.Insert([]string{"g", "g"}, "top", "go to top")
	root.Insert([]string{"g", "h"}, "home", "go home")
	root.Insert([]string{"j"}, "down", "move down")

	node, prefix := root.Lookup([]string{"g"})
	if node == nil || node.Command != "" || !prefix {
		t.Fatal("g should be an unbound prefix")
	}

	node, _ = root.Lookup([]string{"g", "g"})
	if node == nil || node.Command != "top" {
		t.Fatal("gg not bound")
	}

	if node, _ := root.Lookup([]string{"x"}); node != nil {
		t.Fatal("unbound key resolved")
	}
}

func TestRemovePrunes(t *testing.T) {
	root := New()
	root.Insert([]string{"g", "g"}, "top", "")

	if !root.Remove([]string{"g", "g"}) {
		t.Fatal("remove failed")
	}
	if root.Remove([]string{"g", "g"}) {
		t.Fatal("second remove should fail")
	}
	if node, _ := root.Lookup([]string{"g"}); node != nil {
		t.Fatal("empty branch not pruned")
	}
}

func TestWalk(t *testing.T) {
	root := New()
	root.Insert([]string{"g", "g"}, "top", "")
	root.Insert([]string{"j"}, "down", "")

	seen := map[string]bool{}
	root.Walk(func(keys []string, node *Node) {
		seen[node.Command] = true
	})
	if !seen["top"] || !seen["down"] {
		t.Fatalf("walk missed bindings: %v", seen)
	}
}

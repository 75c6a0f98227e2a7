package rig

import (
	"fmt"
	"strings"
	"unicode"
)

// NotFoundError is returned when a BVH joint name has no matching rig
// node. Decoding treats this as a hard failure: a missing joint would
// corrupt the mapping of the remaining hierarchy.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("rig: bone not found: %s", e.Name)
}

// Resolver maps BVH joint names to rig nodes, optionally through a
// rename table and a loose (case/space/underscore-insensitive) match.
type Resolver struct {
	Renames map[string]string
	Loose   bool
}

// fold normalizes a name for loose comparison. Pure function, no
// shared lookup state.
func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Resolve finds the rig node for a BVH joint name under root.
func (r *Resolver) Resolve(root *Node, name string) (*Node, error) {
	target := name
	if r != nil && r.Renames != nil {
		if t, ok := r.Renames[name]; ok {
			target = t
		}
	}

	var found *Node
	root.Walk(func(n *Node) {
		if found == nil && n.Name == target {
			found = n
		}
	})
	if found == nil && r != nil && r.Loose {
		folded := fold(target)
		root.Walk(func(n *Node) {
			if found == nil && fold(n.Name) == folded {
				found = n
			}
		})
	}
	if found == nil {
		return nil, &NotFoundError{Name: name}
	}
	return found, nil
}

// Package rig holds engine-side joint stand-ins: a minimal tree of
// named nodes with rest offsets and live local transforms. Parsing and
// decoding never touch engine objects directly; they go through these
// stand-ins so the engine-bound work can happen on another thread.
package rig

import (
	"fmt"

	"github.com/emilianavt/BVHTools/geom"
)

// Node is a stand-in for one engine transform.
type Node struct {
	Name     string
	Parent   *Node
	Children []*Node

	// RestOffset is the parent-relative translation at the rest pose,
	// recorded when the skeleton is built. Correct capture requires all
	// local rotations to be identity at that point.
	RestOffset geom.Vector3

	// Scale is the node's local scale. Offsets authored in the node's
	// scaled space are divided by it before coordinate remapping.
	Scale geom.Vector3

	// Live local transform, written by the engine between captures.
	// Position is only meaningful on the root.
	Rotation geom.Quaternion
	Position geom.Vector3
}

func NewNode(name string, offset geom.Vector3) *Node {
	return &Node{
		Name:       name,
		RestOffset: offset,
		Scale:      geom.Vector3{X: 1, Y: 1, Z: 1},
		Rotation:   geom.Quaternion{W: 1},
	}
}

// AddChild links c under n and returns c.
func (n *Node) AddChild(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// ApplyScale resizes the subtree by a uniform factor: rest offsets grow
// with it and every node's Scale records it, so recorded offsets and
// decoded root positions stay consistent with the resized rig.
func (n *Node) ApplyScale(s float32) {
	n.Walk(func(c *Node) {
		c.Scale = *c.Scale.Scale(s)
		c.RestOffset = *c.RestOffset.Scale(s)
	})
}

// BuildSkeleton returns the minimal tree spanning nodes. The root is
// the node named rootName, or, if rootName is empty, the unique node
// without an ancestor in the set. Parent/Children links are rebuilt so
// each node hangs off its nearest ancestor within the set; offsets of
// skipped intermediate nodes fold into RestOffset (valid because rest
// rotations are identity).
func BuildSkeleton(nodes []*Node, rootName string) (*Node, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("rig: no nodes")
	}
	set := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}

	var root *Node
	for _, n := range nodes {
		if rootName != "" {
			if n.Name == rootName {
				root = n
			}
			continue
		}
		inSet := false
		for p := n.Parent; p != nil; p = p.Parent {
			if set[p] {
				inSet = true
				break
			}
		}
		if !inSet {
			if root != nil {
				return nil, fmt.Errorf("rig: multiple root candidates: %s and %s", root.Name, n.Name)
			}
			root = n
		}
	}
	if root == nil {
		return nil, fmt.Errorf("rig: root %q not found", rootName)
	}

	for _, n := range nodes {
		n.Children = nil
	}
	for _, n := range nodes {
		if n == root {
			continue
		}
		offset := n.RestOffset
		p := n.Parent
		for p != nil && p != root && !set[p] {
			offset = *offset.Add(&p.RestOffset)
			p = p.Parent
		}
		if p == nil {
			return nil, fmt.Errorf("rig: node %s is not attached to root %s", n.Name, root.Name)
		}
		n.Parent = p
		n.RestOffset = offset
		p.Children = append(p.Children, n)
	}
	root.Parent = nil
	return root, nil
}

package scene

import (
	"iter"

	"github.com/Faultbox/wowscene/pkg/math"
)

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn stops the walk.
func Walk(n *Node, fn func(*Node) bool) {
	walk(n, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// All returns the subtree rooted at n in Walk order. Each range over the
// result walks the tree again.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		walk(n, yield)
	}
}

// Find returns the first node in Walk order that satisfies match, or nil.
func (n *Node) Find(match func(*Node) bool) *Node {
	for c := range n.All() {
		if match(c) {
			return c
		}
	}
	return nil
}

// FindByName returns the first node named name.
func (n *Node) FindByName(name string) *Node {
	return n.Find(func(c *Node) bool { return c.Name == name })
}

// Count returns the number of nodes in the subtree that satisfy match. A nil
// match counts every node.
func (n *Node) Count(match func(*Node) bool) int {
	count := 0
	for c := range n.All() {
		if match == nil || match(c) {
			count++
		}
	}
	return count
}

// OfKind returns a Count/Find predicate selecting one kind.
func OfKind(k Kind) func(*Node) bool {
	return func(n *Node) bool { return n.Kind == k }
}

// Models returns the distinct models in the subtree, in first-seen order.
func (n *Node) Models() []*Model {
	seen := make(map[*Model]struct{})
	var models []*Model
	for c := range n.All() {
		if c.Model == nil {
			continue
		}
		if _, ok := seen[c.Model]; ok {
			continue
		}
		seen[c.Model] = struct{}{}
		models = append(models, c.Model)
	}
	return models
}

// Bounds returns the axis-aligned box, in scene space, around every mesh
// vertex in the subtree. ok is false when the subtree has no vertices.
func (n *Node) Bounds() (lo, hi math.Vec3, ok bool) {
	for c := range n.All() {
		if c.Model == nil || c.Model.Mesh == nil {
			continue
		}
		world := c.World()
		for _, v := range c.Model.Mesh.Vertices {
			p := world.TransformPoint(math.Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
			if !ok {
				lo, hi, ok = p, p, true
				continue
			}
			lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
			hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
		}
	}
	return lo, hi, ok
}

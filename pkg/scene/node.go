// Package scene holds the node tree produced by an import. It is plain data:
// the host that renders or exports the scene walks it and builds its own
// objects from the shared models and local transforms.
package scene

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Faultbox/wowscene/pkg/math"
	"github.com/Faultbox/wowscene/pkg/placement"
)

// Kind is the role of a node in the tree.
type Kind int

const (
	// KindRoot is the node of a top-level import. It owns its model.
	KindRoot Kind = iota
	// KindWMOGroup collects the world model anchors of a terrain tile.
	KindWMOGroup
	// KindDoodadGroup collects doodads, from a terrain tile or a WMO.
	KindDoodadGroup
	// KindGameObjectGroup collects game objects of a terrain tile.
	KindGameObjectGroup
	// KindInstance is a placed model, either freshly parsed or sharing the
	// model of an earlier node.
	KindInstance
	// KindAnchor carries the placement of a world model. The model node
	// and the model's own doodads hang under it.
	KindAnchor
)

var kindNames = [...]string{
	KindRoot:            "root",
	KindWMOGroup:        "wmo-group",
	KindDoodadGroup:     "doodad-group",
	KindGameObjectGroup: "gameobject-group",
	KindInstance:        "instance",
	KindAnchor:          "anchor",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// Group reports whether the kind is one of the synthetic group nodes.
func (k Kind) Group() bool {
	return k == KindWMOGroup || k == KindDoodadGroup || k == KindGameObjectGroup
}

// Node is one element of the scene tree.
type Node struct {
	ID    uuid.UUID
	Name  string
	Kind  Kind
	Model *Model // nil for groups, anchors and error leaves
	Local placement.Transform

	Children []*Node
	Parent   *Node

	// InstanceOf is the node that first loaded Model when this node shares
	// it; nil when the node parsed its own file.
	InstanceOf *Node

	SourcePath string // resolved file the node was built from
	ModelID    string // placement table ModelId, if any
	Err        error  // set on error leaves: the referenced file failed to load
}

// NewNode creates a detached node with an identity transform.
func NewNode(name string, kind Kind) *Node {
	return &Node{
		ID:    uuid.New(),
		Name:  name,
		Kind:  kind,
		Local: placement.Identity(),
	}
}

// AddChild appends child and sets its parent.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Shared reports whether the node reuses the model of another node.
func (n *Node) Shared() bool {
	return n.InstanceOf != nil
}

// World returns the node's transform in root space.
func (n *Node) World() math.Mat4 {
	m := n.Local.Matrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Local.Matrix().Mul(m)
	}
	return m
}

// WorldPosition returns the node's origin in root space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.World().Translation()
}

// Path returns the slash-separated names from the root down to n.
func (n *Node) Path() string {
	var names []string
	for p := n; p != nil; p = p.Parent {
		names = append(names, p.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.Kind)
}

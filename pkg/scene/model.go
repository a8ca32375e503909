package scene

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/Faultbox/wowscene/pkg/formats"
)

// MaxNameLength is the longest material or image name hosts accept.
const MaxNameLength = 63

// ShortName returns name unchanged when it fits MaxNameLength, otherwise the
// first seven hex digits of its MD5. Distinct long names stay distinct.
func ShortName(name string) string {
	if len(name) <= MaxNameLength {
		return name
	}
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])[:7]
}

// MaterialBinding ties a material name to the texture the host should use.
type MaterialBinding struct {
	Name           string // as declared in the material library
	HostName       string // Name shortened for the host
	Texture        string // absolute or library-relative texture path
	TextureMissing bool
	Layers         []formats.TerrainLayer // terrain blend layers, if any
	UseAlpha       bool
}

// VertexGroup is a named selection of vertices with one weight.
type VertexGroup struct {
	Name     string
	Vertices []uint32 // 0-based
	Weight   float32
}

// Model is the loaded content of one file. Instances share a *Model.
type Model struct {
	Path         string
	Mesh         *formats.MeshDocument
	Materials    []MaterialBinding
	VertexGroups []VertexGroup

	// HasPlacements is set when the file ships its own placement table.
	// Such models are parsed again rather than shared.
	HasPlacements bool
}

// Material returns the binding for a material name.
func (m *Model) Material(name string) (*MaterialBinding, bool) {
	for i := range m.Materials {
		if m.Materials[i].Name == name {
			return &m.Materials[i], true
		}
	}
	return nil, false
}

// BuildVertexGroups returns one group per face group, ordered by name
// without regard to case.
func BuildVertexGroups(doc *formats.MeshDocument) []VertexGroup {
	groups := make([]VertexGroup, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		groups = append(groups, VertexGroup{Name: g.Name, Vertices: g.Vertices, Weight: 1})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
	return groups
}

package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/wowscene/pkg/encoding"
)

// OBJ format errors.
var (
	ErrMalformedMesh     = errors.New("malformed mesh")
	ErrDanglingReference = errors.New("dangling vertex reference")
)

// DefaultGroupName names the group opened implicitly when faces or a
// material appear before the first "g" line.
const DefaultGroupName = "default"

// maxLineSize bounds a single text line.
const maxLineSize = 1 << 20

// maxUVChannels is the highest vtN suffix read. Higher markers are skipped
// with a warning.
const maxUVChannels = 64

// UVChannel is one texture coordinate layer. It may hold fewer entries than
// the document has vertices.
type UVChannel [][2]float32

// FaceGroup is a named set of triangles sharing one material.
type FaceGroup struct {
	Name     string
	Material string      // empty when the group never called usemtl
	Faces    [][3]uint32 // 1-based indices into MeshDocument.Vertices
	Vertices []uint32    // distinct 0-based vertex indices, ascending

	seen map[uint32]struct{}
}

// MeshDocument is a parsed OBJ export.
type MeshDocument struct {
	Vertices    [][3]float32
	Normals     [][3]float32 // parallel to Vertices
	UVs         []UVChannel  // channel 0 is the default layer
	Groups      []*FaceGroup
	MaterialLib string   // raw mtllib argument, empty if none
	Warnings    []string // non-fatal oddities found while parsing
}

// UV returns the coordinate of vertex (0-based) in channel. ok is false when
// the channel does not exist or is too short.
func (d *MeshDocument) UV(channel, vertex int) (uv [2]float32, ok bool) {
	if channel < 0 || channel >= len(d.UVs) {
		return uv, false
	}
	ch := d.UVs[channel]
	if vertex < 0 || vertex >= len(ch) {
		return uv, false
	}
	return ch[vertex], true
}

// FaceCount returns the number of triangles over all groups.
func (d *MeshDocument) FaceCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Faces)
	}
	return n
}

// Group returns the group with the given name, or nil.
func (d *MeshDocument) Group(name string) *FaceGroup {
	for _, g := range d.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

type objParser struct {
	doc  *MeshDocument
	cur  *FaceGroup
	line int
}

// ParseOBJ parses an OBJ export in a single streaming pass.
func ParseOBJ(r io.Reader) (*MeshDocument, error) {
	p := &objParser{doc: &MeshDocument{}}

	scanner := bufio.NewScanner(encoding.NewReader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*MeshDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	doc, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	token, args := fields[0], fields[1:]
	switch {
	case token == "mtllib":
		if len(args) < 1 {
			return p.malformed("mtllib without file name")
		}
		p.doc.MaterialLib = strings.Join(args, " ")

	case token == "v":
		v, err := p.parseVec3(args)
		if err != nil {
			return err
		}
		p.doc.Vertices = append(p.doc.Vertices, v)

	case token == "vn":
		n, err := p.parseVec3(args)
		if err != nil {
			return err
		}
		p.doc.Normals = append(p.doc.Normals, n)

	case strings.HasPrefix(token, "vt"):
		return p.parseUV(token, args)

	case token == "f":
		return p.parseFace(args)

	case token == "g":
		if len(args) < 1 {
			return p.malformed("group without name")
		}
		p.openGroup(args[0])

	case token == "usemtl":
		// Names may contain spaces; they are read like newmtl names.
		_, name := splitToken(line)
		if name == "" {
			return p.malformed("usemtl without material name")
		}
		p.group().Material = name
	}

	// Anything else (comments, o, s, ...) is ignored.
	return nil
}

func (p *objParser) parseVec3(args []string) ([3]float32, error) {
	var v [3]float32
	if len(args) < 3 {
		return v, p.malformed(fmt.Sprintf("expected 3 components, got %d", len(args)))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return v, p.malformed(fmt.Sprintf("bad number %q", args[i]))
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseUV handles "vt" and the numbered "vt2", "vt3", ... channel markers.
func (p *objParser) parseUV(token string, args []string) error {
	channel := 0
	if suffix := token[2:]; suffix != "" {
		n, err := strconv.Atoi(suffix)
		if err != nil {
			return nil // not a UV line
		}
		if n < 1 || n > maxUVChannels {
			p.warn(fmt.Sprintf("UV channel marker %q out of range 1-%d, line skipped", token, maxUVChannels))
			return nil
		}
		channel = n - 1
	}

	if len(args) < 2 {
		return p.malformed(fmt.Sprintf("expected 2 UV components, got %d", len(args)))
	}
	var uv [2]float32
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return p.malformed(fmt.Sprintf("bad number %q", args[i]))
		}
		uv[i] = float32(f)
	}

	for len(p.doc.UVs) <= channel {
		p.doc.UVs = append(p.doc.UVs, nil)
	}
	p.doc.UVs[channel] = append(p.doc.UVs[channel], uv)
	return nil
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return p.malformed(fmt.Sprintf("face needs 3 vertices, got %d", len(args)))
	}

	idx := make([]uint32, len(args))
	for i, arg := range args {
		// v, v/vt, v//vn, v/vt/vn: every attribute shares the vertex index.
		head, _, _ := strings.Cut(arg, "/")
		n, err := strconv.ParseInt(head, 10, 64)
		if err != nil {
			return p.malformed(fmt.Sprintf("bad face index %q", arg))
		}
		if n < 1 || n > int64(^uint32(0)) {
			return fmt.Errorf("%w: line %d: index %d", ErrDanglingReference, p.line, n)
		}
		idx[i] = uint32(n)
	}

	g := p.group()
	if len(idx) > 3 {
		p.warn(fmt.Sprintf("%d-vertex face in group %q triangulated as a fan", len(idx), g.Name))
	}
	for i := 1; i+1 < len(idx); i++ {
		g.Faces = append(g.Faces, [3]uint32{idx[0], idx[i], idx[i+1]})
	}
	for _, v := range idx {
		g.seen[v-1] = struct{}{}
	}
	return nil
}

func (p *objParser) openGroup(name string) {
	p.cur = &FaceGroup{Name: name, seen: make(map[uint32]struct{})}
	p.doc.Groups = append(p.doc.Groups, p.cur)
}

// group returns the active group, opening the implicit default group when
// the file uses faces or materials before any "g" line.
func (p *objParser) group() *FaceGroup {
	if p.cur == nil {
		p.warn(fmt.Sprintf("geometry before first group, using %q", DefaultGroupName))
		p.openGroup(DefaultGroupName)
	}
	return p.cur
}

// finish validates cross-line invariants once every vertex is known.
func (p *objParser) finish() error {
	doc := p.doc

	if len(doc.Normals) != len(doc.Vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrMalformedMesh, len(doc.Normals), len(doc.Vertices))
	}

	n := uint32(len(doc.Vertices))
	for _, g := range doc.Groups {
		for fi, face := range g.Faces {
			for _, v := range face {
				if v > n {
					return fmt.Errorf("%w: group %q face %d references vertex %d of %d",
						ErrDanglingReference, g.Name, fi, v, n)
				}
			}
		}

		g.Vertices = make([]uint32, 0, len(g.seen))
		for v := range g.seen {
			g.Vertices = append(g.Vertices, v)
		}
		sort.Slice(g.Vertices, func(i, j int) bool { return g.Vertices[i] < g.Vertices[j] })
		g.seen = nil
	}

	return nil
}

func (p *objParser) malformed(reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedMesh, p.line, reason)
}

func (p *objParser) warn(msg string) {
	p.doc.Warnings = append(p.doc.Warnings, fmt.Sprintf("line %d: %s", p.line, msg))
}

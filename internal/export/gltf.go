// Package export writes assembled scenes as glTF 2.0.
//
// Each distinct model becomes one glTF mesh with a primitive per face group,
// so instances in the scene tree become nodes that reference the same mesh.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/wowscene/internal/logger"
	"github.com/Faultbox/wowscene/pkg/encoding"
	"github.com/Faultbox/wowscene/pkg/math"
	"github.com/Faultbox/wowscene/pkg/scene"
)

// ErrEmptyScene is returned when there is no root node to export.
var ErrEmptyScene = errors.New("nothing to export")

// Generator is written to the asset block of every document.
const Generator = "wowscene"

// Options controls the written document.
type Options struct {
	// Binary writes a single .glb file. Write also switches it on for a
	// ".glb" extension.
	Binary bool `yaml:"binary"`
	// YUp wraps the scene in a node that turns the Z-up scene into the
	// Y-up space glTF viewers expect.
	YUp bool `yaml:"y_up"`
	// EmbedTextures copies texture images into the document instead of
	// referencing them by relative URI. Binary output always embeds, and
	// BMP and TGA textures are always embedded as PNG.
	EmbedTextures bool `yaml:"embed_textures"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{YUp: true}
}

type builder struct {
	doc     *gltf.Document
	opts    Options
	baseDir string // directory relative image URIs are computed against

	meshes    map[*scene.Model]*uint32 // nil entry: model has no faces
	materials map[string]uint32
	images    map[string]uint32
	sampler   *uint32
}

// Build converts the tree under root into a glTF document. baseDir is the
// directory the document will be written to; it is only used for relative
// texture URIs.
func Build(root *scene.Node, baseDir string, opts Options) (*gltf.Document, error) {
	if root == nil {
		return nil, ErrEmptyScene
	}

	b := &builder{
		doc:       gltf.NewDocument(),
		opts:      opts,
		baseDir:   baseDir,
		meshes:    make(map[*scene.Model]*uint32),
		materials: make(map[string]uint32),
		images:    make(map[string]uint32),
	}
	b.doc.Asset.Generator = Generator

	top := b.node(root)

	if opts.YUp {
		up := &gltf.Node{
			Name:     "Z-up",
			Rotation: math.QuatFromAxisAngle(math.Vec3{X: 1}, math.Radians(-90)).Float32(),
			Children: []uint32{top},
		}
		top = uint32(len(b.doc.Nodes))
		b.doc.Nodes = append(b.doc.Nodes, up)
	}
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, top)

	logger.Debug("glTF document built",
		zap.Int("nodes", len(b.doc.Nodes)),
		zap.Int("meshes", len(b.doc.Meshes)),
		zap.Int("materials", len(b.doc.Materials)),
		zap.Int("images", len(b.doc.Images)))

	return b.doc, nil
}

// Write builds the document and saves it to path. A ".glb" extension or
// opts.Binary selects the binary container.
func Write(root *scene.Node, path string, opts Options) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		opts.Binary = true
	}

	doc, err := Build(root, filepath.Dir(path), opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if opts.Binary {
		err = gltf.SaveBinary(doc, path)
	} else {
		if len(doc.Buffers) > 0 {
			doc.Buffers[0].URI = filepath.Base(encoding.TrimExt(path)) + ".bin"
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Info("scene exported", zap.String("file", path), zap.Bool("binary", opts.Binary))
	return nil
}

// node appends n and its subtree and returns n's index.
func (b *builder) node(n *scene.Node) uint32 {
	gn := &gltf.Node{
		Name:        n.Name,
		Translation: n.Local.Translation.Float32(),
		Rotation:    n.Local.Quat().Float32(),
		Scale:       n.Local.Scale.Float32(),
		Extras:      extras(n),
	}
	if n.Model != nil {
		gn.Mesh = b.mesh(n.Model)
	}

	index := uint32(len(b.doc.Nodes))
	b.doc.Nodes = append(b.doc.Nodes, gn)

	for _, c := range n.Children {
		gn.Children = append(gn.Children, b.node(c))
	}
	return index
}

func extras(n *scene.Node) map[string]any {
	e := map[string]any{
		"id":   n.ID.String(),
		"kind": n.Kind.String(),
	}
	if n.SourcePath != "" {
		e["source"] = n.SourcePath
	}
	if n.ModelID != "" {
		e["modelId"] = n.ModelID
	}
	if n.InstanceOf != nil {
		e["instanceOf"] = n.InstanceOf.ID.String()
	}
	if n.Err != nil {
		e["error"] = n.Err.Error()
	}
	return e
}

// mesh returns the mesh index of a model, writing it on first use. Models
// without faces get no mesh.
func (b *builder) mesh(m *scene.Model) *uint32 {
	if idx, ok := b.meshes[m]; ok {
		return idx
	}

	doc := m.Mesh
	if doc.FaceCount() == 0 {
		b.meshes[m] = nil
		return nil
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(b.doc, doc.Vertices),
		"NORMAL":   modeler.WriteNormal(b.doc, doc.Normals),
	}
	for ch := range doc.UVs {
		attributes[fmt.Sprintf("TEXCOORD_%d", ch)] = modeler.WriteTextureCoord(b.doc, padUVs(doc.UVs[ch], len(doc.Vertices)))
	}

	mesh := &gltf.Mesh{Name: filepath.Base(m.Path)}
	for _, g := range doc.Groups {
		if len(g.Faces) == 0 {
			continue
		}

		indices := make([]uint32, 0, len(g.Faces)*3)
		for _, f := range g.Faces {
			indices = append(indices, f[0]-1, f[1]-1, f[2]-1)
		}

		prim := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(b.doc, indices)),
			Attributes: attributes,
			Extras:     map[string]any{"group": g.Name},
		}
		if binding, ok := m.Material(g.Material); ok {
			prim.Material = gltf.Index(b.material(binding))
		}
		mesh.Primitives = append(mesh.Primitives, prim)
	}

	idx := gltf.Index(uint32(len(b.doc.Meshes)))
	b.doc.Meshes = append(b.doc.Meshes, mesh)
	b.meshes[m] = idx
	return idx
}

// padUVs returns a channel with one entry per vertex. Sparse channels are
// filled with zeros.
func padUVs(ch [][2]float32, vertices int) [][2]float32 {
	if len(ch) >= vertices {
		return ch[:vertices]
	}
	out := make([][2]float32, vertices)
	copy(out, ch)
	return out
}

// material returns the index of a material binding, writing it and its
// texture on first use. Bindings are keyed by host name and texture, so
// models sharing a material share the glTF material.
func (b *builder) material(mb *scene.MaterialBinding) uint32 {
	key := mb.HostName + "\x00" + mb.Texture
	if idx, ok := b.materials[key]; ok {
		return idx
	}

	mat := &gltf.Material{
		Name:        mb.HostName,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor: gltf.Float(0),
		},
	}
	if mb.UseAlpha {
		mat.AlphaMode = gltf.AlphaMask
	}

	if mb.Texture != "" && !mb.TextureMissing {
		tex, err := b.texture(mb.Texture)
		if err != nil {
			// Same outcome as a missing texture: an untextured material.
			logger.Warn("texture skipped",
				zap.String("material", mb.HostName),
				zap.String("file", mb.Texture),
				zap.Error(err))
		} else {
			mat.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
		}
	}

	if len(mb.Layers) > 0 {
		layers := make([]map[string]any, len(mb.Layers))
		for i, l := range mb.Layers {
			layers[i] = map[string]any{
				"index":        l.Index,
				"file":         b.uri(l.File),
				"scale":        l.Scale,
				"heightScale":  l.HeightScale,
				"heightOffset": l.HeightOffset,
			}
		}
		mat.Extras = map[string]any{"terrainLayers": layers}
	}

	idx := uint32(len(b.doc.Materials))
	b.doc.Materials = append(b.doc.Materials, mat)
	b.materials[key] = idx
	return idx
}

// texture returns the texture index for an image file.
func (b *builder) texture(path string) (uint32, error) {
	if idx, ok := b.images[path]; ok {
		return idx, nil
	}

	name := scene.ShortName(filepath.Base(encoding.TrimExt(path)))

	var image uint32
	if b.opts.Binary || b.opts.EmbedTextures || !nativeImage(path) {
		data, mime, err := readImage(path)
		if err != nil {
			return 0, fmt.Errorf("embedding texture: %w", err)
		}

		image, err = modeler.WriteImage(b.doc, name, mime, data)
		if err != nil {
			return 0, fmt.Errorf("embedding texture %s: %w", path, err)
		}
	} else {
		image = uint32(len(b.doc.Images))
		b.doc.Images = append(b.doc.Images, &gltf.Image{Name: name, URI: b.uri(path)})
	}

	if b.sampler == nil {
		b.sampler = gltf.Index(uint32(len(b.doc.Samplers)))
		b.doc.Samplers = append(b.doc.Samplers, &gltf.Sampler{
			MagFilter: gltf.MagLinear,
			MinFilter: gltf.MinLinearMipMapLinear,
			WrapS:     gltf.WrapRepeat,
			WrapT:     gltf.WrapRepeat,
		})
	}

	idx := uint32(len(b.doc.Textures))
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{
		Name:    name,
		Sampler: b.sampler,
		Source:  gltf.Index(image),
	})
	b.images[path] = idx
	return idx, nil
}

// uri returns path relative to the output directory when possible.
func (b *builder) uri(path string) string {
	if b.baseDir != "" {
		if rel, err := filepath.Rel(b.baseDir, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

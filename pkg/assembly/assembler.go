// Package assembly builds a scene tree from an exported model and the
// placement tables that reference other exports.
//
// An import starts at one OBJ file. If a "<name>_ModelPlacementInformation.csv"
// table sits next to it, every enabled row is resolved relative to the table,
// loaded (or shared with an earlier load of the same file) and attached under
// the group node of its category. Placed files may carry tables of their own,
// so the tree can be arbitrarily deep.
package assembly

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/wowscene/pkg/encoding"
	"github.com/Faultbox/wowscene/pkg/formats"
	"github.com/Faultbox/wowscene/pkg/placement"
	"github.com/Faultbox/wowscene/pkg/scene"
)

// Group node names.
const (
	WMOGroupName        = "WMOs"
	DoodadGroupName     = "Doodads"
	GameObjectGroupName = "GameObjects"
)

// anchorSuffix is appended to a world model's file name to name its anchor.
const anchorSuffix = " parent"

// Assembler imports scenes. The zero value uses zero Settings (no placements,
// no textures) and discards logs; use New for the defaults.
//
// An Assembler holds no per-import state, so concurrent Assemble calls are
// safe.
type Assembler struct {
	Settings Settings
	Log      *zap.Logger
}

// New returns an Assembler with the given settings. A nil log discards output.
func New(settings Settings, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{Settings: settings, Log: log}
}

// Result is the outcome of one Assemble call.
type Result struct {
	Root *scene.Node

	// Issues lists the problems that were skipped over, in the order they
	// were met.
	Issues []Issue

	// ImportedModelIDs lists the terrain table ModelIds that were imported,
	// in import order.
	ImportedModelIDs []string
}

// Err combines all issues into one error, or returns nil.
func (r *Result) Err() error {
	var err error
	for _, issue := range r.Issues {
		err = multierr.Append(err, issue)
	}
	return err
}

// Assemble imports the file at rootPath and everything its placement tables
// reference. It fails when the root file cannot be loaded or a placement
// chain leads back to a file that is still being loaded. Every other problem
// becomes an Issue in the result.
func (a *Assembler) Assemble(rootPath string) (*Result, error) {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}

	path, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rootPath, err)
	}

	r := &run{
		settings:  a.Settings,
		log:       log,
		registry:  NewRegistry(),
		resolving: make(map[string]bool),
	}

	root, err := r.load(path, scene.KindRoot, nil, nil, baseTransform())
	if err != nil {
		return nil, err
	}

	log.Info("scene assembled",
		zap.String("file", path),
		zap.Int("nodes", root.Count(nil)),
		zap.Int("files", r.registry.Len()),
		zap.Int("issues", len(r.issues)))

	return &Result{
		Root:             root,
		Issues:           r.issues,
		ImportedModelIDs: r.registry.ModelIDs(),
	}, nil
}

// run is the state of one Assemble call.
type run struct {
	settings  Settings
	log       *zap.Logger
	registry  *Registry
	resolving map[string]bool // files whose load is in progress
	issues    []Issue
}

// table is the state of one placement table being walked.
type table struct {
	path   string
	dir    string
	style  formats.TableStyle
	owner  *scene.Node // node of the file the table belongs to
	given  *scene.Node // parent for doodad set rows, if the caller chose one
	groups map[scene.Kind]*scene.Node
}

// group returns the group node of a kind, creating it under the owner on
// first use.
func (t *table) group(kind scene.Kind) *scene.Node {
	if g, ok := t.groups[kind]; ok {
		return g
	}

	var name string
	switch kind {
	case scene.KindWMOGroup:
		name = WMOGroupName
	case scene.KindGameObjectGroup:
		name = GameObjectGroupName
	default:
		name = DoodadGroupName
	}

	g := scene.NewNode(name, kind)
	g.Local.Rotation = placement.GroupOrientation()
	t.owner.AddChild(g)
	t.groups[kind] = g
	return g
}

func baseTransform() placement.Transform {
	t := placement.Identity()
	t.Rotation = placement.BaseOrientation()
	return t
}

// load parses the file at path into a new node attached to attach (if any)
// and then walks its placement table. given is the parent for the table's
// doodad set rows.
func (r *run) load(path string, kind scene.Kind, attach, given *scene.Node, local placement.Transform) (*scene.Node, error) {
	if r.resolving[path] {
		return nil, fmt.Errorf("%w: %s", ErrCyclicReference, path)
	}
	r.resolving[path] = true
	defer delete(r.resolving, path)

	model, err := r.loadModel(path)
	if err != nil {
		return nil, err
	}

	node := scene.NewNode(filepath.Base(path), kind)
	node.Model = model
	node.SourcePath = path
	node.Local = local
	if attach != nil {
		attach.AddChild(node)
	}
	r.registry.Register(path, node)

	r.log.Debug("model loaded",
		zap.String("file", path),
		zap.Int("vertices", len(model.Mesh.Vertices)),
		zap.Int("groups", len(model.Mesh.Groups)),
		zap.Bool("placements", model.HasPlacements))

	if model.HasPlacements && r.settings.Placements() {
		if err := r.placeAll(node, given, formats.PlacementTablePath(path)); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (r *run) loadModel(path string) (*scene.Model, error) {
	doc, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		r.log.Warn("mesh warning", zap.String("file", path), zap.String("warning", w))
	}

	model := &scene.Model{Path: path, Mesh: doc}
	if r.settings.ImportTextures && doc.MaterialLib != "" {
		model.Materials = r.bindMaterials(path, doc.MaterialLib)
	}
	if r.settings.CreateVertexGroups {
		model.VertexGroups = scene.BuildVertexGroups(doc)
	}
	if _, err := os.Stat(formats.PlacementTablePath(path)); err == nil {
		model.HasPlacements = true
	}
	return model, nil
}

// placeAll walks the placement table of owner. Only a cyclic reference
// aborts it.
func (r *run) placeAll(owner, given *scene.Node, path string) error {
	pr, err := formats.OpenPlacementTable(path)
	if err != nil {
		r.report(Issue{File: path, Err: err})
		return nil
	}
	defer pr.Close()

	t := &table{
		path:   path,
		dir:    filepath.Dir(path),
		style:  pr.Style(),
		owner:  owner,
		given:  given,
		groups: make(map[scene.Kind]*scene.Node),
	}
	r.log.Debug("reading placement table", zap.String("file", path), zap.Stringer("style", t.style))

	for rec, err := range pr.All() {
		if err != nil {
			issue := Issue{File: path, Err: err}
			var re *formats.RecordError
			if errors.As(err, &re) {
				issue.Row, issue.Field = re.Row, re.Field
			}
			r.report(issue)
			continue
		}
		if err := r.place(t, rec); err != nil {
			return err
		}
	}
	return nil
}

// place imports one placement row.
func (r *run) place(t *table, rec formats.PlacementRecord) error {
	if t.style == formats.TableADT && !rec.Type.Terrain() {
		r.report(Issue{
			File:  t.path,
			Row:   rec.Row,
			Field: "Type",
			Err:   fmt.Errorf("%w: %q (row %d)", placement.ErrUnknownType, rec.Type, rec.Row),
		})
		return nil
	}

	tr, err := placement.ForRecord(rec)
	if err != nil {
		r.report(Issue{File: t.path, Row: rec.Row, Field: "Type", Err: err})
		return nil
	}
	if !r.settings.Enabled(rec.Type) {
		return nil
	}

	if t.style == formats.TableADT {
		if r.registry.HasModelID(rec.ModelID) && !r.settings.AllowDuplicates {
			r.log.Info("skipping already imported model",
				zap.String("modelID", rec.ModelID),
				zap.String("file", rec.ModelFile))
			return nil
		}
		r.registry.AddModelID(rec.ModelID)
	}

	path := filepath.Clean(encoding.ResolvePath(t.dir, rec.ModelFile))
	if _, err := os.Stat(path); err != nil {
		r.report(Issue{
			File:  t.path,
			Row:   rec.Row,
			Field: "ModelFile",
			Err:   fmt.Errorf("%w: %s", ErrUnresolvedFile, rec.ModelFile),
		})
		return nil
	}

	var parent, given *scene.Node
	local := tr
	switch rec.Type {
	case formats.PlacementWMO:
		anchor := scene.NewNode(filepath.Base(path)+anchorSuffix, scene.KindAnchor)
		anchor.Local = tr
		anchor.ModelID = rec.ModelID
		t.group(scene.KindWMOGroup).AddChild(anchor)
		parent, given = anchor, anchor
		local = baseTransform()
	case formats.PlacementM2:
		parent = t.group(scene.KindDoodadGroup)
	case formats.PlacementGameObject:
		parent = t.group(scene.KindGameObjectGroup)
	case formats.PlacementDoodadSet:
		parent = t.given
		if parent == nil {
			parent = t.group(scene.KindDoodadGroup)
		}
	}

	node, err := r.resolve(path, parent, given, local)
	if err != nil {
		if errors.Is(err, ErrCyclicReference) {
			return err
		}
		leaf := scene.NewNode(filepath.Base(path), scene.KindInstance)
		leaf.SourcePath = path
		leaf.Local = local
		leaf.Err = err
		parent.AddChild(leaf)
		node = leaf
		r.report(Issue{File: t.path, Row: rec.Row, Field: "ModelFile", Err: err})
	}
	node.ModelID = rec.ModelID
	return nil
}

// resolve attaches a node for path under parent: an instance sharing an
// earlier load when possible, a fresh load otherwise.
func (r *run) resolve(path string, parent, given *scene.Node, local placement.Transform) (*scene.Node, error) {
	if prior, ok := r.registry.Lookup(path); ok && !prior.Model.HasPlacements {
		node := scene.NewNode(prior.Name, scene.KindInstance)
		node.Model = prior.Model
		node.InstanceOf = prior
		node.SourcePath = path
		node.Local = local
		parent.AddChild(node)
		return node, nil
	}

	if err := r.registry.Failed(path); err != nil {
		return nil, err
	}

	node, err := r.load(path, scene.KindInstance, parent, given, local)
	if err != nil && !errors.Is(err, ErrCyclicReference) {
		r.registry.MarkFailed(path, err)
	}
	return node, err
}

func (r *run) report(issue Issue) {
	r.issues = append(r.issues, issue)
	r.log.Warn("import issue",
		zap.String("file", issue.File),
		zap.Int("row", issue.Row),
		zap.String("field", issue.Field),
		zap.Error(issue.Err))
}

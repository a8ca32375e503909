package assembly

import (
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/wowscene/pkg/formats"
	"github.com/Faultbox/wowscene/pkg/placement"
	"github.com/Faultbox/wowscene/pkg/scene"
)

const adtHeader = "ModelFile;PositionX;PositionY;PositionZ;RotationX;RotationY;RotationZ;RotationW;ScaleFactor;ModelId;Type\n"

const wmoHeader = "ModelFile;PositionX;PositionY;PositionZ;RotationW;RotationX;RotationY;RotationZ;ScaleFactor\n"

// writeFile writes content under dir, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeModel writes a one-triangle OBJ. A non-empty mtl adds an mtllib line.
func writeModel(t *testing.T, dir, name, mtl string) string {
	t.Helper()
	var b strings.Builder
	if mtl != "" {
		fmt.Fprintf(&b, "mtllib %s\n", mtl)
	}
	b.WriteString("v 0 0 0\nv 1 0 0\nv 0 1 0\n")
	b.WriteString("vn 0 0 1\nvn 0 0 1\nvn 0 0 1\n")
	b.WriteString("vt 0 0\nvt 1 0\nvt 0 1\n")
	b.WriteString("g Body\nusemtl skin\nf 1/1/1 2/2/2 3/3/3\n")
	b.WriteString("g arm\nf 3/3/3 2/2/2 1/1/1\n")
	return writeFile(t, dir, name, b.String())
}

// writeTable writes the placement table of the OBJ called obj.
func writeTable(t *testing.T, dir, obj, header string, rows ...string) {
	t.Helper()
	name := strings.TrimSuffix(obj, ".obj") + formats.PlacementSuffix
	writeFile(t, dir, name, header+strings.Join(rows, "\n")+"\n")
}

func adtRow(file, id, typ string, x, y, z float64) string {
	w := ""
	if typ == "gobj" {
		w = "1"
	}
	return fmt.Sprintf("%s;%g;%g;%g;0;0;0;%s;;%s;%s", file, x, y, z, w, id, typ)
}

func assemble(t *testing.T, settings Settings, path string) *Result {
	t.Helper()
	res, err := New(settings, nil).Assemble(path)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return res
}

func instances(root *scene.Node) []*scene.Node {
	var nodes []*scene.Node
	for n := range root.All() {
		if n.Kind == scene.KindInstance {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func TestAssembleSingleModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skin.png", "png")
	writeFile(t, dir, "model.mtl", "newmtl skin\nmap_Kd skin.png\n")
	path := writeModel(t, dir, "model.obj", "model.mtl")

	res := assemble(t, DefaultSettings(), path)

	root := res.Root
	if root.Kind != scene.KindRoot || root.Name != "model.obj" {
		t.Errorf("root = %v", root)
	}
	if len(root.Children) != 0 {
		t.Errorf("root without table should have no children, got %d", len(root.Children))
	}
	if root.Model == nil || len(root.Model.Mesh.Vertices) != 3 {
		t.Fatal("root model not loaded")
	}
	if root.Local.Rotation != placement.BaseOrientation() {
		t.Errorf("root rotation = %v, want base orientation", root.Local.Rotation)
	}
	b, ok := root.Model.Material("skin")
	if !ok || b.TextureMissing || b.Texture != filepath.Join(dir, "skin.png") {
		t.Errorf("material binding = %+v, %v", b, ok)
	}
	if !b.UseAlpha {
		t.Error("UseAlpha should be forwarded")
	}
	if len(res.Issues) != 0 || res.Err() != nil {
		t.Errorf("unexpected issues: %v", res.Issues)
	}
}

func TestAssembleRootErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(DefaultSettings(), nil).Assemble(filepath.Join(dir, "none.obj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing root: got %v, want os.ErrNotExist", err)
	}

	bad := writeFile(t, dir, "bad.obj", "v 1 2\n")
	if _, err := New(DefaultSettings(), nil).Assemble(bad); !errors.Is(err, formats.ErrMalformedMesh) {
		t.Errorf("malformed root: got %v, want ErrMalformedMesh", err)
	}
}

func TestDedupByModelID(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "world/tree.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("world/tree.obj", "500", "m2", 10, 0, 10),
		adtRow("world/tree.obj", "500", "m2", 20, 0, 20),
	)

	tests := []struct {
		allow bool
		want  int
	}{
		{false, 1},
		{true, 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("allowDuplicates=%v", tt.allow), func(t *testing.T) {
			settings := DefaultSettings()
			settings.AllowDuplicates = tt.allow

			res := assemble(t, settings, root)

			if got := len(instances(res.Root)); got != tt.want {
				t.Errorf("instances = %d, want %d", got, tt.want)
			}
			if len(res.ImportedModelIDs) != 1 || res.ImportedModelIDs[0] != "500" {
				t.Errorf("ImportedModelIDs = %v, want [500]", res.ImportedModelIDs)
			}
		})
	}
}

func TestIdempotentAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "a.obj", "")
	writeModel(t, dir, "b.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("a.obj", "1", "m2", 0, 0, 0),
		adtRow("b.obj", "2", "gobj", 0, 0, 0),
		adtRow("a.obj", "1", "m2", 5, 0, 5),
	)

	a := New(DefaultSettings(), nil)
	first, err := a.Assemble(root)
	if err != nil {
		t.Fatalf("first Assemble failed: %v", err)
	}
	second, err := a.Assemble(root)
	if err != nil {
		t.Fatalf("second Assemble failed: %v", err)
	}

	if fmt.Sprint(first.ImportedModelIDs) != fmt.Sprint(second.ImportedModelIDs) {
		t.Errorf("ids differ: %v vs %v", first.ImportedModelIDs, second.ImportedModelIDs)
	}
	if fmt.Sprint(first.ImportedModelIDs) != "[1 2]" {
		t.Errorf("ImportedModelIDs = %v, want [1 2]", first.ImportedModelIDs)
	}
	if first.Root.Count(nil) != second.Root.Count(nil) {
		t.Errorf("node counts differ: %d vs %d", first.Root.Count(nil), second.Root.Count(nil))
	}
	if first.Root.Model == second.Root.Model {
		t.Error("separate calls must not share models")
	}
}

func TestInstanceSharing(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "doodads/rock.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("doodads/rock.obj", "1", "m2", 100, 50, 200),
		adtRow("doodads/rock.obj", "2", "m2", 300, 60, 400),
	)

	res := assemble(t, DefaultSettings(), root)

	group := res.Root.Child(DoodadGroupName)
	if group == nil || group.Kind != scene.KindDoodadGroup {
		t.Fatalf("Doodads group missing: %v", res.Root.Children)
	}
	if group.Local.Rotation != placement.GroupOrientation() {
		t.Errorf("group rotation = %v, want group orientation", group.Local.Rotation)
	}
	if len(group.Children) != 2 {
		t.Fatalf("doodads = %d, want 2", len(group.Children))
	}

	first, second := group.Children[0], group.Children[1]
	if first.Model != second.Model {
		t.Error("instances should share one model")
	}
	if first.Shared() || second.InstanceOf != first {
		t.Errorf("InstanceOf: first=%v second=%v", first.InstanceOf, second.InstanceOf)
	}
	if first.Local.Translation == second.Local.Translation {
		t.Error("instances should keep their own transforms")
	}

	x, y, z := first.Local.Translation.X, first.Local.Translation.Y, first.Local.Translation.Z
	if gomath.Abs(x-(placement.HalfSize-100)) > 1e-9 ||
		gomath.Abs(y-(-(placement.HalfSize-200))) > 1e-9 ||
		gomath.Abs(z-50) > 1e-9 {
		t.Errorf("translation = (%v, %v, %v)", x, y, z)
	}
	if first.ModelID != "1" || second.ModelID != "2" {
		t.Errorf("ModelIDs = %q, %q", first.ModelID, second.ModelID)
	}
}

func TestWMOAnchorAndDoodads(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "wmo/keep.obj", "")
	writeModel(t, dir, "wmo/chair.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("wmo/keep.obj", "10", "wmo", 100, 50, 200),
		adtRow("wmo/keep.obj", "11", "wmo", 500, 50, 600),
	)
	writeTable(t, dir, "wmo/keep.obj", wmoHeader,
		"chair.obj;1;2;3;1;0;0;0;",
	)

	res := assemble(t, DefaultSettings(), root)
	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}

	wmos := res.Root.Child(WMOGroupName)
	if wmos == nil || len(wmos.Children) != 2 {
		t.Fatalf("WMOs group = %v", wmos)
	}

	anchor := wmos.Children[0]
	if anchor.Kind != scene.KindAnchor || anchor.Name != "keep.obj parent" {
		t.Errorf("anchor = %v", anchor)
	}
	if anchor.Local.Translation.Z != 50 {
		t.Errorf("anchor carries the placement, got %v", anchor.Local.Translation)
	}
	if len(anchor.Children) != 2 {
		t.Fatalf("anchor children = %d, want model + doodad", len(anchor.Children))
	}

	keep, chair := anchor.Children[0], anchor.Children[1]
	if keep.Name != "keep.obj" || keep.Local.Rotation != placement.BaseOrientation() {
		t.Errorf("wmo node = %v rotation %v", keep, keep.Local.Rotation)
	}
	if chair.Name != "chair.obj" {
		t.Errorf("doodad = %v", chair)
	}
	if chair.Local.Translation.X != 1 || chair.Local.Translation.Z != 3 {
		t.Errorf("doodad set translation should pass through, got %v", chair.Local.Translation)
	}

	// A WMO with its own table is loaded again, not shared, while its
	// doodads are shared.
	second := wmos.Children[1]
	keep2, chair2 := second.Children[0], second.Children[1]
	if keep2.Model == keep.Model || keep2.Shared() {
		t.Error("WMO with placements must be parsed again")
	}
	if chair2.Model != chair.Model || chair2.InstanceOf != chair {
		t.Error("doodad should be shared between WMO copies")
	}
}

func TestWMOTableWithoutParent(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "keep.obj", "")
	writeModel(t, dir, "chair.obj", "")
	writeTable(t, dir, "keep.obj", wmoHeader,
		"chair.obj;1;2;3;1;0;0;0;2",
	)

	res := assemble(t, DefaultSettings(), root)

	group := res.Root.Child(DoodadGroupName)
	if group == nil || len(group.Children) != 1 {
		t.Fatalf("Doodads group = %v", group)
	}
	if s := group.Children[0].Local.Scale; s.X != 2 || s.Y != 2 || s.Z != 2 {
		t.Errorf("scale = %v, want uniform 2", s)
	}
	if len(res.ImportedModelIDs) != 0 {
		t.Errorf("WMO tables do not register ids, got %v", res.ImportedModelIDs)
	}
}

func TestCyclicReference(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		dir := t.TempDir()
		root := writeModel(t, dir, "tile.obj", "")
		writeTable(t, dir, "tile.obj", adtHeader, adtRow("tile.obj", "1", "wmo", 0, 0, 0))

		_, err := New(DefaultSettings(), nil).Assemble(root)
		if !errors.Is(err, ErrCyclicReference) {
			t.Errorf("got %v, want ErrCyclicReference", err)
		}
	})

	t.Run("transitive", func(t *testing.T) {
		dir := t.TempDir()
		root := writeModel(t, dir, "a.obj", "")
		writeModel(t, dir, "b.obj", "")
		writeTable(t, dir, "a.obj", wmoHeader, "b.obj;0;0;0;1;0;0;0;")
		writeTable(t, dir, "b.obj", wmoHeader, "a.obj;0;0;0;1;0;0;0;")

		_, err := New(DefaultSettings(), nil).Assemble(root)
		if !errors.Is(err, ErrCyclicReference) {
			t.Errorf("got %v, want ErrCyclicReference", err)
		}
	})

	t.Run("repeat is not a cycle", func(t *testing.T) {
		dir := t.TempDir()
		root := writeModel(t, dir, "a.obj", "")
		writeModel(t, dir, "b.obj", "")
		writeTable(t, dir, "a.obj", wmoHeader, "b.obj;0;0;0;1;0;0;0;", "b.obj;1;0;0;1;0;0;0;")

		res := assemble(t, DefaultSettings(), root)
		if got := len(instances(res.Root)); got != 2 {
			t.Errorf("instances = %d, want 2", got)
		}
	})
}

func TestDisabledCategoryLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "thing.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("thing.obj", "7", "m2", 0, 0, 0),
		adtRow("thing.obj", "7", "wmo", 0, 0, 0),
	)

	settings := DefaultSettings()
	settings.ImportM2 = false

	res := assemble(t, settings, root)

	if res.Root.Child(DoodadGroupName) != nil {
		t.Error("disabled category should not create its group")
	}
	wmos := res.Root.Child(WMOGroupName)
	if wmos == nil || len(wmos.Children) != 1 {
		t.Fatalf("wmo row sharing the skipped id should be imported, got %v", wmos)
	}
	if fmt.Sprint(res.ImportedModelIDs) != "[7]" {
		t.Errorf("ImportedModelIDs = %v, want [7]", res.ImportedModelIDs)
	}
}

func TestPlacementsDisabled(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "thing.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader, adtRow("thing.obj", "1", "m2", 0, 0, 0))

	res := assemble(t, Settings{}, root)
	if len(res.Root.Children) != 0 || len(res.ImportedModelIDs) != 0 {
		t.Errorf("table should be ignored, got %d children", len(res.Root.Children))
	}
	if !res.Root.Model.HasPlacements {
		t.Error("HasPlacements should reflect the table on disk")
	}
}

func TestUnresolvedFile(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "ok.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("gone.obj", "1", "m2", 0, 0, 0),
		adtRow("ok.obj", "2", "m2", 0, 0, 0),
	)

	res := assemble(t, DefaultSettings(), root)

	if got := len(instances(res.Root)); got != 1 {
		t.Errorf("instances = %d, want only the resolvable one", got)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("issues = %v, want 1", res.Issues)
	}
	issue := res.Issues[0]
	if !errors.Is(issue, ErrUnresolvedFile) || issue.Row != 1 || issue.Field != "ModelFile" {
		t.Errorf("issue = %+v", issue)
	}
	if !errors.Is(res.Err(), ErrUnresolvedFile) {
		t.Errorf("Err() = %v, want it to wrap ErrUnresolvedFile", res.Err())
	}
}

func TestErrorLeaf(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeFile(t, dir, "broken.obj", "v 0 0 0\nvn 0 0 1\ng a\nf 1 2 3\n")
	writeModel(t, dir, "ok.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("broken.obj", "1", "m2", 0, 0, 0),
		adtRow("ok.obj", "2", "m2", 0, 0, 0),
		adtRow("broken.obj", "3", "gobj", 0, 0, 0),
	)

	res := assemble(t, DefaultSettings(), root)

	var leaves []*scene.Node
	for n := range res.Root.All() {
		if n.Err != nil {
			leaves = append(leaves, n)
		}
	}
	if len(leaves) != 2 {
		t.Fatalf("error leaves = %d, want 2", len(leaves))
	}
	for _, leaf := range leaves {
		if leaf.Model != nil || !errors.Is(leaf.Err, formats.ErrDanglingReference) {
			t.Errorf("leaf %v: model=%v err=%v", leaf, leaf.Model, leaf.Err)
		}
	}
	if res.Root.FindByName("ok.obj") == nil {
		t.Error("sibling of a broken file should still be imported")
	}
	if len(multierr.Errors(res.Err())) != 2 {
		t.Errorf("Err() = %v, want 2 combined issues", res.Err())
	}
}

func TestMalformedRowsAreIssues(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "ok.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		"ok.obj;x;0;0;0;0;0;;;1;m2",
		adtRow("ok.obj", "2", "m2", 0, 0, 0),
		adtRow("ok.obj", "3", "light", 0, 0, 0),
	)

	res := assemble(t, DefaultSettings(), root)

	if got := len(instances(res.Root)); got != 1 {
		t.Errorf("instances = %d, want 1", got)
	}
	if len(res.Issues) != 2 {
		t.Fatalf("issues = %v, want 2", res.Issues)
	}
	if !errors.Is(res.Issues[0], formats.ErrMalformedRecord) || res.Issues[0].Row != 1 || res.Issues[0].Field != "PositionX" {
		t.Errorf("issue 0 = %+v", res.Issues[0])
	}
	if !errors.Is(res.Issues[1], placement.ErrUnknownType) || res.Issues[1].Row != 3 {
		t.Errorf("issue 1 = %+v", res.Issues[1])
	}
	if fmt.Sprint(res.ImportedModelIDs) != "[2]" {
		t.Errorf("bad rows must not register ids, got %v", res.ImportedModelIDs)
	}
}

func TestTerrainTableRejectsDoodadSetType(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "rock.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader, "rock.obj;1;2;3;0;0;0;1;;77;doodadset")

	res := assemble(t, DefaultSettings(), root)

	if got := len(instances(res.Root)); got != 0 {
		t.Errorf("instances = %d, want 0", got)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("issues = %v, want 1", res.Issues)
	}
	issue := res.Issues[0]
	if !errors.Is(issue, placement.ErrUnknownType) || issue.Row != 1 || issue.Field != "Type" {
		t.Errorf("issue = %+v", issue)
	}
	if len(res.ImportedModelIDs) != 0 {
		t.Errorf("ids = %v, want none", res.ImportedModelIDs)
	}
}

func TestMaterialNameWithSpaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skin.png", "png")
	writeFile(t, dir, "model.mtl", "newmtl my mat\nmap_Kd skin.png\n")
	path := writeFile(t, dir, "model.obj",
		"mtllib model.mtl\nv 0 0 0\nvn 0 0 1\ng body\nusemtl my mat\nf 1 1 1\n")

	res := assemble(t, DefaultSettings(), path)

	g := res.Root.Model.Mesh.Group("body")
	if g == nil {
		t.Fatal("group body missing")
	}
	b, ok := res.Root.Model.Material(g.Material)
	if !ok || b.Texture != filepath.Join(dir, "skin.png") {
		t.Errorf("group material %q: binding = %+v, %v", g.Material, b, ok)
	}
}

func TestMissingTexture(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.mtl", "newmtl skin\nmap_Kd nowhere.png\n")
	path := writeModel(t, dir, "model.obj", "model.mtl")

	res := assemble(t, DefaultSettings(), path)

	b, ok := res.Root.Model.Material("skin")
	if !ok || !b.TextureMissing {
		t.Errorf("binding = %+v, %v", b, ok)
	}
	if len(res.Issues) != 1 || !errors.Is(res.Issues[0], ErrMissingTexture) {
		t.Errorf("issues = %v, want one ErrMissingTexture", res.Issues)
	}

	settings := DefaultSettings()
	settings.ImportTextures = false
	res = assemble(t, settings, path)
	if len(res.Root.Model.Materials) != 0 || len(res.Issues) != 0 {
		t.Errorf("textures off: materials=%v issues=%v", res.Root.Model.Materials, res.Issues)
	}
}

func TestTerrainBlending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tile.png", "png")
	writeFile(t, dir, "tile.mtl", "newmtl skin\nmap_Kd tile.png\n")
	writeFile(t, dir, "skin.json", `{"layers":[{"index":0,"file":"grass.png","scale":4}]}`)
	path := writeModel(t, dir, "tile.obj", "tile.mtl")

	res := assemble(t, DefaultSettings(), path)
	b, _ := res.Root.Model.Material("skin")
	if b == nil || len(b.Layers) != 1 || b.Layers[0].File != filepath.Join(dir, "grass.png") {
		t.Errorf("layers = %+v", b)
	}

	settings := DefaultSettings()
	settings.UseTerrainBlending = false
	res = assemble(t, settings, path)
	if b, _ := res.Root.Model.Material("skin"); len(b.Layers) != 0 {
		t.Errorf("blending off: layers = %v", b.Layers)
	}
}

func TestVertexGroups(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "model.obj", "")

	settings := DefaultSettings()
	settings.CreateVertexGroups = true
	res := assemble(t, settings, path)

	groups := res.Root.Model.VertexGroups
	if len(groups) != 2 || groups[0].Name != "arm" || groups[1].Name != "Body" {
		t.Errorf("vertex groups = %+v, want arm then Body", groups)
	}

	res = assemble(t, DefaultSettings(), path)
	if len(res.Root.Model.VertexGroups) != 0 {
		t.Error("vertex groups should be off by default")
	}
}

func TestConcurrentAssemble(t *testing.T) {
	dir := t.TempDir()
	root := writeModel(t, dir, "tile.obj", "")
	writeModel(t, dir, "a.obj", "")
	writeTable(t, dir, "tile.obj", adtHeader,
		adtRow("a.obj", "1", "m2", 0, 0, 0),
		adtRow("a.obj", "1", "m2", 1, 0, 1),
	)

	a := New(DefaultSettings(), nil)
	var wg sync.WaitGroup
	counts := make([]int, 4)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := a.Assemble(root)
			if err != nil {
				t.Errorf("Assemble failed: %v", err)
				return
			}
			counts[i] = len(instances(res.Root))
		}(i)
	}
	wg.Wait()

	for i, c := range counts {
		if c != 1 {
			t.Errorf("call %d imported %d instances, want 1", i, c)
		}
	}
}

func TestIssueError(t *testing.T) {
	issue := Issue{File: "t.csv", Row: 3, Field: "ModelFile", Err: ErrUnresolvedFile}
	want := "t.csv row 3 (ModelFile): unresolved model file"
	if issue.Error() != want {
		t.Errorf("Error() = %q, want %q", issue.Error(), want)
	}
	if got := (Issue{File: "m.obj", Err: ErrMissingTexture}).Error(); got != "m.obj: missing texture" {
		t.Errorf("Error() = %q", got)
	}
}

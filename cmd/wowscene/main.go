// wowscene is a CLI utility for inspecting exported game-world OBJ files and
// converting them, with everything their placement tables reference, to glTF.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/wowscene/internal/config"
	"github.com/Faultbox/wowscene/internal/export"
	"github.com/Faultbox/wowscene/internal/logger"
	"github.com/Faultbox/wowscene/internal/watch"
	"github.com/Faultbox/wowscene/pkg/assembly"
	"github.com/Faultbox/wowscene/pkg/encoding"
	"github.com/Faultbox/wowscene/pkg/formats"
	"github.com/Faultbox/wowscene/pkg/math"
	"github.com/Faultbox/wowscene/pkg/placement"
	"github.com/Faultbox/wowscene/pkg/scene"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, args := args[0], args[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "tree":
		err = cmdTree(cfg, args)
	case "placements", "rows":
		err = cmdPlacements(args)
	case "export", "x":
		err = cmdExport(cfg, args)
	case "watch":
		err = cmdWatch(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wowscene - exported game-world scene utility

Usage:
  wowscene [flags] <command> [arguments]

Commands:
  info <file.obj>                  Show mesh, material and placement counts
  tree <file.obj> [node]           Assemble the scene and print its node tree
  placements <file.obj>            List placement rows with scene transforms
  export <file.obj> <out.gltf|glb> Assemble the scene and write glTF
  watch <file.obj> <out.gltf|glb>  Export again whenever a source file changes
  config [path]                    Print the effective config, or save it to path

Flags:
  -config <file>         Config file (default ./wowscene.yaml, then the user config dir)
  -debug                 Enable debug logging
  -log-file <file>       Also write logs to a rotating file
  -no-textures           Do not bind materials to textures
  -no-terrain-blending   Ignore <material>.json blend descriptors
  -no-wmo, -no-m2, -no-gobj, -no-wmo-sets
                         Skip a placement category
  -allow-duplicates      Import terrain rows whose ModelId was already imported
  -vertex-groups         Create a vertex group per face group
  -embed-textures        Embed textures in .gltf output
  -z-up                  Do not convert the exported scene to Y-up

Examples:
  wowscene info world/maps/azeroth/adt_32_48.obj
  wowscene -no-gobj tree world/maps/azeroth/adt_32_48.obj
  wowscene export world/maps/azeroth/adt_32_48.obj out/adt_32_48.glb`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: wowscene info <file.obj>")
	}
	path := args[0]

	doc, err := formats.ParseOBJFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Vertices:    %d\n", len(doc.Vertices))
	fmt.Printf("Triangles:   %d\n", doc.FaceCount())
	fmt.Printf("UV channels: %d\n", len(doc.UVs))
	for i, ch := range doc.UVs {
		fmt.Printf("  channel %d: %d coordinates\n", i, len(ch))
	}

	fmt.Printf("Groups:      %d\n", len(doc.Groups))
	for _, g := range doc.Groups {
		mat := g.Material
		if mat == "" {
			mat = "-"
		}
		fmt.Printf("  %-32s %6d tris  %6d verts  %s\n", g.Name, len(g.Faces), len(g.Vertices), mat)
	}

	if doc.MaterialLib != "" {
		lib, err := formats.ParseMTLFile(encoding.ResolvePath(dirOf(path), doc.MaterialLib))
		if err != nil {
			fmt.Printf("Materials:   error: %v\n", err)
		} else {
			fmt.Printf("Materials:   %d (%s)\n", lib.Len(), doc.MaterialLib)
		}
	}

	for _, w := range doc.Warnings {
		fmt.Printf("Warning:     %s\n", w)
	}

	tablePath := formats.PlacementTablePath(path)
	if _, err := os.Stat(tablePath); err != nil {
		fmt.Println("Placements:  none")
		return nil
	}

	pr, err := formats.OpenPlacementTable(tablePath)
	if err != nil {
		return err
	}
	defer pr.Close()

	counts := make(map[formats.PlacementType]int)
	bad := 0
	for rec, err := range pr.All() {
		if err != nil {
			bad++
			continue
		}
		counts[rec.Type]++
	}

	fmt.Printf("Placements:  %s table\n", pr.Style())
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-10s %d\n", t, counts[formats.PlacementType(t)])
	}
	if bad > 0 {
		fmt.Printf("  %-10s %d\n", "malformed", bad)
	}
	return nil
}

func cmdTree(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: wowscene tree <file.obj> [node name]")
	}

	res, err := assemble(cfg, args[0])
	if err != nil {
		return err
	}

	top := res.Root
	if len(args) > 1 {
		if top = res.Root.FindByName(args[1]); top == nil {
			return fmt.Errorf("no node named %q", args[1])
		}
	}

	printTree(os.Stdout, top, 0)
	fmt.Println()
	fmt.Printf("Nodes: %d  Instances: %d  Shared: %d  Models: %d  Imported ModelIds: %d\n",
		top.Count(nil),
		top.Count(scene.OfKind(scene.KindInstance)),
		top.Count((*scene.Node).Shared),
		len(top.Models()),
		len(res.ImportedModelIDs))
	if lo, hi, ok := top.Bounds(); ok {
		fmt.Printf("Extent: %s .. %s (diagonal %.2f)\n", formatVec(lo), formatVec(hi), hi.Distance(lo))
	}
	printIssues(res.Issues)
	return nil
}

func printTree(w io.Writer, n *scene.Node, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Name)
	fmt.Fprintf(&b, " [%s]", n.Kind)

	switch {
	case n.Err != nil:
		fmt.Fprintf(&b, " error: %v", n.Err)
	case n.Shared():
		b.WriteString(" shared")
	case n.Model != nil:
		fmt.Fprintf(&b, " %d verts, %d groups", len(n.Model.Mesh.Vertices), len(n.Model.Mesh.Groups))
	}
	if n.ModelID != "" {
		fmt.Fprintf(&b, " id=%s", n.ModelID)
	}
	if n.Kind != scene.KindRoot && !n.Kind.Group() {
		fmt.Fprintf(&b, " @ %s", formatVec(n.WorldPosition()))
	}

	fmt.Fprintln(w, b.String())
	for _, c := range n.Children {
		printTree(w, c, depth+1)
	}
}

func printIssues(issues []assembly.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "  %v\n", issue)
	}
}

func cmdPlacements(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: wowscene placements <file.obj>")
	}

	pr, err := formats.OpenPlacementTable(formats.PlacementTablePath(args[0]))
	if err != nil {
		return err
	}
	defer pr.Close()

	fmt.Printf("%s table\n", pr.Style())
	fmt.Printf("%5s %-10s %-10s %-28s %-28s %s\n", "row", "type", "id", "translation", "rotation (deg)", "file")

	for rec, err := range pr.All() {
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
			continue
		}
		tr, err := placement.ForRecord(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
			continue
		}
		rot := math.Vec3{
			X: math.Degrees(tr.Rotation.X),
			Y: math.Degrees(tr.Rotation.Y),
			Z: math.Degrees(tr.Rotation.Z),
		}
		fmt.Printf("%5d %-10s %-10s %-28s %-28s %s\n",
			rec.Row, rec.Type, rec.ModelID, formatVec(tr.Translation), formatVec(rot), rec.ModelFile)
	}
	return nil
}

func cmdExport(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: wowscene export <file.obj> <out.gltf|out.glb>")
	}

	res, err := assemble(cfg, args[0])
	if err != nil {
		return err
	}
	printIssues(res.Issues)

	if err := export.Write(res.Root, args[1], cfg.Export); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d nodes, %d models)\n", args[1], res.Root.Count(nil), len(res.Root.Models()))
	return nil
}

func cmdWatch(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: wowscene watch <file.obj> <out.gltf|out.glb>")
	}
	in, out := args[0], args[1]

	w, err := watch.New(func() (*scene.Node, error) {
		res, err := assemble(cfg, in)
		if err != nil {
			return nil, err
		}
		printIssues(res.Issues)
		if err := export.Write(res.Root, out, cfg.Export); err != nil {
			return nil, err
		}
		fmt.Printf("%s Wrote %s\n", time.Now().Format("15:04:05"), out)
		return res.Root, nil
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", in)
	return w.Run(ctx)
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Saved config to %s\n", args[0])
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}

func assemble(cfg *config.Config, path string) (*assembly.Result, error) {
	a := assembly.New(cfg.Import, logger.For("assembly"))
	res, err := a.Assemble(path)
	if err != nil {
		logger.Error("assembly failed", zap.String("file", path), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[:i]
	}
	return "."
}

package assembly

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/wowscene/pkg/encoding"
	"github.com/Faultbox/wowscene/pkg/formats"
	"github.com/Faultbox/wowscene/pkg/scene"
)

// bindMaterials reads the material library an OBJ names and binds each
// material to its texture. Missing textures are reported, not fatal.
func (r *run) bindMaterials(objPath, lib string) []scene.MaterialBinding {
	dir := filepath.Dir(objPath)
	libPath := encoding.ResolvePath(dir, lib)

	mtl, err := formats.ParseMTLFile(libPath)
	if err != nil {
		r.report(Issue{File: objPath, Field: "mtllib", Err: err})
		return nil
	}

	bindings := make([]scene.MaterialBinding, 0, mtl.Len())
	for _, m := range mtl.Materials {
		b := scene.MaterialBinding{
			Name:     m.Name,
			HostName: scene.ShortName(m.Name),
			Texture:  m.Texture,
			UseAlpha: r.settings.UseAlpha,
		}

		if _, err := os.Stat(m.Texture); err != nil {
			b.TextureMissing = true
			r.report(Issue{
				File:  libPath,
				Field: m.Name,
				Err:   fmt.Errorf("%w: %q", ErrMissingTexture, m.Texture),
			})
		}

		if r.settings.UseTerrainBlending {
			b.Layers = r.terrainLayers(dir, b.HostName)
		}
		bindings = append(bindings, b)
	}
	return bindings
}

// terrainLayers returns the blend layers of a terrain material, or nil when
// the material has no usable descriptor.
func (r *run) terrainLayers(dir, material string) []formats.TerrainLayer {
	path := formats.TerrainBlendPath(dir, material)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	blend, err := formats.ParseTerrainBlendFile(path)
	if err != nil {
		r.report(Issue{File: path, Field: material, Err: err})
		return nil
	}

	r.log.Debug("terrain blend loaded", zap.String("material", material), zap.Int("layers", len(blend.Layers)))
	return blend.Layers
}

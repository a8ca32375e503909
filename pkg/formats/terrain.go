package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/wowscene/pkg/encoding"
)

// ErrNoBlendLayers is returned for a terrain descriptor without layers.
var ErrNoBlendLayers = errors.New("terrain descriptor has no layers")

// TerrainLayer is one texture of a blended terrain material.
type TerrainLayer struct {
	Index        int     `json:"index"`
	File         string  `json:"file"`
	Scale        float64 `json:"scale"`
	HeightScale  float64 `json:"heightScale"`
	HeightOffset float64 `json:"heightOffset"`
}

// TerrainBlend describes how a terrain tile's alpha map mixes its layers.
// Layer 0 is the base; each further layer is blended in by one channel of
// the alpha map.
type TerrainBlend struct {
	Layers []TerrainLayer `json:"layers"`
}

// TerrainBlendPath returns the descriptor path for a material exported next
// to an OBJ in dir.
func TerrainBlendPath(dir, material string) string {
	return filepath.Join(dir, material+".json")
}

// ParseTerrainBlend decodes a terrain descriptor.
func ParseTerrainBlend(data []byte) (*TerrainBlend, error) {
	var tb TerrainBlend
	if err := json.Unmarshal(data, &tb); err != nil {
		return nil, fmt.Errorf("decoding terrain descriptor: %w", err)
	}
	if len(tb.Layers) == 0 {
		return nil, ErrNoBlendLayers
	}
	for i, l := range tb.Layers {
		if l.File == "" {
			return nil, fmt.Errorf("decoding terrain descriptor: layer %d has no file", i)
		}
	}
	return &tb, nil
}

// ParseTerrainBlendFile reads a terrain descriptor from disk and resolves
// layer files against its directory.
func ParseTerrainBlendFile(path string) (*TerrainBlend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terrain descriptor: %w", err)
	}
	tb, err := ParseTerrainBlend(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range tb.Layers {
		tb.Layers[i].File = encoding.ResolvePath(dir, tb.Layers[i].File)
	}
	return tb, nil
}

package assembly

import "github.com/Faultbox/wowscene/pkg/formats"

// Settings selects what an import pulls in.
type Settings struct {
	ImportTextures     bool `yaml:"import_textures"`      // bind materials to textures
	UseAlpha           bool `yaml:"use_alpha"`            // forwarded to material bindings
	UseTerrainBlending bool `yaml:"use_terrain_blending"` // read <material>.json blend layers
	ImportWMO          bool `yaml:"import_wmo"`
	ImportM2           bool `yaml:"import_m2"`
	ImportGOBJ         bool `yaml:"import_gobj"`
	ImportWMOSets      bool `yaml:"import_wmo_sets"`
	AllowDuplicates    bool `yaml:"allow_duplicates"` // import repeated ModelIds
	CreateVertexGroups bool `yaml:"create_vertex_groups"`
}

// DefaultSettings imports everything once, with textures.
func DefaultSettings() Settings {
	return Settings{
		ImportTextures:     true,
		UseAlpha:           true,
		UseTerrainBlending: true,
		ImportWMO:          true,
		ImportM2:           true,
		ImportGOBJ:         true,
		ImportWMOSets:      true,
		AllowDuplicates:    false,
		CreateVertexGroups: false,
	}
}

// Enabled reports whether rows of type t are imported.
func (s Settings) Enabled(t formats.PlacementType) bool {
	switch t {
	case formats.PlacementWMO:
		return s.ImportWMO
	case formats.PlacementM2:
		return s.ImportM2
	case formats.PlacementGameObject:
		return s.ImportGOBJ
	case formats.PlacementDoodadSet:
		return s.ImportWMOSets
	default:
		return false
	}
}

// Placements reports whether any placement category is enabled.
func (s Settings) Placements() bool {
	return s.ImportWMO || s.ImportM2 || s.ImportGOBJ || s.ImportWMOSets
}

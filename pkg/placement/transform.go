// Package placement converts placement table records from game coordinates
// into scene-space transforms.
//
// Game space is Y-up with the map origin in a corner; scene space is Z-up with
// the origin at the map centre. Each record category has its own axis and
// rotation convention, and they are not interchangeable.
package placement

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wowscene/pkg/formats"
	"github.com/Faultbox/wowscene/pkg/math"
)

// ErrUnknownType is returned for a record whose Type has no transform rule.
var ErrUnknownType = errors.New("unknown placement type")

// World size constants.
const (
	// TileSize is the edge length of one terrain tile in game units.
	TileSize = 1600.0 / 3.0
	// MapSize is the edge length of a full 64x64 tile map.
	MapSize = 64 * TileSize
	// HalfSize is the distance from the map corner to its centre (51200/3).
	HalfSize = MapSize / 2
)

// Transform is a local transform in scene space. Rotation holds XYZ Euler
// angles in radians.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Vec3
	Scale       math.Vec3
}

// Identity returns the transform that leaves a node in place.
func Identity() Transform {
	return Transform{Scale: math.Uniform(1)}
}

// Matrix returns T * Rz * Ry * Rx * S.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Translation, t.Rotation, t.Scale)
}

// Quat returns the rotation as a quaternion.
func (t Transform) Quat() math.Quat {
	return math.QuatFromEuler(t.Rotation)
}

// BaseOrientation is the rotation every imported mesh node gets: exports are
// Y-up, scenes are Z-up.
func BaseOrientation() math.Vec3 {
	return math.Vec3{X: math.Radians(90)}
}

// GroupOrientation is the rotation of the synthetic WMOs, Doodads and
// GameObjects group nodes. It cancels the base orientation of the mesh node
// the group hangs under.
func GroupOrientation() math.Vec3 {
	return math.Vec3{X: math.Radians(-90)}
}

// ADTPosition maps a terrain table position to scene space.
func ADTPosition(p [3]float64) math.Vec3 {
	return math.Vec3{
		X: HalfSize - p[0],
		Y: -(HalfSize - p[2]),
		Z: p[1],
	}
}

// WMO returns the transform of a world model row. It is applied to the
// anchor node the model and its doodads hang under.
func WMO(rec formats.PlacementRecord) Transform {
	return Transform{
		Translation: ADTPosition(rec.Position),
		Rotation: math.Vec3{
			X: math.Radians(rec.Rotation[2]),
			Y: math.Radians(rec.Rotation[0]),
			Z: math.Radians(90 + rec.Rotation[1]),
		},
		Scale: scale(rec),
	}
}

// M2 returns the transform of a doodad row. The rotation folds the base
// orientation into the world model rule, since the doodad mesh is placed
// directly.
func M2(rec formats.PlacementRecord) Transform {
	t := WMO(rec)
	t.Rotation.X += BaseOrientation().X
	return t
}

// GameObject returns the transform of a game object row. Its rotation is a
// quaternion whose components the exporter writes in a shuffled order.
func GameObject(rec formats.PlacementRecord) Transform {
	q := math.QuatWXYZ(rec.Rotation[0], rec.Rotation[1], -rec.Rotation[2], rec.Rotation[3])
	return Transform{
		Translation: math.Vec3{
			X: rec.Position[1],
			Y: -rec.Position[0],
			Z: rec.Position[2],
		},
		Rotation: q.Normalize().ToEuler(),
		Scale:    scale(rec),
	}
}

// DoodadSet returns the transform of a WMO table row. Positions are already
// relative to the WMO.
func DoodadSet(rec formats.PlacementRecord) Transform {
	q := math.QuatWXYZ(rec.Rotation[3], rec.Rotation[0], rec.Rotation[1], rec.Rotation[2])
	rot := q.Normalize().ToEuler()
	rot.X += BaseOrientation().X
	return Transform{
		Translation: math.Vec3{X: rec.Position[0], Y: rec.Position[1], Z: rec.Position[2]},
		Rotation:    rot,
		Scale:       scale(rec),
	}
}

// ForRecord dispatches on the record type.
func ForRecord(rec formats.PlacementRecord) (Transform, error) {
	switch rec.Type {
	case formats.PlacementWMO:
		return WMO(rec), nil
	case formats.PlacementM2:
		return M2(rec), nil
	case formats.PlacementGameObject:
		return GameObject(rec), nil
	case formats.PlacementDoodadSet:
		return DoodadSet(rec), nil
	default:
		return Transform{}, fmt.Errorf("%w: %q (row %d)", ErrUnknownType, rec.Type, rec.Row)
	}
}

func scale(rec formats.PlacementRecord) math.Vec3 {
	if !rec.HasScale {
		return math.Uniform(1)
	}
	return math.Uniform(rec.Scale)
}

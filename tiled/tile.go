// Package tiled implements the server's map model: bit-packed tile
// codec, object shapes, layers, and the isometric Tiled-XML map format
// clients expect, including dirty-flag caching of the rendered form.
package tiled

const (
	flippedHorizontallyFlag uint32 = 1 << 31
	flippedVerticallyFlag   uint32 = 1 << 30
	rotatedFlag             uint32 = 1 << 29
	gidMask                 uint32 = 0x1FFFFFFF
)

// Tile is one cell of a layer: a tileset-global id plus the three
// Tiled flip/rotation bits packed alongside it on the wire and in the
// XML CSV encoding.
type Tile struct {
	GID                  uint32
	FlippedHorizontally  bool
	FlippedVertically    bool
	Rotated              bool
}

// DecodeTile unpacks a raw CSV cell value into its gid and flip bits,
// matching original_source's MapLayer::get_tile.
func DecodeTile(raw uint32) Tile {
	return Tile{
		GID:                 raw & gidMask,
		FlippedHorizontally: raw&flippedHorizontallyFlag != 0,
		FlippedVertically:   raw&flippedVerticallyFlag != 0,
		Rotated:             raw&rotatedFlag != 0,
	}
}

// Encode packs a Tile back into its raw CSV cell representation.
func (t Tile) Encode() uint32 {
	raw := t.GID & gidMask
	if t.FlippedHorizontally {
		raw |= flippedHorizontallyFlag
	}
	if t.FlippedVertically {
		raw |= flippedVerticallyFlag
	}
	if t.Rotated {
		raw |= rotatedFlag
	}
	return raw
}

package tiled

import (
	"strconv"
	"strings"
)

// Layer is one tile layer of a Map: a flat row-major grid of raw
// packed tile values, rendered to Tiled's CSV layer format on demand
// and cached until mutated.
type Layer struct {
	ID     uint32
	Name   string
	width  int
	height int
	data   []uint32

	cached       bool
	cachedString string
}

// NewLayer wraps a row-major grid of raw (gid+flip-bit packed) cell
// values for a width x height layer.
func NewLayer(id uint32, name string, width, height int, data []uint32) *Layer {
	return &Layer{ID: id, Name: name, width: width, height: height, data: data}
}

// GetTile returns the decoded tile at (x, y).
func (l *Layer) GetTile(x, y int) Tile {
	return DecodeTile(l.data[y*l.width+x])
}

// SetTile writes tile at (x, y), invalidating the render cache only if
// the packed value actually changed.
func (l *Layer) SetTile(x, y int, tile Tile) {
	idx := y*l.width + x
	packed := tile.Encode()
	if l.data[idx] != packed {
		l.data[idx] = packed
		l.cached = false
	}
}

// Render returns this layer's Tiled XML <layer> element, caching the
// result until the next SetTile invalidates it.
func (l *Layer) Render() string {
	if l.cached {
		return l.cachedString
	}

	rows := make([]string, l.height)
	for y := 0; y < l.height; y++ {
		cells := make([]string, l.width)
		for x := 0; x < l.width; x++ {
			cells[x] = strconv.FormatUint(uint64(l.data[y*l.width+x]), 10)
		}
		rows[y] = strings.Join(cells, ",")
	}
	csv := strings.Join(rows, ",")

	var b strings.Builder
	b.WriteString(`<layer id="`)
	b.WriteString(strconv.FormatUint(uint64(l.ID), 10))
	b.WriteString(`" name="`)
	b.WriteString(l.Name)
	b.WriteString(`" width="`)
	b.WriteString(strconv.Itoa(l.width))
	b.WriteString(`" height="`)
	b.WriteString(strconv.Itoa(l.height))
	b.WriteString(`"><data encoding="csv">`)
	b.WriteString(csv)
	b.WriteString(`</data></layer>`)

	l.cachedString = b.String()
	l.cached = true
	return l.cachedString
}

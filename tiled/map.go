package tiled

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/lguibr/overworld/wire"
)

const assetsRelativePrefix = "../assets/"

type tilesetInfo struct {
	FirstGID uint32
	Path     string
}

// Map is the server's in-memory model of one Tiled isometric map: its
// tile layers, object layers, tileset references, and spawn point,
// grounded on original_source/src/net/map/map.rs.
type Map struct {
	Name           string
	BackgroundName string
	SongPath       string
	Width          int
	Height         int
	TileWidth      float64
	TileHeight     float64
	SpawnX         float64
	SpawnY         float64
	SpawnZ         float64
	SpawnDirection wire.Direction

	// Properties holds every map-level custom property besides the
	// three well-known ones above.
	Properties map[string]string

	tilesets     []tilesetInfo
	layers       []*Layer
	nextLayerID  uint32
	objects      []Object
	nextObjectID uint32

	// assetStale mirrors spec's second dirty flag: set whenever a
	// mutation changes what a client must re-download (tiles, objects,
	// tilesets), cleared once the caller has shipped a fresh asset.
	assetStale bool

	cached       bool
	cachedString string
}

// Parse builds a Map from Tiled map XML text. The only fatal condition
// is a <layer> missing its <data> element; every other structural
// invariant violation is logged as a warning and tolerated, grounded
// on original_source/src/net/map/map.rs:198-208.
func Parse(text string) (*Map, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("tiled: parse map: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("tiled: map document has no root element")
	}

	m := &Map{
		Width:        int(parseUint32(root.SelectAttrValue("width", "0"))),
		Height:       int(parseUint32(root.SelectAttrValue("height", "0"))),
		TileWidth:    parseFloat(root.SelectAttrValue("tilewidth", "0")),
		TileHeight:   parseFloat(root.SelectAttrValue("tileheight", "0")),
		nextLayerID:  parseUint32(root.SelectAttrValue("nextlayerid", "0")),
		nextObjectID: parseUint32(root.SelectAttrValue("nextobjectid", "0")),
	}

	scaleX := 1.0 / (m.TileWidth / 2.0)
	scaleY := 1.0 / m.TileHeight

	objectLayers := 0

	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "properties":
			for _, property := range child.ChildElements() {
				name := property.SelectAttrValue("name", "")
				value := property.SelectAttrValue("value", "")
				switch name {
				case "Name":
					m.Name = value
				case "Background":
					m.BackgroundName = value
				case "Song":
					m.SongPath = value
				default:
					if name == "" {
						continue
					}
					if m.Properties == nil {
						m.Properties = make(map[string]string)
					}
					m.Properties[name] = value
				}
			}

		case "tileset":
			firstGID := parseUint32(child.SelectAttrValue("firstgid", "0"))
			path := child.SelectAttrValue("source", "")
			if strings.HasPrefix(path, assetsRelativePrefix) {
				path = "/server/assets/" + path[len(assetsRelativePrefix):]
			}
			m.tilesets = append(m.tilesets, tilesetInfo{FirstGID: firstGID, Path: path})

		case "layer":
			id := parseUint32(child.SelectAttrValue("id", "0"))
			name := child.SelectAttrValue("name", "")
			dataEl := child.SelectElement("data")
			if dataEl == nil {
				return nil, fmt.Errorf("tiled: layer %q (id %d) has no <data> element", name, id)
			}
			var data []uint32
			for _, field := range strings.Split(dataEl.Text(), ",") {
				data = append(data, parseUint32(strings.TrimSpace(field)))
			}
			m.layers = append(m.layers, NewLayer(id, name, m.Width, m.Height, data))

		case "objectgroup":
			name := child.SelectAttrValue("name", "")
			if objectLayers+1 != len(m.layers) {
				slog.Warn("object layer links to an unexpected tile layer",
					"map", m.Name, "layer", name, "linkedTileLayer", objectLayers)
			}

			for _, objectEl := range child.ChildElements() {
				obj := ParseObjectElement(objectEl, scaleX, scaleY)
				obj.Z = float64(objectLayers)
				obj.LayerIndex = objectLayers

				if obj.Name == "Home Warp" || obj.Class == "Home Warp" {
					m.SpawnX = obj.X + obj.Width/2.0
					m.SpawnY = obj.Y + obj.Height/2.0
					m.SpawnZ = float64(objectLayers)

					m.SpawnDirection = wire.DirectionFromString(obj.Properties["Direction"])
					if m.SpawnDirection == wire.DirectionNone {
						m.SpawnDirection = wire.DirectionUpRight
					}
				}

				m.objects = append(m.objects, obj)
			}
			objectLayers++
		}
	}

	if orientation := root.SelectAttrValue("orientation", ""); orientation != "isometric" {
		slog.Warn("map orientation is not isometric; only isometric is supported", "map", m.Name, "orientation", orientation)
	}
	if root.SelectAttrValue("infinite", "0") == "1" {
		slog.Warn("infinite maps are not supported", "map", m.Name)
	}
	if staggerIndex := root.SelectAttrValue("staggerindex", ""); staggerIndex != "" && staggerIndex != "odd" {
		slog.Warn("stagger index must be absent or odd", "map", m.Name, "staggerindex", staggerIndex)
	}

	reverseLayers(m.layers)

	return m, nil
}

func reverseLayers(layers []*Layer) {
	for i, j := 0, len(layers)-1; i < j; i, j = i+1, j-1 {
		layers[i], layers[j] = layers[j], layers[i]
	}
}

// TilesetPaths returns the store path of every tileset this map
// references.
func (m *Map) TilesetPaths() []string {
	paths := make([]string, len(m.tilesets))
	for i, ts := range m.tilesets {
		paths[i] = ts.Path
	}
	return paths
}

// Dependencies returns the subset of tileset paths the server itself
// provides (as opposed to ones bundled with the client), for asset
// dependency generation.
func (m *Map) Dependencies() []string {
	var deps []string
	for _, ts := range m.tilesets {
		if strings.HasPrefix(ts.Path, "/server/") {
			deps = append(deps, ts.Path)
		}
	}
	return deps
}

// LayerCount reports how many tile layers the map has.
func (m *Map) LayerCount() int {
	return len(m.layers)
}

// GetTile returns the tile at (x, y, z), or the zero Tile if any
// coordinate is out of range.
func (m *Map) GetTile(x, y, z int) Tile {
	if z < 0 || z >= len(m.layers) || x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return Tile{}
	}
	return m.layers[z].GetTile(x, y)
}

// SetTile writes tile at (x, y, z), invalidating the render cache and
// marking the asset stale if it changed anything. Out-of-range
// coordinates are silently ignored.
func (m *Map) SetTile(x, y, z int, tile Tile) {
	if z < 0 || z >= len(m.layers) || x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	before := m.layers[z].GetTile(x, y)
	if before != tile {
		m.layers[z].SetTile(x, y, tile)
		m.markDirty()
	}
}

// markDirty flips both dirty flags spec §4.5 requires on any mutation:
// cached (the rendered XML is stale) and assetStale (the shippable
// asset bytes are stale).
func (m *Map) markDirty() {
	m.cached = false
	m.assetStale = true
}

// IsDirty reports whether the map needs a fresh Render: it has not
// been rendered since it was parsed or last mutated.
func (m *Map) IsDirty() bool {
	return !m.cached
}

// IsAssetStale reports whether the map has been mutated since the last
// MarkAssetShipped, i.e. whether dependent clients need a fresh copy.
func (m *Map) IsAssetStale() bool {
	return m.assetStale
}

// MarkAssetShipped clears the asset-stale flag once the caller has
// shipped a fresh rendering to subscribed clients.
func (m *Map) MarkAssetShipped() {
	m.assetStale = false
}

func (m *Map) objectIndex(id uint32) int {
	for i, obj := range m.objects {
		if obj.ID == id {
			return i
		}
	}
	return -1
}

// CreateObject appends a new object to the map, assigning it the next
// available object id, and returns that id.
func (m *Map) CreateObject(obj Object) uint32 {
	obj.ID = m.nextObjectID
	m.nextObjectID++
	m.objects = append(m.objects, obj)
	m.markDirty()
	return obj.ID
}

// MoveObject repositions an existing object. Reports false if id
// doesn't exist.
func (m *Map) MoveObject(id uint32, x, y, z float64) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	m.objects[i].X, m.objects[i].Y, m.objects[i].Z = x, y, z
	m.markDirty()
	return true
}

// ResizeObject changes an existing object's bounds. Reports false if
// id doesn't exist.
func (m *Map) ResizeObject(id uint32, width, height float64) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	m.objects[i].Width, m.objects[i].Height = width, height
	m.markDirty()
	return true
}

// RotateObject sets an existing object's rotation in degrees. Reports
// false if id doesn't exist.
func (m *Map) RotateObject(id uint32, rotation float64) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	m.objects[i].Rotation = rotation
	m.markDirty()
	return true
}

// RenameObject changes an existing object's name. Reports false if id
// doesn't exist.
func (m *Map) RenameObject(id uint32, name string) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	m.objects[i].Name = name
	m.markDirty()
	return true
}

// ReclassObject changes an existing object's class. Reports false if
// id doesn't exist.
func (m *Map) ReclassObject(id uint32, class string) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	m.objects[i].Class = class
	m.markDirty()
	return true
}

// SetVisible toggles an existing object's visibility. Reports false if
// id doesn't exist.
func (m *Map) SetVisible(id uint32, visible bool) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	m.objects[i].Visible = visible
	m.markDirty()
	return true
}

// SetObjectProperty sets a custom property on an existing object.
// Reports false if id doesn't exist.
func (m *Map) SetObjectProperty(id uint32, name, value string) bool {
	i := m.objectIndex(id)
	if i < 0 {
		return false
	}
	if m.objects[i].Properties == nil {
		m.objects[i].Properties = make(map[string]string)
	}
	m.objects[i].Properties[name] = value
	m.markDirty()
	return true
}

// SetProperty sets a map-level custom property.
func (m *Map) SetProperty(name, value string) {
	switch name {
	case "Name":
		m.Name = value
	case "Background":
		m.BackgroundName = value
	case "Song":
		m.SongPath = value
	default:
		if m.Properties == nil {
			m.Properties = make(map[string]string)
		}
		m.Properties[name] = value
	}
	m.markDirty()
}

// SetBackground sets the background texture name.
func (m *Map) SetBackground(name string) {
	m.BackgroundName = name
	m.markDirty()
}

// SetSong sets the map's background music asset path.
func (m *Map) SetSong(path string) {
	m.SongPath = path
	m.markDirty()
}

// SetBackgroundVelocity and SetForegroundVelocity, plus the parallax
// setters below, model the scrolling-layer properties Tiled maps carry
// as custom properties rather than dedicated struct fields, matching
// how the rest of Map.Properties is used for anything beyond the
// three well-known names.
func (m *Map) SetBackgroundVelocity(x, y float64) {
	m.SetProperty("BackgroundVelocityX", formatFloat(x))
	m.SetProperty("BackgroundVelocityY", formatFloat(y))
}

func (m *Map) SetForegroundTexture(name string) {
	m.SetProperty("Foreground", name)
}

func (m *Map) SetForegroundVelocity(x, y float64) {
	m.SetProperty("ForegroundVelocityX", formatFloat(x))
	m.SetProperty("ForegroundVelocityY", formatFloat(y))
}

func (m *Map) SetBackgroundParallax(factor float64) {
	m.SetProperty("BackgroundParallax", formatFloat(factor))
}

func (m *Map) SetForegroundParallax(factor float64) {
	m.SetProperty("ForegroundParallax", formatFloat(factor))
}

// Render returns the map's Tiled XML document, caching the result
// until the next mutation.
func (m *Map) Render() string {
	if m.cached {
		return m.cachedString
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(&b, `<map version="1.4" tiledversion="1.4.1" orientation="isometric" `+
		`renderorder="right-down" compressionlevel="0" width="%d" height="%d" `+
		`tilewidth="%s" tileheight="%s" infinite="0" nextlayerid="%d" nextobjectid="%d">`,
		m.Width, m.Height, formatFloat(m.TileWidth), formatFloat(m.TileHeight), m.nextLayerID, m.nextObjectID)

	b.WriteString(`<properties>`)
	fmt.Fprintf(&b, `<property name="Name" value="%s"/>`, m.Name)
	fmt.Fprintf(&b, `<property name="Background" value="%s"/>`, m.BackgroundName)
	fmt.Fprintf(&b, `<property name="Song" value="%s"/>`, m.SongPath)
	propNames := make([]string, 0, len(m.Properties))
	for name := range m.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)
	for _, name := range propNames {
		fmt.Fprintf(&b, `<property name="%s" value="%s"/>`, name, m.Properties[name])
	}
	b.WriteString(`</properties>`)

	for _, ts := range m.tilesets {
		fmt.Fprintf(&b, `<tileset firstgid="%s" source="%s"/>`, strconv.FormatUint(uint64(ts.FirstGID), 10), ts.Path)
	}

	for layerIndex, layer := range m.layers {
		b.WriteString(layer.Render())

		layerFloat := float64(layerIndex)
		b.WriteString(`<objectgroup>`)
		for _, obj := range m.objects {
			if obj.Z >= layerFloat && obj.Z < layerFloat+1.0 {
				b.WriteString(obj.Render())
			}
		}
		b.WriteString(`</objectgroup>`)
	}

	b.WriteString(`</map>`)

	m.cachedString = b.String()
	m.cached = true
	return m.cachedString
}

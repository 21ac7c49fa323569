package tiled

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ObjectShapeKind discriminates a MapObject's geometry.
type ObjectShapeKind uint8

const (
	ShapePoint ObjectShapeKind = iota
	ShapeEllipse
	ShapeRect
	ShapePolygon
	ShapePolyline
	ShapeTileObject
)

// Point is a single 2D coordinate, used by ShapePolygon and ShapePolyline.
type Point struct {
	X, Y float64
}

// Object is one entry of a map's object layer: an interaction trigger,
// warp point, or tile-backed decoration.
type Object struct {
	ID     uint32
	Name   string
	Class  string
	X, Y   float64
	Z      float64
	Width  float64
	Height float64

	// LayerIndex is the zero-based position, among object layers only,
	// of the <objectgroup> this object was parsed from.
	LayerIndex int
	Visible    bool
	Rotation   float64

	// Properties holds every custom <property> on this object that
	// isn't otherwise modeled by a dedicated field.
	Properties map[string]string

	Shape  ObjectShapeKind
	Points []Point // ShapePolygon, ShapePolyline
	GID    uint32  // ShapeTileObject
}

// ParseObjectElement builds an Object from a Tiled <object> XML
// element, scaling its position into tile-unit space the way Map.parse
// does for every object layer it reads, grounded on
// original_source/src/net/map_object.rs.
func ParseObjectElement(el *etree.Element, scaleX, scaleY float64) Object {
	obj := Object{
		Name:     el.SelectAttrValue("name", ""),
		Class:    el.SelectAttrValue("class", el.SelectAttrValue("type", "")),
		ID:       parseUint32(el.SelectAttrValue("id", "0")),
		X:        parseFloat(el.SelectAttrValue("x", "0")) * scaleX,
		Y:        parseFloat(el.SelectAttrValue("y", "0")) * scaleY,
		Width:    parseFloat(el.SelectAttrValue("width", "0")) * scaleX,
		Height:   parseFloat(el.SelectAttrValue("height", "0")) * scaleY,
		Visible:  el.SelectAttrValue("visible", "1") != "0",
		Rotation: parseFloat(el.SelectAttrValue("rotation", "0")),
	}

	if propsEl := el.SelectElement("properties"); propsEl != nil {
		for _, p := range propsEl.SelectElements("property") {
			name := p.SelectAttrValue("name", "")
			if name == "" {
				continue
			}
			if obj.Properties == nil {
				obj.Properties = make(map[string]string)
			}
			obj.Properties[name] = p.SelectAttrValue("value", "")
		}
	}

	gid := parseUint32(el.SelectAttrValue("gid", "0"))

	switch {
	case gid != 0:
		obj.Shape = ShapeTileObject
		obj.GID = gid
	case el.SelectElement("polygon") != nil:
		obj.Shape = ShapePolygon
		obj.Points = parsePolygonPoints(el.SelectElement("polygon").SelectAttrValue("points", ""))
	case el.SelectElement("polyline") != nil:
		obj.Shape = ShapePolyline
		obj.Points = parsePolygonPoints(el.SelectElement("polyline").SelectAttrValue("points", ""))
	case obj.Width == 0 && obj.Height == 0:
		obj.Shape = ShapePoint
	case el.SelectElement("ellipse") != nil:
		obj.Shape = ShapeEllipse
	default:
		obj.Shape = ShapeRect
	}

	return obj
}

func parsePolygonPoints(raw string) []Point {
	var points []Point
	for _, pair := range strings.Fields(raw) {
		comma := strings.IndexByte(pair, ',')
		if comma < 0 {
			continue
		}
		points = append(points, Point{
			X: parseFloat(pair[:comma]),
			Y: parseFloat(pair[comma+1:]),
		})
	}
	return points
}

// Render returns this object's Tiled XML <object> element.
func (o Object) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<object id="%d"`, o.ID)
	if o.Name != "" {
		fmt.Fprintf(&b, ` name="%s"`, o.Name)
	}
	if o.Class != "" {
		fmt.Fprintf(&b, ` class="%s"`, o.Class)
	}
	if o.Shape == ShapeTileObject {
		fmt.Fprintf(&b, ` gid="%d"`, o.GID)
	}
	fmt.Fprintf(&b, ` x="%s" y="%s"`, formatFloat(o.X), formatFloat(o.Y))
	if o.Width != 0 && o.Height != 0 {
		fmt.Fprintf(&b, ` width="%s" height="%s"`, formatFloat(o.Width), formatFloat(o.Height))
	}
	if o.Rotation != 0 {
		fmt.Fprintf(&b, ` rotation="%s"`, formatFloat(o.Rotation))
	}
	if !o.Visible {
		b.WriteString(` visible="0"`)
	}
	b.WriteString(">")

	if len(o.Properties) > 0 {
		names := make([]string, 0, len(o.Properties))
		for name := range o.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("<properties>")
		for _, name := range names {
			fmt.Fprintf(&b, `<property name="%s" value="%s"/>`, name, o.Properties[name])
		}
		b.WriteString("</properties>")
	}

	switch o.Shape {
	case ShapeEllipse:
		b.WriteString("<ellipse/>")
	case ShapePolygon:
		fmt.Fprintf(&b, `<polygon points="%s"/>`, renderPoints(o.Points))
	case ShapePolyline:
		fmt.Fprintf(&b, `<polyline points="%s"/>`, renderPoints(o.Points))
	}

	b.WriteString("</object>")
	return b.String()
}

func renderPoints(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
	}
	return strings.Join(parts, " ")
}

func parseUint32(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

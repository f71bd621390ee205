package geo

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// ToPolygonal converts a decoded boundary geometry into the form used for clipping.
func ToPolygonal(g gogeom.T) (geom.Polygonal, error) {
	switch t := g.(type) {
	case *gogeom.Polygon:
		return polygon(t.Coords()), nil
	case *gogeom.MultiPolygon:
		coords := t.Coords()
		mp := make(geom.MultiPolygon, 0, len(coords))
		for _, p := range coords {
			mp = append(mp, polygon(p))
		}
		return mp, nil
	case nil:
		return nil, fmt.Errorf("empty geometry: %w", constants.ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%T: %w", g, constants.ErrUnsupportedGeometry)
	}
}

// FromWKB decodes a PostGIS ST_AsBinary value.
func FromWKB(b []byte) (geom.Polygonal, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("wkb.Unmarshal: %w", err)
	}
	return ToPolygonal(g)
}

func polygon(rings [][]gogeom.Coord) geom.Polygon {
	p := make(geom.Polygon, 0, len(rings))
	for _, ring := range rings {
		path := make(geom.Path, 0, len(ring))
		for _, c := range ring {
			path = append(path, geom.Point{X: c.X(), Y: c.Y()})
		}
		// closing vertex is implicit
		if n := len(path); n > 1 && path[0] == path[n-1] {
			path = path[:n-1]
		}
		p = append(p, path)
	}
	return p
}

// Rect returns the polygon covering the axis-aligned box.
func Rect(minX, minY, maxX, maxY float64) geom.Polygon {
	return geom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}}
}

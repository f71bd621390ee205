package geo

import (
	"errors"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

func TestToPolygonal_Polygon(t *testing.T) {
	p := gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{
		{{0, 0}, {2, 0}, {2, 1}, {0, 1}, {0, 0}},
	})

	out, err := ToPolygonal(p)
	require.NoError(t, err)

	poly, ok := out.(geom.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	assert.Len(t, poly[0], 4)
	assert.InDelta(t, 2.0, poly.Area(), 1e-9)
}

func TestToPolygonal_MultiPolygon(t *testing.T) {
	mp := gogeom.NewMultiPolygon(gogeom.XY).MustSetCoords([][][]gogeom.Coord{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		{{{5, 5}, {7, 5}, {7, 6}, {5, 6}, {5, 5}}},
	})

	out, err := ToPolygonal(mp)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out.Area(), 1e-9)
}

func TestToPolygonal_Unsupported(t *testing.T) {
	pt := gogeom.NewPoint(gogeom.XY).MustSetCoords(gogeom.Coord{1, 1})

	_, err := ToPolygonal(pt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrUnsupportedGeometry))

	_, err = ToPolygonal(nil)
	assert.True(t, errors.Is(err, constants.ErrUnsupportedGeometry))
}

func TestFromWKB(t *testing.T) {
	p := gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{
		{{120, 10}, {121, 10}, {121, 11}, {120, 11}, {120, 10}},
	})
	b, err := wkb.Marshal(p, wkb.NDR)
	require.NoError(t, err)

	out, err := FromWKB(b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Area(), 1e-9)

	_, err = FromWKB([]byte{0x01})
	assert.Error(t, err)
}

package domain

import (
	"math"
	"time"
)

type Year = int
type Month = int

// Grid is a single raster band. Values are row-major, row 0 is the southern-most
// row and (X0, Y0) is the lower-left corner of the grid.
type Grid struct {
	X0, Y0 float64
	DX, DY float64
	NX, NY int
	Values []float32
	NoData *float32
}

func (g *Grid) At(col, row int) float32 {
	return g.Values[row*g.NX+col]
}

// Masked reports whether v carries no usable radiance.
func (g *Grid) Masked(v float32) bool {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return true
	}
	return g.NoData != nil && v == *g.NoData
}

type RasterFrame struct {
	ID       string
	Captured time.Time
	Year     Year
	Month    Month
	Band     string
	Grid     *Grid
}

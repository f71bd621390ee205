package aggregate

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/geo"
)

// metres per degree of arc at the equator
const metresPerDegree = 111320.0

const (
	eps      = 1e-9
	stripPad = 1e-6
)

// GridSpec is the georeference of a grid without its values. Frames sharing
// one GridSpec share coverage weights.
type GridSpec struct {
	X0, Y0 float64
	DX, DY float64
	NX, NY int
}

func SpecOf(g *domain.Grid) GridSpec {
	return GridSpec{X0: g.X0, Y0: g.Y0, DX: g.DX, DY: g.DY, NX: g.NX, NY: g.NY}
}

func (s GridSpec) maxX() float64 { return s.X0 + float64(s.NX)*s.DX }
func (s GridSpec) maxY() float64 { return s.Y0 + float64(s.NY)*s.DY }

// Weight is the covered fraction W of one sampling cell whose value is read
// from native pixel Index.
type Weight struct {
	Index int
	W     float64
}

// sampling returns the cell size used for the reduction: the native pixel,
// or a coarser cell when scale (metres) exceeds it.
func (s GridSpec) sampling(scale float64) (dx, dy float64) {
	dx, dy = s.DX, s.DY
	if scale <= 0 {
		return dx, dy
	}
	step := scale / metresPerDegree
	if step > dx {
		dx = step
	}
	if step > dy {
		dy = step
	}
	return dx, dy
}

// Coverage computes, for every sampling cell overlapping region, the fraction
// of the cell area that lies inside region.
func Coverage(spec GridSpec, region geom.Polygonal, scale float64) []Weight {
	if region == nil || spec.NX <= 0 || spec.NY <= 0 {
		return nil
	}

	b := region.Bounds()
	if b == nil || b.Max.X <= spec.X0 || b.Min.X >= spec.maxX() || b.Max.Y <= spec.Y0 || b.Min.Y >= spec.maxY() {
		return nil
	}

	dx, dy := spec.sampling(scale)
	nx := int(math.Ceil(float64(spec.NX)*spec.DX/dx - eps))
	ny := int(math.Ceil(float64(spec.NY)*spec.DY/dy - eps))
	cellArea := dx * dy

	c0 := clamp(int(math.Floor((b.Min.X-spec.X0)/dx)), 0, nx-1)
	c1 := clamp(int(math.Floor((b.Max.X-spec.X0)/dx)), 0, nx-1)
	r0 := clamp(int(math.Floor((b.Min.Y-spec.Y0)/dy)), 0, ny-1)
	r1 := clamp(int(math.Floor((b.Max.Y-spec.Y0)/dy)), 0, ny-1)

	weights := make([]Weight, 0, (c1-c0+1)*(r1-r0+1))
	for row := r0; row <= r1; row++ {
		minY := spec.Y0 + float64(row)*dy
		maxY := math.Min(minY+dy, spec.maxY())

		// Clip to the row strip first so each cell clips against a small polygon.
		// The strip is padded so its edges never coincide with cell edges.
		padX, padY := dx*stripPad, dy*stripPad
		var strip geom.Polygonal = region.Intersection(geo.Rect(
			spec.X0+float64(c0)*dx-padX, minY-padY,
			math.Min(spec.X0+float64(c1+1)*dx, spec.maxX())+padX, maxY+padY,
		))
		if strip == nil || strip.Area() <= 0 {
			continue
		}

		for col := c0; col <= c1; col++ {
			minX := spec.X0 + float64(col)*dx
			maxX := math.Min(minX+dx, spec.maxX())

			area := strip.Intersection(geo.Rect(minX, minY, maxX, maxY)).Area()
			if area <= 0 {
				continue
			}

			weights = append(weights, Weight{
				Index: spec.pixelAt((minX+maxX)/2, (minY+maxY)/2),
				W:     area / cellArea,
			})
		}
	}

	return weights
}

// pixelAt returns the index of the native pixel containing (x, y).
func (s GridSpec) pixelAt(x, y float64) int {
	col := clamp(int(math.Floor((x-s.X0)/s.DX)), 0, s.NX-1)
	row := clamp(int(math.Floor((y-s.Y0)/s.DY)), 0, s.NY-1)
	return row*s.NX + col
}

// WeightedMean reduces grid over the weights. Masked pixels are skipped; nil
// means no valid pixel was covered.
func WeightedMean(g *domain.Grid, weights []Weight) *float64 {
	var sumW, sumWV float64
	for _, w := range weights {
		v := g.Values[w.Index]
		if g.Masked(v) {
			continue
		}
		sumW += w.W
		sumWV += w.W * float64(v)
	}

	if sumW <= 0 {
		return nil
	}

	mean := sumWV / sumW
	return &mean
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

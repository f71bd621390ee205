package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
)

const (
	attrTimeStart = "time_start"
	attrFillValue = "_FillValue"
)

var (
	timeLayouts    = []string{time.RFC3339, "2006-01-02", "20060102"}
	yearMonthToken = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})(0[1-9]|1[0-2])`)
)

// FrameFile is the content of one monthly NetCDF raster.
type FrameFile struct {
	Band     string
	Captured time.Time
	Grid     *domain.Grid
}

// WriteNetCDF writes frame as a classic NetCDF file: one float32 (y, x) variable
// named by the band plus the grid georeference as global attributes.
func WriteNetCDF(w *os.File, frame FrameFile) error {
	g := frame.Grid
	if len(g.Values) != g.NX*g.NY {
		return fmt.Errorf("grid is %dx%d but has %d values", g.NX, g.NY, len(g.Values))
	}

	h := cdf.NewHeader([]string{"y", "x"}, []int{g.NY, g.NX})
	h.AddAttribute("", "x0", []float64{g.X0})
	h.AddAttribute("", "y0", []float64{g.Y0})
	h.AddAttribute("", "dx", []float64{g.DX})
	h.AddAttribute("", "dy", []float64{g.DY})
	h.AddAttribute("", "nx", []int32{int32(g.NX)})
	h.AddAttribute("", "ny", []int32{int32(g.NY)})
	if !frame.Captured.IsZero() {
		h.AddAttribute("", attrTimeStart, frame.Captured.UTC().Format(time.RFC3339))
	}

	h.AddVariable(frame.Band, []string{"y", "x"}, []float32{0})
	if g.NoData != nil {
		h.AddAttribute(frame.Band, attrFillValue, []float32{*g.NoData})
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("cdf.Create: %w", err)
	}

	wr := f.Writer(frame.Band, []int{0, 0}, []int{g.NY, g.NX})
	if _, err = wr.Write(g.Values); err != nil {
		return fmt.Errorf("write %s: %w", frame.Band, err)
	}

	return cdf.UpdateNumRecs(w)
}

// captureTime reads the time_start attribute, falling back to a YYYYMM token in name.
func captureTime(f *cdf.File, name string) (time.Time, error) {
	if raw, ok := f.Header.GetAttribute("", attrTimeStart).(string); ok && raw != "" {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparsable %s %q", attrTimeStart, raw)
	}

	return timeFromName(name)
}

func timeFromName(name string) (time.Time, error) {
	m := yearMonthToken.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("no capture date in %q", name)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

func readGrid(f *cdf.File, band string) (*domain.Grid, error) {
	if !hasVariable(f.Header, band) {
		return nil, fmt.Errorf("%s: %w", band, constants.ErrBandNotFound)
	}

	lengths := f.Header.Lengths(band)
	if len(lengths) != 2 {
		return nil, fmt.Errorf("band %s has %d dimensions, want 2", band, len(lengths))
	}

	g := &domain.Grid{NY: lengths[0], NX: lengths[1]}

	var ok bool
	if g.X0, ok = attrFloat(f.Header, "", "x0"); !ok {
		return nil, fmt.Errorf("missing x0 attribute")
	}
	if g.Y0, ok = attrFloat(f.Header, "", "y0"); !ok {
		return nil, fmt.Errorf("missing y0 attribute")
	}
	if g.DX, ok = attrFloat(f.Header, "", "dx"); !ok || g.DX <= 0 {
		return nil, fmt.Errorf("missing or invalid dx attribute")
	}
	if g.DY, ok = attrFloat(f.Header, "", "dy"); !ok || g.DY <= 0 {
		return nil, fmt.Errorf("missing or invalid dy attribute")
	}
	if nx, ok := attrFloat(f.Header, "", "nx"); ok && int(nx) != g.NX {
		return nil, fmt.Errorf("nx attribute %d does not match band width %d", int(nx), g.NX)
	}
	if ny, ok := attrFloat(f.Header, "", "ny"); ok && int(ny) != g.NY {
		return nil, fmt.Errorf("ny attribute %d does not match band height %d", int(ny), g.NY)
	}

	if fill, ok := f.Header.GetAttribute(band, attrFillValue).([]float32); ok && len(fill) > 0 {
		v := fill[0]
		g.NoData = &v
	}

	g.Values = make([]float32, g.NX*g.NY)
	if _, err := f.Reader(band, nil, nil).Read(g.Values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", band, err)
	}

	return g, nil
}

func hasVariable(h *cdf.Header, name string) bool {
	for _, v := range h.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

func attrFloat(h *cdf.Header, variable, name string) (float64, bool) {
	switch v := h.GetAttribute(variable, name).(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

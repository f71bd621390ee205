package merge

import (
	"strings"

	"github.com/shopspring/decimal"
)

var metroManilaDistricts = map[string]struct{}{
	"Metropolitan Manila - 1st District": {},
	"Metropolitan Manila - 2nd District": {},
	"Metropolitan Manila - 3rd District": {},
	"Metropolitan Manila - 4th District": {},
}

const metroManila = "Metropolitan Manila"

// renamed provinces in the boundary dataset
var lightsRenames = map[string]string{
	"Shariff Kabunsuan": "Maguindanao",
	"Saranggani":        "Sarangani",
}

type key struct {
	norm        string
	year, month int
}

type period struct {
	year, month int
}

// Exposure is one long-format exposure observation. A nil value is a blank cell.
type Exposure struct {
	Province string
	Year     int
	Month    int
	Value    *decimal.Decimal
}

// Lights is one row of the extracted panel.
type Lights struct {
	Province   string
	Year       int
	Month      int
	MeanLights *decimal.Decimal
}

type Merged struct {
	Province   string
	Year       int
	Month      int
	Exposure   decimal.Decimal
	MeanLights *decimal.Decimal
}

// Normalize folds a province name for matching across datasets.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", " ", "–", " ").Replace(name)
}

// CombineMetroManila replaces the four district rows with one row per period
// holding their sum. Blank district cells are skipped.
func CombineMetroManila(rows []Exposure) []Exposure {
	out := make([]Exposure, 0, len(rows))
	sums := make(map[period]decimal.Decimal)
	var order []period

	for _, row := range rows {
		if _, ok := metroManilaDistricts[row.Province]; !ok {
			out = append(out, row)
			continue
		}

		p := period{row.Year, row.Month}
		sum, seen := sums[p]
		if !seen {
			order = append(order, p)
		}
		if row.Value != nil {
			sum = sum.Add(*row.Value)
		}
		sums[p] = sum
	}

	for _, p := range order {
		sum := sums[p]
		out = append(out, Exposure{Province: metroManila, Year: p.year, Month: p.month, Value: &sum})
	}
	return out
}

// RegroupLights applies the renames and sums rows that now share a
// (province, year, month). A group with only blank means stays blank.
// The result is ordered by province, year, month.
func RegroupLights(rows []Lights) []Lights {
	type groupKey struct {
		province    string
		year, month int
	}

	groups := make(map[groupKey]*Lights)
	var order []groupKey

	for _, row := range rows {
		if to, ok := lightsRenames[row.Province]; ok {
			row.Province = to
		}

		k := groupKey{row.Province, row.Year, row.Month}
		g, ok := groups[k]
		if !ok {
			g = &Lights{Province: row.Province, Year: row.Year, Month: row.Month}
			groups[k] = g
			order = append(order, k)
		}

		if row.MeanLights != nil {
			sum := *row.MeanLights
			if g.MeanLights != nil {
				sum = g.MeanLights.Add(sum)
			}
			g.MeanLights = &sum
		}
	}

	out := make([]Lights, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sortLights(out)
	return out
}

// Join keeps every lights row and attaches the matching exposure, 0 when
// missing. The province label comes from exposure when matched.
func Join(exposure []Exposure, lights []Lights) []Merged {
	index := make(map[key][]Exposure, len(exposure))
	for _, e := range exposure {
		k := key{Normalize(e.Province), e.Year, e.Month}
		index[k] = append(index[k], e)
	}

	out := make([]Merged, 0, len(lights))
	for _, l := range lights {
		matches := index[key{Normalize(l.Province), l.Year, l.Month}]
		if len(matches) == 0 {
			out = append(out, Merged{Province: l.Province, Year: l.Year, Month: l.Month, Exposure: decimal.Zero, MeanLights: l.MeanLights})
			continue
		}

		for _, e := range matches {
			value := decimal.Zero
			if e.Value != nil {
				value = *e.Value
			}
			out = append(out, Merged{Province: e.Province, Year: l.Year, Month: l.Month, Exposure: value, MeanLights: l.MeanLights})
		}
	}
	return out
}

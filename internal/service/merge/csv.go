package merge

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/shopspring/decimal"
)

const (
	exposureIDColumn = "adm2_en"
	periodLayout     = "2006-01"
)

var mergedColumns = []string{"province", "year", "month", "exposure", "mean_lights"}

// ReadExposure melts the wide exposure table (adm2_en, then one YYYY-MM column
// per month) into long rows.
func ReadExposure(r io.Reader) ([]Exposure, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv.ReadAll: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("exposure: empty file: %w", constants.ErrInvalidConfig)
	}

	header := records[0]
	if len(header) == 0 || strings.TrimSpace(header[0]) != exposureIDColumn {
		return nil, fmt.Errorf("exposure: first column must be %s: %w", exposureIDColumn, constants.ErrInvalidConfig)
	}

	periods := make([]time.Time, len(header)-1)
	for i, col := range header[1:] {
		t, err := time.Parse(periodLayout, strings.TrimSpace(col))
		if err != nil {
			return nil, fmt.Errorf("exposure column %q: %w", col, constants.ErrInvalidConfig)
		}
		periods[i] = t
	}

	var out []Exposure
	for line, rec := range records[1:] {
		for i, t := range periods {
			value, err := parseDecimal(cell(rec, i+1))
			if err != nil {
				return nil, fmt.Errorf("exposure line %d: %w", line+2, err)
			}
			out = append(out, Exposure{Province: rec[0], Year: t.Year(), Month: int(t.Month()), Value: value})
		}
	}
	return out, nil
}

// ReadLights reads the panel written by the extraction run.
func ReadLights(r io.Reader) ([]Lights, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv.ReadAll: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"province", "year", "month", "mean_lights"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("lights: missing column %s: %w", name, constants.ErrInvalidConfig)
		}
	}

	out := make([]Lights, 0, len(records)-1)
	for line, rec := range records[1:] {
		year, err := strconv.Atoi(cell(rec, cols["year"]))
		if err != nil {
			return nil, fmt.Errorf("lights line %d: year: %w", line+2, err)
		}
		month, err := strconv.Atoi(cell(rec, cols["month"]))
		if err != nil {
			return nil, fmt.Errorf("lights line %d: month: %w", line+2, err)
		}
		mean, err := parseDecimal(cell(rec, cols["mean_lights"]))
		if err != nil {
			return nil, fmt.Errorf("lights line %d: %w", line+2, err)
		}

		out = append(out, Lights{Province: cell(rec, cols["province"]), Year: year, Month: month, MeanLights: mean})
	}
	return out, nil
}

func WriteMerged(w io.Writer, rows []Merged) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mergedColumns); err != nil {
		return err
	}

	for _, row := range rows {
		mean := ""
		if row.MeanLights != nil {
			mean = row.MeanLights.String()
		}
		err := cw.Write([]string{row.Province, strconv.Itoa(row.Year), strconv.Itoa(row.Month), row.Exposure.String(), mean})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseDecimal(s string) (*decimal.Decimal, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("decimal.NewFromString %q: %w", s, err)
	}
	return &d, nil
}

func sortLights(rows []Lights) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/shopspring/decimal"
)

var Columns = []string{"province", "year", "month", "mean_lights"}

// EncodeCSV writes the four panel columns; a null mean is an empty field.
func EncodeCSV(table domain.OutputTable) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	row := make([]string, len(Columns))
	for _, rec := range table {
		row[0] = rec.Province
		row[1] = strconv.Itoa(rec.Year)
		row[2] = strconv.Itoa(rec.Month)
		row[3] = FormatMean(rec.MeanLights)

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("csv row %s %d-%02d: %w", rec.Province, rec.Year, rec.Month, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatMean renders mean in shortest decimal form; nil and non-finite means are blank.
func FormatMean(mean *float64) string {
	if mean == nil || math.IsNaN(*mean) || math.IsInf(*mean, 0) {
		return ""
	}
	return decimal.NewFromFloat(*mean).String()
}

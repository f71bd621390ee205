package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/geo"
	"github.com/ougirez/nightlights/internal/pkg/store/xpgx"
)

type boundaryRow struct {
	ID      int64   `db:"id"`
	Adm0    *string `db:"adm0_name"`
	Adm1    *string `db:"adm1_name"`
	Adm2    *string `db:"adm2_name"`
	GeomWKB []byte  `db:"geom_wkb"`
}

func boundariesQuery() squirrel.SelectBuilder {
	return builder().
		Select("id", "adm0_name", "adm1_name", "adm2_name", "ST_AsBinary(geom) AS geom_wkb").
		From(tableBoundaries).
		OrderBy("id")
}

// Boundaries reads the GAUL-style boundaries table. Properties carry the
// upper-case field names of the source shapefile.
func (s *store) Boundaries(ctx context.Context) ([]*domain.Boundary, error) {
	rows, err := xpgx.Selectx[boundaryRow](ctx, s.pool, boundariesQuery())
	if err != nil {
		return nil, fmt.Errorf("select boundaries: %w", wrapErr(err))
	}

	out := make([]*domain.Boundary, 0, len(rows))
	for _, row := range rows {
		g, err := geo.FromWKB(row.GeomWKB)
		if err != nil {
			return nil, fmt.Errorf("boundary-%d: %w", row.ID, err)
		}

		props := map[string]interface{}{}
		for key, val := range map[string]*string{"ADM0_NAME": row.Adm0, "ADM1_NAME": row.Adm1, "ADM2_NAME": row.Adm2} {
			if val != nil {
				props[key] = *val
			}
		}

		out = append(out, &domain.Boundary{Geometry: g, Properties: props})
	}

	return out, nil
}

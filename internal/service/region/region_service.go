package region

import (
	"context"
	"fmt"
	"os"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/geo"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

const provinceProperty = "province"

type BoundarySource interface {
	Boundaries(ctx context.Context) ([]*domain.Boundary, error)
}

// GeoJSONSource reads a boundary FeatureCollection such as a GAUL level-2 export.
type GeoJSONSource struct {
	Path string
}

func (s *GeoJSONSource) Boundaries(_ context.Context) ([]*domain.Boundary, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundaries: %w", err)
	}

	fc := new(geojson.FeatureCollection)
	if err = fc.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("geojson.FeatureCollection.UnmarshalJSON: %w", err)
	}

	boundaries := make([]*domain.Boundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		polygonal, err := geo.ToPolygonal(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		boundaries = append(boundaries, &domain.Boundary{
			Geometry:   polygonal,
			Properties: f.Properties,
		})
	}

	return boundaries, nil
}

type LoadOpts struct {
	Country      string
	CountryField string
	NameField    string
	Aliases      map[string]string
}

type Service struct {
	source BoundarySource
}

func NewRegionService(source BoundarySource) *Service {
	return &Service{source: source}
}

// LoadRegions keeps the boundaries of one country and labels each with its province name.
// An unknown country gives an empty set, not an error.
func (s *Service) LoadRegions(ctx context.Context, opts LoadOpts) ([]*domain.Region, error) {
	if opts.CountryField == "" {
		opts.CountryField = constants.DefaultCountryField
	}
	if opts.NameField == "" {
		opts.NameField = constants.DefaultNameField
	}

	boundaries, err := s.source.Boundaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.Boundaries: %w", err)
	}

	regions := make([]*domain.Region, 0, len(boundaries))
	for _, b := range boundaries {
		country, _ := b.Properties[opts.CountryField].(string)
		if country != opts.Country {
			continue
		}

		props := make(map[string]interface{}, len(b.Properties)+1)
		for k, v := range b.Properties {
			props[k] = v
		}

		r := &domain.Region{
			Country:    country,
			Geometry:   b.Geometry,
			Properties: props,
		}

		if name := b.Properties[opts.NameField]; name != nil {
			r.HasProvince = true
			r.Province = fmt.Sprint(name)
			if alias, ok := opts.Aliases[r.Province]; ok {
				r.Province = alias
			}
			props[provinceProperty] = r.Province
		} else {
			props[provinceProperty] = nil
		}

		regions = append(regions, r)
	}

	if len(regions) == 0 {
		logger.Warn(ctx, "no boundaries matched country",
			zap.String("country", opts.Country), zap.Int("boundaries", len(boundaries)))
	}

	return regions, nil
}

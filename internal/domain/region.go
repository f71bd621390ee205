package domain

import (
	"github.com/ctessum/geom"
)

// Boundary is one record of an administrative-boundary dataset as read from the source.
type Boundary struct {
	Geometry   geom.Polygonal
	Properties map[string]interface{}
}

// Region is a province boundary that survived the country filter.
type Region struct {
	Province    string
	HasProvince bool
	Country     string
	Geometry    geom.Polygonal
	Properties  map[string]interface{}
}

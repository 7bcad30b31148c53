package model

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Point is a WGS84 position stored as a GeoJSON Point, coordinates in
// [longitude, latitude] order.
type Point struct {
	Lon float64
	Lat float64
}

// NewPoint returns a point, or nil for the 0,0 pair that upstream services
// use to signal "not found".
func NewPoint(lon, lat float64) *Point {
	if lon == 0 && lat == 0 {
		return nil
	}
	return &Point{Lon: lon, Lat: lat}
}

// IsOrigin reports whether p is the 0,0 "not found" pair. A nil point is
// not the origin.
func (p *Point) IsOrigin() bool {
	return p != nil && p.Lon == 0 && p.Lat == 0
}

// Geom returns the go-geom representation.
func (p Point) Geom() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat})
}

// MarshalJSON encodes {"type":"Point","coordinates":[lon,lat]}.
func (p Point) MarshalJSON() ([]byte, error) {
	b, err := geojson.Marshal(p.Geom())
	if err != nil {
		return nil, eris.Wrap(err, "model: encode geojson point")
	}
	return b, nil
}

// UnmarshalJSON decodes a GeoJSON Point geometry.
func (p *Point) UnmarshalJSON(b []byte) error {
	var g geom.T
	if err := geojson.Unmarshal(b, &g); err != nil {
		return eris.Wrap(err, "model: decode geojson")
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return eris.Errorf("model: geojson geometry is %T, want Point", g)
	}
	p.Lon, p.Lat = pt.X(), pt.Y()
	return nil
}

// UnmarshalYAML accepts either a GeoJSON mapping or a bare [lon, lat] pair.
func (p *Point) UnmarshalYAML(unmarshal func(any) error) error {
	var pair []float64
	if err := unmarshal(&pair); err == nil {
		if len(pair) != 2 {
			return eris.Errorf("model: point needs 2 coordinates, got %d", len(pair))
		}
		p.Lon, p.Lat = pair[0], pair[1]
		return nil
	}

	var obj struct {
		Type        string    `yaml:"type"`
		Coordinates []float64 `yaml:"coordinates"`
	}
	if err := unmarshal(&obj); err != nil {
		return eris.Wrap(err, "model: decode point")
	}
	if obj.Type != "" && obj.Type != "Point" {
		return eris.Errorf("model: geometry type %q, want Point", obj.Type)
	}
	if len(obj.Coordinates) != 2 {
		return eris.Errorf("model: point needs 2 coordinates, got %d", len(obj.Coordinates))
	}
	p.Lon, p.Lat = obj.Coordinates[0], obj.Coordinates[1]
	return nil
}

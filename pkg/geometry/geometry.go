// Package geometry converts (longitude, latitude) pairs to the point forms
// stored on a capture and back.
package geometry

import (
	"math"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// SRID is WGS 84, the reference system of every stored point.
const SRID = 4326

// EncodedPoint carries both persisted forms of one coordinate pair: the WKT
// text fed to ST_PointFromText and the point fed to ST_Point.
type EncodedPoint struct {
	WKT   string
	Point orb.Point
	SRID  int
}

// Lon and Lat are the spatial point's coordinates in insert order.
func (p EncodedPoint) Lon() float64 { return p.Point.Lon() }
func (p EncodedPoint) Lat() float64 { return p.Point.Lat() }

// Encode builds both forms from the same two numbers. WKT uses the shortest
// decimal form that parses back to the identical float64.
func Encode(lon, lat float64) (EncodedPoint, error) {
	if !finite(lon) {
		return EncodedPoint{}, migerrors.NewTransformErrorf("lon", "longitude must be finite, got %v", lon)
	}
	if !finite(lat) {
		return EncodedPoint{}, migerrors.NewTransformErrorf("lat", "latitude must be finite, got %v", lat)
	}

	point := orb.Point{lon, lat}
	return EncodedPoint{
		WKT:   wkt.MarshalString(point),
		Point: point,
		SRID:  SRID,
	}, nil
}

// Decode parses the WKT form and checks it against the spatial point.
func Decode(p EncodedPoint) (lon, lat float64, err error) {
	point, err := wkt.UnmarshalPoint(p.WKT)
	if err != nil {
		return 0, 0, migerrors.NewTransformError("wkt", "invalid point text").AddCause(err)
	}
	if p.SRID != SRID {
		return 0, 0, migerrors.NewTransformErrorf("srid", "expected SRID %d, got %d", SRID, p.SRID)
	}
	if !point.Equal(p.Point) {
		return 0, 0, migerrors.NewTransformErrorf("wkt", "text %s disagrees with point %v", p.WKT, p.Point)
	}
	return point.Lon(), point.Lat(), nil
}

// FromEWKB reads a point back from the store's binary form, as returned by
// ST_AsEWKB.
func FromEWKB(data []byte) (EncodedPoint, error) {
	g, srid, err := ewkb.Unmarshal(data)
	if err != nil {
		return EncodedPoint{}, migerrors.NewTransformError("ewkb", "invalid point binary").AddCause(err)
	}
	point, ok := g.(orb.Point)
	if !ok {
		return EncodedPoint{}, migerrors.NewTransformErrorf("ewkb", "expected a point, got %s", g.GeoJSONType())
	}

	return EncodedPoint{
		WKT:   wkt.MarshalString(point),
		Point: point,
		SRID:  srid,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

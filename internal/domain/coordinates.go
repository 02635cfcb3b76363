package domain

import "math"

// EarthRadiusMiles is the mean Earth radius used for every distance in the service.
// All distances are statute miles end-to-end.
const EarthRadiusMiles = 3959.0

// DistanceUnit is reported alongside every distance returned to callers.
const DistanceUnit = "miles"

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// DistanceMiles returns the great-circle distance to other using the haversine formula.
func (c Coordinates) DistanceMiles(other Coordinates) float64 {
	return DistanceMiles(c, other)
}

// DistanceMiles computes the haversine distance between a and b.
//
// Inputs are not validated. Out-of-range degrees still produce a finite
// (meaningless) number rather than an error.
func DistanceMiles(a, b Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h a hair outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMiles * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ValidCoordinates reports whether lat/lon fall inside the WGS-84 degree ranges.
// Geocoder results are checked with it before being stored; distance math never rejects points.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

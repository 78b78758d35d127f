// Package geo projects WGS84 geodetic coordinates into planar UTM metres
// and provides the great-circle distance used to sanity-check planar
// results. All matching in this repository happens in a single caller
// supplied UTM zone.
package geo

import (
	"fmt"
	"math"

	"github.com/wroge/wgs84"
)

// EarthRadius is the mean Earth radius in metres, used by Haversine.
const EarthRadius = 6371000.0

// maxMeridianOffset is how far (degrees of longitude) a coordinate may sit
// from a zone's central meridian before projection into that zone is
// refused. One neighbouring zone of slack keeps survey sites that straddle
// a zone boundary workable.
const maxMeridianOffset = 9.0

// Point is a projected position in metres (UTM easting/northing).
type Point struct {
	X float64
	Y float64
}

// DistanceTo returns the planar Euclidean distance to q in metres.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// CentralMeridian returns the central meridian of a UTM zone in degrees.
func CentralMeridian(zone int) float64 {
	return float64(zone)*6 - 183
}

// ZoneForLongitude returns the natural UTM zone for a longitude.
func ZoneForLongitude(lon float64) int {
	zone := int((lon+180)/6) + 1
	if zone > 60 {
		zone = 60
	}
	return zone
}

// ValidZone reports whether zone is a legal UTM zone number.
func ValidZone(zone int) bool {
	return zone >= 1 && zone <= 60
}

// ProjectUTM projects a WGS84 latitude/longitude into planar metres in the
// given UTM zone. Northings use the northern-hemisphere convention for all
// latitudes (southern points get negative Y, no false northing). Coordinates
// outside the zone's usable range return an error so callers can report the
// record and move on.
func ProjectUTM(lat, lon float64, zone int) (Point, error) {
	if !ValidZone(zone) {
		return Point{}, fmt.Errorf("utm zone must be 1..60, got %d", zone)
	}
	if lat < -80 || lat > 84 {
		return Point{}, fmt.Errorf("latitude %.6f outside UTM coverage (-80..84)", lat)
	}
	if lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("longitude %.6f out of range", lon)
	}
	if offset := math.Abs(lon - CentralMeridian(zone)); offset > maxMeridianOffset {
		return Point{}, fmt.Errorf("longitude %.6f is %.1f° from zone %d central meridian", lon, offset, zone)
	}

	// Always project with the northern form of the zone. Southern
	// latitudes come back with negative northings instead of the 10 000 km
	// false northing, so a site that straddles the equator stays
	// continuous in planar space.
	east, north, _ := wgs84.LonLat().To(wgs84.UTM(float64(zone), true))(lon, lat, 0)
	return Point{X: east, Y: north}, nil
}

// Haversine returns the great-circle distance in metres between two WGS84
// coordinates, assuming a spherical Earth. Used as an independent check on
// projected distances for nearby points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLon1 := lon1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	rLon2 := lon2 * math.Pi / 180

	dLat := rLat2 - rLat1
	dLon := rLon2 - rLon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

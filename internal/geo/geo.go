package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Distance calculates the great-circle distance between two coordinates
// using the Haversine formula. Returns kilometers.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ParseCoordinates parses the two coordinate string forms accepted on the
// wire: "25.0330,121.5654" and "lat:25.0330,lng:121.5654". Whitespace around
// tokens is tolerated. Returns an error for anything else, including values
// outside the valid latitude/longitude ranges.
func ParseCoordinates(s string) (Coordinates, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coordinates{}, fmt.Errorf("empty coordinate string")
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("expected two comma-separated values, got %d", len(parts))
	}

	latStr := strings.TrimSpace(parts[0])
	lonStr := strings.TrimSpace(parts[1])

	// Labeled form: "lat:25.0330,lng:121.5654".
	if strings.HasPrefix(strings.ToLower(latStr), "lat:") {
		latStr = strings.TrimSpace(latStr[len("lat:"):])
		lower := strings.ToLower(lonStr)
		switch {
		case strings.HasPrefix(lower, "lng:"):
			lonStr = strings.TrimSpace(lonStr[len("lng:"):])
		case strings.HasPrefix(lower, "lon:"):
			lonStr = strings.TrimSpace(lonStr[len("lon:"):])
		default:
			return Coordinates{}, fmt.Errorf("labeled coordinate string missing lng component")
		}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", latStr, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", lonStr, err)
	}

	coords := Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return Coordinates{}, fmt.Errorf("coordinates out of range: lat=%f, lon=%f", lat, lon)
	}
	return coords, nil
}

// FormatCoordinates renders coordinates back to the plain "lat,lon" form
// with four decimal places.
func FormatCoordinates(c Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// BoundingBox returns the min/max latitude and longitude of a box that
// contains the circle of radiusKm around the center. Longitude degrees
// shrink with latitude, so the delta is scaled by cos(lat).
func BoundingBox(center Coordinates, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / (111.0 * math.Cos(center.Latitude*math.Pi/180))

	minLat = math.Max(center.Latitude-latDelta, -90)
	maxLat = math.Min(center.Latitude+latDelta, 90)
	minLon = math.Max(center.Longitude-lonDelta, -180)
	maxLon = math.Min(center.Longitude+lonDelta, 180)
	return minLat, maxLat, minLon, maxLon
}

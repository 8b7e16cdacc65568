package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_SamePoint(t *testing.T) {
	d := Distance(25.0330, 121.5654, 25.0330, 121.5654)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestDistance_Symmetry(t *testing.T) {
	d1 := Distance(25.0330, 121.5654, 25.0478, 121.5319)
	d2 := Distance(25.0478, 121.5319, 25.0330, 121.5654)
	assert.InDelta(t, d1, d2, 1e-9)
	assert.Greater(t, d1, 0.0)
}

func TestDistance_KnownValue(t *testing.T) {
	// Taipei 101 to Taipei Main Station, roughly 4.7 km.
	d := Distance(25.0330, 121.5654, 25.0478, 121.5170)
	assert.InDelta(t, 4.7, d, 0.5)
}

func TestParseCoordinates_Plain(t *testing.T) {
	c, err := ParseCoordinates("25.0330,121.5654")
	require.NoError(t, err)
	assert.InDelta(t, 25.0330, c.Latitude, 1e-9)
	assert.InDelta(t, 121.5654, c.Longitude, 1e-9)
}

func TestParseCoordinates_Labeled(t *testing.T) {
	c, err := ParseCoordinates("lat:25.0330,lng:121.5654")
	require.NoError(t, err)
	assert.InDelta(t, 25.0330, c.Latitude, 1e-9)
	assert.InDelta(t, 121.5654, c.Longitude, 1e-9)
}

func TestParseCoordinates_Whitespace(t *testing.T) {
	c, err := ParseCoordinates("  25.0330 , 121.5654 ")
	require.NoError(t, err)
	assert.InDelta(t, 25.0330, c.Latitude, 1e-9)
	assert.InDelta(t, 121.5654, c.Longitude, 1e-9)
}

func TestParseCoordinates_Invalid(t *testing.T) {
	cases := []string{
		"",
		"台北市信義區",
		"25.0330",
		"25.0330,121.5654,10",
		"abc,def",
		"lat:25.0330,121.5654",
		"91.0,121.5654",
		"25.0330,181.0",
	}
	for _, input := range cases {
		_, err := ParseCoordinates(input)
		assert.Error(t, err, "input %q should not parse", input)
	}
}

func TestParseCoordinates_RoundTrip(t *testing.T) {
	original := Coordinates{Latitude: 25.0330, Longitude: 121.5654}
	parsed, err := ParseCoordinates(FormatCoordinates(original))
	require.NoError(t, err)
	assert.InDelta(t, original.Latitude, parsed.Latitude, 1e-4)
	assert.InDelta(t, original.Longitude, parsed.Longitude, 1e-4)
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	center := Coordinates{Latitude: 25.0330, Longitude: 121.5654}
	minLat, maxLat, minLon, maxLon := BoundingBox(center, 5)

	assert.Less(t, minLat, center.Latitude)
	assert.Greater(t, maxLat, center.Latitude)
	assert.Less(t, minLon, center.Longitude)
	assert.Greater(t, maxLon, center.Longitude)
}

func TestBoundingBox_ClampedAtPoles(t *testing.T) {
	_, maxLat, _, _ := BoundingBox(Coordinates{Latitude: 89.99, Longitude: 0}, 100)
	assert.LessOrEqual(t, maxLat, 90.0)
}

package types

import (
	"encoding/json"
)

type LocationCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c LocationCoordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// LocationInput is the untagged union accepted on the wire: either a string
// (an address or a "lat,lon" pair) or a coordinate object. Any other JSON
// shape is kept verbatim in Unrecognized for diagnostics instead of failing
// the request.
type LocationInput struct {
	Raw          string
	Coordinates  *LocationCoordinates
	Unrecognized string
}

func (l *LocationInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = LocationInput{Raw: s}
		return nil
	}

	var obj struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Latitude != nil && obj.Longitude != nil {
		*l = LocationInput{Coordinates: &LocationCoordinates{Latitude: *obj.Latitude, Longitude: *obj.Longitude}}
		return nil
	}

	*l = LocationInput{Unrecognized: string(data)}
	return nil
}

func (l LocationInput) MarshalJSON() ([]byte, error) {
	if l.Coordinates != nil {
		return json.Marshal(l.Coordinates)
	}
	if l.Unrecognized != "" {
		return []byte(l.Unrecognized), nil
	}
	return json.Marshal(l.Raw)
}

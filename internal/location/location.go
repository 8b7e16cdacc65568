package location

import (
	"github.com/yutingw/go-restaurant-suggestions/internal/geo"
	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

type Kind string

const (
	KindNone        Kind = "none"
	KindAddress     Kind = "address"
	KindCoordinates Kind = "coordinates"
	KindUnknown     Kind = "unknown"
)

// Default search radii in kilometers when the extracted criteria carry no
// radius of their own. Coordinates are the most precise anchor, so they get
// the tightest default.
const (
	DefaultRadiusCoordinatesKm = 5
	DefaultRadiusAddressKm     = 10
	DefaultRadiusNoneKm        = 15
)

// Normalized is the tagged form of a location input. Exactly the fields
// implied by Kind are set; Raw carries the unparsed text of an unrecognized
// input for diagnostics.
type Normalized struct {
	Kind        Kind
	Address     string
	Coordinates geo.Coordinates
	Raw         string
}

// Normalize classifies a raw location input. A string is first tried as a
// coordinate pair and falls back to an address; a coordinate object is taken
// as-is. Nil means no location.
func Normalize(input *types.LocationInput) Normalized {
	if input == nil {
		return Normalized{Kind: KindNone}
	}

	if input.Unrecognized != "" {
		return Normalized{Kind: KindUnknown, Raw: input.Unrecognized}
	}

	if input.Coordinates != nil {
		return Normalized{
			Kind: KindCoordinates,
			Coordinates: geo.Coordinates{
				Latitude:  input.Coordinates.Latitude,
				Longitude: input.Coordinates.Longitude,
			},
		}
	}

	if input.Raw == "" {
		return Normalized{Kind: KindNone}
	}

	if coords, err := geo.ParseCoordinates(input.Raw); err == nil {
		return Normalized{Kind: KindCoordinates, Coordinates: coords}
	}

	return Normalized{Kind: KindAddress, Address: input.Raw}
}

// DefaultRadiusKm returns the fallback search radius for this location kind.
func (n Normalized) DefaultRadiusKm() float64 {
	switch n.Kind {
	case KindCoordinates:
		return DefaultRadiusCoordinatesKm
	case KindAddress:
		return DefaultRadiusAddressKm
	default:
		return DefaultRadiusNoneKm
	}
}

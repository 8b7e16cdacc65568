package types

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is a single catalog entry. DistanceKm is only set when the
// search was anchored to coordinates.
type Restaurant struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	NameEn          string    `json:"name_en,omitempty"`
	CuisineType     []string  `json:"cuisine_type"`
	PriceRange      string    `json:"price_range,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	District        string    `json:"district,omitempty"`
	City            string    `json:"city,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	AverageRating   float64   `json:"average_rating"`
	TotalReviews    int       `json:"total_reviews"`
	PopularityScore float64   `json:"popularity_score"`
	Description     string    `json:"description,omitempty"`
	IsFeatured      bool      `json:"is_featured"`
	Tags            []string  `json:"tags,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
	DistanceKm      *float64  `json:"distance_km,omitempty"`
}

// SearchCriteria accumulates over a conversation until the required fields
// (cuisine and radius) are both present.
type SearchCriteria struct {
	Cuisine             string   `json:"cuisine,omitempty"`
	RadiusMeters        int      `json:"radius,omitempty"`
	PriceLevel          int      `json:"price_level,omitempty"`
	RatingMin           float64  `json:"rating_min,omitempty"`
	TryNew              *bool    `json:"try_new,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	Atmosphere          string   `json:"atmosphere,omitempty"`
	GroupSize           int      `json:"group_size,omitempty"`
}

// Merge copies the fields set on other into c, leaving everything else alone.
func (c *SearchCriteria) Merge(other SearchCriteria) {
	if other.Cuisine != "" {
		c.Cuisine = other.Cuisine
	}
	if other.RadiusMeters > 0 {
		c.RadiusMeters = other.RadiusMeters
	}
	if other.PriceLevel > 0 {
		c.PriceLevel = other.PriceLevel
	}
	if other.RatingMin > 0 {
		c.RatingMin = other.RatingMin
	}
	if other.TryNew != nil {
		c.TryNew = other.TryNew
	}
	if len(other.DietaryRestrictions) > 0 {
		c.DietaryRestrictions = other.DietaryRestrictions
	}
	if other.Atmosphere != "" {
		c.Atmosphere = other.Atmosphere
	}
	if other.GroupSize > 0 {
		c.GroupSize = other.GroupSize
	}
}

// MissingRequired reports which of the required fields are still unset.
func (c SearchCriteria) MissingRequired() []string {
	var missing []string
	if c.RadiusMeters <= 0 {
		missing = append(missing, "radius")
	}
	if c.Cuisine == "" {
		missing = append(missing, "cuisine")
	}
	return missing
}

type ResponseType string

const (
	ResponseSuccess ResponseType = "success"
	ResponsePartial ResponseType = "partial"
	ResponseError   ResponseType = "error"
)

// SearchRequest is the POST /search body. Location accepts either a free
// string or a {latitude, longitude} object.
type SearchRequest struct {
	UserID    string         `json:"user_id"`
	UserInput string         `json:"user_input"`
	Location  *LocationInput `json:"location,omitempty"`
	Time      string         `json:"time,omitempty"`
	Mode      string         `json:"mode,omitempty"`
}

// SearchModeSmart switches the pipeline to the one-shot analysis path:
// no follow-up questions, missing fields are filled with defaults.
const SearchModeSmart = "smart"

type SearchResponse struct {
	Type            ResponseType           `json:"type"`
	Message         string                 `json:"message"`
	Recommendations []Restaurant           `json:"recommendations"`
	Criteria        *SearchCriteria        `json:"criteria,omitempty"`
	MissingFields   []string               `json:"missing_fields"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// RestaurantFilter is the repository-level query shape built from merged
// search criteria. Latitude, Longitude and RadiusKm are set together or not
// at all; when absent, Address narrows by text instead.
type RestaurantFilter struct {
	Cuisine    string
	PriceLevel int
	MinRating  float64
	Query      string
	TryNew     *bool
	Address    string
	Latitude   *float64
	Longitude  *float64
	RadiusKm   *float64
	Limit      int
}

// Geo reports whether the filter carries a usable coordinate anchor.
func (f RestaurantFilter) Geo() bool {
	return f.Latitude != nil && f.Longitude != nil && f.RadiusKm != nil
}

type CuisineStat struct {
	Cuisine         string  `json:"cuisine"`
	RestaurantCount int     `json:"restaurant_count"`
	AvgRating       float64 `json:"avg_rating"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

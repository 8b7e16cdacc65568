package restaurants

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yutingw/go-restaurant-suggestions/internal/geo"
	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

var _ Repository = (*InMemoryRepository)(nil)

// InMemoryRepository serves the seeded catalog without a database. It applies
// the same narrowing and ordering rules as the Postgres implementation so the
// two backends are interchangeable behind the config switch.
type InMemoryRepository struct {
	logger *slog.Logger

	mu          sync.RWMutex
	restaurants []types.Restaurant
}

func NewInMemoryRepository(logger *slog.Logger) *InMemoryRepository {
	return &InMemoryRepository{
		logger:      logger,
		restaurants: seedRestaurants(),
	}
}

func seedRestaurants() []types.Restaurant {
	now := time.Now().UTC()
	return []types.Restaurant{
		{
			ID:              uuid.MustParse("5f1b2c3d-0001-4a6b-8c9d-1e2f3a4b5c6d"),
			Name:            "築地壽司",
			NameEn:          "Tsukiji Sushi",
			CuisineType:     []string{"日式"},
			PriceRange:      "$$$",
			Phone:           "02-1234-5678",
			Address:         "台北市大安區忠孝東路四段100號",
			District:        "大安區",
			City:            "台北市",
			Latitude:        25.0418,
			Longitude:       121.5440,
			AverageRating:   4.5,
			TotalReviews:    320,
			PopularityScore: 95,
			Description:     "正宗日式壽司，新鮮食材",
			IsFeatured:      true,
			Tags:            []string{"經典", "壽司"},
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              uuid.MustParse("5f1b2c3d-0002-4a6b-8c9d-1e2f3a4b5c6d"),
			Name:            "新宿拉麵",
			NameEn:          "Shinjuku Ramen",
			CuisineType:     []string{"日式"},
			PriceRange:      "$$",
			Phone:           "02-2345-6789",
			Address:         "台北市信義區信義路五段7號",
			District:        "信義區",
			City:            "台北市",
			Latitude:        25.0330,
			Longitude:       121.5654,
			AverageRating:   4.2,
			TotalReviews:    210,
			PopularityScore: 88,
			Description:     "創新日式拉麵，口味獨特",
			Tags:            []string{"新口味", "拉麵"},
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              uuid.MustParse("5f1b2c3d-0003-4a6b-8c9d-1e2f3a4b5c6d"),
			Name:            "川味軒",
			NameEn:          "Sichuan House",
			CuisineType:     []string{"川菜"},
			PriceRange:      "$$",
			Phone:           "02-3456-7890",
			Address:         "台北市中山區南京東路二段76號",
			District:        "中山區",
			City:            "台北市",
			Latitude:        25.0520,
			Longitude:       121.5347,
			AverageRating:   4.3,
			TotalReviews:    180,
			PopularityScore: 82,
			Description:     "道地川菜，香辣過癮",
			Tags:            []string{"經典", "辣味"},
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              uuid.MustParse("5f1b2c3d-0004-4a6b-8c9d-1e2f3a4b5c6d"),
			Name:            "義式風情",
			NameEn:          "Bella Italia",
			CuisineType:     []string{"義大利菜"},
			PriceRange:      "$$$",
			Phone:           "02-4567-8901",
			Address:         "台北市大安區敦化南路一段187號",
			District:        "大安區",
			City:            "台北市",
			Latitude:        25.0405,
			Longitude:       121.5487,
			AverageRating:   4.6,
			TotalReviews:    260,
			PopularityScore: 90,
			Description:     "正宗義大利料理，浪漫氛圍",
			IsFeatured:      true,
			Tags:            []string{"經典", "義式"},
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}

func (r *InMemoryRepository) Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []types.Restaurant
	for _, restaurant := range r.restaurants {
		candidate := restaurant
		candidate.DistanceKm = nil
		if !matchesCuisine(candidate, filter.Cuisine) {
			continue
		}
		if !matchesPrice(candidate, filter.PriceLevel) {
			continue
		}
		if filter.MinRating > 0 && candidate.AverageRating < filter.MinRating {
			continue
		}
		if !matchesQuery(candidate, filter.Query) {
			continue
		}
		if !matchesTryNew(candidate, filter.TryNew) {
			continue
		}
		if filter.Geo() {
			d := geo.Distance(*filter.Latitude, *filter.Longitude, candidate.Latitude, candidate.Longitude)
			if d > *filter.RadiusKm {
				continue
			}
			candidate.DistanceKm = &d
		} else if filter.Address != "" && !matchesAddress(candidate, filter.Address) {
			continue
		}
		results = append(results, candidate)
	}

	if filter.Geo() {
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i], results[j]
			if *a.DistanceKm != *b.DistanceKm {
				return *a.DistanceKm < *b.DistanceKm
			}
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
			if a.PopularityScore != b.PopularityScore {
				return a.PopularityScore > b.PopularityScore
			}
			return a.TotalReviews > b.TotalReviews
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i], results[j]
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			if a.PopularityScore != b.PopularityScore {
				return a.PopularityScore > b.PopularityScore
			}
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
			return a.TotalReviews > b.TotalReviews
		})
	}

	limit := clampLimit(filter.Limit)
	if len(results) > limit {
		results = results[:limit]
	}
	r.logger.DebugContext(ctx, "In-memory restaurant search completed", slog.Int("count", len(results)))
	return results, nil
}

func matchesCuisine(restaurant types.Restaurant, cuisine string) bool {
	if cuisine == "" {
		return true
	}
	needle := strings.ToLower(cuisine)
	for _, elem := range restaurant.CuisineType {
		if strings.Contains(strings.ToLower(elem), needle) {
			return true
		}
	}
	return false
}

func matchesPrice(restaurant types.Restaurant, level int) bool {
	patterns, ok := pricePatterns[level]
	if !ok {
		return true
	}
	priceRange := strings.ToLower(restaurant.PriceRange)
	for _, pattern := range patterns {
		if strings.Contains(priceRange, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func matchesQuery(restaurant types.Restaurant, query string) bool {
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)
	for _, field := range []string{
		restaurant.Name, restaurant.NameEn, restaurant.Description,
		restaurant.Address, restaurant.District,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func matchesTryNew(restaurant types.Restaurant, tryNew *bool) bool {
	if tryNew == nil {
		return true
	}
	tag := "經典"
	if *tryNew {
		tag = "新口味"
	}
	for _, t := range restaurant.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func matchesAddress(restaurant types.Restaurant, address string) bool {
	needle := strings.ToLower(address)
	for _, field := range []string{restaurant.Address, restaurant.District, restaurant.City} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, restaurant := range r.restaurants {
		if restaurant.ID == id {
			found := restaurant
			return &found, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) PopularCuisines(ctx context.Context, limit int) ([]types.CuisineStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	type acc struct {
		count int
		sum   float64
	}
	totals := make(map[string]*acc)
	var order []string
	for _, restaurant := range r.restaurants {
		for _, cuisine := range restaurant.CuisineType {
			if _, ok := totals[cuisine]; !ok {
				totals[cuisine] = &acc{}
				order = append(order, cuisine)
			}
			totals[cuisine].count++
			totals[cuisine].sum += restaurant.AverageRating
		}
	}

	stats := make([]types.CuisineStat, 0, len(order))
	for _, cuisine := range order {
		a := totals[cuisine]
		stats = append(stats, types.CuisineStat{
			Cuisine:         cuisine,
			RestaurantCount: a.count,
			AvgRating:       a.sum / float64(a.count),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].RestaurantCount != stats[j].RestaurantCount {
			return stats[i].RestaurantCount > stats[j].RestaurantCount
		}
		return stats[i].AvgRating > stats[j].AvgRating
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.restaurants), nil
}

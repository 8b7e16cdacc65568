package restaurants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

var searchColumns = []string{
	"id", "name", "name_en", "cuisine_type", "price_range", "phone",
	"address", "district", "city", "latitude", "longitude",
	"average_rating", "total_reviews", "popularity_score",
	"description", "is_featured", "tags", "created_at", "updated_at",
}

func sampleRow(rows *pgxmock.Rows, id uuid.UUID, distance ...float64) *pgxmock.Rows {
	now := time.Now()
	values := []interface{}{
		id, "築地壽司", "Tsukiji Sushi", []string{"日式"}, "$$$", "02-1234-5678",
		"台北市大安區忠孝東路四段100號", "大安區", "台北市", 25.0418, 121.5440,
		4.5, int64(320), 95.0,
		"正宗日式壽司，新鮮食材", true, []string{"經典", "壽司"}, now, now,
	}
	for _, d := range distance {
		values = append(values, d)
	}
	return rows.AddRow(values...)
}

func TestBuildSearchQuery_GeoFilter(t *testing.T) {
	lat, lon, radius := 25.0330, 121.5654, 3.0
	query, args := buildSearchQuery(types.RestaurantFilter{
		Cuisine:  "日式",
		Latitude: &lat, Longitude: &lon, RadiusKm: &radius,
	})

	assert.Contains(t, query, "unnest(cuisine_type)")
	assert.Contains(t, query, "restaurant_distance($2, $3, latitude, longitude)")
	assert.Contains(t, query, "AS distance_km")
	assert.Contains(t, query, "ORDER BY distance_km ASC")
	assert.Equal(t, []interface{}{"%日式%", lat, lon, radius, 20}, args)
}

func TestBuildSearchQuery_AddressFallback(t *testing.T) {
	query, args := buildSearchQuery(types.RestaurantFilter{Address: "大安區", Limit: 5})

	assert.NotContains(t, query, "restaurant_distance")
	assert.Contains(t, query, "address ILIKE $1")
	assert.Contains(t, query, "city ILIKE $1")
	assert.Contains(t, query, "ORDER BY is_featured DESC")
	assert.Equal(t, []interface{}{"%大安區%", 5}, args)
}

func TestBuildSearchQuery_PricePatternsORed(t *testing.T) {
	query, args := buildSearchQuery(types.RestaurantFilter{PriceLevel: 4})

	assert.Contains(t, query, "price_range ILIKE $1 OR price_range ILIKE $2 OR price_range ILIKE $3")
	assert.Equal(t, []interface{}{"%$$%", "%luxury%", "%premium%", 20}, args)
}

func TestBuildSearchQuery_TryNewTag(t *testing.T) {
	tryNew := true
	_, args := buildSearchQuery(types.RestaurantFilter{TryNew: &tryNew})
	assert.Equal(t, []interface{}{"新口味", 20}, args)

	tryNew = false
	_, args = buildSearchQuery(types.RestaurantFilter{TryNew: &tryNew})
	assert.Equal(t, []interface{}{"經典", 20}, args)
}

func TestBuildSearchQuery_LimitClamped(t *testing.T) {
	_, args := buildSearchQuery(types.RestaurantFilter{Limit: 500})
	assert.Equal(t, []interface{}{100}, args)

	_, args = buildSearchQuery(types.RestaurantFilter{Limit: -3})
	assert.Equal(t, []interface{}{20}, args)
}

func TestPostgresSearch_GeoScan(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	lat, lon, radius := 25.0330, 121.5654, 3.0
	id := uuid.New()
	rows := sampleRow(pgxmock.NewRows(append(append([]string{}, searchColumns...), "distance_km")), id, 2.37)
	mockPool.ExpectQuery("FROM restaurants").
		WithArgs("%日式%", lat, lon, radius, 20).
		WillReturnRows(rows)

	repo := NewPostgresRepository(mockPool, memTestLogger)
	results, err := repo.Search(context.Background(), types.RestaurantFilter{
		Cuisine:  "日式",
		Latitude: &lat, Longitude: &lon, RadiusKm: &radius,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, id, results[0].ID)
	assert.Equal(t, "築地壽司", results[0].Name)
	assert.Equal(t, []string{"日式"}, results[0].CuisineType)
	assert.Equal(t, 320, results[0].TotalReviews)
	require.NotNil(t, results[0].DistanceKm)
	assert.InDelta(t, 2.37, *results[0].DistanceKm, 1e-9)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresGetByID(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectQuery("WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sampleRow(pgxmock.NewRows(searchColumns), id))

	repo := NewPostgresRepository(mockPool, memTestLogger)
	restaurant, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, restaurant)
	assert.Equal(t, "築地壽司", restaurant.Name)
	assert.Nil(t, restaurant.DistanceKm)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectQuery("WHERE id = \\$1").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mockPool, memTestLogger)
	restaurant, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, restaurant)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresPopularCuisines(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	rows := pgxmock.NewRows([]string{"cuisine", "restaurant_count", "avg_rating"}).
		AddRow("日式", 2, 4.35).
		AddRow("義大利菜", 1, 4.6)
	mockPool.ExpectQuery("GROUP BY elem").
		WithArgs(5).
		WillReturnRows(rows)

	repo := NewPostgresRepository(mockPool, memTestLogger)
	stats, err := repo.PopularCuisines(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "日式", stats[0].Cuisine)
	assert.Equal(t, 2, stats[0].RestaurantCount)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresCount(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT COUNT\\(\\*\\) FROM restaurants").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewPostgresRepository(mockPool, memTestLogger)
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

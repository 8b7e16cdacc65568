package restaurants

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// pricePatterns maps a numeric price level onto the free-form price_range
// strings the catalog carries. Levels overlap on purpose: "$$" matches both
// mid and high tiers the way the data is labelled.
var pricePatterns = map[int][]string{
	1: {"$", "budget", "cheap", "low"},
	2: {"$", "moderate", "mid", "medium"},
	3: {"$$", "expensive", "high"},
	4: {"$$", "luxury", "premium"},
}

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error)
	PopularCuisines(ctx context.Context, limit int) ([]types.CuisineStat, error)
	Count(ctx context.Context) (int, error)
}

// DBPool is the slice of pgxpool.Pool the repository needs. Kept narrow so
// tests can substitute a mock pool.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DBPool = (*pgxpool.Pool)(nil)

type PostgresRepository struct {
	logger *slog.Logger
	pgpool DBPool
}

func NewPostgresRepository(pool DBPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pool,
	}
}

const restaurantColumns = `
        id, name, name_en, cuisine_type, price_range, phone,
        address, district, city, latitude, longitude,
        average_rating, total_reviews, popularity_score,
        description, is_featured, tags, created_at, updated_at`

func (r *PostgresRepository) Search(ctx context.Context, filter types.RestaurantFilter) ([]types.Restaurant, error) {
	ctx, span := otel.Tracer("RestaurantRepository").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("filter.cuisine", filter.Cuisine),
		attribute.Int("filter.price_level", filter.PriceLevel),
		attribute.Bool("filter.geo", filter.Geo()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Search"))

	query, args := buildSearchQuery(filter)

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Restaurant search query failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	defer rows.Close()

	var results []types.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows, filter.Geo())
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		results = append(results, restaurant)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate restaurant rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(results)))
	l.DebugContext(ctx, "Restaurant search completed", slog.Int("count", len(results)))
	return results, nil
}

// buildSearchQuery assembles the WHERE clause and positional args for one
// search. Coordinate narrowing wins over address narrowing when both are set.
func buildSearchQuery(filter types.RestaurantFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Cuisine != "" {
		p := next("%" + filter.Cuisine + "%")
		conditions = append(conditions,
			fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(cuisine_type) elem WHERE LOWER(elem) LIKE LOWER(%s))", p))
	}

	if patterns, ok := pricePatterns[filter.PriceLevel]; ok {
		var ors []string
		for _, pattern := range patterns {
			p := next("%" + pattern + "%")
			ors = append(ors, fmt.Sprintf("price_range ILIKE %s", p))
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	if filter.MinRating > 0 {
		p := next(filter.MinRating)
		conditions = append(conditions, fmt.Sprintf("average_rating >= %s", p))
	}

	if filter.Query != "" {
		p := next("%" + filter.Query + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE %[1]s OR name_en ILIKE %[1]s OR description ILIKE %[1]s OR address ILIKE %[1]s OR district ILIKE %[1]s)", p))
	}

	if filter.TryNew != nil {
		tag := "經典"
		if *filter.TryNew {
			tag = "新口味"
		}
		p := next(tag)
		conditions = append(conditions, fmt.Sprintf("%s = ANY(tags)", p))
	}

	var distanceExpr string
	if filter.Geo() {
		lat := next(*filter.Latitude)
		lon := next(*filter.Longitude)
		distanceExpr = fmt.Sprintf("restaurant_distance(%s, %s, latitude, longitude)", lat, lon)
		radius := next(*filter.RadiusKm)
		conditions = append(conditions, fmt.Sprintf("%s <= %s", distanceExpr, radius))
	} else if filter.Address != "" {
		p := next("%" + filter.Address + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(address ILIKE %[1]s OR district ILIKE %[1]s OR city ILIKE %[1]s)", p))
	}

	columns := restaurantColumns
	orderBy := `is_featured DESC, popularity_score DESC NULLS LAST,
        average_rating DESC NULLS LAST, total_reviews DESC NULLS LAST`
	if distanceExpr != "" {
		columns += ",\n        " + distanceExpr + " AS distance_km"
		orderBy = `distance_km ASC, average_rating DESC NULLS LAST,
        popularity_score DESC NULLS LAST, total_reviews DESC NULLS LAST`
	}

	query := "SELECT" + columns + "\n    FROM restaurants"
	if len(conditions) > 0 {
		query += "\n    WHERE " + strings.Join(conditions, "\n      AND ")
	}
	query += "\n    ORDER BY " + orderBy
	query += fmt.Sprintf("\n    LIMIT %s", next(clampLimit(filter.Limit)))

	return query, args
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

func scanRestaurant(row pgx.Row, withDistance bool) (types.Restaurant, error) {
	var (
		restaurant types.Restaurant
		nameEn     sql.NullString
		priceRange sql.NullString
		phone      sql.NullString
		address    sql.NullString
		district   sql.NullString
		city       sql.NullString
		desc       sql.NullString
		rating     sql.NullFloat64
		popularity sql.NullFloat64
		reviews    sql.NullInt64
		distance   sql.NullFloat64
	)

	dest := []interface{}{
		&restaurant.ID, &restaurant.Name, &nameEn, &restaurant.CuisineType,
		&priceRange, &phone, &address, &district, &city,
		&restaurant.Latitude, &restaurant.Longitude,
		&rating, &reviews, &popularity,
		&desc, &restaurant.IsFeatured, &restaurant.Tags,
		&restaurant.CreatedAt, &restaurant.UpdatedAt,
	}
	if withDistance {
		dest = append(dest, &distance)
	}
	if err := row.Scan(dest...); err != nil {
		return types.Restaurant{}, err
	}

	restaurant.NameEn = nameEn.String
	restaurant.PriceRange = priceRange.String
	restaurant.Phone = phone.String
	restaurant.Address = address.String
	restaurant.District = district.String
	restaurant.City = city.String
	restaurant.Description = desc.String
	restaurant.AverageRating = rating.Float64
	restaurant.PopularityScore = popularity.Float64
	restaurant.TotalReviews = int(reviews.Int64)
	if distance.Valid {
		d := distance.Float64
		restaurant.DistanceKm = &d
	}
	return restaurant, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	ctx, span := otel.Tracer("RestaurantRepository").Start(ctx, "GetByID", trace.WithAttributes(
		attribute.String("restaurant.id", id.String()),
	))
	defer span.End()

	query := "SELECT" + restaurantColumns + "\n    FROM restaurants\n    WHERE id = $1"
	restaurant, err := scanRestaurant(r.pgpool.QueryRow(ctx, query, id), false)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to fetch restaurant %s: %w", id, err)
	}
	return &restaurant, nil
}

func (r *PostgresRepository) PopularCuisines(ctx context.Context, limit int) ([]types.CuisineStat, error) {
	ctx, span := otel.Tracer("RestaurantRepository").Start(ctx, "PopularCuisines")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	query := `
        SELECT elem AS cuisine, COUNT(*) AS restaurant_count,
               COALESCE(AVG(average_rating), 0) AS avg_rating
        FROM restaurants, unnest(cuisine_type) elem
        GROUP BY elem
        ORDER BY restaurant_count DESC, avg_rating DESC
        LIMIT $1`

	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to fetch popular cuisines: %w", err)
	}
	defer rows.Close()

	var stats []types.CuisineStat
	for rows.Next() {
		var stat types.CuisineStat
		if err := rows.Scan(&stat.Cuisine, &stat.RestaurantCount, &stat.AvgRating); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan cuisine stat: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate cuisine stats: %w", err)
	}
	return stats, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("RestaurantRepository").Start(ctx, "Count")
	defer span.End()

	var count int
	if err := r.pgpool.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}
	return count, nil
}

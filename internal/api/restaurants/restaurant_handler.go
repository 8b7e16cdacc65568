package restaurants

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yutingw/go-restaurant-suggestions/internal/api"
	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// SearchRestaurants runs one conversational search turn.
func (h *Handler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SearchRestaurants").Start(r.Context(), "SearchRestaurants", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SearchRestaurants"))
	l.DebugContext(ctx, "Search handler invoked")

	var req types.SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.UserInput == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "user_input is required")
		return
	}
	if req.Location != nil && req.Location.Coordinates != nil && !req.Location.Coordinates.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location coordinates are out of range")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(req.UserID))
	l = l.With(slog.String("userID", req.UserID))

	resp := h.service.ProcessSearch(ctx, req)
	l.InfoContext(ctx, "Search turn completed", slog.String("type", string(resp.Type)))
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetRestaurantByID returns a single catalog entry.
func (h *Handler) GetRestaurantByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GetRestaurantByID").Start(r.Context(), "GetRestaurantByID", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/restaurants/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetRestaurantByID"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.WarnContext(ctx, "Invalid restaurant ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid restaurant ID format")
		return
	}

	restaurant, err := h.service.GetRestaurant(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch restaurant", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch restaurant")
		return
	}
	if restaurant == nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Restaurant not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, restaurant)
}

// GetPopularCuisines returns cuisine aggregates ordered by catalog coverage.
func (h *Handler) GetPopularCuisines(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GetPopularCuisines").Start(r.Context(), "GetPopularCuisines", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/cuisines/popular"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPopularCuisines"))

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	stats, err := h.service.PopularCuisines(ctx, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch popular cuisines", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch popular cuisines")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"cuisines": stats,
	})
}

// Health reports service liveness and catalog reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Health").Start(r.Context(), "Health", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/health"),
	))
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.service.Health(ctx))
}

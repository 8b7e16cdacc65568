package sessions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yutingw/go-restaurant-suggestions/internal/api"
	"github.com/yutingw/go-restaurant-suggestions/internal/session"
)

type Handler struct {
	store  session.Store
	logger *slog.Logger
}

func NewHandler(store session.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// GetSessionStatus reports whether the user's conversation is ready for a
// fresh search.
func (h *Handler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GetSessionStatus").Start(r.Context(), "GetSessionStatus", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/session/{user_id}/status"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetSessionStatus"))

	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID))

	status := h.store.Status(userID)
	l.DebugContext(ctx, "Session status fetched",
		slog.String("userID", userID),
		slog.Int("message_count", status.MessageCount),
	)
	api.WriteJSONResponse(w, r, http.StatusOK, status)
}

// ClearSession wipes the user's conversation history and criteria.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ClearSession").Start(r.Context(), "ClearSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/session/{user_id}/clear"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ClearSession"))

	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID))

	cleared := h.store.Clear(userID)
	l.InfoContext(ctx, "Session cleared",
		slog.String("userID", userID),
		slog.Int("cleared_messages", cleared),
	)
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message":          "會話已清除",
		"cleared_messages": cleared,
		"user_id":          userID,
	})
}

package restaurants

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/yutingw/go-restaurant-suggestions/app/observability/metrics"
	generativeAI "github.com/yutingw/go-restaurant-suggestions/internal/api/generative_ai"
	"github.com/yutingw/go-restaurant-suggestions/internal/extract"
	"github.com/yutingw/go-restaurant-suggestions/internal/geo"
	"github.com/yutingw/go-restaurant-suggestions/internal/location"
	"github.com/yutingw/go-restaurant-suggestions/internal/prompt"
	"github.com/yutingw/go-restaurant-suggestions/internal/session"
	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

// Canned zh-TW replies for the paths where the model is unavailable or has
// nothing useful to say.
const (
	msgSearchError     = "搜尋過程中發生錯誤，請重新開始搜尋。"
	msgNoResults       = "抱歉，沒有找到符合條件的餐廳，請嘗試調整搜尋條件"
	msgAnalysisFailure = "抱歉，我現在無法理解您的需求，請重新描述您想要的餐廳類型。"
	msgFoundFmt        = "為您找到 %d 家符合條件的餐廳"
)

// Session error policies. Rollback keeps the accumulated conversation (only
// the failed turn's additions, if any, are undone); reset wipes it.
const (
	PolicyRollback = "rollback"
	PolicyReset    = "reset"
)

const serviceVersion = "1.0.0"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ProcessSearch(ctx context.Context, req types.SearchRequest) types.SearchResponse
	GetRestaurant(ctx context.Context, id uuid.UUID) (*types.Restaurant, error)
	PopularCuisines(ctx context.Context, limit int) ([]types.CuisineStat, error)
	Health(ctx context.Context) types.HealthResponse
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	store    session.Store
	ai       generativeAI.Client
	prompts  *prompt.Builder
	cache    *cache.Cache
	metrics  *metrics.AppMetrics
	defaults prompt.SamplingParams
	policy   string
}

func NewService(
	repo Repository,
	store session.Store,
	ai generativeAI.Client,
	prompts *prompt.Builder,
	m *metrics.AppMetrics,
	defaults prompt.SamplingParams,
	errorPolicy string,
	logger *slog.Logger,
) *ServiceImpl {
	if errorPolicy != PolicyReset {
		errorPolicy = PolicyRollback
	}
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		store:    store,
		ai:       ai,
		prompts:  prompts,
		cache:    cache.New(5*time.Minute, 10*time.Minute),
		metrics:  m,
		defaults: defaults,
		policy:   errorPolicy,
	}
}

// ProcessSearch runs one conversation turn. It never returns an error: every
// failure mode maps to a response the client can render, and the session
// error policy decides what happens to accumulated state.
func (s *ServiceImpl) ProcessSearch(ctx context.Context, req types.SearchRequest) types.SearchResponse {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "ProcessSearch", trace.WithAttributes(
		attribute.String("user.id", req.UserID),
		attribute.String("search.mode", req.Mode),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ProcessSearch"), slog.String("user_id", req.UserID))
	start := time.Now()

	var resp types.SearchResponse
	if req.Mode == types.SearchModeSmart {
		resp = s.smartSearch(ctx, l, req)
	} else {
		resp = s.conversationalSearch(ctx, l, req)
	}

	s.metrics.SearchRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("type", string(resp.Type))))
	s.metrics.SearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("response.type", string(resp.Type)))
	return resp
}

func (s *ServiceImpl) conversationalSearch(ctx context.Context, l *slog.Logger, req types.SearchRequest) types.SearchResponse {
	snapshot := s.store.GetOrCreate(req.UserID)
	loc := location.Normalize(req.Location)

	systemPrompt, err := s.prompts.Build(prompt.IntentAnalysis, s.promptContext(req, loc, snapshot.Criteria))
	if err != nil {
		l.ErrorContext(ctx, "Failed to build intent prompt", slog.Any("error", err))
		return s.failTurn(ctx, l, req.UserID)
	}

	raw, err := s.generate(ctx, prompt.IntentAnalysis, systemPrompt, req.UserInput)
	if err != nil {
		l.ErrorContext(ctx, "Intent analysis call failed", slog.Any("error", err))
		return s.failTurn(ctx, l, req.UserID)
	}

	result := extract.ParseIntent(ctx, s.logger, raw)
	if !result.Success {
		l.WarnContext(ctx, "Intent analysis did not understand the input")
		return types.SearchResponse{
			Type:          types.ResponsePartial,
			Message:       msgAnalysisFailure,
			Criteria:      &snapshot.Criteria,
			MissingFields: result.MissingFields(snapshot.Criteria),
			Metadata:      map[string]interface{}{"analysis_failed": true},
		}
	}

	s.store.UpdateCriteria(req.UserID, result.Extracted)
	s.store.AddMessage(req.UserID, types.RoleUser, req.UserInput)

	merged := snapshot.Criteria
	merged.Merge(result.Extracted)

	if missing := result.MissingFields(snapshot.Criteria); len(missing) > 0 {
		question := s.followUpQuestion(ctx, l, missing)
		s.store.AddMessage(req.UserID, types.RoleAssistant, question)
		status := s.store.Status(req.UserID)
		return types.SearchResponse{
			Type:          types.ResponsePartial,
			Message:       question,
			Criteria:      &merged,
			MissingFields: missing,
			Metadata: map[string]interface{}{
				"needs_more_info":       true,
				"session_message_count": status.MessageCount,
			},
		}
	}

	// Repository failures degrade to an empty result instead of erroring the
	// turn; the accumulated conversation stays intact for a retry.
	results, repoErr := s.repo.Search(ctx, buildFilter(merged, loc))
	if repoErr != nil {
		l.ErrorContext(ctx, "Restaurant search failed, degrading to empty result", slog.Any("error", repoErr))
		results = nil
	}

	if len(results) == 0 {
		s.store.AddMessage(req.UserID, types.RoleAssistant, msgNoResults)
		metadata := map[string]interface{}{"result_count": 0}
		if repoErr != nil {
			metadata["repository_error"] = true
		}
		return types.SearchResponse{
			Type:     types.ResponsePartial,
			Message:  msgNoResults,
			Criteria: &merged,
			Metadata: metadata,
		}
	}

	message := s.searchMessage(ctx, l, req, merged, results)

	// The turn is complete: the next search starts from a fresh session.
	s.store.ClearHistory(req.UserID)
	s.store.ResetCriteria(req.UserID)

	return types.SearchResponse{
		Type:            types.ResponseSuccess,
		Message:         message,
		Recommendations: results,
		Criteria:        &merged,
		Metadata: map[string]interface{}{
			"result_count":    len(results),
			"session_cleared": true,
		},
	}
}

// smartSearch is the one-shot path: no follow-up questions, no session state.
// Missing parameters are filled with defaults instead of asked for.
func (s *ServiceImpl) smartSearch(ctx context.Context, l *slog.Logger, req types.SearchRequest) types.SearchResponse {
	loc := location.Normalize(req.Location)

	var result extract.SmartResult
	systemPrompt, err := s.prompts.Build(prompt.SmartAnalysis, s.promptContext(req, loc, types.SearchCriteria{}))
	if err == nil {
		var raw string
		raw, err = s.generate(ctx, prompt.SmartAnalysis, systemPrompt, req.UserInput)
		if err == nil {
			result = extract.ParseSmartAnalysis(ctx, s.logger, raw)
		}
	}
	if err != nil {
		l.WarnContext(ctx, "Smart analysis unavailable, using defaults", slog.Any("error", err))
		result = extract.SmartResult{Criteria: extract.SmartDefaults(), Confidence: 0.3}
	}

	results, repoErr := s.repo.Search(ctx, buildFilter(result.Criteria, loc))
	if repoErr != nil {
		l.ErrorContext(ctx, "Restaurant search failed, degrading to empty result", slog.Any("error", repoErr))
		results = nil
	}

	message := fmt.Sprintf(msgFoundFmt, len(results))
	responseType := types.ResponseSuccess
	if len(results) == 0 {
		message = msgNoResults
		responseType = types.ResponsePartial
	}
	metadata := map[string]interface{}{
		"mode":         types.SearchModeSmart,
		"confidence":   result.Confidence,
		"result_count": len(results),
	}
	if repoErr != nil {
		metadata["repository_error"] = true
	}
	return types.SearchResponse{
		Type:            responseType,
		Message:         message,
		Recommendations: results,
		Criteria:        &result.Criteria,
		Metadata:        metadata,
	}
}

// failTurn applies the session error policy and returns the canned error
// response. Model calls fail before this turn appends any message, so the
// rollback policy has nothing to undo and leaves the session alone.
func (s *ServiceImpl) failTurn(ctx context.Context, l *slog.Logger, userID string) types.SearchResponse {
	reset := s.policy == PolicyReset
	if reset {
		cleared := s.store.Clear(userID)
		l.InfoContext(ctx, "Session reset after failed turn", slog.Int("cleared_messages", cleared))
	}
	return types.SearchResponse{
		Type:    types.ResponseError,
		Message: msgSearchError,
		Metadata: map[string]interface{}{
			"error":              true,
			"conversation_reset": reset,
		},
	}
}

// generate wraps one model call with per-purpose sampling and call metrics.
func (s *ServiceImpl) generate(ctx context.Context, purpose prompt.Purpose, systemPrompt, userMessage string) (string, error) {
	s.metrics.ModelCallsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("purpose", string(purpose))))
	out, err := s.ai.Generate(ctx, systemPrompt, userMessage, prompt.Sampling(purpose, s.defaults))
	if err != nil {
		s.metrics.ModelCallErrorsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", string(generativeAI.KindOf(err)))))
	}
	return out, err
}

// followUpQuestion asks the model for a natural question about the missing
// fields, falling back to the canned question for the first one.
func (s *ServiceImpl) followUpQuestion(ctx context.Context, l *slog.Logger, missing []string) string {
	systemPrompt, err := s.prompts.Build(prompt.FollowUp, map[string]string{
		"缺少的資訊": strings.Join(missing, ", "),
	})
	if err == nil {
		var question string
		question, err = s.generate(ctx, prompt.FollowUp, systemPrompt,
			fmt.Sprintf("缺少的資訊：%s", strings.Join(missing, ", ")))
		if err == nil && question != "" {
			return question
		}
	}
	l.WarnContext(ctx, "Follow-up generation failed, using canned question", slog.Any("error", err))
	return prompt.FollowUpQuestion(missing[0])
}

// searchMessage asks the model to personalize the result announcement,
// falling back to the canned count template.
func (s *ServiceImpl) searchMessage(ctx context.Context, l *slog.Logger, req types.SearchRequest, criteria types.SearchCriteria, results []types.Restaurant) string {
	names := make([]string, 0, len(results))
	for i, r := range results {
		if i == 3 {
			break
		}
		names = append(names, r.Name)
	}
	systemPrompt, err := s.prompts.Build(prompt.SearchResponse, map[string]string{
		"結果數量": fmt.Sprintf("%d", len(results)),
		"菜系":   criteria.Cuisine,
		"推薦餐廳": strings.Join(names, "、"),
	})
	if err == nil {
		var raw string
		raw, err = s.generate(ctx, prompt.SearchResponse, systemPrompt, req.UserInput)
		if err == nil {
			if reply, ok := extract.ParseSearchReply(raw); ok {
				return reply.Message
			}
		}
	}
	l.WarnContext(ctx, "Personalized message unavailable, using canned reply", slog.Any("error", err))
	return fmt.Sprintf(msgFoundFmt, len(results))
}

// promptContext collects the per-request notes appended to the system prompt.
func (s *ServiceImpl) promptContext(req types.SearchRequest, loc location.Normalized, known types.SearchCriteria) map[string]string {
	context := make(map[string]string)
	if req.Time != "" {
		context["用餐時間"] = req.Time
	}
	switch loc.Kind {
	case location.KindCoordinates:
		context["用戶位置"] = geo.FormatCoordinates(loc.Coordinates)
	case location.KindAddress:
		context["用戶位置"] = loc.Address
	}
	if summary := describeCriteria(known); summary != "" {
		context["已收集條件"] = summary
	}
	if len(context) == 0 {
		return nil
	}
	return context
}

func describeCriteria(c types.SearchCriteria) string {
	var parts []string
	if c.Cuisine != "" {
		parts = append(parts, fmt.Sprintf("菜系=%s", c.Cuisine))
	}
	if c.RadiusMeters > 0 {
		parts = append(parts, fmt.Sprintf("半徑=%d公尺", c.RadiusMeters))
	}
	if c.PriceLevel > 0 {
		parts = append(parts, fmt.Sprintf("價位等級=%d", c.PriceLevel))
	}
	if c.RatingMin > 0 {
		parts = append(parts, fmt.Sprintf("最低評分=%.1f", c.RatingMin))
	}
	return strings.Join(parts, "、")
}

// buildFilter turns merged criteria plus the normalized location into the
// repository filter. Only a coordinate anchor enables distance narrowing;
// an address narrows by text instead.
func buildFilter(c types.SearchCriteria, loc location.Normalized) types.RestaurantFilter {
	filter := types.RestaurantFilter{
		Cuisine:    c.Cuisine,
		PriceLevel: c.PriceLevel,
		MinRating:  c.RatingMin,
		TryNew:     c.TryNew,
	}
	radiusKm := loc.DefaultRadiusKm()
	if c.RadiusMeters > 0 {
		radiusKm = float64(c.RadiusMeters) / 1000
	}
	switch loc.Kind {
	case location.KindCoordinates:
		lat := loc.Coordinates.Latitude
		lon := loc.Coordinates.Longitude
		filter.Latitude = &lat
		filter.Longitude = &lon
		filter.RadiusKm = &radiusKm
	case location.KindAddress:
		filter.Address = loc.Address
	}
	return filter
}

func (s *ServiceImpl) GetRestaurant(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "GetRestaurant", trace.WithAttributes(
		attribute.String("restaurant.id", id.String()),
	))
	defer span.End()

	cacheKey := "restaurant:" + id.String()
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.(*types.Restaurant), nil
	}

	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository lookup failed")
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if restaurant != nil {
		s.cache.Set(cacheKey, restaurant, cache.DefaultExpiration)
	}
	return restaurant, nil
}

func (s *ServiceImpl) PopularCuisines(ctx context.Context, limit int) ([]types.CuisineStat, error) {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "PopularCuisines")
	defer span.End()

	cacheKey := fmt.Sprintf("popular_cuisines:%d", limit)
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.CuisineStat), nil
	}

	stats, err := s.repo.PopularCuisines(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository lookup failed")
		return nil, fmt.Errorf("failed to get popular cuisines: %w", err)
	}
	s.cache.Set(cacheKey, stats, 10*time.Minute)
	return stats, nil
}

func (s *ServiceImpl) Health(ctx context.Context) types.HealthResponse {
	ctx, span := otel.Tracer("RestaurantService").Start(ctx, "Health")
	defer span.End()

	status := "healthy"
	if _, err := s.repo.Count(ctx); err != nil {
		s.logger.WarnContext(ctx, "Health check: repository unreachable", slog.Any("error", err))
		status = "degraded"
	}
	return types.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   serviceVersion,
	}
}

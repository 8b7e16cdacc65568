package restaurants

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessSearch(ctx context.Context, req types.SearchRequest) types.SearchResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(types.SearchResponse)
}

func (m *MockService) GetRestaurant(ctx context.Context, id uuid.UUID) (*types.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Restaurant), args.Error(1)
}

func (m *MockService) PopularCuisines(ctx context.Context, limit int) ([]types.CuisineStat, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CuisineStat), args.Error(1)
}

func (m *MockService) Health(ctx context.Context) types.HealthResponse {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthResponse)
}

func newHandlerRouter(svc Service) http.Handler {
	h := NewHandler(svc, svcTestLogger)
	r := chi.NewRouter()
	r.Post("/search", h.SearchRestaurants)
	r.Get("/restaurants/{id}", h.GetRestaurantByID)
	r.Get("/cuisines/popular", h.GetPopularCuisines)
	return r
}

func postSearch(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSearchRestaurants_RejectsOutOfRangeCoordinates(t *testing.T) {
	svc := new(MockService)
	router := newHandlerRouter(svc)

	rec := postSearch(t, router, `{
		"user_id": "user-1",
		"user_input": "附近的日本料理",
		"location": {"latitude": 95, "longitude": 0}
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ProcessSearch")
}

func TestSearchRestaurants_RejectsMissingFields(t *testing.T) {
	svc := new(MockService)
	router := newHandlerRouter(svc)

	assert.Equal(t, http.StatusBadRequest,
		postSearch(t, router, `{"user_input": "附近的日本料理"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		postSearch(t, router, `{"user_id": "user-1"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		postSearch(t, router, `not json`).Code)
	svc.AssertNotCalled(t, "ProcessSearch")
}

func TestSearchRestaurants_PassesDecodedLocation(t *testing.T) {
	svc := new(MockService)
	router := newHandlerRouter(svc)

	svc.On("ProcessSearch", mock.Anything, mock.MatchedBy(func(req types.SearchRequest) bool {
		return req.UserID == "user-1" &&
			req.Location != nil &&
			req.Location.Coordinates != nil &&
			req.Location.Coordinates.Latitude == 25.0330
	})).Return(types.SearchResponse{Type: types.ResponseSuccess, Message: "為您找到 2 家符合條件的餐廳"})

	rec := postSearch(t, router, `{
		"user_id": "user-1",
		"user_input": "附近的日本料理",
		"location": {"latitude": 25.0330, "longitude": 121.5654}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.ResponseSuccess, resp.Type)
	svc.AssertExpectations(t)
}

func TestSearchRestaurants_AcceptsStringLocation(t *testing.T) {
	svc := new(MockService)
	router := newHandlerRouter(svc)

	svc.On("ProcessSearch", mock.Anything, mock.MatchedBy(func(req types.SearchRequest) bool {
		return req.Location != nil && req.Location.Raw == "台北市大安區" && req.Location.Coordinates == nil
	})).Return(types.SearchResponse{Type: types.ResponsePartial, Message: "多遠的範圍？"})

	rec := postSearch(t, router, `{
		"user_id": "user-1",
		"user_input": "想吃日本料理",
		"location": "台北市大安區"
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetRestaurantByID_Statuses(t *testing.T) {
	svc := new(MockService)
	router := newHandlerRouter(svc)

	known := uuid.New()
	missing := uuid.New()
	svc.On("GetRestaurant", mock.Anything, known).
		Return(&types.Restaurant{ID: known, Name: "築地壽司"}, nil)
	svc.On("GetRestaurant", mock.Anything, missing).Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/"+known.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/"+missing.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPopularCuisines_LimitValidation(t *testing.T) {
	svc := new(MockService)
	router := newHandlerRouter(svc)

	svc.On("PopularCuisines", mock.Anything, 3).
		Return([]types.CuisineStat{{Cuisine: "日式", RestaurantCount: 2, AvgRating: 4.35}}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cuisines/popular?limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cuisines/popular?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

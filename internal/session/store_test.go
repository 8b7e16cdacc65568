package session

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

func newTestStore() *InMemoryStore {
	return NewInMemoryStore(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestGetOrCreate_FreshSession(t *testing.T) {
	s := newTestStore()
	snap := s.GetOrCreate("user123")

	assert.Equal(t, "user123", snap.UserID)
	assert.Empty(t, snap.History)
	assert.True(t, snap.IsFresh())
	assert.False(t, snap.CreatedAt.IsZero())
}

func TestGetOrCreate_ReturnsSameSession(t *testing.T) {
	s := newTestStore()
	s.AddMessage("user123", types.RoleUser, "我想吃日式料理")

	snap := s.GetOrCreate("user123")
	require.Len(t, snap.History, 1)
	assert.Equal(t, types.RoleUser, snap.History[0].Role)
	assert.False(t, snap.IsFresh())
}

func TestUpdateCriteria_MergesKnownFields(t *testing.T) {
	s := newTestStore()
	s.UpdateCriteria("user123", types.SearchCriteria{Cuisine: "日式"})
	s.UpdateCriteria("user123", types.SearchCriteria{RadiusMeters: 3000})

	snap := s.GetOrCreate("user123")
	assert.Equal(t, "日式", snap.Criteria.Cuisine)
	assert.Equal(t, 3000, snap.Criteria.RadiusMeters)
	assert.Empty(t, snap.Criteria.MissingRequired())
}

func TestUpdateCriteria_DoesNotClobberWithZeroValues(t *testing.T) {
	s := newTestStore()
	s.UpdateCriteria("user123", types.SearchCriteria{Cuisine: "日式", RadiusMeters: 3000})
	s.UpdateCriteria("user123", types.SearchCriteria{PriceLevel: 2})

	snap := s.GetOrCreate("user123")
	assert.Equal(t, "日式", snap.Criteria.Cuisine)
	assert.Equal(t, 3000, snap.Criteria.RadiusMeters)
	assert.Equal(t, 2, snap.Criteria.PriceLevel)
}

func TestRollbackLast(t *testing.T) {
	s := newTestStore()
	s.AddMessage("user123", types.RoleUser, "first")
	s.AddMessage("user123", types.RoleAssistant, "second")
	s.AddMessage("user123", types.RoleUser, "third")

	removed := s.RollbackLast("user123", 2)
	require.Len(t, removed, 2)
	assert.Equal(t, "second", removed[0].Content)
	assert.Equal(t, "third", removed[1].Content)

	snap := s.GetOrCreate("user123")
	require.Len(t, snap.History, 1)
	assert.Equal(t, "first", snap.History[0].Content)
}

func TestRollbackLast_MoreThanAvailable(t *testing.T) {
	s := newTestStore()
	s.AddMessage("user123", types.RoleUser, "only")

	removed := s.RollbackLast("user123", 5)
	assert.Len(t, removed, 1)
	assert.Empty(t, s.GetOrCreate("user123").History)
}

func TestClear_ReturnsClearedCount(t *testing.T) {
	s := newTestStore()
	s.AddMessage("user123", types.RoleUser, "a")
	s.AddMessage("user123", types.RoleAssistant, "b")
	s.UpdateCriteria("user123", types.SearchCriteria{Cuisine: "日式", RadiusMeters: 2000})

	cleared := s.Clear("user123")
	assert.Equal(t, 2, cleared)

	snap := s.GetOrCreate("user123")
	assert.True(t, snap.IsFresh())
}

func TestStatus(t *testing.T) {
	s := newTestStore()
	s.AddMessage("user123", types.RoleUser, "hello")

	status := s.Status("user123")
	assert.Equal(t, "user123", status.UserID)
	assert.Equal(t, 1, status.MessageCount)
	assert.False(t, status.IsReadyForNewSearch)
	assert.False(t, status.LastActivity.IsZero())
}

func TestUpdatedAt_Monotonic(t *testing.T) {
	s := newTestStore()
	times := []time.Time{
		time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC), // clock went backwards
	}
	i := 0
	s.now = func() time.Time {
		ts := times[i%len(times)]
		i++
		return ts
	}

	s.AddMessage("user123", types.RoleUser, "a")
	first := s.GetOrCreate("user123").UpdatedAt
	s.AddMessage("user123", types.RoleUser, "b")
	second := s.GetOrCreate("user123").UpdatedAt

	assert.False(t, second.Before(first))
}

func TestEvictExpired(t *testing.T) {
	s := newTestStore()
	s.AddMessage("stale", types.RoleUser, "old message")
	s.AddMessage("active", types.RoleUser, "new message")

	// Make only "stale" look idle.
	s.mu.Lock()
	s.entries["stale"].updatedAt = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	evicted := s.EvictExpired(time.Now(), time.Hour)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.GetOrCreate("stale").History)
	assert.Len(t, s.GetOrCreate("active").History, 1)
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddMessage("user123", types.RoleUser, "msg")
			s.GetOrCreate("user123")
			s.UpdateCriteria("user123", types.SearchCriteria{Cuisine: "日式"})
		}()
	}
	wg.Wait()

	snap := s.GetOrCreate("user123")
	assert.Len(t, snap.History, 50)
	assert.Equal(t, "日式", snap.Criteria.Cuisine)
}

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

// Store is the conversation state contract. The in-memory implementation is
// the only one shipped; durable backends can slot in behind this interface.
type Store interface {
	GetOrCreate(userID string) Snapshot
	AddMessage(userID string, role types.MessageRole, content string)
	UpdateCriteria(userID string, criteria types.SearchCriteria)
	ResetCriteria(userID string)
	ClearHistory(userID string) int
	RollbackLast(userID string, n int) []types.ChatMessage
	Clear(userID string) int
	Status(userID string) types.SessionStatus
	EvictExpired(now time.Time, timeout time.Duration) int
}

// Snapshot is a point-in-time copy of one user's session. Mutations go
// through the store so callers never hold live state.
type Snapshot struct {
	UserID    string
	History   []types.ChatMessage
	Criteria  types.SearchCriteria
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFresh reports whether the conversation has no accumulated state, i.e.
// the next search starts from scratch.
func (s Snapshot) IsFresh() bool {
	return len(s.History) == 0 && len(s.Criteria.MissingRequired()) == 2
}

type entry struct {
	mu        sync.Mutex
	history   []types.ChatMessage
	criteria  types.SearchCriteria
	createdAt time.Time
	updatedAt time.Time
}

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps sessions in a map keyed by user id. The map itself is
// guarded by mu; each entry carries its own mutex so concurrent turns of the
// same user serialize without blocking other users.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *slog.Logger
	now     func() time.Time
}

func NewInMemoryStore(logger *slog.Logger) *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *InMemoryStore) getOrCreateEntry(userID string) *entry {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[userID]; ok {
		return e
	}
	now := s.now()
	e = &entry{createdAt: now, updatedAt: now}
	s.entries[userID] = e
	return e
}

func (s *InMemoryStore) GetOrCreate(userID string) Snapshot {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotLocked(userID, e)
}

func snapshotLocked(userID string, e *entry) Snapshot {
	history := make([]types.ChatMessage, len(e.history))
	copy(history, e.history)
	return Snapshot{
		UserID:    userID,
		History:   history,
		Criteria:  e.criteria,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}

func (s *InMemoryStore) AddMessage(userID string, role types.MessageRole, content string) {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	now := s.now()
	e.history = append(e.history, types.ChatMessage{Role: role, Content: content, Timestamp: now})
	e.touch(now)
}

func (s *InMemoryStore) UpdateCriteria(userID string, criteria types.SearchCriteria) {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.criteria.Merge(criteria)
	e.touch(s.now())
}

func (s *InMemoryStore) ResetCriteria(userID string) {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.criteria = types.SearchCriteria{}
	e.touch(s.now())
}

func (s *InMemoryStore) ClearHistory(userID string) int {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	cleared := len(e.history)
	e.history = nil
	e.touch(s.now())
	return cleared
}

// RollbackLast removes up to n messages from the end of the history and
// returns them, most recent last.
func (s *InMemoryStore) RollbackLast(userID string, n int) []types.ChatMessage {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if n <= 0 || len(e.history) == 0 {
		return nil
	}
	if n > len(e.history) {
		n = len(e.history)
	}
	removed := make([]types.ChatMessage, n)
	copy(removed, e.history[len(e.history)-n:])
	e.history = e.history[:len(e.history)-n]
	e.touch(s.now())
	return removed
}

// Clear wipes both history and criteria and returns the number of cleared
// messages.
func (s *InMemoryStore) Clear(userID string) int {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	cleared := len(e.history)
	e.history = nil
	e.criteria = types.SearchCriteria{}
	e.touch(s.now())
	return cleared
}

func (s *InMemoryStore) Status(userID string) types.SessionStatus {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := snapshotLocked(userID, e)
	return types.SessionStatus{
		UserID:              userID,
		IsReadyForNewSearch: snap.IsFresh(),
		MessageCount:        len(snap.History),
		LastActivity:        snap.UpdatedAt,
	}
}

// EvictExpired drops sessions idle for longer than timeout and returns how
// many were removed.
func (s *InMemoryStore) EvictExpired(now time.Time, timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for userID, e := range s.entries {
		e.mu.Lock()
		expired := now.Sub(e.updatedAt) > timeout
		e.mu.Unlock()
		if expired {
			delete(s.entries, userID)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RunEvictor periodically evicts expired sessions until ctx is cancelled.
// Intended to run in an errgroup next to the HTTP server.
func (s *InMemoryStore) RunEvictor(ctx context.Context, interval, timeout time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if evicted := s.EvictExpired(now, timeout); evicted > 0 {
				s.logger.InfoContext(ctx, "Evicted expired sessions",
					slog.Int("evicted", evicted),
					slog.Int("remaining", s.Len()),
				)
			}
		}
	}
}

// touch refreshes updatedAt, never letting it move backwards.
func (e *entry) touch(now time.Time) {
	if now.After(e.updatedAt) {
		e.updatedAt = now
	}
}

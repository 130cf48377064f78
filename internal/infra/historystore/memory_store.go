package historystore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/label-insight/internal/domain/history"
	"github.com/yanqian/label-insight/pkg/util"
)

type userList struct {
	entries   []history.Entry
	expiresAt time.Time
}

// MemoryStore keeps per-user history in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.Mutex
	lists map[int64]*userList
	ttl   time.Duration
	now   util.Clock
}

// NewMemoryStore constructs a store whose lists expire ttl after the last append.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{lists: make(map[int64]*userList), ttl: ttl, now: util.NowUTC}
}

// Append implements history.Store.
func (s *MemoryStore) Append(_ context.Context, userID int64, entry history.Entry, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.live(userID)
	if list == nil {
		list = &userList{}
		s.lists[userID] = list
	}
	list.entries = append([]history.Entry{entry}, list.entries...)
	if limit > 0 && len(list.entries) > limit {
		list.entries = list.entries[:limit]
	}
	if s.ttl > 0 {
		list.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

// Recent implements history.Store.
func (s *MemoryStore) Recent(_ context.Context, userID int64, limit int) ([]history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.live(userID)
	if list == nil {
		return nil, nil
	}
	n := len(list.entries)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]history.Entry, n)
	copy(out, list.entries)
	return out, nil
}

func (s *MemoryStore) live(userID int64) *userList {
	list, ok := s.lists[userID]
	if !ok {
		return nil
	}
	if !list.expiresAt.IsZero() && s.now().After(list.expiresAt) {
		delete(s.lists, userID)
		return nil
	}
	return list
}

var _ history.Store = (*MemoryStore)(nil)

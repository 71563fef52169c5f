package mockjudge

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	sub       Submission
	createdAt time.Time
	expiresAt time.Time
}

// Store keeps submitted programs by token until their TTL runs out.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Put(token string, sub Submission) {
	now := s.now()
	s.mu.Lock()
	s.entries[token] = entry{sub: sub, createdAt: now, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
}

// Get returns the submission and its age. Expired tokens are reported missing.
func (s *Store) Get(token string) (Submission, time.Duration, bool) {
	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok || !now.Before(e.expiresAt) {
		return Submission{}, 0, false
	}
	return e.sub, now.Sub(e.createdAt), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Evict drops expired entries and returns how many were removed.
func (s *Store) Evict() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// RunJanitor evicts expired entries every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}

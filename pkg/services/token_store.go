// Package services contains the business logic for query generation,
// execution handoff, and feedback capture.
package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askdb-labs/askdb-engine/pkg/apperrors"
	"github.com/askdb-labs/askdb-engine/pkg/models"
)

// QueryTokenStore holds generated queries keyed by opaque tokens until a
// caller confirms execution or the entry expires.
type QueryTokenStore interface {
	// Issue stores a generated query and returns the token that refers to it.
	Issue(naturalLanguage, sql string) *models.GeneratedQuery
	// Peek returns the query for a token without consuming it.
	Peek(token string) (*models.GeneratedQuery, error)
	// Consume returns the query for a token and removes it from the store.
	// A token can be consumed at most once.
	Consume(token string) (*models.GeneratedQuery, error)
	// Stop terminates the background expiry sweep.
	Stop()
}

type tokenEntry struct {
	query    *models.GeneratedQuery
	consumed bool
}

type tokenStore struct {
	mu      sync.Mutex
	entries map[string]*tokenEntry
	ttl     time.Duration
	done    chan struct{}
}

var _ QueryTokenStore = (*tokenStore)(nil)

// NewQueryTokenStore creates an in-memory token store. Entries older than
// ttl are removed by a background sweep.
func NewQueryTokenStore(ttl time.Duration) QueryTokenStore {
	s := &tokenStore{
		entries: make(map[string]*tokenEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *tokenStore) Issue(naturalLanguage, sql string) *models.GeneratedQuery {
	query := &models.GeneratedQuery{
		Token:           uuid.NewString(),
		NaturalLanguage: naturalLanguage,
		SQL:             sql,
		IssuedAt:        time.Now(),
	}

	s.mu.Lock()
	s.entries[query.Token] = &tokenEntry{query: query}
	s.mu.Unlock()

	return query
}

func (s *tokenStore) Peek(token string) (*models.GeneratedQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return entry.query, nil
}

func (s *tokenStore) Consume(token string) (*models.GeneratedQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok || entry.consumed {
		return nil, apperrors.ErrTokenNotFound
	}

	// Single-use for execution. The entry stays resolvable through Peek so
	// feedback on an executed query still works until the TTL sweep.
	entry.consumed = true
	return entry.query, nil
}

func (s *tokenStore) Stop() {
	close(s.done)
}

func (s *tokenStore) sweep() {
	interval := s.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for token, entry := range s.entries {
				if entry.query.IssuedAt.Before(cutoff) {
					delete(s.entries, token)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Package session keeps one rebar registry per login session. Registries live in memory
// only and are dropped on logout or after a period of inactivity.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"Acero/internal/calc/rebar"
)

type entry struct {
	reg      *rebar.Registry
	lastSeen time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	table    *rebar.WeightTable
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns an empty store. Registries it creates share table, which is read-only.
// A ttl <= 0 disables idle eviction.
func NewStore(table *rebar.WeightTable, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		table:    table,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) Table() *rebar.WeightTable {
	return s.table
}

// Registry returns the registry of session id, creating an empty one on first use.
func (s *Store) Registry(id string) *rebar.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{reg: rebar.NewRegistry(s.table)}
		s.sessions[id] = e
	}
	e.lastSeen = s.now()
	return e.reg
}

// Drop discards the registry of session id, if any.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the ttl and reports how many went.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := s.Sweep(t); n > 0 {
				log.Printf("session: evicted %d idle sessions", n)
			}
		}
	}
}

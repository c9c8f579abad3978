// Package idempotency guards mutating endpoints against replayed
// request IDs, so a retried HTTP call cannot double-fire broker deletes.
package idempotency

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Guard struct {
	mu  sync.Mutex
	lru *lru.Cache[string, struct{}]
}

func New(size int) *Guard {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, struct{}](size)
	return &Guard{lru: c}
}

// FirstSeen records id and reports whether this was its first use. An
// empty id is never tracked and always counts as first.
func (g *Guard) FirstSeen(id string) bool {
	if id == "" {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.lru.Get(id); ok {
		return false
	}
	g.lru.Add(id, struct{}{})
	return true
}

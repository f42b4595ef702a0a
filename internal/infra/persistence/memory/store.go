// Package memory keeps users in process memory. It backs the "memory" driver and
// behaves like the relational store for every repository operation, minus durability.
package memory

import (
	"maps"
	"sync"

	"userstore/internal/domain/entity"
)

// Store holds the committed state. Transactions work on a copy and swap it in on commit.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	users  map[uint64]*entity.User
	lastID uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		state: &state{users: make(map[uint64]*entity.User)},
	}
}

// Entities are cloned on every read and write, so copying the map is enough to isolate a transaction.
func (s *state) clone() *state {
	return &state{
		users:  maps.Clone(s.users),
		lastID: s.lastID,
	}
}

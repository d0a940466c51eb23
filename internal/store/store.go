// Package store holds the process-wide client cache: the current user,
// the group list, and the user's transactions. Pages overwrite slices
// wholesale after a fetch; nothing here talks to the network.
package store

import (
	"sync"

	"github.com/poupix/poupix/internal/model"
)

// Store is safe for concurrent use. Slices are copied on the way in and
// out so callers cannot mutate cached state behind the lock.
type Store struct {
	mu           sync.RWMutex
	currentUser  *model.User
	groups       []model.Group
	transactions []model.Transaction
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// CurrentUser returns the logged-in user, or nil when logged out.
func (s *Store) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

// SetCurrentUser records the logged-in user.
func (s *Store) SetCurrentUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = &u
}

// Logout clears the current user. Cached groups and transactions are
// cleared with it; they belong to the previous session.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = nil
	s.groups = nil
	s.transactions = nil
}

// Groups returns the cached group list.
func (s *Store) Groups() []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Group(nil), s.groups...)
}

// SetGroups replaces the cached group list.
func (s *Store) SetGroups(groups []model.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append([]model.Group(nil), groups...)
}

// GroupByID looks up a cached group.
func (s *Store) GroupByID(id int64) (model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return model.Group{}, false
}

// AddGroup appends a freshly created group to the cache.
func (s *Store) AddGroup(g model.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, g)
}

// UpdateGroup patches a cached group's name and description.
func (s *Store) UpdateGroup(id int64, name string, description *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].ID == id {
			s.groups[i].Name = name
			s.groups[i].Description = description
			return
		}
	}
}

// DeleteGroup drops a group from the cache.
func (s *Store) DeleteGroup(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].ID == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return
		}
	}
}

// Transactions returns the cached transaction list.
func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Transaction(nil), s.transactions...)
}

// SetTransactions replaces the cached transaction list.
func (s *Store) SetTransactions(transactions []model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]model.Transaction(nil), transactions...)
}

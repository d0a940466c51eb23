package stubserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poupix/poupix/internal/model"
)

// store is the in-memory backing state. Everything is lost on restart;
// this backend exists for local development and tests, not production.
type store struct {
	mu sync.Mutex

	nextUserID        int64
	nextGroupID       int64
	nextTransactionID int64

	users        map[int64]*model.User
	passwords    map[int64]string // stored, never checked: login is client-local
	groups       map[int64]*model.Group
	members      map[int64]map[int64]model.MemberRole // groupID -> userID -> role
	transactions map[int64]*model.Transaction
}

func newStore() *store {
	return &store{
		users:        make(map[int64]*model.User),
		passwords:    make(map[int64]string),
		groups:       make(map[int64]*model.Group),
		members:      make(map[int64]map[int64]model.MemberRole),
		transactions: make(map[int64]*model.Transaction),
	}
}

// callers hold s.mu for everything below

func (s *store) createUser(req model.CreateUserRequest) *model.User {
	s.nextUserID++
	u := &model.User{ID: s.nextUserID, Name: req.Name, Email: req.Email}
	s.users[u.ID] = u
	s.passwords[u.ID] = req.Password
	return u
}

func (s *store) userByEmail(email string) *model.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *store) allUsers() []model.User {
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// createGroup creates a group and enrolls the creator as its admin.
func (s *store) createGroup(creatorID int64, req model.CreateGroupRequest) *model.Group {
	s.nextGroupID++
	g := &model.Group{
		ID:          s.nextGroupID,
		UUID:        uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	s.groups[g.ID] = g
	s.members[g.ID] = map[int64]model.MemberRole{creatorID: model.MemberRoleAdmin}
	return g
}

func (s *store) allGroups() []model.Group {
	groups := make([]model.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

func (s *store) searchGroups(query string) []model.Group {
	q := strings.ToLower(query)
	var matched []model.Group
	for _, g := range s.allGroups() {
		if strings.Contains(strings.ToLower(g.Name), q) {
			matched = append(matched, g)
			continue
		}
		if g.Description != nil && strings.Contains(strings.ToLower(*g.Description), q) {
			matched = append(matched, g)
		}
	}
	return matched
}

// deleteGroup removes a group, its memberships, and cascades its
// transactions.
func (s *store) deleteGroup(groupID int64) {
	delete(s.groups, groupID)
	delete(s.members, groupID)
	for id, t := range s.transactions {
		if t.GroupID == groupID {
			delete(s.transactions, id)
		}
	}
}

func (s *store) groupUsers(groupID int64) []model.User {
	var users []model.User
	for userID := range s.members[groupID] {
		if u, ok := s.users[userID]; ok {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *store) groupMembers(groupID int64) []model.GroupMember {
	roles := s.members[groupID]
	members := make([]model.GroupMember, 0, len(roles))
	for userID, role := range roles {
		if u, ok := s.users[userID]; ok {
			members = append(members, model.GroupMember{User: *u, Role: role})
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].User.ID < members[j].User.ID })
	return members
}

func (s *store) userGroups(userID int64) []model.Group {
	var groups []model.Group
	for groupID, roles := range s.members {
		if _, member := roles[userID]; member {
			if g, ok := s.groups[groupID]; ok {
				groups = append(groups, *g)
			}
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

func (s *store) createTransaction(groupID int64, req model.CreateTransactionRequest) *model.Transaction {
	s.nextTransactionID++
	t := &model.Transaction{
		ID:          s.nextTransactionID,
		Description: req.Description,
		Amount:      req.Amount,
		GroupID:     groupID,
		UserID:      req.UserID,
		Type:        req.Type,
		Category:    req.Category,
		CreatedAt:   time.Now().UTC(),
	}
	s.transactions[t.ID] = t
	return t
}

func (s *store) transactionsWhere(match func(*model.Transaction) bool) []model.Transaction {
	var transactions []model.Transaction
	for _, t := range s.transactions {
		if match(t) {
			transactions = append(transactions, *t)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	return transactions
}

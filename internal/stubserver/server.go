// Package stubserver is an in-memory Poupix backend covering every
// endpoint the client consumes. It is a development and test fixture:
// deliberately permissive, no authentication, no persistence. The real
// backend is out of scope for this repository.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/poupix/poupix/internal/model"
	"github.com/poupix/poupix/pkg/response"
)

// Server serves the Poupix REST API from memory.
type Server struct {
	store  *store
	router chi.Router
}

// New creates an empty stub backend.
func New() *Server {
	s := &Server{store: newStore()}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Seed loads demo users so a fresh stub has someone to log in as.
func (s *Server) Seed() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, u := range []model.CreateUserRequest{
		{Name: "Ana Lima", Email: "ana@poupix.dev", Password: "demo"},
		{Name: "Bruno Costa", Email: "bruno@poupix.dev", Password: "demo"},
		{Name: "Carla Souza", Email: "carla@poupix.dev", Password: "demo"},
	} {
		s.store.createUser(u)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.createUser)
			r.Get("/", s.listUsers)
			r.Get("/{id}", s.getUser)
			r.Put("/{id}", s.updateUser)
			r.Get("/{id}/groups", s.listUserGroups)
			r.Get("/{id}/transactions", s.listUserTransactions)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.listGroups)
			r.Get("/busca", s.searchGroups)
			r.Post("/{id}", s.createGroup)
			r.Get("/{id}", s.getGroup)
			r.Put("/{id}", s.updateGroup)
			r.Delete("/{id}", s.deleteGroup)
			r.Get("/{id}/users", s.listGroupUsers)
			r.Post("/{id}/users/{userId}", s.addGroupUser)
			r.Delete("/{id}/users/{userId}", s.removeGroupUser)
			r.Get("/{id}/members", s.listGroupMembers)
			r.Post("/{id}/members", s.addGroupMemberByEmail)
			r.Put("/{id}/members/{userId}/admin", s.makeAdmin)
			r.Get("/{id}/transactions", s.listGroupTransactions)
			r.Post("/{id}/transactions", s.createTransaction)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Put("/{id}", s.updateTransaction)
			r.Delete("/{id}", s.deleteTransaction)
		})
	})

	return r
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

// Users

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.userByEmail(req.Email) != nil {
		response.Conflict(w, "email already registered")
		return
	}
	user := s.store.createUser(req)
	response.JSON(w, http.StatusCreated, user)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	response.JSON(w, http.StatusOK, s.store.allUsers())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	user, exists := s.store.users[id]
	if !exists {
		response.NotFound(w, "user not found")
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}
	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	user, exists := s.store.users[id]
	if !exists {
		response.NotFound(w, "user not found")
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		s.store.passwords[id] = *req.Password
	}
	response.JSON(w, http.StatusOK, user)
}

func (s *Server) listUserGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.users[id]; !exists {
		response.NotFound(w, "user not found")
		return
	}
	response.JSON(w, http.StatusOK, s.store.userGroups(id))
}

func (s *Server) listUserTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.users[id]; !exists {
		response.NotFound(w, "user not found")
		return
	}
	transactions := s.store.transactionsWhere(func(t *model.Transaction) bool {
		return t.UserID == id
	})
	response.JSON(w, http.StatusOK, transactions)
}

// Groups

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	// POST /groups/{id}: the path id is the creating user's id, not a
	// group id. An awkward corner of the API shape, kept as-is.
	userID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}
	var req model.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		response.BadRequest(w, "group name is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.users[userID]; !exists {
		response.NotFound(w, "user not found")
		return
	}
	group := s.store.createGroup(userID, req)
	response.JSON(w, http.StatusCreated, group)
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	response.JSON(w, http.StatusOK, s.store.allGroups())
}

func (s *Server) searchGroups(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	response.JSON(w, http.StatusOK, s.store.searchGroups(query))
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	group, exists := s.store.groups[id]
	if !exists {
		response.NotFound(w, "group not found")
		return
	}
	response.JSON(w, http.StatusOK, group)
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}
	var req model.UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	group, exists := s.store.groups[id]
	if !exists {
		response.NotFound(w, "group not found")
		return
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = req.Description
	}
	response.JSON(w, http.StatusOK, group)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[id]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	s.store.deleteGroup(id)
	response.NoContent(w, http.StatusNoContent)
}

// Membership

func (s *Server) listGroupUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[id]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	response.JSON(w, http.StatusOK, s.store.groupUsers(id))
}

func (s *Server) listGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[id]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	response.JSON(w, http.StatusOK, s.store.groupMembers(id))
}

func (s *Server) addGroupUser(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}
	userID, ok := urlID(r, "userId")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[groupID]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	if _, exists := s.store.users[userID]; !exists {
		response.NotFound(w, "user not found")
		return
	}
	if _, member := s.store.members[groupID][userID]; member {
		response.Conflict(w, "user is already a member of this group")
		return
	}
	s.store.members[groupID][userID] = model.MemberRoleMember
	response.NoContent(w, http.StatusCreated)
}

func (s *Server) addGroupMemberByEmail(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}
	var req model.AddMemberByEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[groupID]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	user := s.store.userByEmail(req.Email)
	if user == nil {
		response.NotFound(w, "no user with that email")
		return
	}
	if _, member := s.store.members[groupID][user.ID]; member {
		response.Conflict(w, "user is already a member of this group")
		return
	}
	s.store.members[groupID][user.ID] = model.MemberRoleMember
	response.JSON(w, http.StatusCreated, model.GroupMember{User: *user, Role: model.MemberRoleMember})
}

func (s *Server) removeGroupUser(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}
	userID, ok := urlID(r, "userId")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, member := s.store.members[groupID][userID]; !member {
		response.NotFound(w, "member not found")
		return
	}
	delete(s.store.members[groupID], userID)
	response.NoContent(w, http.StatusNoContent)
}

func (s *Server) makeAdmin(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}
	userID, ok := urlID(r, "userId")
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, member := s.store.members[groupID][userID]; !member {
		response.NotFound(w, "member not found")
		return
	}
	s.store.members[groupID][userID] = model.MemberRoleAdmin
	response.NoContent(w, http.StatusOK)
}

// Transactions

func (s *Server) listGroupTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[id]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	transactions := s.store.transactionsWhere(func(t *model.Transaction) bool {
		return t.GroupID == id
	})
	response.JSON(w, http.StatusOK, transactions)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid group id")
		return
	}
	var req model.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Type != model.TransactionExpense && req.Type != model.TransactionIncome {
		response.BadRequest(w, "type must be 'expense' or 'income'")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.groups[groupID]; !exists {
		response.NotFound(w, "group not found")
		return
	}
	transaction := s.store.createTransaction(groupID, req)
	response.JSON(w, http.StatusCreated, transaction)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid transaction id")
		return
	}
	var req model.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	transaction, exists := s.store.transactions[id]
	if !exists {
		response.NotFound(w, "transaction not found")
		return
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.Amount != nil {
		transaction.Amount = *req.Amount
	}
	if req.Type != nil {
		transaction.Type = *req.Type
	}
	if req.Category != nil {
		transaction.Category = *req.Category
	}
	response.JSON(w, http.StatusOK, transaction)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid transaction id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.transactions[id]; !exists {
		response.NotFound(w, "transaction not found")
		return
	}
	delete(s.store.transactions, id)
	response.NoContent(w, http.StatusNoContent)
}

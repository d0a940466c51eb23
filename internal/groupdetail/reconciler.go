// Package groupdetail drives the group-detail screen: one parallel load
// of membership, transactions, and the user directory, a derived view
// model, and role-gated mutations that each write once and then reload
// the full data set.
package groupdetail

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/badoux/checkmail"
	"golang.org/x/sync/errgroup"

	"github.com/poupix/poupix/internal/api"
	"github.com/poupix/poupix/internal/model"
	"github.com/poupix/poupix/internal/store"
)

// Validation errors raised before any network call.
var (
	ErrNotLoaded    = errors.New("group data not loaded yet")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrSelfAdd      = errors.New("you cannot add yourself to the group")
	ErrLastMember   = errors.New("a group must keep at least one member")
	ErrSelfPromote  = errors.New("you cannot promote yourself")
	ErrAlreadyAdmin = errors.New("member is already an admin")
	ErrNotMember    = errors.New("user is not a member of this group")
)

// State is the reconciler's lifecycle phase.
type State int

const (
	// StateLoading means no complete data set has been applied yet.
	StateLoading State = iota
	// StateReady means a view is available; mutations are allowed.
	StateReady
)

// View is the derived model for one loaded group. Membership and the
// admin gate come from the same query, so role badges and gating can
// never disagree.
type View struct {
	Group          model.Group
	Members        []model.GroupMember
	AvailableUsers []model.User
	AllUsers       []model.User
	Transactions   []model.Transaction
	IsAdmin        bool
	Totals         model.Totals
}

// Reconciler owns one group-detail session. Safe for concurrent use;
// overlapping reloads are resolved by generation: only the newest
// reload's results are applied.
type Reconciler struct {
	client  *api.Client
	cache   *store.Store
	groupID int64
	current model.User

	mu    sync.Mutex
	state State
	view  View
	gen   uint64
}

// New creates a reconciler for one group on behalf of the current user.
func New(client *api.Client, cache *store.Store, groupID int64, current model.User) *Reconciler {
	return &Reconciler{
		client:  client,
		cache:   cache,
		groupID: groupID,
		current: current,
	}
}

// State reports the current lifecycle phase.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// View returns the last applied view. The second return is false until
// the first load completes.
func (r *Reconciler) View() (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view, r.state == StateReady
}

// Load fetches the group, its membership, its transactions, and the
// user directory in parallel and applies the derived view. The group
// itself is always refetched so the view mirrors the server even after
// partial updates; the cached group list is refreshed from the result.
// On any fetch failure nothing is applied: a first load stays in
// StateLoading, a reload keeps the previous (stale) view.
func (r *Reconciler) Load(ctx context.Context) error {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	var (
		group        model.Group
		members      []model.GroupMember
		transactions []model.Transaction
		allUsers     []model.User
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := r.client.Groups.GetByID(ctx, r.groupID)
		if err != nil {
			return err
		}
		group = *fetched
		return nil
	})
	g.Go(func() error {
		var err error
		members, err = r.client.Groups.GetMembers(ctx, r.groupID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = r.client.Groups.GetTransactions(ctx, r.groupID)
		return err
	})
	g.Go(func() error {
		var err error
		allUsers, err = r.client.Users.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		// A newer reload was started while this one was in flight;
		// its results win.
		return nil
	}
	r.view = deriveView(group, members, transactions, allUsers, r.current)
	r.state = StateReady
	r.cache.UpdateGroup(group.ID, group.Name, group.Description)
	return nil
}

func deriveView(group model.Group, members []model.GroupMember, transactions []model.Transaction, allUsers []model.User, current model.User) View {
	inGroup := make(map[int64]struct{}, len(members))
	isAdmin := false
	for _, m := range members {
		inGroup[m.User.ID] = struct{}{}
		if m.IsAdmin() && strings.EqualFold(m.User.Email, current.Email) {
			isAdmin = true
		}
	}

	var available []model.User
	for _, u := range allUsers {
		if _, member := inGroup[u.ID]; !member {
			available = append(available, u)
		}
	}

	return View{
		Group:          group,
		Members:        members,
		AvailableUsers: available,
		AllUsers:       allUsers,
		Transactions:   transactions,
		IsAdmin:        isAdmin,
		Totals:         model.SumTransactions(transactions),
	}
}

// CanPromote reports whether the promote control should be offered for
// a member: never for the current user, never for an existing admin.
// This is a UI hint, not a security boundary; the backend decides.
func (r *Reconciler) CanPromote(m model.GroupMember) bool {
	return !m.IsAdmin() && m.User.ID != r.current.ID
}

// memberCount reads the loaded member count, or -1 before the first load.
func (r *Reconciler) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		return -1
	}
	return len(r.view.Members)
}

func (r *Reconciler) findMember(userID int64) (model.GroupMember, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.view.Members {
		if m.User.ID == userID {
			return m, true
		}
	}
	return model.GroupMember{}, false
}

// UpdateGroup renames the group and optionally replaces its
// description, then reloads. A nil description leaves the server's
// description untouched; the reload brings back whatever the server
// kept, so the view and cache never drift from it.
func (r *Reconciler) UpdateGroup(ctx context.Context, name string, description *string) error {
	req := model.UpdateGroupRequest{Name: &name, Description: description}
	if _, err := r.client.Groups.Update(ctx, r.groupID, req); err != nil {
		return err
	}
	return r.Load(ctx)
}

// DeleteGroup removes the group permanently. The session is finished
// afterwards; no reload happens.
func (r *Reconciler) DeleteGroup(ctx context.Context) error {
	if err := r.client.Groups.Delete(ctx, r.groupID); err != nil {
		return err
	}
	r.cache.DeleteGroup(r.groupID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state = StateLoading
	r.view = View{}
	return nil
}

// AddMember adds an existing user by id and reloads.
func (r *Reconciler) AddMember(ctx context.Context, userID int64) error {
	if err := r.client.Groups.AddUser(ctx, r.groupID, userID); err != nil {
		return err
	}
	return r.Load(ctx)
}

// AddMemberByEmail validates the address locally, rejects self-adds,
// and only then calls the backend. The trust boundary is entirely
// client-side, exactly as the backend expects it not to be.
func (r *Reconciler) AddMemberByEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	if strings.EqualFold(email, r.current.Email) {
		return ErrSelfAdd
	}
	if _, err := r.client.Groups.AddUserByEmail(ctx, r.groupID, email); err != nil {
		return err
	}
	return r.Load(ctx)
}

// RemoveMember removes a member and reloads. Removal is blocked without
// a network call when the group would be left empty.
func (r *Reconciler) RemoveMember(ctx context.Context, userID int64) error {
	count := r.memberCount()
	if count < 0 {
		return ErrNotLoaded
	}
	if count <= 1 {
		return ErrLastMember
	}
	if err := r.client.Groups.RemoveUser(ctx, r.groupID, userID); err != nil {
		return err
	}
	return r.Load(ctx)
}

// MakeAdmin promotes a member to ADMIN and reloads. Promotion is never
// offered for the current user or an existing admin; there is no
// demotion path.
func (r *Reconciler) MakeAdmin(ctx context.Context, userID int64) error {
	if r.State() != StateReady {
		return ErrNotLoaded
	}
	if userID == r.current.ID {
		return ErrSelfPromote
	}
	member, found := r.findMember(userID)
	if !found {
		return ErrNotMember
	}
	if member.IsAdmin() {
		return ErrAlreadyAdmin
	}
	if err := r.client.Groups.MakeAdmin(ctx, r.groupID, userID); err != nil {
		return err
	}
	return r.Load(ctx)
}

// CreateTransaction records a transaction attributed to the current
// user and reloads.
func (r *Reconciler) CreateTransaction(ctx context.Context, description string, amount float64, txType model.TransactionType, category string) error {
	req := model.CreateTransactionRequest{
		Description: description,
		Amount:      amount,
		GroupID:     r.groupID,
		UserID:      r.current.ID,
		Type:        txType,
		Category:    category,
	}
	if _, err := r.client.Transactions.Create(ctx, r.groupID, req); err != nil {
		return err
	}
	return r.Load(ctx)
}

// UpdateTransaction applies a partial transaction update and reloads.
func (r *Reconciler) UpdateTransaction(ctx context.Context, transactionID int64, req model.UpdateTransactionRequest) error {
	if _, err := r.client.Transactions.Update(ctx, transactionID, req); err != nil {
		return err
	}
	return r.Load(ctx)
}

// DeleteTransaction removes a transaction and reloads.
func (r *Reconciler) DeleteTransaction(ctx context.Context, transactionID int64) error {
	if err := r.client.Transactions.Delete(ctx, transactionID); err != nil {
		return err
	}
	return r.Load(ctx)
}

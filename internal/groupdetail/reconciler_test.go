package groupdetail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poupix/poupix/internal/api"
	"github.com/poupix/poupix/internal/model"
	"github.com/poupix/poupix/internal/store"
	"github.com/poupix/poupix/internal/stubserver"
)

// countingHandler wraps the stub backend and counts requests so tests
// can assert that client-side validation fired before any network call.
type countingHandler struct {
	h http.Handler
	n int32
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&c.n, 1)
	c.h.ServeHTTP(w, r)
}

func (c *countingHandler) count() int32 {
	return atomic.LoadInt32(&c.n)
}

type fixture struct {
	t        *testing.T
	client   *api.Client
	cache    *store.Store
	requests *countingHandler

	u1, u2, u3 model.User
	group      model.Group
}

// newFixture stands up a stub backend with three users and one group
// created by u1 (who is therefore its admin).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	counting := &countingHandler{h: stubserver.New()}
	ts := httptest.NewServer(counting)
	t.Cleanup(ts.Close)

	client := api.New(ts.URL+"/api", 5*time.Second)
	ctx := context.Background()

	f := &fixture{t: t, client: client, cache: store.New(), requests: counting}
	f.u1 = f.mustCreateUser(ctx, "U1", "u1@test.com")
	f.u2 = f.mustCreateUser(ctx, "U2", "u2@test.com")
	f.u3 = f.mustCreateUser(ctx, "U3", "u3@test.com")

	group, err := client.Groups.Create(ctx, f.u1.ID, model.CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)
	f.group = *group
	f.cache.SetGroups([]model.Group{*group})
	return f
}

func (f *fixture) mustCreateUser(ctx context.Context, name, email string) model.User {
	f.t.Helper()
	u, err := f.client.Users.Create(ctx, model.CreateUserRequest{Name: name, Email: email, Password: "pw"})
	require.NoError(f.t, err)
	return *u
}

func (f *fixture) reconciler() *Reconciler {
	return New(f.client, f.cache, f.group.ID, f.u1)
}

func memberIDs(view View) []int64 {
	ids := make([]int64, 0, len(view.Members))
	for _, m := range view.Members {
		ids = append(ids, m.User.ID)
	}
	return ids
}

func availableIDs(view View) []int64 {
	ids := make([]int64, 0, len(view.AvailableUsers))
	for _, u := range view.AvailableUsers {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestLoadDerivesView(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()

	assert.Equal(t, StateLoading, r.State())
	_, ready := r.View()
	assert.False(t, ready)

	require.NoError(t, r.Load(context.Background()))
	assert.Equal(t, StateReady, r.State())

	view, ready := r.View()
	require.True(t, ready)
	assert.Equal(t, f.group.ID, view.Group.ID)
	assert.Equal(t, []int64{f.u1.ID}, memberIDs(view))
	assert.ElementsMatch(t, []int64{f.u2.ID, f.u3.ID}, availableIDs(view))
	assert.True(t, view.IsAdmin, "the creator is the group admin")
	assert.True(t, view.Totals.Balance.IsZero())
}

func TestAvailableUsersIsDirectoryMinusMembers(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))

	require.NoError(t, r.AddMember(ctx, f.u2.ID))

	view, _ := r.View()
	assert.ElementsMatch(t, []int64{f.u1.ID, f.u2.ID}, memberIDs(view))
	assert.Equal(t, []int64{f.u3.ID}, availableIDs(view))

	seen := map[int64]bool{}
	for _, u := range view.AvailableUsers {
		assert.False(t, seen[u.ID], "availableUsers must be duplicate-free")
		seen[u.ID] = true
	}
}

func TestAddMemberByEmailValidatesBeforeCalling(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))

	before := f.requests.count()
	assert.ErrorIs(t, r.AddMemberByEmail(ctx, "notanemail"), ErrInvalidEmail)
	assert.Equal(t, before, f.requests.count(), "bad email must not reach the network")

	assert.ErrorIs(t, r.AddMemberByEmail(ctx, "u1@test.com"), ErrSelfAdd)
	assert.ErrorIs(t, r.AddMemberByEmail(ctx, "U1@TEST.COM"), ErrSelfAdd, "self-check is case-insensitive")
	assert.Equal(t, before, f.requests.count(), "self-add must not reach the network")

	require.NoError(t, r.AddMemberByEmail(ctx, "u2@test.com"))
	view, _ := r.View()
	assert.ElementsMatch(t, []int64{f.u1.ID, f.u2.ID}, memberIDs(view))
}

func TestRemoveLastMemberBlockedWithoutNetworkCall(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()

	assert.ErrorIs(t, r.RemoveMember(ctx, f.u1.ID), ErrNotLoaded)

	require.NoError(t, r.Load(ctx))
	before := f.requests.count()
	assert.ErrorIs(t, r.RemoveMember(ctx, f.u1.ID), ErrLastMember)
	assert.Equal(t, before, f.requests.count())
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))
	require.NoError(t, r.AddMember(ctx, f.u2.ID))

	require.NoError(t, r.RemoveMember(ctx, f.u2.ID))

	view, _ := r.View()
	assert.Equal(t, []int64{f.u1.ID}, memberIDs(view))
	assert.ElementsMatch(t, []int64{f.u2.ID, f.u3.ID}, availableIDs(view))
}

func TestPromotionRules(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))
	require.NoError(t, r.AddMember(ctx, f.u2.ID))

	view, _ := r.View()
	for _, m := range view.Members {
		switch m.User.ID {
		case f.u1.ID:
			assert.False(t, r.CanPromote(m), "no promote control for the current user")
		case f.u2.ID:
			assert.True(t, r.CanPromote(m))
		}
	}

	assert.ErrorIs(t, r.MakeAdmin(ctx, f.u1.ID), ErrSelfPromote)
	assert.ErrorIs(t, r.MakeAdmin(ctx, f.u3.ID), ErrNotMember)

	require.NoError(t, r.MakeAdmin(ctx, f.u2.ID))
	view, _ = r.View()
	for _, m := range view.Members {
		if m.User.ID == f.u2.ID {
			assert.Equal(t, model.MemberRoleAdmin, m.Role)
			assert.False(t, r.CanPromote(m), "no promote control for an existing admin")
		}
	}

	assert.ErrorIs(t, r.MakeAdmin(ctx, f.u2.ID), ErrAlreadyAdmin)
}

func TestNonAdminMemberSeesNoAdminGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.client.Groups.AddUser(ctx, f.group.ID, f.u2.ID))

	r := New(f.client, f.cache, f.group.ID, f.u2)
	require.NoError(t, r.Load(ctx))

	view, _ := r.View()
	assert.False(t, view.IsAdmin)
}

func TestExpenseMovesTotalsExactly(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))

	require.NoError(t, r.CreateTransaction(ctx, "Lunch", 42.50, model.TransactionExpense, "food"))

	view, _ := r.View()
	want := decimal.NewFromFloat(42.50)
	assert.True(t, view.Totals.Expenses.Equal(want), "expenses = %s", view.Totals.Expenses)
	assert.True(t, view.Totals.Balance.Equal(want.Neg()), "balance = %s", view.Totals.Balance)

	require.NoError(t, r.CreateTransaction(ctx, "Refund", 100, model.TransactionIncome, ""))
	view, _ = r.View()
	assert.True(t, view.Totals.Balance.Equal(decimal.NewFromFloat(57.50)), "balance = %s", view.Totals.Balance)
	assert.True(t, view.Totals.Balance.Equal(view.Totals.Income.Sub(view.Totals.Expenses)))
}

func TestTransactionUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))
	require.NoError(t, r.CreateTransaction(ctx, "Lunch", 10, model.TransactionExpense, ""))

	view, _ := r.View()
	require.Len(t, view.Transactions, 1)
	txID := view.Transactions[0].ID

	amount := 25.00
	require.NoError(t, r.UpdateTransaction(ctx, txID, model.UpdateTransactionRequest{Amount: &amount}))
	view, _ = r.View()
	assert.True(t, view.Totals.Expenses.Equal(decimal.NewFromFloat(25)))

	require.NoError(t, r.DeleteTransaction(ctx, txID))
	view, _ = r.View()
	assert.Empty(t, view.Transactions)
	assert.True(t, view.Totals.Balance.IsZero())
}

func TestMutationFailureKeepsStaleView(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))
	before, _ := r.View()

	err := r.CreateTransaction(ctx, "??", 1, "transfer", "")
	require.Error(t, err)
	var apiErr *api.Error
	assert.ErrorAs(t, err, &apiErr)

	after, ready := r.View()
	assert.True(t, ready, "a failed mutation keeps the session Ready")
	assert.Equal(t, before, after)
}

func TestUpdateGroupPatchesCache(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))

	desc := "Beach"
	require.NoError(t, r.UpdateGroup(ctx, "Summer Trip", &desc))

	view, _ := r.View()
	assert.Equal(t, "Summer Trip", view.Group.Name)

	cached, found := f.cache.GroupByID(f.group.ID)
	require.True(t, found)
	assert.Equal(t, "Summer Trip", cached.Name)
}

func TestRenameKeepsServerDescription(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))

	desc := "Beach"
	require.NoError(t, r.UpdateGroup(ctx, "Trip", &desc))

	// A name-only update sends no description; the server keeps the
	// old one and the reload must bring it back.
	require.NoError(t, r.UpdateGroup(ctx, "Summer Trip", nil))

	server, err := f.client.Groups.GetByID(ctx, f.group.ID)
	require.NoError(t, err)
	require.NotNil(t, server.Description)

	view, _ := r.View()
	assert.Equal(t, "Summer Trip", view.Group.Name)
	require.NotNil(t, view.Group.Description)
	assert.Equal(t, *server.Description, *view.Group.Description)

	cached, found := f.cache.GroupByID(f.group.ID)
	require.True(t, found)
	require.NotNil(t, cached.Description)
	assert.Equal(t, *server.Description, *cached.Description)
}

func TestFailedFirstLoadStaysLoading(t *testing.T) {
	f := newFixture(t)
	r := New(f.client, f.cache, 9999, f.u1)

	err := r.Load(context.Background())
	require.Error(t, err)
	var apiErr *api.Error
	assert.ErrorAs(t, err, &apiErr)

	assert.Equal(t, StateLoading, r.State())
	_, ready := r.View()
	assert.False(t, ready, "a failed first load must not produce a view")
}

func TestFailedReloadKeepsPreviousView(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))
	before, _ := r.View()

	// The group disappears behind the reconciler's back; the next
	// reload fails and must leave the stale view in place.
	require.NoError(t, f.client.Groups.Delete(ctx, f.group.ID))

	require.Error(t, r.Load(ctx))
	after, ready := r.View()
	assert.True(t, ready, "a failed reload keeps the session Ready")
	assert.Equal(t, before, after)
}

func TestDeleteGroupEndsSession(t *testing.T) {
	f := newFixture(t)
	r := f.reconciler()
	ctx := context.Background()
	require.NoError(t, r.Load(ctx))

	require.NoError(t, r.DeleteGroup(ctx))

	assert.Equal(t, StateLoading, r.State())
	_, ready := r.View()
	assert.False(t, ready)
	_, found := f.cache.GroupByID(f.group.ID)
	assert.False(t, found)
}

// gatedHandler parks requests behind a gate so a reload can be held in
// flight while the test races a newer one past it.
type gatedHandler struct {
	h http.Handler

	mu      sync.Mutex
	gate    chan struct{}
	arrived chan struct{}
	once    *sync.Once
}

func (g *gatedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	gate, arrived, once := g.gate, g.arrived, g.once
	g.mu.Unlock()
	if gate != nil {
		once.Do(func() { close(arrived) })
		<-gate
	}
	g.h.ServeHTTP(w, r)
}

func (g *gatedHandler) hold() (release func(), arrived <-chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gate = make(chan struct{})
	g.arrived = make(chan struct{})
	g.once = &sync.Once{}
	gate := g.gate
	return func() { close(gate) }, g.arrived
}

func TestStaleReloadIsDiscarded(t *testing.T) {
	gated := &gatedHandler{h: stubserver.New()}
	ts := httptest.NewServer(gated)
	defer ts.Close()

	client := api.New(ts.URL+"/api", 5*time.Second)
	ctx := context.Background()

	u1, err := client.Users.Create(ctx, model.CreateUserRequest{Name: "U1", Email: "u1@test.com", Password: "pw"})
	require.NoError(t, err)
	u2, err := client.Users.Create(ctx, model.CreateUserRequest{Name: "U2", Email: "u2@test.com", Password: "pw"})
	require.NoError(t, err)
	group, err := client.Groups.Create(ctx, u1.ID, model.CreateGroupRequest{Name: "Trip"})
	require.NoError(t, err)

	cache := store.New()
	cache.SetGroups([]model.Group{*group})
	r := New(client, cache, group.ID, *u1)
	require.NoError(t, r.Load(ctx))

	// Change the backend behind the reconciler's back, then park the
	// next reload in flight.
	require.NoError(t, client.Groups.AddUser(ctx, group.ID, u2.ID))
	release, arrived := gated.hold()

	done := make(chan error, 1)
	go func() { done <- r.Load(ctx) }()
	<-arrived

	// A newer reload claims the session while the old one is parked.
	r.mu.Lock()
	r.gen++
	r.mu.Unlock()

	release()
	require.NoError(t, <-done)

	view, ready := r.View()
	require.True(t, ready)
	assert.Equal(t, []int64{u1.ID}, memberIDs(view), "the superseded reload's results must not be applied")
}

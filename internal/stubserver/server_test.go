package stubserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poupix/poupix/internal/model"
)

type fixture struct {
	t  *testing.T
	ts *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ts := httptest.NewServer(New())
	t.Cleanup(ts.Close)
	return &fixture{t: t, ts: ts}
}

// request issues a JSON request and decodes the response body into out
// when out is non-nil.
func (f *fixture) request(method, path string, body, out interface{}) *http.Response {
	f.t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequest(method, f.ts.URL+"/api"+path, &reqBody)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *fixture) createUser(name, email string) model.User {
	f.t.Helper()
	var user model.User
	resp := f.request(http.MethodPost, "/users", model.CreateUserRequest{Name: name, Email: email, Password: "pw"}, &user)
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	return user
}

func (f *fixture) createGroup(ownerID int64, name string) model.Group {
	f.t.Helper()
	var group model.Group
	resp := f.request(http.MethodPost, fmt.Sprintf("/groups/%d", ownerID), model.CreateGroupRequest{Name: name}, &group)
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	return group
}

func TestDeleteGroupCascadesTransactions(t *testing.T) {
	f := newFixture(t)
	user := f.createUser("Ana", "ana@test.com")
	group := f.createGroup(user.ID, "Trip")

	resp := f.request(http.MethodPost, fmt.Sprintf("/groups/%d/transactions", group.ID), model.CreateTransactionRequest{
		Description: "Lunch", Amount: 10, GroupID: group.ID, UserID: user.ID, Type: model.TransactionExpense,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(http.MethodDelete, fmt.Sprintf("/groups/%d", group.ID), nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var transactions []model.Transaction
	resp = f.request(http.MethodGet, fmt.Sprintf("/users/%d/transactions", user.ID), nil, &transactions)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, transactions, "group deletion must cascade its transactions")
}

func TestDuplicateMembershipIsConflict(t *testing.T) {
	f := newFixture(t)
	ana := f.createUser("Ana", "ana@test.com")
	bia := f.createUser("Bia", "bia@test.com")
	group := f.createGroup(ana.ID, "Trip")

	resp := f.request(http.MethodPost, fmt.Sprintf("/groups/%d/users/%d", group.ID, bia.ID), nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(http.MethodPost, fmt.Sprintf("/groups/%d/users/%d", group.ID, bia.ID), nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// the creator is already a member through group creation
	resp = f.request(http.MethodPost, fmt.Sprintf("/groups/%d/members", group.ID), model.AddMemberByEmailRequest{Email: "ana@test.com"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAddByUnknownEmailIsNotFound(t *testing.T) {
	f := newFixture(t)
	ana := f.createUser("Ana", "ana@test.com")
	group := f.createGroup(ana.ID, "Trip")

	var apiErr struct {
		Error string `json:"error"`
	}
	resp := f.request(http.MethodPost, fmt.Sprintf("/groups/%d/members", group.ID), model.AddMemberByEmailRequest{Email: "ghost@test.com"}, &apiErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no user with that email", apiErr.Error)
}

func TestMakeAdminPromotes(t *testing.T) {
	f := newFixture(t)
	ana := f.createUser("Ana", "ana@test.com")
	bia := f.createUser("Bia", "bia@test.com")
	group := f.createGroup(ana.ID, "Trip")

	resp := f.request(http.MethodPost, fmt.Sprintf("/groups/%d/users/%d", group.ID, bia.ID), nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(http.MethodPut, fmt.Sprintf("/groups/%d/members/%d/admin", group.ID, bia.ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var members []model.GroupMember
	resp = f.request(http.MethodGet, fmt.Sprintf("/groups/%d/members", group.ID), nil, &members)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, model.MemberRoleAdmin, m.Role, "both ana and bia should be admins now")
	}
}

func TestCreateTransactionRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	ana := f.createUser("Ana", "ana@test.com")
	group := f.createGroup(ana.ID, "Trip")

	resp := f.request(http.MethodPost, fmt.Sprintf("/groups/%d/transactions", group.ID), model.CreateTransactionRequest{
		Description: "??", Amount: 1, GroupID: group.ID, UserID: ana.ID, Type: "transfer",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeedProvidesLoginRoster(t *testing.T) {
	srv := New()
	srv.Seed()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	var users []model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Len(t, users, 3)
}

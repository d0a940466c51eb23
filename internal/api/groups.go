package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/poupix/poupix/internal/model"
)

// GroupService covers the /groups endpoints.
type GroupService struct {
	client *Client
}

// Create creates a group owned by the given user. The server assigns
// both the id and the uuid and adds the creator as the first (admin)
// member.
func (s *GroupService) Create(ctx context.Context, userID int64, req model.CreateGroupRequest) (*model.Group, error) {
	var group model.Group
	if err := s.client.post(ctx, fmt.Sprintf("/groups/%d", userID), req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// GetAll lists every group.
func (s *GroupService) GetAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := s.client.get(ctx, "/groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetByID fetches one group.
func (s *GroupService) GetByID(ctx context.Context, groupID int64) (*model.Group, error) {
	var group model.Group
	if err := s.client.get(ctx, fmt.Sprintf("/groups/%d", groupID), &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Update applies a partial update to a group.
func (s *GroupService) Update(ctx context.Context, groupID int64, req model.UpdateGroupRequest) (*model.Group, error) {
	var group model.Group
	if err := s.client.put(ctx, fmt.Sprintf("/groups/%d", groupID), req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a group permanently; the server cascades its
// transactions.
func (s *GroupService) Delete(ctx context.Context, groupID int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/groups/%d", groupID))
}

// GetUsers lists the members of a group, without roles.
func (s *GroupService) GetUsers(ctx context.Context, groupID int64) ([]model.User, error) {
	var users []model.User
	if err := s.client.get(ctx, fmt.Sprintf("/groups/%d/users", groupID), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetTransactions lists a group's transactions.
func (s *GroupService) GetTransactions(ctx context.Context, groupID int64) ([]model.Transaction, error) {
	var transactions []model.Transaction
	if err := s.client.get(ctx, fmt.Sprintf("/groups/%d/transactions", groupID), &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// AddUser adds an existing user to a group by id.
func (s *GroupService) AddUser(ctx context.Context, groupID, userID int64) error {
	return s.client.post(ctx, fmt.Sprintf("/groups/%d/users/%d", groupID, userID), nil, nil)
}

// AddUserByEmail adds a user to a group by their email address. The
// backend resolves the email to a user; the caller is expected to have
// validated the address shape first.
func (s *GroupService) AddUserByEmail(ctx context.Context, groupID int64, email string) (*model.GroupMember, error) {
	var member model.GroupMember
	req := model.AddMemberByEmailRequest{Email: email}
	if err := s.client.post(ctx, fmt.Sprintf("/groups/%d/members", groupID), req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveUser removes a member from a group.
func (s *GroupService) RemoveUser(ctx context.Context, groupID, userID int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/groups/%d/users/%d", groupID, userID))
}

// GetMembers lists the members of a group together with their roles.
func (s *GroupService) GetMembers(ctx context.Context, groupID int64) ([]model.GroupMember, error) {
	var members []model.GroupMember
	if err := s.client.get(ctx, fmt.Sprintf("/groups/%d/members", groupID), &members); err != nil {
		return nil, err
	}
	return members, nil
}

// MakeAdmin promotes a member to the ADMIN role. There is no demotion
// endpoint.
func (s *GroupService) MakeAdmin(ctx context.Context, groupID, userID int64) error {
	return s.client.put(ctx, fmt.Sprintf("/groups/%d/members/%d/admin", groupID, userID), nil, nil)
}

// Search runs a full-text group search.
func (s *GroupService) Search(ctx context.Context, query string) ([]model.Group, error) {
	var groups []model.Group
	path := "/groups/busca?q=" + url.QueryEscape(query)
	if err := s.client.get(ctx, path, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

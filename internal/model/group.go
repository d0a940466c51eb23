package model

import "time"

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Group represents a shared expense pool. ID is the internal identifier,
// UUID the human-copyable one; both are immutable after creation.
type Group struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupMember pairs a user with their role in one group. The membership
// endpoint returns these, so the member grid and the admin gate are
// always derived from the same snapshot.
type GroupMember struct {
	User User       `json:"user"`
	Role MemberRole `json:"role"`
}

// IsAdmin reports whether the member holds the ADMIN role.
func (m GroupMember) IsAdmin() bool {
	return m.Role == MemberRoleAdmin
}

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AddMemberByEmailRequest represents the request to add a member by email
type AddMemberByEmailRequest struct {
	Email string `json:"email"`
}

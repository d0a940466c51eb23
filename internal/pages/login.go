package pages

import (
	"context"
	"fmt"

	"github.com/poupix/poupix/internal/model"
)

// ListUsers renders the login roster: every known user, pick one by id.
func (p *Pages) ListUsers(ctx context.Context) error {
	users, err := p.client.Users.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(p.out, "No users yet. Create one with 'poupix login -create'.")
		return nil
	}
	fmt.Fprintln(p.out, "Users:")
	for _, u := range users {
		fmt.Fprintf(p.out, "  %3d  %s (%s)\n", u.ID, u.Name, u.Email)
	}
	return nil
}

// LoginAs selects an existing user as the current one. No credentials
// are checked; login is a client-local state selection.
func (p *Pages) LoginAs(ctx context.Context, userID int64) (*model.User, error) {
	user, err := p.client.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.cache.SetCurrentUser(*user)
	fmt.Fprintf(p.out, "Welcome back, %s!\n", user.Name)
	return user, nil
}

// CreateUser registers a new user and logs them in.
func (p *Pages) CreateUser(ctx context.Context, name, email, password string) (*model.User, error) {
	user, err := p.client.Users.Create(ctx, model.CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	p.cache.SetCurrentUser(*user)
	fmt.Fprintf(p.out, "User created, welcome %s!\n", user.Name)
	return user, nil
}

// Logout clears the current user.
func (p *Pages) Logout() {
	p.cache.Logout()
	fmt.Fprintln(p.out, "Logged out.")
}

package pages

import (
	"context"
	"fmt"

	"github.com/poupix/poupix/internal/model"
)

// Groups lists the current user's groups and caches them.
func (p *Pages) Groups(ctx context.Context) error {
	current, err := p.currentUser()
	if err != nil {
		return err
	}

	groups, err := p.client.Users.GetGroups(ctx, current.ID)
	if err != nil {
		return err
	}
	p.cache.SetGroups(groups)

	if len(groups) == 0 {
		fmt.Fprintln(p.out, "No groups yet. Create one with 'poupix groups create'.")
		return nil
	}
	fmt.Fprintln(p.out, "Groups:")
	for _, g := range groups {
		fmt.Fprintf(p.out, "  %3d  %-24s %s\n", g.ID, g.Name, g.UUID)
		if g.Description != nil && *g.Description != "" {
			fmt.Fprintf(p.out, "       %s\n", *g.Description)
		}
	}
	return nil
}

// CreateGroup creates a group owned by the current user and appends it
// to the cached list.
func (p *Pages) CreateGroup(ctx context.Context, name, description string) (*model.Group, error) {
	current, err := p.currentUser()
	if err != nil {
		return nil, err
	}

	req := model.CreateGroupRequest{Name: name}
	if description != "" {
		req.Description = &description
	}
	group, err := p.client.Groups.Create(ctx, current.ID, req)
	if err != nil {
		return nil, err
	}
	p.cache.AddGroup(*group)
	fmt.Fprintf(p.out, "Group %q created (id %d, uuid %s).\n", group.Name, group.ID, group.UUID)
	return group, nil
}

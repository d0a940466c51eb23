package pages

import (
	"context"
	"fmt"
)

// Search runs the full-text group search and renders the matches.
func (p *Pages) Search(ctx context.Context, query string) error {
	groups, err := p.client.Groups.Search(ctx, query)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		fmt.Fprintf(p.out, "No groups matching %q.\n", query)
		return nil
	}
	fmt.Fprintf(p.out, "Groups matching %q:\n", query)
	for _, g := range groups {
		fmt.Fprintf(p.out, "  %3d  %-24s %s\n", g.ID, g.Name, g.UUID)
		if g.Description != nil && *g.Description != "" {
			fmt.Fprintf(p.out, "       %s\n", *g.Description)
		}
	}
	return nil
}

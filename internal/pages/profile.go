package pages

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/poupix/poupix/internal/model"
)

// Profile loads the current user's record, groups, and transactions in
// parallel and renders the profile screen.
func (p *Pages) Profile(ctx context.Context) error {
	current, err := p.currentUser()
	if err != nil {
		return err
	}

	var (
		profile      *model.User
		groups       []model.Group
		transactions []model.Transaction
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = p.client.Users.GetByID(ctx, current.ID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = p.client.Users.GetGroups(ctx, current.ID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = p.client.Users.GetTransactions(ctx, current.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	totals := model.SumTransactions(transactions)

	fmt.Fprintf(p.out, "%s <%s>\n\n", profile.Name, profile.Email)
	fmt.Fprintf(p.out, "  Expenses: %s\n", money(totals.Expenses))
	fmt.Fprintf(p.out, "  Income:   %s\n", money(totals.Income))
	fmt.Fprintf(p.out, "  Balance:  %s\n", money(totals.Balance))

	fmt.Fprintf(p.out, "\nGroups (%d):\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(p.out, "  %3d  %s\n", g.ID, g.Name)
	}

	fmt.Fprintf(p.out, "\nTransactions (%d):\n", len(transactions))
	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	for _, t := range transactions {
		name := groupNames[t.GroupID]
		if name == "" {
			name = "unknown group"
		}
		fmt.Fprintf(p.out, "  %s  %-24s %s  in %s\n", date(t.CreatedAt), t.Description, signedAmount(t), name)
	}
	return nil
}

// UpdateProfile applies a partial update to the current user. An empty
// password keeps the existing one.
func (p *Pages) UpdateProfile(ctx context.Context, name, email, password string) (*model.User, error) {
	current, err := p.currentUser()
	if err != nil {
		return nil, err
	}

	req := model.UpdateUserRequest{}
	if name != "" {
		req.Name = &name
	}
	if email != "" {
		req.Email = &email
	}
	if password != "" {
		req.Password = &password
	}

	user, err := p.client.Users.Update(ctx, current.ID, req)
	if err != nil {
		return nil, err
	}
	p.cache.SetCurrentUser(*user)
	fmt.Fprintln(p.out, "Profile updated.")
	return user, nil
}

package pages

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/poupix/poupix/internal/model"
)

// Dashboard loads the current user's groups and transactions in
// parallel, caches them, and renders the aggregate cards plus the five
// most recent transactions.
func (p *Pages) Dashboard(ctx context.Context) error {
	current, err := p.currentUser()
	if err != nil {
		return err
	}

	var (
		groups       []model.Group
		transactions []model.Transaction
	)
	g, ctx := errgroup.WithContext(ctx)
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

	p.cache.SetGroups(groups)
	p.cache.SetTransactions(transactions)

	totals := model.SumTransactions(transactions)

	fmt.Fprintf(p.out, "Dashboard - welcome back, %s!\n\n", current.Name)
	fmt.Fprintf(p.out, "  Groups:       %d\n", len(groups))
	fmt.Fprintf(p.out, "  Transactions: %d\n", len(transactions))
	fmt.Fprintf(p.out, "  Expenses:     %s\n", money(totals.Expenses))
	fmt.Fprintf(p.out, "  Income:       %s\n", money(totals.Income))
	fmt.Fprintf(p.out, "  Balance:      %s\n", money(totals.Balance))

	if len(transactions) > 0 {
		fmt.Fprintln(p.out, "\nRecent transactions:")
		// The backend does not promise any ordering; sort here so the
		// newest five always come out on top.
		recent := append([]model.Transaction(nil), transactions...)
		sort.Slice(recent, func(i, j int) bool {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		})
		if len(recent) > 5 {
			recent = recent[:5]
		}
		for _, t := range recent {
			fmt.Fprintf(p.out, "  %s  %-30s %s\n", date(t.CreatedAt), t.Description, signedAmount(t))
		}
	}
	return nil
}

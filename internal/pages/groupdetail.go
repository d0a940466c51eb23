package pages

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/poupix/poupix/internal/groupdetail"
)

// OpenGroup starts a group-detail session for the current user and runs
// the initial load.
func (p *Pages) OpenGroup(ctx context.Context, groupID int64) (*groupdetail.Reconciler, error) {
	current, err := p.currentUser()
	if err != nil {
		return nil, err
	}
	r := groupdetail.New(p.client, p.cache, groupID, current)
	if err := r.Load(ctx); err != nil {
		return nil, fmt.Errorf("load group %d: %w", groupID, err)
	}
	return r, nil
}

// RenderGroup renders the reconciler's current view: header, totals,
// members (admins flagged), and transactions. Mutation controls are
// only listed when the current user is an admin; that gate is a UI
// hint, the backend stays authoritative.
func (p *Pages) RenderGroup(r *groupdetail.Reconciler) error {
	view, ready := r.View()
	if !ready {
		return groupdetail.ErrNotLoaded
	}

	fmt.Fprintf(p.out, "%s  (%s)\n", view.Group.Name, view.Group.UUID)
	if view.Group.Description != nil && *view.Group.Description != "" {
		fmt.Fprintln(p.out, *view.Group.Description)
	}
	fmt.Fprintf(p.out, "\nExpenses: %s   Income: %s   Balance: %s\n",
		money(view.Totals.Expenses), money(view.Totals.Income), money(view.Totals.Balance))

	fmt.Fprintf(p.out, "\nMembers (%d):\n", len(view.Members))
	w := tabwriter.NewWriter(p.out, 2, 4, 2, ' ', 0)
	for _, m := range view.Members {
		role := ""
		if m.IsAdmin() {
			role = "admin"
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", m.User.ID, m.User.Name, m.User.Email, role)
	}
	w.Flush()

	fmt.Fprintf(p.out, "\nTransactions (%d):\n", len(view.Transactions))
	if len(view.Transactions) == 0 {
		fmt.Fprintln(p.out, "  none yet")
	}
	byID := make(map[int64]string, len(view.AllUsers))
	for _, u := range view.AllUsers {
		byID[u.ID] = u.Name
	}
	for _, t := range view.Transactions {
		name := byID[t.UserID]
		if name == "" {
			name = "unknown user"
		}
		line := fmt.Sprintf("  %d  %s  %-24s %s  by %s", t.ID, date(t.CreatedAt), t.Description, signedAmount(t), name)
		if t.Category != "" {
			line += "  [" + t.Category + "]"
		}
		fmt.Fprintln(p.out, line)
	}

	if view.IsAdmin {
		fmt.Fprintln(p.out, "\nYou are an admin of this group.")
	}
	return nil
}

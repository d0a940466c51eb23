// Package pages renders the application's screens to a writer and owns
// the page-level data flows: fetch, cache in the store, render. Pages
// consume the reconciler's contract for the group-detail screen and
// compute only derived aggregates themselves.
package pages

import (
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/poupix/poupix/internal/api"
	"github.com/poupix/poupix/internal/model"
	"github.com/poupix/poupix/internal/store"
)

// ErrNotLoggedIn is returned by pages that need a current user.
var ErrNotLoggedIn = errors.New("not logged in; run 'poupix login' first")

// Pages bundles the dependencies every screen shares.
type Pages struct {
	client *api.Client
	cache  *store.Store
	out    io.Writer
}

// New creates the page renderer.
func New(client *api.Client, cache *store.Store, out io.Writer) *Pages {
	return &Pages{client: client, cache: cache, out: out}
}

func (p *Pages) currentUser() (model.User, error) {
	u := p.cache.CurrentUser()
	if u == nil {
		return model.User{}, ErrNotLoggedIn
	}
	return *u, nil
}

// money formats an amount the way the screens show it.
func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// date formats timestamps in the dd/mm/yyyy form the screens use.
func date(t time.Time) string {
	return t.Format("02/01/2006")
}

func signedAmount(t model.Transaction) string {
	amount := decimal.NewFromFloat(t.Amount)
	if t.Type == model.TransactionIncome {
		return "+ " + money(amount)
	}
	return "- " + money(amount)
}

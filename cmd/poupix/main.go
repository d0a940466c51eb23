// Command poupix is the terminal front end for the Poupix group expense
// tracker. Each subcommand corresponds to one screen of the web client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/poupix/poupix/internal/api"
	"github.com/poupix/poupix/internal/config"
	"github.com/poupix/poupix/internal/model"
	"github.com/poupix/poupix/internal/pages"
	"github.com/poupix/poupix/internal/session"
	"github.com/poupix/poupix/internal/store"
	"github.com/poupix/poupix/pkg/logging"
)

type app struct {
	cfg   *config.Config
	cache *store.Store
	pages *pages.Pages
}

func main() {
	// No .env is the normal case for an installed CLI.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	cache := store.New()
	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	a := &app{
		cfg:   cfg,
		cache: cache,
		pages: pages.New(client, cache, os.Stdout),
	}

	// Restore the previous login, if any.
	if user, err := session.Load(cfg.SessionFile); err == nil {
		cache.SetCurrentUser(*user)
	} else if !errors.Is(err, session.ErrNoSession) {
		slog.Warn("could not restore session", "error", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "login":
		err = a.runLogin(ctx, os.Args[2:])
	case "logout":
		err = a.runLogout()
	case "dashboard":
		err = a.pages.Dashboard(ctx)
	case "groups":
		err = a.runGroups(ctx, os.Args[2:])
	case "group":
		err = a.runGroup(ctx, os.Args[2:])
	case "profile":
		err = a.runProfile(ctx, os.Args[2:])
	case "search":
		err = a.runSearch(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Poupix - group expense tracking")
	fmt.Println("\nUsage:")
	fmt.Println("  poupix <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  login      List users, log in as one, or create a user")
	fmt.Println("  logout     Forget the current user")
	fmt.Println("  dashboard  Aggregates and recent transactions")
	fmt.Println("  groups     List groups or create one")
	fmt.Println("  group      Group detail and its mutations")
	fmt.Println("  profile    Show or update the current user")
	fmt.Println("  search     Full-text group search")
	fmt.Println("  help       Show this help message")
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	userID := fs.Int64("id", 0, "user id to log in as")
	create := fs.Bool("create", false, "create a new user instead")
	name := fs.String("name", "", "name for the new user")
	email := fs.String("email", "", "email for the new user")
	password := fs.String("password", "", "password for the new user")
	fs.Parse(args)

	switch {
	case *create:
		if *name == "" || *email == "" || *password == "" {
			return errors.New("-name, -email and -password are required with -create")
		}
		user, err := a.pages.CreateUser(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		return session.Save(a.cfg.SessionFile, *user)
	case *userID != 0:
		user, err := a.pages.LoginAs(ctx, *userID)
		if err != nil {
			return err
		}
		return session.Save(a.cfg.SessionFile, *user)
	default:
		return a.pages.ListUsers(ctx)
	}
}

func (a *app) runLogout() error {
	a.pages.Logout()
	return session.Clear(a.cfg.SessionFile)
}

func (a *app) runGroups(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "create" {
		fs := flag.NewFlagSet("groups create", flag.ExitOnError)
		name := fs.String("name", "", "group name")
		description := fs.String("description", "", "group description")
		fs.Parse(args[1:])
		if *name == "" {
			return errors.New("-name is required")
		}
		_, err := a.pages.CreateGroup(ctx, *name, *description)
		return err
	}
	return a.pages.Groups(ctx)
}

func (a *app) runGroup(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: poupix group <id> [action] [options]")
	}
	var groupID int64
	if _, err := fmt.Sscanf(args[0], "%d", &groupID); err != nil {
		return fmt.Errorf("invalid group id %q", args[0])
	}

	action := "show"
	rest := args[1:]
	if len(rest) > 0 {
		action = rest[0]
		rest = rest[1:]
	}

	r, err := a.pages.OpenGroup(ctx, groupID)
	if err != nil {
		return err
	}

	switch action {
	case "show":
		// initial load already happened

	case "update":
		fs := flag.NewFlagSet("group update", flag.ExitOnError)
		name := fs.String("name", "", "new group name")
		description := fs.String("description", "", "new group description")
		fs.Parse(rest)
		if *name == "" {
			return errors.New("-name is required")
		}
		var desc *string
		if *description != "" {
			desc = description
		}
		if err := r.UpdateGroup(ctx, *name, desc); err != nil {
			return err
		}

	case "delete":
		if err := r.DeleteGroup(ctx); err != nil {
			return err
		}
		fmt.Println("Group deleted.")
		return nil

	case "add-member":
		fs := flag.NewFlagSet("group add-member", flag.ExitOnError)
		email := fs.String("email", "", "email of the user to add")
		userID := fs.Int64("user", 0, "id of the user to add")
		fs.Parse(rest)
		switch {
		case *email != "":
			err = r.AddMemberByEmail(ctx, *email)
		case *userID != 0:
			err = r.AddMember(ctx, *userID)
		default:
			return errors.New("-email or -user is required")
		}
		if err != nil {
			return err
		}

	case "remove-member":
		fs := flag.NewFlagSet("group remove-member", flag.ExitOnError)
		userID := fs.Int64("user", 0, "id of the member to remove")
		fs.Parse(rest)
		if *userID == 0 {
			return errors.New("-user is required")
		}
		if err := r.RemoveMember(ctx, *userID); err != nil {
			return err
		}

	case "promote":
		fs := flag.NewFlagSet("group promote", flag.ExitOnError)
		userID := fs.Int64("user", 0, "id of the member to promote to admin")
		fs.Parse(rest)
		if *userID == 0 {
			return errors.New("-user is required")
		}
		if err := r.MakeAdmin(ctx, *userID); err != nil {
			return err
		}

	case "add-tx":
		fs := flag.NewFlagSet("group add-tx", flag.ExitOnError)
		description := fs.String("description", "", "what the money was for")
		amount := fs.Float64("amount", 0, "amount")
		txType := fs.String("type", "expense", "expense or income")
		category := fs.String("category", "", "optional category")
		fs.Parse(rest)
		if *description == "" || *amount == 0 {
			return errors.New("-description and -amount are required")
		}
		if err := r.CreateTransaction(ctx, *description, *amount, model.TransactionType(*txType), *category); err != nil {
			return err
		}

	case "edit-tx":
		fs := flag.NewFlagSet("group edit-tx", flag.ExitOnError)
		txID := fs.Int64("tx", 0, "transaction id")
		description := fs.String("description", "", "new description")
		amount := fs.Float64("amount", 0, "new amount")
		txType := fs.String("type", "", "new type: expense or income")
		category := fs.String("category", "", "new category")
		fs.Parse(rest)
		if *txID == 0 {
			return errors.New("-tx is required")
		}
		req := model.UpdateTransactionRequest{}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "description":
				req.Description = description
			case "amount":
				req.Amount = amount
			case "type":
				t := model.TransactionType(*txType)
				req.Type = &t
			case "category":
				req.Category = category
			}
		})
		if err := r.UpdateTransaction(ctx, *txID, req); err != nil {
			return err
		}

	case "rm-tx":
		fs := flag.NewFlagSet("group rm-tx", flag.ExitOnError)
		txID := fs.Int64("tx", 0, "transaction id")
		fs.Parse(rest)
		if *txID == 0 {
			return errors.New("-tx is required")
		}
		if err := r.DeleteTransaction(ctx, *txID); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown group action %q", action)
	}

	return a.pages.RenderGroup(r)
}

func (a *app) runProfile(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "update" {
		fs := flag.NewFlagSet("profile update", flag.ExitOnError)
		name := fs.String("name", "", "new name")
		email := fs.String("email", "", "new email")
		password := fs.String("password", "", "new password (empty keeps the current one)")
		fs.Parse(args[1:])
		user, err := a.pages.UpdateProfile(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		return session.Save(a.cfg.SessionFile, *user)
	}
	return a.pages.Profile(ctx)
}

func (a *app) runSearch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: poupix search <query>")
	}
	return a.pages.Search(ctx, args[0])
}

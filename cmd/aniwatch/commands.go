package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/aniwatch/aniwatch-server/browse"
	"github.com/aniwatch/aniwatch-server/session"
	"github.com/aniwatch/aniwatch-server/ui"
)

func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account and log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "account email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "account password", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			user, err := r.api.Register(ctx, cmd.String("email"), cmd.String("password"))
			if err != nil {
				return err
			}
			if err := r.saveSession(user.ID, user.Email); err != nil {
				return err
			}
			r.writePlainln("Registered and logged in as %s.", user.Email)
			return nil
		},
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in to an existing account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "account email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "account password", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			user, err := r.api.Login(ctx, cmd.String("email"), cmd.String("password"))
			if err != nil {
				return err
			}
			if err := r.saveSession(user.ID, user.Email); err != nil {
				return err
			}
			r.writePlainln("Logged in as %s.", user.Email)
			return nil
		},
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Log out and forget the stored session",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip confirmation"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("yes") && !r.confirm("Really log out?") {
				r.writePlainln("Aborted.")
				return nil
			}
			if err := r.sessions.Clear(); err != nil {
				return err
			}
			r.writePlainln("Logged out.")
			return nil
		},
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show your watchlist",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sess, err := r.requireSession()
			if err != nil {
				return err
			}
			ctrl := r.controller(sess)
			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}
			r.printEntries(ctrl.Entries())
			return nil
		},
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add an anime to your watchlist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "anime title", Required: true},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Watching, Completed or Plan to Watch", Value: "Plan to Watch"},
			&cli.IntFlag{Name: "rating", Aliases: []string{"r"}, Usage: "rating from 0 to 10"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sess, err := r.requireSession()
			if err != nil {
				return err
			}
			ctrl := r.controller(sess)
			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}
			ctrl.OpenAdd()
			ctrl.SetForm(cmd.String("title"), cmd.String("status"), int(cmd.Int("rating")))
			if err := ctrl.Submit(ctx); err != nil {
				return err
			}
			r.writePlainln("Added %q.", cmd.String("title"))
			return nil
		},
	}
}

func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change title, status or rating of an entry",
		ArgsUsage: "<entry id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "new title"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "new status"},
			&cli.IntFlag{Name: "rating", Aliases: []string{"r"}, Usage: "new rating from 0 to 10"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			entryID, err := entryIDArg(cmd)
			if err != nil {
				return err
			}
			sess, err := r.requireSession()
			if err != nil {
				return err
			}
			ctrl := r.controller(sess)
			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}
			if err := ctrl.OpenEdit(entryID); err != nil {
				return err
			}
			form := ctrl.Form()
			if cmd.IsSet("title") {
				form.Title = cmd.String("title")
			}
			if cmd.IsSet("status") {
				form.Status = cmd.String("status")
			}
			if cmd.IsSet("rating") {
				form.Rating = int(cmd.Int("rating"))
			}
			ctrl.SetForm(form.Title, form.Status, form.Rating)
			if err := ctrl.Submit(ctx); err != nil {
				return err
			}
			r.writePlainln("Updated entry %d.", entryID)
			return nil
		},
	}
}

func rmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove an entry from your watchlist",
		ArgsUsage: "<entry id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip confirmation"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			entryID, err := entryIDArg(cmd)
			if err != nil {
				return err
			}
			sess, err := r.requireSession()
			if err != nil {
				return err
			}
			confirmed := cmd.Bool("yes") ||
				r.confirm(fmt.Sprintf("Delete entry %d?", entryID))
			if !confirmed {
				r.writePlainln("Aborted.")
				return nil
			}
			ctrl := r.controller(sess)
			if err := ctrl.Delete(ctx, entryID, confirmed); err != nil {
				return err
			}
			r.writePlainln("Deleted entry %d.", entryID)
			return nil
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the anime catalog",
		ArgsUsage: "<query>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if query == "" {
				return fmt.Errorf("usage: aniwatch search <query>")
			}
			records, err := r.catalog.Search(ctx, query, 8)
			if err != nil {
				return err
			}
			r.printRecords(records)
			return nil
		},
	}
}

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog by score, optionally filtered locally",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "pages", Aliases: []string{"n"}, Usage: "number of catalog pages to fetch", Value: 1},
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "filter fetched records by title"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			maxPages := r.config.Browse.MaxPages
			acc := browse.NewAccumulator(maxPages)

			wanted := int(cmd.Int("pages"))
			for i := 0; i < wanted && acc.HasMore(); i++ {
				records, hasNext, err := r.catalog.List(ctx, acc.NextPage())
				if err != nil {
					return err
				}
				acc.Add(records, hasNext)
			}

			records := acc.Records()
			if filter := cmd.String("filter"); filter != "" {
				index, err := browse.NewIndex()
				if err != nil {
					return err
				}
				defer index.Close()
				if err := index.Add(records); err != nil {
					return err
				}
				records, err = index.Filter(records, filter)
				if err != nil {
					return err
				}
			}

			r.printRecords(records)
			if acc.HasMore() {
				r.writePlainln("More pages available, rerun with --pages %d.", wanted+1)
			}
			return nil
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive watchlist",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sess, err := r.requireSession()
			if err != nil {
				return err
			}
			model := ui.New(ctx, r.controller(sess), sess.Email)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = program.Run()
			return err
		},
	}
}

// saveSession persists a fresh logged-in identity.
func (r *Runner) saveSession(userID int64, email string) error {
	return r.sessions.Save(&session.Session{
		LoggedIn: true,
		UserID:   userID,
		Email:    email,
	})
}

func entryIDArg(cmd *cli.Command) (int64, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("usage: aniwatch %s <entry id>", cmd.Name)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid entry id %q", arg)
	}
	return id, nil
}

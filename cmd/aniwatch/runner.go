package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/aniwatch/aniwatch-server/catalog"
	"github.com/aniwatch/aniwatch-server/client"
	"github.com/aniwatch/aniwatch-server/session"
	"github.com/aniwatch/aniwatch-server/watchlist"
)

var errNotLoggedIn = errors.New("not logged in, run 'aniwatch login' first")

// Runner holds all dependencies for CLI commands and provides methods
// for each command action.
type Runner struct {
	config   *Config
	api      *client.Client
	catalog  *catalog.Client
	sessions *session.Store
	logger   *log.Logger
	output   io.Writer
	input    io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *Config
	API      *client.Client
	Catalog  *catalog.Client
	Sessions *session.Store
	Logger   *log.Logger
	Output   io.Writer
	Input    io.Reader
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = defaultConfig()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	return &Runner{
		config:   opts.Config,
		api:      opts.API,
		catalog:  opts.Catalog,
		sessions: opts.Sessions,
		logger:   opts.Logger,
		output:   opts.Output,
		input:    opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		registerCommand(r),
		loginCommand(r),
		logoutCommand(r),
		listCommand(r),
		addCommand(r),
		editCommand(r),
		rmCommand(r),
		searchCommand(r),
		browseCommand(r),
		tuiCommand(r),
	}
}

// requireSession loads the persisted session and refuses anonymous use.
func (r *Runner) requireSession() (*session.Session, error) {
	sess, err := r.sessions.Load()
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn {
		return nil, errNotLoggedIn
	}
	return sess, nil
}

// controller builds the watchlist view controller for the active account.
func (r *Runner) controller(sess *session.Session) *watchlist.Controller {
	verifier := watchlist.NewCatalogVerifier(r.catalog)
	return watchlist.New(r.api, r.catalog, verifier, sess.UserID)
}

// confirm asks a yes/no question on the terminal.
func (r *Runner) confirm(prompt string) bool {
	fmt.Fprintf(r.output, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}

// printEntries renders the watchlist as a plain table.
func (r *Runner) printEntries(entries []client.Entry) {
	if len(entries) == 0 {
		r.writePlainln("No anime in your watchlist yet.")
		return
	}
	r.writePlainln("%-6s %-45s %-14s %s", "ID", "TITLE", "STATUS", "RATING")
	for _, e := range entries {
		r.writePlainln("%-6d %-45s %-14s %d", e.ID, e.Title, e.Status, e.Rating)
	}
}

// printRecords renders catalog records as a plain table.
func (r *Runner) printRecords(records []catalog.Anime) {
	if len(records) == 0 {
		r.writePlainln("No results.")
		return
	}
	r.writePlainln("%-3s %-50s %s", "#", "TITLE", "SCORE")
	for i, record := range records {
		score := "N/A"
		if record.Score > 0 {
			score = fmt.Sprintf("%.2f", record.Score)
		}
		r.writePlainln("%-3d %-50s %s", i+1, record.DisplayTitle(), score)
	}
}

package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/bind"
	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/store"
)

// listFlags are shared by the paginated list commands.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Value: 1,
			Usage: "Page number",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Server-side search term",
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "Only show this status: active, inactive, expired, suspended",
		},
	}
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[E any](items []E) []E {
	if items == nil {
		return []E{}
	}
	return items
}

// runList fetches one page into the picked collection and renders it,
// filtered by --status.
func runList[E any](c *cli.Context, pick func(*store.Set) *store.Collection[E], noun string) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}
	coll := pick(rt.Stores)
	status, err := domain.ParseStatus(c.String("status"))
	if err != nil {
		return err
	}

	if err := coll.FetchList(ctx, c.Int("page"), c.String("search")); err != nil {
		return err
	}
	snap := coll.Snapshot()
	if snap.Error != "" {
		// FetchList only hides a failure when the session was torn down.
		return domain.ErrSessionExpired
	}

	coll.SetFilterStatus(status)
	if err := rt.Render(nonNil(coll.ByStatus())); err != nil {
		return err
	}
	rt.Printf("\nPage %d of %d (%d %s)\n", snap.Page, snap.TotalPages, snap.Total, noun)
	return nil
}

// runBrowse is an interactive list: every input line becomes the search
// term through the debounced search binding, and the page refreshes once
// typing pauses.
func runBrowse[E any](c *cli.Context, pick func(*store.Set) *store.Collection[E], noun string) error {
	rt := runtimeFrom(c)
	ctx := c.Context
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}
	coll := pick(rt.Stores)

	show := func() {
		snap := coll.Snapshot()
		if snap.Error != "" {
			rt.Banner(output.LevelError, "%s: %s", noun, snap.Error)
			return
		}
		if err := rt.Render(nonNil(snap.Items)); err != nil {
			rt.Banner(output.LevelError, "%s: %v", noun, err)
			return
		}
		term := ""
		if snap.SearchTerm != "" {
			term = ` matching "` + snap.SearchTerm + `"`
		}
		rt.Printf("\nPage %d of %d (%d %s%s)\n", snap.Page, snap.TotalPages, snap.Total, noun, term)
	}
	if err := coll.FetchList(ctx, 1, ""); err != nil {
		return err
	}
	if rt.Sessions.Guard().Fired() {
		return domain.ErrSessionExpired
	}
	show()

	input := bind.NewSearchInput(ctx, coll, rt.Config.Search.Debounce, func(term string, err error) {
		if err != nil {
			rt.Banner(output.LevelError, "search %q: %v", term, err)
			return
		}
		show()
	})
	defer input.Close()

	rt.Banner(output.LevelInfo, "type to search %s, :next / :prev to page, :quit to leave", noun)
	for {
		line, err := rt.ReadLine()
		if err != nil {
			input.Submit()
			return nil
		}
		switch cmd := strings.TrimSpace(line); cmd {
		case ":q", ":quit":
			return nil
		case ":n", ":next", ":p", ":prev":
			input.Submit()
			snap := coll.Snapshot()
			page := snap.Page + 1
			if cmd == ":p" || cmd == ":prev" {
				page = snap.Page - 1
			}
			if page < 1 || page > snap.TotalPages {
				rt.Banner(output.LevelWarn, "no such page")
				continue
			}
			if err := coll.SetPage(ctx, page); err != nil {
				rt.Banner(output.LevelError, "%s: %v", noun, err)
				continue
			}
			show()
		default:
			input.Type(cmd)
		}
		if rt.Sessions.Guard().Fired() {
			return domain.ErrSessionExpired
		}
	}
}

// informational reports a failed write that should not fail the command.
// A torn-down session still does.
func informational(rt *Runtime, err error, format string, args ...any) error {
	if connection.IsSessionExpired(err) {
		return err
	}
	rt.Banner(output.LevelInfo, format+": %v", append(args, err)...)
	return nil
}

// idArg returns the first positional argument or a usage error.
func idArg(c *cli.Context, what string) (domain.ID, error) {
	id := domain.ID(strings.TrimSpace(c.Args().First()))
	if id.IsZero() {
		return "", domain.Validationf("%s required", what)
	}
	return id, nil
}

package command

import (
	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/store"
)

// MembershipCommand returns the membership subcommand group.
func MembershipCommand() *cli.Command {
	return &cli.Command{
		Name:    "membership",
		Aliases: []string{"memberships", "plan"},
		Usage:   "Membership plans and pricing",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List membership plans",
				Flags:  listFlags(),
				Action: membershipList,
			},
			{
				Name:      "pricing",
				Usage:     "Change the price or duration of a plan",
				ArgsUsage: "PLAN_ID",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "price", Usage: "New price", Required: true},
					&cli.IntFlag{Name: "duration", Usage: "New duration in days"},
				},
				Action: membershipPricing,
			},
			{
				Name:  "expiring",
				Usage: "Members whose membership ends soon",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 7, Usage: "Look-ahead window in days"},
				},
				Action: membershipExpiring,
			},
			{
				Name:   "stats",
				Usage:  "Membership statistics",
				Action: membershipStats,
			},
		},
	}
}

func memberships(s *store.Set) *store.Collection[domain.Membership] {
	return s.Memberships.Collection
}

func membershipList(c *cli.Context) error {
	return runList(c, memberships, "plans")
}

func membershipPricing(c *cli.Context) error {
	id, err := idArg(c, "plan ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	m, err := rt.Stores.Memberships.UpdatePricing(ctx, id, domain.PricingInput{
		Price:        c.Float64("price"),
		DurationDays: c.Int("duration"),
	})
	if err != nil {
		return err
	}
	rt.Printf("Pricing of plan %s updated.\n", id)
	return rt.Render(m)
}

func membershipExpiring(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	list, err := rt.Stores.Memberships.Expiring(ctx, c.Int("days"))
	if err != nil {
		return err
	}
	return rt.Render(nonNil(list))
}

func membershipStats(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	st, err := rt.Stores.Memberships.Stats(ctx)
	if err != nil {
		return err
	}
	return rt.Render(st)
}

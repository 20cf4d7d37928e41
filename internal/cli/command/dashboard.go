package command

import (
	"context"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
)

// dashboard is the combined overview. A section that failed to load is
// left empty and reported on stderr.
type dashboard struct {
	Memberships *domain.MembershipStats `json:"memberships,omitempty" yaml:"memberships,omitempty"`
	Products    map[string]any          `json:"products,omitempty" yaml:"products,omitempty"`
	QR          *domain.QRStatistics    `json:"qr,omitempty" yaml:"qr,omitempty"`
}

// DashboardCommand returns the dashboard command.
func DashboardCommand() *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Membership, sales and check-in overview",
		Action: dashboardAction,
	}
}

func dashboardAction(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	spin := output.NewSpinner(rt.Err, "Loading dashboard").Start()
	var (
		d    dashboard
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = map[string]error{}
	)
	fetch := func(section string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs[section] = err
				mu.Unlock()
			}
		}()
	}
	fetch("memberships", func(ctx context.Context) (err error) {
		d.Memberships, err = rt.Stores.Memberships.Stats(ctx)
		return err
	})
	fetch("products", func(ctx context.Context) (err error) {
		d.Products, err = rt.Stores.Products.Stats(ctx, domain.ProductStatsMonthly)
		return err
	})
	fetch("qr", func(ctx context.Context) (err error) {
		d.QR, err = rt.Stores.Members.QRStatistics(ctx)
		return err
	})
	wg.Wait()

	switch {
	case len(errs) == 0:
		spin.Stop()
	case len(errs) == 3:
		spin.Fail("dashboard unavailable")
	default:
		spin.Success("dashboard loaded with gaps")
	}

	for _, section := range []string{"memberships", "products", "qr"} {
		err, ok := errs[section]
		if !ok {
			continue
		}
		if connection.IsSessionExpired(err) {
			return domain.ErrSessionExpired
		}
		rt.Banner(output.LevelError, "%s: %v", section, err)
	}
	if len(errs) == 3 {
		return errs["memberships"]
	}
	return rt.Render(d)
}

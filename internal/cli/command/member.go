package command

import (
	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/store"
)

// MemberCommand returns the member subcommand group.
func MemberCommand() *cli.Command {
	return &cli.Command{
		Name:    "member",
		Aliases: []string{"members", "m"},
		Usage:   "Manage gym members",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List members",
				Flags:  listFlags(),
				Action: memberList,
			},
			{
				Name:      "get",
				Usage:     "Show one member",
				ArgsUsage: "MEMBER_ID",
				Action:    memberGet,
			},
			{
				Name:   "create",
				Usage:  "Register a member",
				Flags:  memberInputFlags(true),
				Action: memberCreate,
			},
			{
				Name:      "update",
				Usage:     "Change a member; unset flags keep their value",
				ArgsUsage: "MEMBER_ID",
				Flags:     memberInputFlags(false),
				Action:    memberUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Remove a member",
				ArgsUsage: "MEMBER_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: memberDelete,
			},
			{
				Name:      "qr",
				Usage:     "Show a member's check-in QR credential",
				ArgsUsage: "MEMBER_ID",
				Action:    memberQR,
			},
			{
				Name:      "qr-generate",
				Usage:     "Issue a new check-in QR credential",
				ArgsUsage: "MEMBER_ID",
				Action:    memberQRGenerate,
			},
			{
				Name:      "lookup",
				Usage:     "Find a member by 8-character member code",
				ArgsUsage: "CODE",
				Action:    qrLookup,
			},
			{
				Name:   "browse",
				Usage:  "Search members interactively",
				Action: memberBrowse,
			},
		},
	}
}

func memberInputFlags(create bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "first-name", Usage: "First name", Required: create},
		&cli.StringFlag{Name: "last-name", Usage: "Last name", Required: create},
		&cli.StringFlag{Name: "email", Usage: "Email address", Required: create},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "type", Usage: "Membership type"},
		&cli.StringFlag{Name: "start", Usage: "Membership start (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "end", Usage: "Membership end (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "status", Usage: "active, inactive, expired or suspended"},
	}
}

// applyMemberFlags overlays the flags the user set on in.
func applyMemberFlags(c *cli.Context, in *domain.MemberInput) {
	fields := []struct {
		flag string
		dst  *string
	}{
		{"first-name", &in.FirstName},
		{"last-name", &in.LastName},
		{"email", &in.Email},
		{"phone", &in.Phone},
		{"type", &in.MembershipType},
		{"start", &in.MembershipStart},
		{"end", &in.MembershipEnd},
		{"status", &in.Status},
	}
	for _, f := range fields {
		if c.IsSet(f.flag) {
			*f.dst = c.String(f.flag)
		}
	}
}

func memberList(c *cli.Context) error {
	return runList(c, members, "members")
}

func memberGet(c *cli.Context) error {
	id, err := idArg(c, "member ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	m, err := rt.Stores.Members.FetchOne(ctx, id)
	if err != nil {
		return err
	}
	return rt.Render(m)
}

func memberCreate(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	var in domain.MemberInput
	applyMemberFlags(c, &in)
	m, err := rt.Stores.Members.Create(ctx, in)
	if err != nil {
		return err
	}
	rt.Printf("Member %s created (code %s).\n", m.ID, m.UniqueID)
	return rt.Render(m)
}

func memberUpdate(c *cli.Context) error {
	id, err := idArg(c, "member ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	cur, err := rt.Stores.Members.FetchOne(ctx, id)
	if err != nil {
		return err
	}
	in := domain.MemberInput{
		FirstName:       cur.FirstName,
		LastName:        cur.LastName,
		Email:           cur.Email,
		Phone:           cur.Phone,
		MembershipType:  cur.MembershipType,
		MembershipStart: cur.MembershipStart,
		MembershipEnd:   cur.MembershipEnd,
		Status:          cur.Status,
	}
	applyMemberFlags(c, &in)

	m, err := rt.Stores.Members.Update(ctx, id, in)
	if err != nil {
		return err
	}
	rt.Printf("Member %s updated.\n", m.ID)
	return rt.Render(m)
}

func memberDelete(c *cli.Context) error {
	id, err := idArg(c, "member ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	if !c.Bool("force") && !rt.Confirm("Delete member %s?", id) {
		rt.Printf("Cancelled.\n")
		return nil
	}

	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}
	if err := rt.Stores.Members.Delete(ctx, id); err != nil {
		return informational(rt, err, "member %s was not deleted", id)
	}
	rt.Printf("Member %s deleted.\n", id)
	return nil
}

func memberQR(c *cli.Context) error {
	id, err := idArg(c, "member ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	info, err := rt.Stores.Members.QRCode(ctx, id)
	if err != nil {
		return err
	}
	return rt.Render(info)
}

func memberQRGenerate(c *cli.Context) error {
	id, err := idArg(c, "member ID")
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	info, err := rt.Stores.Members.GenerateQR(ctx, id)
	if err != nil {
		return err
	}
	rt.Printf("New member code for %s: %s\n", id, info.UniqueID)
	return rt.Render(info)
}

func memberBrowse(c *cli.Context) error {
	return runBrowse(c, members, "members")
}

func members(s *store.Set) *store.Collection[domain.Member] {
	return s.Members.Collection
}

package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
)

// AuthCommand returns the auth subcommand group.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in and out of the backend",
		Subcommands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with a staff account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Account email",
						EnvVars: []string{"GYMADMIN_EMAIL"},
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
						EnvVars: []string{"GYMADMIN_PASSWORD"},
					},
				},
				Action: authLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the stored session",
				Action: authLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in account",
				Action: authWhoami,
			},
			{
				Name:   "status",
				Usage:  "Show session and connection details",
				Action: authStatus,
			},
		},
	}
}

func authLogin(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.Connect(ctx); err != nil {
		return err
	}

	email := c.String("email")
	if email == "" {
		fmt.Fprint(rt.Err, "Email: ")
		email, _ = rt.ReadLine()
	}
	password := c.String("password")
	if password == "" {
		fmt.Fprint(rt.Err, "Password: ")
		password, _ = rt.ReadLine()
	}

	email = strings.TrimSpace(email)
	sess, err := rt.Sessions.Login(ctx, rt.Client, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	name := email
	if sess.User != nil && sess.User.Name != "" {
		name = sess.User.Name
	}
	rt.Printf("Logged in as %s.\n", name)
	if rt.Format != output.FormatTable {
		return rt.Render(sess.User)
	}
	return nil
}

func authLogout(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.Connect(ctx); err != nil {
		return err
	}

	wasIn := rt.Sessions.IsAuthenticated()
	if err := rt.Sessions.Logout(ctx, rt.Client); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if wasIn {
		rt.Printf("Logged out.\n")
	} else {
		rt.Printf("Not logged in.\n")
	}
	return nil
}

func authWhoami(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	user := rt.Sessions.Session().User
	if user == nil {
		user = &domain.Principal{}
	}
	return rt.Render(user)
}

// sessionStatus is the output of `auth status`.
type sessionStatus struct {
	Server        string `json:"server"`
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	Token         string `json:"token,omitempty"`
	Storage       string `json:"storage"`
}

func authStatus(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.Connect(ctx); err != nil {
		return err
	}

	sess := rt.Sessions.Session()
	st := sessionStatus{
		Server:        rt.Client.BaseURL(),
		Authenticated: rt.Sessions.IsAuthenticated(),
		Token:         logger.RedactToken(sess.Token),
		Storage:       rt.Config.DataDir,
	}
	if rt.ephemeral {
		st.Storage = "memory"
	}
	if sess.User != nil {
		st.Email = sess.User.Email
		st.Role = sess.User.Role
	}
	return rt.Render(st)
}

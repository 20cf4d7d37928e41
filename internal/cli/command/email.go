package command

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
)

// EmailCommand returns the email subcommand group.
func EmailCommand() *cli.Command {
	return &cli.Command{
		Name:  "email",
		Usage: "Email members",
		Subcommands: []*cli.Command{
			{
				Name:   "templates",
				Usage:  "List server-side templates",
				Action: emailTemplates,
			},
			{
				Name:  "send",
				Usage: "Send a message to addresses",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "to", Usage: "Recipient address (repeatable)", Required: true},
				}, contentFlags()...),
				Action: emailSend,
			},
			{
				Name:  "bulk",
				Usage: "Send a message to members",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "member", Usage: "Member ID (repeatable)"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Send to the members matching this search"},
					&cli.StringFlag{Name: "status", Usage: "Only members with this status"},
				}, contentFlags()...),
				Action: emailBulk,
			},
			{
				Name:  "bulk-category",
				Usage: "Send a message to a member category",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "all, active, expired, expiring or inactive", Required: true},
				}, contentFlags()...),
				Action: emailBulkCategory,
			},
			{
				Name:  "preview",
				Usage: "Render a message without sending it",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "to", Usage: "Recipient address for personalised previews"},
				}, contentFlags()...),
				Action: emailPreview,
			},
			{
				Name:  "test",
				Usage: "Send a test message",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "Recipient address", Required: true},
					&cli.StringFlag{Name: "template", Usage: "Template ID"},
				},
				Action: emailTest,
			},
			{
				Name:  "logs",
				Usage: "Delivery logs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "offset", Usage: "Entries to skip"},
					&cli.IntFlag{Name: "limit", Usage: "Entries to show (default: 50)"},
					&cli.StringFlag{Name: "status", Usage: "Only entries with this delivery status, e.g. sent, failed, pending"},
				},
				Action: emailLogs,
			},
			{
				Name:  "stats",
				Usage: "Delivery statistics",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "period", Value: "30d", Usage: "Period, e.g. 7d or 30d"},
				},
				Action: emailStats,
			},
		},
	}
}

func contentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "subject", Usage: "Subject line"},
		&cli.StringFlag{Name: "body", Usage: "Message body (HTML, or Markdown with --markdown)"},
		&cli.StringFlag{Name: "body-file", Usage: "Read the body from a file; .md files are Markdown"},
		&cli.BoolFlag{Name: "markdown", Usage: "Render the body from Markdown"},
		&cli.StringFlag{Name: "template", Usage: "Template ID"},
		&cli.StringSliceFlag{Name: "var", Usage: "Template variable KEY=VALUE (repeatable)"},
	}
}

// content is the message part shared by every send request.
type content struct {
	Subject    string
	HTML       string
	TemplateID string
	Variables  map[string]string
}

func readContent(c *cli.Context) (content, error) {
	out := content{
		Subject:    c.String("subject"),
		TemplateID: c.String("template"),
	}

	body := c.String("body")
	markdown := c.Bool("markdown")
	if path := c.String("body-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("read body: %w", err)
		}
		body = string(data)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			markdown = true
		}
	}
	if markdown && body != "" {
		html, err := renderMarkdown(body)
		if err != nil {
			return out, err
		}
		body = html
	}
	out.HTML = body

	for _, kv := range c.StringSlice("var") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return out, domain.Validationf("variable %q is not KEY=VALUE", kv)
		}
		if out.Variables == nil {
			out.Variables = map[string]string{}
		}
		out.Variables[strings.TrimSpace(k)] = v
	}
	return out, nil
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts a Markdown body to HTML.
func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

func emailTemplates(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	list, err := rt.Stores.Email.Templates(ctx)
	if err != nil {
		return err
	}
	return rt.Render(nonNil(list))
}

func emailSend(c *cli.Context) error {
	body, err := readContent(c)
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	res, err := rt.Stores.Email.Send(ctx, domain.EmailRequest{
		To:         c.StringSlice("to"),
		Subject:    body.Subject,
		HTML:       body.HTML,
		TemplateID: body.TemplateID,
		Variables:  body.Variables,
	})
	if err != nil {
		return err
	}
	return reportSend(rt, res)
}

func emailBulk(c *cli.Context) error {
	body, err := readContent(c)
	if err != nil {
		return err
	}
	status, err := domain.ParseStatus(c.String("status"))
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	ids := c.StringSlice("member")
	if len(ids) == 0 {
		ids, err = recipientIDs(c, rt, status)
		if err != nil {
			return err
		}
	}

	res, err := rt.Stores.Email.Bulk(ctx, domain.BulkEmailRequest{
		UserIDs:    ids,
		Subject:    body.Subject,
		HTML:       body.HTML,
		TemplateID: body.TemplateID,
		Variables:  body.Variables,
	})
	if err != nil {
		return err
	}
	return reportSend(rt, res)
}

// recipientIDs picks bulk recipients from the preloaded member page,
// narrowed by --search on the server and by status locally.
func recipientIDs(c *cli.Context, rt *Runtime, status domain.Status) ([]string, error) {
	ctx, cancel := rt.Context(c)
	defer cancel()

	recipients := rt.Stores.Email.Recipients
	var err error
	if term := c.String("search"); term != "" {
		err = recipients.SetSearchTerm(ctx, term)
	} else if status != domain.StatusAll {
		err = rt.Stores.Email.PreloadRecipients(ctx)
	} else {
		return nil, domain.Validationf("pick recipients with --member, --search or --status")
	}
	if err != nil {
		return nil, err
	}
	if snap := recipients.Snapshot(); snap.Error != "" {
		return nil, domain.ErrSessionExpired
	}

	recipients.SetFilterStatus(status)
	var ids []string
	for _, m := range recipients.ByStatus() {
		ids = append(ids, m.ID.String())
	}
	if len(ids) == 0 {
		return nil, domain.Validationf("no members match")
	}
	return ids, nil
}

func emailBulkCategory(c *cli.Context) error {
	body, err := readContent(c)
	if err != nil {
		return err
	}
	category, err := domain.ParseRecipientCategory(c.String("category"))
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	res, err := rt.Stores.Email.BulkByCategory(ctx, domain.CategoryEmailRequest{
		Category:   category,
		Subject:    body.Subject,
		HTML:       body.HTML,
		TemplateID: body.TemplateID,
		Variables:  body.Variables,
	})
	if err != nil {
		return err
	}
	return reportSend(rt, res)
}

func reportSend(rt *Runtime, res *domain.SendResult) error {
	rt.Printf("Sent %d, failed %d.\n", res.Sent, res.Failed)
	if rt.Format != output.FormatTable {
		return rt.Render(res)
	}
	for _, e := range res.Errors {
		rt.Printf("  %s\n", e)
	}
	return nil
}

func emailPreview(c *cli.Context) error {
	body, err := readContent(c)
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	p, err := rt.Stores.Email.Preview(ctx, domain.EmailRequest{
		To:         c.StringSlice("to"),
		Subject:    body.Subject,
		HTML:       body.HTML,
		TemplateID: body.TemplateID,
		Variables:  body.Variables,
	})
	if err != nil {
		return err
	}
	if rt.Format != output.FormatTable {
		return rt.Render(p)
	}
	rt.Printf("Subject: %s\n\n%s\n", p.Subject, p.HTML)
	return nil
}

func emailTest(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	res, err := rt.Stores.Email.Test(ctx, domain.TestEmailRequest{
		To:         c.String("to"),
		TemplateID: c.String("template"),
	})
	if err != nil {
		return err
	}
	return reportSend(rt, res)
}

func emailLogs(c *cli.Context) error {
	status, err := domain.ParseDeliveryStatus(c.String("status"))
	if err != nil {
		return err
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	logs := rt.Stores.Email.Logs
	if err := rt.Stores.Email.FetchLogs(ctx, c.Int("offset"), c.Int("limit")); err != nil {
		return err
	}
	snap := logs.Snapshot()
	if snap.Error != "" {
		return domain.ErrSessionExpired
	}
	logs.SetFilterStatus(status)
	if err := rt.Render(nonNil(logs.ByStatus())); err != nil {
		return err
	}
	rt.Printf("\nPage %d of %d (%d entries)\n", snap.Page, snap.TotalPages, snap.Total)
	return nil
}

func emailStats(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	st, err := rt.Stores.Email.Stats(ctx, c.String("period"))
	if err != nil {
		return err
	}
	return rt.Render(st)
}

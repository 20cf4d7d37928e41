package command

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/infra/shutdown"
	"github.com/gymone/gymadmin/internal/scanner"
	"github.com/gymone/gymadmin/internal/scanner/camera"
)

// shutdownTimeout bounds releasing the camera and the metrics listener.
const shutdownTimeout = 5 * time.Second

// QRCommand returns the qr subcommand group.
func QRCommand() *cli.Command {
	return &cli.Command{
		Name:  "qr",
		Usage: "Scan and look up member check-in codes",
		Subcommands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "Scan member QR codes and look each one up",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Frame source: v4l2 (camera), dir (image files), stdin (barcode reader)",
					},
					&cli.StringFlag{
						Name:    "device",
						Aliases: []string{"d"},
						Usage:   "Camera device (e.g. /dev/video0) or image directory",
					},
					&cli.Float64Flag{
						Name:  "fps",
						Usage: "Frames sampled per second",
					},
					&cli.BoolFlag{
						Name:  "loop",
						Usage: "Replay an image directory forever",
					},
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Stop after the first member code",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
					},
				},
				Action: qrScan,
			},
			{
				Name:      "lookup",
				Usage:     "Find a member by 8-character member code",
				ArgsUsage: "CODE",
				Action:    qrLookup,
			},
			{
				Name:   "stats",
				Usage:  "QR credential statistics",
				Action: qrStats,
			},
		},
	}
}

func qrLookup(c *cli.Context) error {
	code := strings.TrimSpace(c.Args().First())
	if code == "" {
		return domain.Validationf("member code required")
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	res, err := rt.Stores.Members.Lookup(ctx, code)
	if err != nil {
		return err
	}
	return rt.Render(res)
}

func qrStats(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	defer cancel()
	if err := rt.RequireAuth(ctx); err != nil {
		return err
	}

	st, err := rt.Stores.Members.QRStatistics(ctx)
	if err != nil {
		return err
	}
	return rt.Render(st)
}

// scanSource builds the frame provider selected by --source.
func scanSource(c *cli.Context, rt *Runtime) (camera.Provider, string, error) {
	source := rt.Config.Scanner.Source
	if c.IsSet("source") {
		source = c.String("source")
	}
	device := rt.Config.Scanner.Device
	if c.IsSet("device") {
		device = c.String("device")
	}

	switch source {
	case "v4l2":
		return camera.NewV4L2Provider(), device, nil
	case "dir":
		if device == "" {
			return nil, "", domain.Validationf("--device must name the image directory")
		}
		return camera.NewImageDirProvider(device, c.Bool("loop")), "", nil
	case "stdin":
		return camera.NewLineProvider("stdin", rt.Input()), "", nil
	default:
		return nil, "", domain.Validationf("unknown scan source %q (v4l2, dir, stdin)", source)
	}
}

func qrScan(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	err := rt.RequireAuth(ctx)
	cancel()
	if err != nil {
		return err
	}

	provider, device, err := scanSource(c, rt)
	if err != nil {
		return err
	}
	cfg := scanner.Config{
		FPS:          rt.Config.Scanner.FPS,
		SuccessDelay: rt.Config.Scanner.SuccessDelay,
		FailureDelay: rt.Config.Scanner.FailureDelay,
		RepeatHold:   rt.Config.Scanner.RepeatHold,
		Device:       device,
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}

	handler := shutdown.NewHandler(shutdownTimeout)
	once := c.Bool("once")
	sc := scanner.New(provider, cfg, scanner.Options{
		Logger:  rt.Logger,
		Metrics: rt.Metrics,
		OnResult: func(code string) {
			err := lookupScanned(rt, code)
			switch {
			case connection.IsSessionExpired(err):
				handler.Trigger("session expired")
			case once && err == nil:
				handler.Trigger("member scanned")
			}
		},
		OnChange:    func(s scanner.Snapshot) { reportScan(rt, s) },
		OnExhausted: func() { handler.Trigger("end of input") },
	})

	if addr := c.String("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: rt.Metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.Logger.Error("metrics listener failed", "addr", addr, "error", err)
			}
		}()
		handler.OnShutdown(srv.Shutdown)
		rt.Logger.Info("serving metrics", "addr", addr)
	}
	stopWatch := rt.WatchConfig()
	handler.OnShutdown(func(context.Context) error { return stopWatch() })
	// Registered last so the camera is released first.
	handler.OnShutdown(func(context.Context) error { return sc.Close() })

	if err := sc.Open(c.Context); err != nil {
		handler.Trigger("no camera")
		handler.Wait(context.Background())
		return err
	}

	name := "camera"
	if snap := sc.Snapshot(); snap.ActiveCamera < len(snap.Cameras) {
		name = snap.Cameras[snap.ActiveCamera].Name
	}
	rt.Banner(output.LevelInfo, "scanning on %s, press Ctrl+C to stop", name)
	if err := handler.Wait(c.Context); err != nil {
		return err
	}
	if handler.Reason() == "session expired" {
		return domain.ErrSessionExpired
	}
	return nil
}

// lookupScanned resolves an accepted code and prints the member.
func lookupScanned(rt *Runtime, code string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rt.Config.Timeout)
	defer cancel()

	res, err := rt.Stores.Members.Lookup(ctx, code)
	if err != nil {
		if !connection.IsSessionExpired(err) {
			rt.Banner(output.LevelError, "lookup %s: %v", code, err)
		}
		return err
	}
	if rt.Format != output.FormatTable {
		return rt.Render(res)
	}

	m := res.Member
	mark := "✓"
	if !res.Valid {
		mark = "✗"
	}
	line := mark + " " + code + "  " + m.FullName()
	if res.Membership != "" {
		line += "  (" + res.Membership + ")"
	}
	if m.MembershipEnd != "" {
		line += "  until " + m.MembershipEnd
	}
	if res.Message != "" {
		line += "  " + res.Message
	}
	rt.Printf("%s\n", line)
	return nil
}

// reportScan shows scan feedback on stderr.
func reportScan(rt *Runtime, s scanner.Snapshot) {
	switch s.State {
	case scanner.StateFailure:
		if s.Result != nil {
			rt.Banner(output.LevelWarn, "%s", s.Result.Message)
		}
	case scanner.StateSuccess:
		if s.Result != nil {
			rt.Logger.Debug(s.Result.Message)
		}
	case scanner.StateNoCamera:
		rt.Banner(output.LevelError, "no usable camera found")
	}
}

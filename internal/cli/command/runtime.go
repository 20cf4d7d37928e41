package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/config"
	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/infra/confloader"
	"github.com/gymone/gymadmin/internal/infra/tlsroots"
	"github.com/gymone/gymadmin/internal/storage"
	"github.com/gymone/gymadmin/internal/store"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
	"github.com/gymone/gymadmin/pkg/crypto/adaptive"
	"github.com/gymone/gymadmin/pkg/secret"
)

// loginHint is printed once when the backend rejects the session.
const loginHint = "session expired, run `gymadmin auth login` to sign in again"

// RuntimeOptions are the process-level inputs of a Runtime.
type RuntimeOptions struct {
	ConfigPath string
	// ConfigErr is the load error of a command running on defaults.
	ConfigErr error
	// Flags are the flag overrides, reapplied when the file is reloaded.
	Flags     map[string]any
	Wide      bool
	Ephemeral bool
	Out       io.Writer
	Err       io.Writer
	In        io.Reader
}

// Runtime holds what the commands share: configuration, logging, metrics,
// and, once Connect has run, the session and the stores.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string
	ConfigErr  error
	Logger     logger.Logger
	Metrics    *metric.Registry
	Format     output.Format
	Wide       bool

	Out io.Writer
	Err io.Writer

	in        *bufio.Reader
	ephemeral bool
	flags     map[string]any
	outMu     sync.Mutex

	mu        sync.Mutex
	connected bool
	kv        storage.KV
	Sessions  *connection.Manager
	Client    *connection.HTTPClient
	Stores    *store.Set
	depth     int
	closed    bool
}

// NewRuntime sets up logging and metrics. Nothing touches the disk or the
// network until Connect.
func NewRuntime(cfg *config.CLIConfig, opts RuntimeOptions) (*Runtime, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.Err,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	return &Runtime{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		ConfigErr:  opts.ConfigErr,
		Logger:     log,
		Metrics:    metric.NewRegistry(),
		Format:     format,
		Wide:       opts.Wide,
		Out:        opts.Out,
		Err:        opts.Err,
		in:         bufio.NewReader(opts.In),
		ephemeral:  opts.Ephemeral,
		flags:      opts.Flags,
	}, nil
}

// Connect opens the session storage, restores and validates the persisted
// session and builds the stores. It runs once; later calls return at once.
// A backend that cannot be reached does not fail Connect; the session is
// kept and the first real call reports the network error.
func (rt *Runtime) Connect(ctx context.Context) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.connected {
		return nil
	}
	if rt.closed {
		return storage.ErrClosed
	}

	kv, key, err := rt.openKV()
	if err != nil {
		return err
	}
	sessions, err := storage.NewSessionStore(kv, key, rt.Logger.Slog())
	if err != nil {
		kv.Close()
		return err
	}

	tlsConfig, err := tlsroots.ClientConfig(rt.Config.TLSCAFile)
	if err != nil {
		kv.Close()
		return fmt.Errorf("load CA bundle: %w", err)
	}

	mgr := connection.NewManager(sessions, rt.Logger, rt.Metrics)
	mgr.Guard().SetRedirector(func(string) {
		rt.Banner(output.LevelInfo, loginHint)
	})
	client := connection.NewHTTPClient(rt.Config.Server, mgr, connection.Options{
		Timeout:   rt.Config.Timeout,
		TLSConfig: tlsConfig,
		Guard:     mgr.Guard(),
		Logger:    rt.Logger,
		Metrics:   rt.Metrics,
	})

	if err := mgr.Init(ctx, client); err != nil {
		rt.Logger.Warn("session not validated", "error", err)
	}

	stores := store.NewSet(store.Deps{
		API:     client,
		Logger:  rt.Logger,
		Metrics: rt.Metrics,
	}, store.PageSizes{
		Members:     rt.Config.Stores.PerPage,
		Memberships: rt.Config.Stores.PerPage,
		Products:    rt.Config.Stores.PerPage,
		Email:       rt.Config.Stores.EmailPerPage,
	})
	if err := rt.Metrics.Register(metric.NewStoreCollector(stores.Sizers()...)); err != nil {
		rt.Logger.Debug("store collector not registered", "error", err)
	}

	rt.kv = kv
	rt.Sessions = mgr
	rt.Client = client
	rt.Stores = stores
	rt.connected = true
	return nil
}

func (rt *Runtime) openKV() (storage.KV, []byte, error) {
	if rt.ephemeral {
		key, err := secret.GenerateBytes(adaptive.KeySize)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMemoryKV(), key, nil
	}

	dir := rt.Config.DataDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	key, err := storage.LoadKey(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load session key: %w", err)
	}
	engine, err := storage.NewBadgerEngine(storage.DefaultKVConfig(dir), rt.Logger.Slog())
	if err != nil {
		return nil, nil, err
	}
	if err := rt.Metrics.Register(engine.Collectors()...); err != nil {
		rt.Logger.Debug("storage collectors not registered", "error", err)
	}
	return engine, key, nil
}

// WatchConfig reloads the log level whenever the configuration file
// changes, for long-running commands. The returned func stops watching.
func (rt *Runtime) WatchConfig() func() error {
	w, err := confloader.NewWatcher(rt.ConfigPath, confloader.WithWatcherLogger(rt.Logger.Slog()))
	if err != nil {
		rt.Logger.Debug("config watch disabled", "path", rt.ConfigPath, "error", err)
		return func() error { return nil }
	}
	w.OnChange(func(path string) {
		cfg, err := config.Load(config.LoadOptions{Path: path, Flags: rt.flags})
		if err != nil {
			rt.Logger.Warn("config reload failed", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		rt.Logger.Info("config reloaded", "log_level", cfg.Log.Level)
	})
	w.StartAsync()
	return w.Stop
}

// Input returns the shared reader behind ReadLine, for consumers that read
// standard input as a stream.
func (rt *Runtime) Input() io.Reader {
	return rt.in
}

// RequireAuth connects and fails unless a session is held.
func (rt *Runtime) RequireAuth(ctx context.Context) error {
	if err := rt.Connect(ctx); err != nil {
		return err
	}
	if !rt.Sessions.IsAuthenticated() {
		return domain.ErrNotAuthenticated.WithDetails("run `gymadmin auth login` first")
	}
	return nil
}

// Context returns a context for one command bounded by the configured timeout.
func (rt *Runtime) Context(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, rt.Config.Timeout)
}

// Render writes data in the selected output format.
func (rt *Runtime) Render(data any) error {
	rt.outMu.Lock()
	defer rt.outMu.Unlock()
	return output.NewFormatter(rt.Format, rt.Wide).Format(rt.Out, data)
}

// Printf writes a human-oriented line to stdout. It is suppressed for
// json and yaml output so that stdout stays machine-readable.
func (rt *Runtime) Printf(format string, args ...any) {
	if rt.Format != output.FormatTable {
		return
	}
	rt.outMu.Lock()
	defer rt.outMu.Unlock()
	fmt.Fprintf(rt.Out, format, args...)
}

// Banner writes a notice to stderr.
func (rt *Runtime) Banner(level output.Level, format string, args ...any) {
	rt.outMu.Lock()
	defer rt.outMu.Unlock()
	output.Banner(rt.Err, level, format, args...)
}

// ReadLine reads one line of user input without the line ending. All
// prompts and the shell share one buffered reader.
func (rt *Runtime) ReadLine() (string, error) {
	line, err := rt.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes/no question on stderr. Anything but y or yes is no.
func (rt *Runtime) Confirm(format string, args ...any) bool {
	fmt.Fprintf(rt.Err, format+" [y/N]: ", args...)
	answer, err := rt.ReadLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (rt *Runtime) enter() {
	rt.mu.Lock()
	rt.depth++
	rt.mu.Unlock()
}

// leave closes the runtime when the outermost run finishes.
func (rt *Runtime) leave() error {
	rt.mu.Lock()
	rt.depth--
	last := rt.depth <= 0
	rt.mu.Unlock()
	if !last {
		return nil
	}
	return rt.Close()
}

// Close releases the session storage.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil
	}
	rt.closed = true
	if rt.kv == nil {
		return nil
	}
	return rt.kv.Close()
}

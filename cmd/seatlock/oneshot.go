package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/app"
	"github.com/five82/seatlock/internal/config"
	"github.com/five82/seatlock/internal/logging"
	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/prefs"
	"github.com/five82/seatlock/internal/seatapi"
	"github.com/five82/seatlock/internal/state"
)

// reportedError marks an error the user has already been shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// oneShot is the plumbing shared by the non-interactive commands.
type oneShot struct {
	cfg    config.Config
	client *seatapi.Client
	store  *state.Store
	log    *zap.Logger
	userID int64
	close  func()
}

func newOneShot(flags *globalFlags) (*oneShot, error) {
	cfg, err := app.LoadConfig(flags.options())
	if err != nil {
		return nil, err
	}
	level := flags.logLevel
	if level == "" {
		level = "warn"
	}
	log, closeLog, err := logging.New(logging.Options{Level: level, Format: "console"})
	if err != nil {
		return nil, err
	}
	client, err := app.BuildClient(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}
	userPrefs, err := prefs.Load(flags.prefsPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("load prefs: %w", err)
	}
	return &oneShot{
		cfg:    cfg,
		client: client,
		store:  state.NewStore(state.Options{Source: client, Logger: log}),
		log:    log,
		userID: app.ResolveUserID(flags.user, userPrefs.UserID, cfg.UserID),
		close:  closeLog,
	}, nil
}

// noticePrinter writes notices to the command's output streams.
type noticePrinter struct {
	out, errOut io.Writer

	mu     sync.Mutex
	failed bool
}

func newNoticePrinter(cmd *cobra.Command) *noticePrinter {
	return &noticePrinter{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
}

func (p *noticePrinter) Publish(n notify.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch n.Kind {
	case notify.KindError:
		p.failed = true
		fmt.Fprintln(p.errOut, "✗ "+n.Message)
	case notify.KindSuccess:
		fmt.Fprintln(p.out, "✓ "+n.Message)
	default:
		fmt.Fprintln(p.out, n.Message)
	}
}

func (p *noticePrinter) reported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/seatlock/internal/app"
	"github.com/five82/seatlock/internal/gateway"
)

type globalFlags struct {
	configPath string
	prefsPath  string
	api        string
	user       int64
	poll       time.Duration
	logLevel   string
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath:   g.configPath,
		PrefsPath:    g.prefsPath,
		APIBind:      g.api,
		UserID:       g.user,
		PollInterval: g.poll,
		LogLevel:     g.logLevel,
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "seatlock",
		Short: "Live seat map client for the SeatLock reservation service",
		Long: `seatlock keeps a live view of a venue's seats in sync with the seat
authority and lets you hold and confirm seats from the terminal.

Without a subcommand it starts the interactive seat map (same as "watch").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/seatlock/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/seatlock/prefs.toml)")
	pf.StringVar(&flags.api, "api", "", "seat authority address, host:port or URL")
	pf.Int64Var(&flags.user, "user", 0, "act as this user id")
	pf.DurationVar(&flags.poll, "poll", 0, "polling interval (default 3s)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newWatchCmd(flags),
		newSeatsCmd(flags),
		newActionCmd(flags, gateway.KindHold),
		newActionCmd(flags, gateway.KindConfirm),
		newServeCmd(flags),
	)
	return root
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the interactive seat map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
}

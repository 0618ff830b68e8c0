package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/seatlock/internal/logging"
	"github.com/five82/seatlock/internal/seatlock"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var opts seatlock.ServerOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory seat authority for development",
		Long: `serve runs a local seat authority with the same HTTP and push contract
the client uses. State lives in memory and is lost on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := flags.logLevel
			if level == "" {
				level = "info"
			}
			log, closeLog, err := logging.New(logging.Options{Level: level, Format: "console"})
			if err != nil {
				return err
			}
			defer closeLog()

			opts.Logger = log
			srv, err := seatlock.NewServer(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Addr, "addr", seatlock.DefaultAddr, "listen address")
	f.IntVar(&opts.Seats, "seats", seatlock.DefaultSeats, "number of seats")
	f.DurationVar(&opts.HoldTTL, "hold-ttl", seatlock.DefaultHoldTTL, "how long a hold lasts before it expires")
	f.DurationVar(&opts.SweepEvery, "sweep", seatlock.DefaultSweepEvery, "expired hold sweep interval")
	f.Float64Var(&opts.Prefill, "prefill", 0, "fraction of seats to pre-hold or pre-sell (0-1)")
	f.Int64Var(&opts.Seed, "seed", 0, "random seed for --prefill (0 picks one)")
	f.StringVar(&opts.RedisAddr, "redis", "", "also publish changes to this redis address")
	f.StringVar(&opts.RedisChannel, "redis-channel", seatlock.DefaultRedisChannel, "redis channel for change notifications")
	f.StringSliceVar(&opts.OriginPatterns, "origin", nil, "allowed websocket origins (host patterns)")
	return cmd
}

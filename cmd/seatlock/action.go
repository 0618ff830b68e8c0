package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/five82/seatlock/internal/gateway"
)

func newActionCmd(flags *globalFlags, kind gateway.Kind) *cobra.Command {
	short := "Hold a seat for the current user"
	if kind == gateway.KindConfirm {
		short = "Confirm (buy) a seat the current user holds"
	}
	return &cobra.Command{
		Use:   kind.String() + " <seat>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || seatID <= 0 {
				return fmt.Errorf("invalid seat %q: want a positive number", args[0])
			}

			env, err := newOneShot(flags)
			if err != nil {
				return err
			}
			defer env.close()

			printer := newNoticePrinter(cmd)
			gw := gateway.New(gateway.Options{
				Backend:   env.client,
				Refresher: env.store,
				Notices:   printer,
				Logger:    env.log,
			})

			if kind == gateway.KindConfirm {
				err = gw.Confirm(cmd.Context(), seatID, env.userID)
			} else {
				err = gw.Hold(cmd.Context(), seatID, env.userID)
			}
			if err != nil {
				if printer.reported() {
					return &reportedError{err: err}
				}
				return err
			}

			if seat, ok := env.store.Snapshot().Seat(seatID); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "seat %d is now %s\n", seat.ID, seat.Status)
			}
			return nil
		},
	}
}

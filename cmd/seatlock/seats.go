package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/seatlock/internal/seatapi"
	"github.com/five82/seatlock/internal/state"
)

func newSeatsCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "seats",
		Short: "Print the current seat map and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newOneShot(flags)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.store.Refresh(cmd.Context()); err != nil {
				return err
			}
			snap := env.store.Snapshot()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Seats)
			}
			fmt.Fprintln(out, renderSeatTable(snap, env.userID))
			counts := snap.Counts()
			fmt.Fprintf(out, "%d available, %d held, %d sold (fetched %s)\n",
				counts.Available, counts.Held, counts.Sold, humanize.Time(snap.FetchedAt))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print seats as JSON")
	return cmd
}

func renderSeatTable(snap state.Snapshot, userID int64) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SEAT", "STATUS", "HELD BY")
	for _, seat := range snap.Seats {
		holder := ""
		if seat.Status == seatapi.StatusHeld {
			holder = strconv.FormatInt(seat.HeldBy, 10)
			if seat.HeldBy == userID {
				holder += " (you)"
			}
		}
		t.Row(strconv.FormatInt(seat.ID, 10), string(seat.Status), holder)
	}
	return t.Render()
}

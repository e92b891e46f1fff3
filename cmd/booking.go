package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/seating-service/internal/config"
	"github.com/example/seating-service/internal/db"
	"github.com/example/seating-service/internal/executor"
	"github.com/example/seating-service/internal/intake"
	"github.com/example/seating-service/internal/migrate"
	"github.com/example/seating-service/internal/notify"
	"github.com/example/seating-service/internal/store/postgres"
)

func newBookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Inspect and create bookings (non-UI)",
	}
	cmd.AddCommand(newBookingListCmd())
	cmd.AddCommand(newBookingWalkinCmd())
	return cmd
}

func newBookingListCmd() *cobra.Command {
	var date string

	c := &cobra.Command{
		Use:   "list",
		Short: "List bookings for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			day := time.Now()
			if date != "" {
				day, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
				}
			}
			from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
			to := from.Add(24 * time.Hour)

			st := postgres.New(d)
			bs, err := st.ListBookings(ctx, cfg.RestaurantID, from, to)
			if err != nil {
				return err
			}
			for _, b := range bs {
				tables := make([]string, 0, len(b.Tables))
				for _, t := range b.Tables {
					tables = append(tables, t.TableNumber)
				}
				fmt.Fprintf(os.Stdout, "id=%s guest=%q status=%s time=%s party=%d tables=%s\n",
					b.ID, b.GuestLabel(), b.Status, b.BookingTime.Format(time.RFC3339), b.PartySize,
					strings.Join(tables, ","))
			}
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", "", "day to list, YYYY-MM-DD (default today)")
	return c
}

func newBookingWalkinCmd() *cobra.Command {
	var (
		guestName string
		partySize int
		tables    string
		confirm   bool
	)

	c := &cobra.Command{
		Use:   "walkin",
		Short: "Seat a walk-in on specific tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			st := postgres.New(d)
			exec := &executor.Executor{Store: st, RestaurantID: cfg.RestaurantID, Lookahead: cfg.Lookahead}
			in := &intake.Intake{
				Store:        st,
				Exec:         exec,
				Notify:       &notify.Service{Store: st, RestaurantID: cfg.RestaurantID},
				RestaurantID: cfg.RestaurantID,
				Lookahead:    cfg.Lookahead,
			}

			var tableIDs []uuid.UUID
			for _, part := range strings.Split(tables, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := uuid.Parse(part)
				if err != nil {
					return fmt.Errorf("invalid table id %q", part)
				}
				tableIDs = append(tableIDs, id)
			}

			draft := intake.Draft{GuestName: guestName, PartySize: partySize, TableIDs: tableIDs}
			b, rep, err := in.Create(ctx, draft, confirm)
			if err != nil {
				if len(rep.Reasons) > 0 {
					fmt.Fprintln(os.Stderr, "conflicts:")
					for _, r := range rep.Reasons {
						fmt.Fprintf(os.Stderr, "  - %s\n", r)
					}
					fmt.Fprintln(os.Stderr, "re-run with --confirm to accept")
				}
				return err
			}
			fmt.Fprintf(os.Stdout, "seated walk-in id=%s guest=%q party=%d\n", b.ID, b.GuestLabel(), b.PartySize)
			return nil
		},
	}

	c.Flags().StringVar(&guestName, "guest", "", "guest name")
	c.Flags().IntVar(&partySize, "party-size", 2, "party size")
	c.Flags().StringVar(&tables, "tables", "", "comma-separated table ids")
	c.Flags().BoolVar(&confirm, "confirm", false, "accept displacements and capacity warnings")
	_ = c.MarkFlagRequired("guest")
	_ = c.MarkFlagRequired("tables")
	return c
}

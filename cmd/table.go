package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/seating-service/internal/config"
	"github.com/example/seating-service/internal/db"
	"github.com/example/seating-service/internal/migrate"
	"github.com/example/seating-service/internal/store/postgres"
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage floor tables",
	}
	cmd.AddCommand(newTableListCmd())
	cmd.AddCommand(newTableAddCmd())
	return cmd
}

func newTableListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tables for the configured restaurant",
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

			st := postgres.New(d)
			ts, err := st.ListTables(ctx, cfg.RestaurantID)
			if err != nil {
				return err
			}
			for _, t := range ts {
				fmt.Fprintf(os.Stdout, "id=%s number=%s capacity=%d-%d type=%s active=%t\n",
					t.ID, t.TableNumber, t.MinCapacity, t.MaxCapacity, t.Type, t.IsActive)
			}
			return nil
		},
	}
}

func newTableAddCmd() *cobra.Command {
	var (
		number    string
		minCap    int
		maxCap    int
		tableType string
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a table",
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

			if maxCap < minCap {
				return fmt.Errorf("--max-capacity must be >= --min-capacity")
			}
			err = d.Exec(ctx,
				`INSERT INTO restaurant_tables(restaurant_id, table_number, min_capacity, max_capacity, table_type, is_active)
				 VALUES ($1,$2,$3,$4,$5,true)`,
				cfg.RestaurantID, number, minCap, maxCap, tableType)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created table %s (capacity %d-%d)\n", number, minCap, maxCap)
			return nil
		},
	}

	c.Flags().StringVar(&number, "number", "", "table number shown to staff")
	c.Flags().IntVar(&minCap, "min-capacity", 1, "minimum party size")
	c.Flags().IntVar(&maxCap, "max-capacity", 2, "maximum party size")
	c.Flags().StringVar(&tableType, "type", "standard", "table type (standard, booth, window, patio, bar, private)")
	_ = c.MarkFlagRequired("number")
	return c
}

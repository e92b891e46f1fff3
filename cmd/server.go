package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/seating-service/internal/auth"
	"github.com/example/seating-service/internal/config"
	"github.com/example/seating-service/internal/db"
	"github.com/example/seating-service/internal/executor"
	"github.com/example/seating-service/internal/intake"
	"github.com/example/seating-service/internal/migrate"
	"github.com/example/seating-service/internal/notify"
	"github.com/example/seating-service/internal/refresh"
	"github.com/example/seating-service/internal/store/postgres"
	"github.com/example/seating-service/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the seating API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			st := postgres.New(d)

			exec := &executor.Executor{
				Store:        st,
				RestaurantID: cfg.RestaurantID,
				Lookahead:    cfg.Lookahead,
			}
			notifier := &notify.Service{Store: st, RestaurantID: cfg.RestaurantID}
			in := &intake.Intake{
				Store:        st,
				Exec:         exec,
				Notify:       notifier,
				RestaurantID: cfg.RestaurantID,
				Lookahead:    cfg.Lookahead,
			}
			loader := &refresh.Loader{
				Store:        st,
				RestaurantID: cfg.RestaurantID,
				Lookahead:    cfg.Lookahead,
				Urgency:      cfg.UrgencyWindow,
				TTL:          cfg.RefreshInterval,
			}
			go func() { _ = loader.Run(ctx) }()

			if cfg.NotifyWebhookURL != "" {
				disp := &notify.Dispatcher{
					Store:        st,
					Sender:       notify.NewClient(cfg.NotifyWebhookURL),
					RestaurantID: cfg.RestaurantID,
					Interval:     cfg.NotifyInterval,
				}
				go func() { _ = disp.Run(ctx) }()
			}

			ws := &web.Server{
				Auth:    authStore,
				Store:   st,
				Loader:  loader,
				Exec:    exec,
				Intake:  in,
				BaseURL: cfg.BaseURL,
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/bookwerx/internal/app"
	"github.com/atvirokodosprendimai/bookwerx/internal/logging"
)

func main() {
	cmd := &cli.Command{
		Name:  "bookwerx",
		Usage: "Multi-tenant bookkeeping ledger API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Sources: cli.EnvVars("BCR_ADDR"),
				Usage:   "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "./bookwerx.sqlite",
				Sources: cli.EnvVars("BCR_DB"),
				Usage:   "SQLite file path",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("BCR_LOG_LEVEL"),
				Usage:   "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Sources: cli.EnvVars("BCR_WEBHOOK_URL"),
				Usage:   "Deliver ledger events to this URL instead of the log",
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Sources: cli.EnvVars("BCR_WEBHOOK_SECRET"),
				Usage:   "HMAC-SHA256 signing secret for webhook deliveries",
			},
			&cli.DurationFlag{
				Name:    "outbox-interval",
				Value:   2 * time.Second,
				Sources: cli.EnvVars("BCR_OUTBOX_INTERVAL"),
				Usage:   "How often pending ledger events are dispatched",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.New(os.Stdout, c.String("log-level"))
			cfg := app.Config{
				Addr:           c.String("addr"),
				DBPath:         c.String("db-path"),
				WebhookURL:     c.String("webhook-url"),
				WebhookSecret:  c.String("webhook-secret"),
				OutboxInterval: c.Duration("outbox-interval"),
			}

			server, closer, err := app.NewServer(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					logger.Error().Err(closeErr).Msg("close resources")
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Msg("listening")
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("shutting down")
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/tdaniel1925/clientflow/pkg/cmd"
	"github.com/tdaniel1925/clientflow/pkg/config"
	"github.com/tdaniel1925/clientflow/pkg/eventbus"
	"github.com/tdaniel1925/clientflow/pkg/log"
	"github.com/tdaniel1925/clientflow/pkg/otelhelper"
)

const defaultPort = 9080

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "clientflow-api",
		Usage:                 "Manage inbox rules and call workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel); empty runs the pipeline inline",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for delayed actions; empty runs them immediately",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "platform-credentials",
				Usage:   "Path to the platform messaging credentials YAML file",
				Sources: cli.EnvVars("PLATFORM_CREDENTIALS_FILE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry trace export",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing ClientFlow API")

			if command.Bool("tracing") {
				if _, err := otelhelper.NewTracer(ctx, "clientflow-api"); err != nil {
					return err
				}
			}

			platform, err := config.LoadPlatformCredentials(command.String("platform-credentials"))
			if err != nil {
				return err
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"), platform)
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			var bus eventbus.EventBus

			if provider := command.String("event-bus"); provider != "" {
				bus, err = cmd.NewEventBus(provider, "clientflow-api", logger)
				if err != nil {
					return err
				}

				defer func() {
					if err := bus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()
			}

			queue, err := cmd.NewScheduleQueue(command.String("redis-url"), logger)
			if err != nil {
				return err
			}

			api := NewAPI(logger, store, cmd.NewRegistry(logger, store), bus, queue)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/config"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "fasttext-serving",
		Usage:   "Serve a fastText model over HTTP or gRPC",
		Version: version,
		Flags:   serveFlags(),
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:      "predict",
				Usage:     "Send texts to a running gRPC server and print the response",
				ArgsUsage: "TEXT...",
				Flags:     predictFlags(),
				Action:    predictAction,
			},
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "environment file",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "model file the runtime is expected to serve",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "base URL of the model runtime",
		},
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Usage:   "listen address, or unix:/path/to.sock",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "listen port",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w", "concurrency", "threads"},
			Usage:   "maximum number of requests processed at once",
		},
		&cli.BoolFlag{
			Name:  "grpc",
			Usage: "serve gRPC instead of HTTP",
		},
		&cli.IntFlag{
			Name:  "max-request-size",
			Usage: "maximum request size in MB",
		},
		&cli.IntFlag{
			Name:  "max-text-length",
			Usage: "maximum length of a single text in bytes",
		},
		&cli.FloatFlag{
			Name:  "default-threshold",
			Usage: "probability threshold used when a request gives none",
		},
		&cli.IntFlag{
			Name:  "default-vector-dim",
			Usage: "length of the zero vector returned for a failed embedding",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
	}
}

// loadConfig layers the flags the user actually set over config.Load
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Sources{
		ConfigFile: cmd.String("config"),
		EnvFile:    cmd.String("env"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.IsSet("model") {
		cfg.Model.Path = cmd.String("model")
	}
	if cmd.IsSet("backend") {
		cfg.Model.BackendURL = cmd.String("backend")
	}
	if cmd.IsSet("address") {
		cfg.Server.Host = cmd.String("address")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("workers") {
		cfg.Server.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("grpc") {
		cfg.Server.Transport = config.TransportHTTP
		if cmd.Bool("grpc") {
			cfg.Server.Transport = config.TransportGRPC
		}
	}
	if cmd.IsSet("max-request-size") {
		cfg.Server.MaxRequestSizeMB = int(cmd.Int("max-request-size"))
	}
	if cmd.IsSet("max-text-length") {
		cfg.Serving.MaxTextLength = int(cmd.Int("max-text-length"))
	}
	if cmd.IsSet("default-threshold") {
		cfg.Serving.DefaultThreshold = float32(cmd.Float("default-threshold"))
	}
	if cmd.IsSet("default-vector-dim") {
		cfg.Serving.DefaultVectorDim = int(cmd.Int("default-vector-dim"))
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

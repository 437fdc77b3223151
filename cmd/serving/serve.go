package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/cache"
	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/client"
	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/http/router"
	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/rpc"
	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
	rediscache "github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/cache"
	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/config"
	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/logger"
	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/metrics"
	"github.com/Wesley-Jzy/fasttext-serving/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return run(ctx, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Connect to the model runtime and require a loaded model
	remote := client.NewRemoteModel(client.NewRuntimeClient(cfg.Model.BackendURL, cfg.Model.Timeout))
	if err := checkModel(ctx, remote, cfg, log); err != nil {
		log.Error("Model runtime check failed", zap.Error(err))
		return err
	}

	// Initialize Redis (optional, continue without it)
	var model service.Model = remote
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = rediscache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Connected to Redis", zap.String("address", cfg.Redis.Addr()))
			model = cache.NewCachedModel(remote, cache.NewRedisStore(redisClient), cfg.Redis.TTL, log)
			defer func() { _ = redisClient.Close() }()
		}
	}

	var m *metrics.Metrics
	var recorder usecase.BatchRecorder
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.ServiceName, true)
		recorder = m
	}

	uc := usecase.NewPredictionUsecase(model, cfg.Serving, log, recorder)
	limiter := semaphore.NewWeighted(int64(cfg.Server.Workers))

	lis, err := listen(cfg.Server.Address())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	switch cfg.Server.Transport {
	case config.TransportGRPC:
		srv := rpc.NewServer(rpc.NewService(uc, cfg.Serving.DefaultVectorDim, log), rpc.ServerOptions{
			MaxRecvMsgSize: int(cfg.Server.MaxRequestSizeBytes()),
			Limiter:        limiter,
			Logger:         log,
		})
		g.Go(func() error {
			log.Info("Starting gRPC server",
				zap.String("address", cfg.Server.Address()),
				zap.Int("workers", cfg.Server.Workers),
			)
			if err := srv.Serve(lis); err != nil {
				return fmt.Errorf("gRPC server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info("Shutting down gRPC server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.GracefulStop(shutdownCtx)
			return nil
		})
		if m != nil && cfg.Metrics.Address != "" {
			serveHTTP(gctx, g, log, "metrics", &http.Server{
				Addr:              cfg.Metrics.Address,
				Handler:           m.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}, nil)
		}

	default:
		r := router.Setup(router.Dependencies{
			Usecase: uc,
			Prober:  remote,
			Redis:   redisClient,
			Metrics: m,
			Limiter: limiter,
			Logger:  log,
			Server:  cfg.Server,
			Serving: cfg.Serving,
			Version: version,
		})
		log.Info("Starting HTTP server",
			zap.String("address", cfg.Server.Address()),
			zap.Int("workers", cfg.Server.Workers),
		)
		serveHTTP(gctx, g, log, "http", &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}, lis)
	}

	err = g.Wait()
	log.Info("Server exited")
	return err
}

// serveHTTP runs srv in g and shuts it down once ctx is done.
// A nil lis makes the server listen on srv.Addr.
func serveHTTP(ctx context.Context, g *errgroup.Group, log *zap.Logger, name string, srv *http.Server, lis net.Listener) {
	g.Go(func() error {
		var err error
		if lis != nil {
			err = srv.Serve(lis)
		} else {
			log.Info("Starting "+name+" server", zap.String("address", srv.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.String("server", name), zap.Error(err))
			return err
		}
		return nil
	})
}

// checkModel refuses to start unless the runtime reports a loaded model
func checkModel(ctx context.Context, prober service.ModelProber, cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Model.Timeout)
	defer cancel()

	status, err := prober.Status(ctx)
	if err != nil {
		return fmt.Errorf("model runtime at %s is unreachable: %w", cfg.Model.BackendURL, err)
	}
	if !status.Loaded {
		return fmt.Errorf("model runtime at %s has no model loaded", cfg.Model.BackendURL)
	}
	if cfg.Model.Path != "" && status.ModelPath != "" && status.ModelPath != cfg.Model.Path {
		log.Warn("Model runtime serves a different model file",
			zap.String("expected", cfg.Model.Path),
			zap.String("actual", status.ModelPath),
		)
	}

	log.Info("Model loaded",
		zap.String("backend", cfg.Model.BackendURL),
		zap.String("model_path", status.ModelPath),
	)
	return nil
}

// listen opens a TCP listener, or a Unix socket for unix:/path addresses.
// A stale socket left by a previous run is removed first; any other
// file at the path is an error.
func listen(address string) (net.Listener, error) {
	if path, ok := strings.CutPrefix(address, "unix:"); ok {
		if err := removeStaleSocket(path); err != nil {
			return nil, err
		}
		lis, err := net.Listen("unix", path)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
		}
		return lis, nil
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return lis, nil
}

func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat socket path %q: %w", path, err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("socket path %q exists and is not a socket", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale socket %q: %w", path, err)
	}
	return nil
}

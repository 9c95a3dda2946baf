package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog/v3"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/forgeheat/internal/api"
	"github.com/jengzang/forgeheat/internal/config"
	"github.com/jengzang/forgeheat/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Examples:
  forgeheat serve                 # Listen on $PORT (default :8080)
  forgeheat serve --port :9090    # Override the listen address`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.envFiles...)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd.ErrOrStderr(), cfg)
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen address, overrides $PORT")
	return cmd
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests
func (a *app) serve(ctx context.Context) error {
	if level, _ := a.cfg.Level(); level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	schedulePurge(ctx, a.clock, a.store, a.cfg.CacheTTL, a.logger.Named("cache"))

	router := api.SetupRouter(api.Deps{
		Logger:        a.logger.Named("http"),
		Contributions: a.contributions,
		Limiter:       middleware.NewRateLimiter(ctx, a.clock, a.cfg.RateLimit, a.cfg.RateWindow),
		Gatherer:      a.registry,
		JWTSecret:     a.cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		a.logger.Info(ctx, "server starting",
			slog.F("addr", a.cfg.Port),
			slog.F("cache_backend", a.cfg.CacheBackend),
			slog.F("auth", a.cfg.JWTSecret != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info(shutdownCtx, "server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/labstack/echo/v4"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vey/vey-go/internal/config"
	"github.com/vey/vey-go/internal/metrics"
	"github.com/vey/vey-go/pkg/adapter/chirouter"
	"github.com/vey/vey-go/pkg/adapter/echoroute"
	"github.com/vey/vey-go/pkg/adapter/form"
	"github.com/vey/vey-go/pkg/vey"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort      int
	serveFramework string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the address validation adapters over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveFramework != "" {
			cfg.Server.Framework = serveFramework
		}

		client, err := newClient("serve")
		if err != nil {
			return err
		}
		defer client.Close()

		handler, err := buildHandler(cfg.Server, client, metrics.New("vey", servedPaths...))
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server",
				zap.Int("port", cfg.Server.Port),
				zap.String("framework", cfg.Server.Framework),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
		})

		return g.Wait()
	},
}

// servedPaths get their own metrics label.
var servedPaths = []string{
	chirouter.Prefix + "/validate",
	chirouter.Prefix + "/normalize",
	"/forms/address",
	"/health",
}

// buildHandler assembles the routes for the configured framework.
func buildHandler(sc config.ServerConfig, client vey.Client, m *metrics.Metrics) (http.Handler, error) {
	switch sc.Framework {
	case "chi", "":
		return buildChiHandler(sc, client, m), nil
	case "echo":
		return buildEchoHandler(client, m), nil
	default:
		return nil, eris.Errorf("unknown framework %q", sc.Framework)
	}
}

func buildChiHandler(sc config.ServerConfig, client vey.Client, m *metrics.Metrics) http.Handler {
	origins := sc.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(m.Middleware)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Method(http.MethodPost, "/forms/address", form.Handler(client))
	chirouter.Mount(r, client)

	return r
}

func buildEchoHandler(client vey.Client, m *metrics.Metrics) http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(m.EchoMiddleware())

	e.GET("/health", echo.WrapHandler(http.HandlerFunc(healthHandler)))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	echoroute.NewGroup(e, client)

	return e
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveFramework, "framework", "", "adapter framework: chi or echo (default from config)")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/meeting-manager/api"
	"github.com/frahmantamala/meeting-manager/internal/department"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/internal/organization"
	"github.com/frahmantamala/meeting-manager/internal/report"
	"github.com/frahmantamala/meeting-manager/internal/transport"
	"github.com/frahmantamala/meeting-manager/internal/transport/middleware"
	"github.com/frahmantamala/meeting-manager/internal/transport/rest"
	"github.com/frahmantamala/meeting-manager/internal/user"
	"github.com/frahmantamala/meeting-manager/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.LoggerWrapper()

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router, err := newRouter(ctx, app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build router: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
		if err := app.Close(); err != nil {
			log.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Server stopped")
}

func newRouter(ctx context.Context, app *application) (*chi.Mux, error) {
	base := transport.NewBaseHandler(app.Logger)

	handlers := rest.Handlers{
		Department:   department.NewHandler(base, app.Departments),
		Organization: organization.NewHandler(base, app.Organizations),
		User:         user.NewHandler(base, app.Users),
		Meeting:      meeting.NewHandler(base, app.Meetings, app.Dispatcher),
		Notification: notification.NewHandler(base, app.Notifications),
		Report:       report.NewHandler(base, app.Reports),
	}

	opts := rest.Options{AllowedOrigins: app.Config.Server.AllowedOrigins}
	if app.Store != nil {
		opts.Storage = app.Store
	}
	if app.Config.Server.ValidateRequests {
		validator, err := middleware.NewRequestValidator(ctx, api.OpenAPI, app.Logger)
		if err != nil {
			return nil, err
		}
		opts.Validator = validator
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, app.DB.SQL.DB, handlers, opts, app.Logger)
	return router, nil
}


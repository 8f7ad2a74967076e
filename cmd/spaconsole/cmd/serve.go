package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/internal/db/bunx"
	"github.com/MachineKe/spa-console/internal/guard"
	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/server"
	"github.com/MachineKe/spa-console/internal/session"
	"github.com/MachineKe/spa-console/pkg/sdk"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console server",
	Long:  `Starts the HTTP server hosting the login flow and the role-gated dashboard areas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		sessions := session.NewRepository(db)
		if err := sessions.Init(cmd.Context()); err != nil {
			return fmt.Errorf("failed to initialize session storage: %w", err)
		}
		log.Printf("Connected to database")

		api := sdk.NewClient(cfg.APIBaseURL, sdk.WithTimeout(cfg.RequestTimeout))
		resolver := identity.NewResolver(api, identity.WithCacheTTL(cfg.PrincipalCacheTTL))

		table, err := policy.NewTable()
		if err != nil {
			return fmt.Errorf("failed to build role policy: %w", err)
		}

		handler := server.NewH2CHandler(server.RouterOptions{
			API:      api,
			Sessions: sessions,
			Resolver: resolver,
			Policy:   table,
			Guard:    guard.New(resolver, table, "/login"),
			Cfg:      cfg,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			log.Printf("Upstream API: %s", cfg.APIBaseURL)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

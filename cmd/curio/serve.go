package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/curioverse/curio"
	"github.com/curioverse/curio/access"
	"github.com/curioverse/curio/config"
	"github.com/curioverse/curio/database"
	curiohttp "github.com/curioverse/curio/http"
	"github.com/curioverse/curio/signer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the Curio HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5716, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repo, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	if repo == nil {
		slog.Warn("no database configured; serving empty content and rejecting admin writes")
	}

	var mediaSigner curio.MediaSigner
	if cfg.Storage.Enabled {
		mediaSigner = signer.New(signer.Config{PublicBase: cfg.Storage.PublicBase})
	} else {
		slog.Warn("no object store configured; media URLs are null and upload tickets are refused")
	}

	service := curio.NewContentService(repo, mediaSigner, curio.ServiceConfig{
		ReadTTL:  time.Duration(cfg.Service.ReadTTLSeconds) * time.Second,
		WriteTTL: time.Duration(cfg.Service.WriteTTLSeconds) * time.Second,
	})

	var gate curiohttp.IdentityGate
	switch {
	case cfg.Access.Enabled:
		gate = access.New(access.Config{
			Header:   cfg.Access.Header,
			CertsURL: cfg.Access.CertsURL,
			CacheTTL: time.Duration(cfg.Access.CacheTTLSeconds) * time.Second,
		})
	case cfg.Access.Open:
		slog.Warn("identity gate open; admin routes accept every request")
		gate = access.OpenGate{}
	default:
		slog.Warn("identity gate not configured; admin routes deny all requests")
	}

	handlerConfig := curiohttp.HandlerConfig{
		Gate: gate,
		CORS: cfg.CORS,
	}

	handler := curiohttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "database", cfg.Database.Type)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

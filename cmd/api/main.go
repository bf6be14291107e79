package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/sutinse/ai-analysis-api/internal/config"
	"github.com/sutinse/ai-analysis-api/internal/container"
	"github.com/sutinse/ai-analysis-api/internal/logger"
)

type cli struct {
	LogLevel string `help:"Log level: debug, info, warn or error." env:"LOG_LEVEL" default:"info"`

	Serve    serveCmd    `cmd:"" default:"1" help:"Run the HTTP server."`
	Messages messagesCmd `cmd:"" help:"Print the registered system messages and exit."`
}

type serveCmd struct {
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown." default:"30s"`
}

func (s *serveCmd) Run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize dependency injection container
	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}

	// Write timeout leaves room for the error response after a request timeout
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"address":          cfg.ServerAddress(),
			"request_timeout":  cfg.RequestTimeout.String(),
			"analysis_timeout": cfg.AnalysisTimeout.String(),
			"chat_deployment":  cfg.AI.DeploymentName,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

type messagesCmd struct{}

func (m *messagesCmd) Run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	repo, err := container.LoadInstructions(cfg)
	if err != nil {
		return err
	}
	return printMessages(os.Stdout, repo.IDs(), func(id string) string {
		in, _ := repo.Get(id)
		return in.Description
	})
}

func printMessages(w io.Writer, ids []string, describe func(string) string) error {
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%-16s %s\n", id, describe(id)); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("ai-analysis-api"),
		kong.Description("REST API that analyzes text, documents and web pages with an Azure-hosted AI model."),
		kong.UsageOnError(),
	)

	logger.SetLevel(app.LogLevel)

	if err := ctx.Run(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/internal/logging"
	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"log/slog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long:  `Serves the editing API over HTTP, backed by a workflow document. With --redis, per-question configs are shared across replicas.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("workflow")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")

		if err := runServe(path, port, redisAddr); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for shared config storage (optional)")
}

func runServe(path, port, redisAddr string) error {
	parser := compiler.NewParser()
	wf, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	logger := logging.New(slog.LevelInfo)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	opts := []espalier.Option{
		espalier.WithLogger(logger),
		espalier.WithLifecycleHooks(metrics.Hooks()),
	}
	if redisAddr != "" {
		store := redisAdapter.New(redisAddr, "", 0)
		opts = append(opts, espalier.WithStore(store))
	}

	ws := memory.NewWorkspace(wf)
	editor := espalier.New(ws, opts...)

	// Seed the store with the document's question configs.
	ctx := context.Background()
	for _, page := range wf.Pages {
		for _, block := range page.Blocks {
			if block.Type == domain.BlockTypeChoice && block.Options != nil {
				if err := editor.SetOptions(ctx, block.ID, block.Options); err != nil {
					return fmt.Errorf("seed question %q: %w", block.ID, err)
				}
			}
		}
	}

	handler := httpAdapter.NewHandler(editor,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsRegistry(registry),
	)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		fmt.Printf("Starting Espalier Server on %s\n", srv.Addr)
		fmt.Printf("Editing workflow: %s\n", path)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("Espalier Server stopped gracefully")
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	indexer "github.com/JudgeZ/OSS-AI-Agent-Tool"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/httpapi"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/lsp"
)

var (
	flagHTTPAddr string
	flagLSPAddr  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "indexer",
	Short:         "Source-code intelligence backend",
	Long:          "Indexer parses source with tree-sitter, serves LSP navigation queries over TCP, and maintains a semantic document index behind an HTTP API.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http-addr", envOr("INDEXER_HTTP_ADDR", "127.0.0.1:8787"), "HTTP API listen address")
	serveCmd.Flags().StringVar(&flagLSPAddr, "lsp-addr", envOr("INDEXER_LSP_ADDR", lsp.DefaultAddr), "LSP listen address")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", envOr("INDEXER_LOG_LEVEL", "info"), "log level: debug|info|warn|error")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the LSP server until interrupted",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger(flagLogLevel)
	slog.SetDefault(log)

	log.Info("indexer service booting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := indexer.New(indexer.WithLogger(log))

	httpServer := &http.Server{
		Addr:    flagHTTPAddr,
		Handler: httpapi.NewRouter(svc, log),
	}
	lspServer := lsp.NewServer(flagLSPAddr, log)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("http api listening", "addr", flagHTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		err := lspServer.Listen(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := group.Wait()
	log.Info("indexer service exiting")
	return err
}

// newLogger builds a text slog logger at the requested level, defaulting to
// info for unknown values.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

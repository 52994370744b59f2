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

	"github.com/AnTengye/leasewise/config"
	"github.com/AnTengye/leasewise/handler"
	"github.com/AnTengye/leasewise/llm"
	"github.com/AnTengye/leasewise/middleware"
	"github.com/AnTengye/leasewise/pkg/logger"
	"github.com/AnTengye/leasewise/rag"
	"github.com/AnTengye/leasewise/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leasewise",
		Short: "Lease analysis backend over a local Ollama model",
		Long:  "LeaseWise ingests residential lease PDFs and answers questions, summarizes, extracts key terms and flags risky clauses using a local language model.",
	}

	rootCmd.AddCommand(createServeCommand())
	rootCmd.AddCommand(createInspectCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func createServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	return cmd
}

func createInspectCommand() *cobra.Command {
	var configPath string
	var previewLen int

	cmd := &cobra.Command{
		Use:   "inspect <lease.pdf>",
		Short: "Extract and chunk a PDF without calling any model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return inspect(cmd, cfg, args[0], previewLen)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	cmd.Flags().IntVarP(&previewLen, "preview", "p", 500, "Number of characters to preview")

	return cmd
}

func inspect(cmd *cobra.Command, cfg *config.Config, path string, previewLen int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	text, err := service.NewPDFExtractor().Extract(data)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}

	normalized := rag.Normalize(text)
	chunks, err := rag.Chunk(normalized, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:       %s\n", path)
	fmt.Fprintf(out, "Characters: %d\n", len([]rune(normalized)))
	fmt.Fprintf(out, "Chunks:     %d (size %d, overlap %d)\n", len(chunks), cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	fmt.Fprintf(out, "Preview:\n%s\n", rag.Preview(normalized, previewLen))
	return nil
}

func serve(cfg *config.Config) error {
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully",
		"ollama_url", cfg.Ollama.BaseURL,
		"chat_model", cfg.Ollama.ChatModel,
		"embed_model", cfg.Ollama.EmbedModel,
	)

	embedder, err := rag.NewOllamaEmbedder(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel, cfg.Ollama.EmbedBatchSize)
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	chat := llm.NewOllamaClient(cfg.Ollama.BaseURL, cfg.Ollama.ChatModel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store := service.NewDocumentStore(&cfg.Store)
	store.StartJanitor(ctx, cfg.Store.CleanupInterval())

	leaseSvc := service.NewLeaseService(store, embedder, chat, cfg)
	leaseHandler := handler.NewLeaseHandler(leaseSvc, service.NewPDFExtractor(), cfg.Server.MaxUploadMB)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(cfg.Server.BasePath + "/health"))
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window()))

	leaseHandler.Register(router.Group(cfg.Server.BasePath))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		// model calls can take minutes
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Ollama.SummaryTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "base_path", cfg.Server.BasePath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

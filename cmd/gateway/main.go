// Package main is the entry point for the rag-gateway server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rag-gateway/internal/cloudclient"
	"github.com/danielpatrickdp/rag-gateway/internal/config"
	"github.com/danielpatrickdp/rag-gateway/internal/journal"
	"github.com/danielpatrickdp/rag-gateway/internal/ragclient"
	"github.com/danielpatrickdp/rag-gateway/internal/router"
	"github.com/danielpatrickdp/rag-gateway/internal/server"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile  string
	addrFlag string
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Adaptive query gateway between a local RAG service and a cloud LLM",
	Long: `gateway answers questions by classifying each query, routing it to a
local retrieval service or a cloud language model, scoring the answer, and
escalating once when the local answer is not trustworthy enough.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gateway version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gateway.yaml)")
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(versionCmd)
}

func run() error {
	// .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("[MAIN] loaded .env")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addrFlag != "" {
		cfg.ListenAddr = addrFlag
	}

	jrnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	local := ragclient.New(cfg.RAGBaseURL, cfg.RAGTimeout)
	cloud := cloudclient.New(cloudclient.Config{
		APIKey:      cfg.CloudAPIKey,
		BaseURL:     cfg.CloudBaseURL,
		Model:       cfg.CloudModel,
		MaxTokens:   cfg.CloudMaxTokens,
		Temperature: cfg.CloudTemperature,
	})

	dispatcher := router.NewDispatcher(local, cloud, cfg.Flags, jrnl).
		WithCallTimeout(cfg.CallTimeout)

	srv := server.New(cfg.ListenAddr, dispatcher, jrnl).WithRAGPinger(local)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Printf("[MAIN] gateway %s started: rag=%s rag_required=%v use_rag_first=%v",
		version, cfg.RAGBaseURL, cfg.Flags.RAGRequired, cfg.Flags.UseRAGFirst)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[MAIN] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("[MAIN] %v", err)
		os.Exit(1)
	}
}

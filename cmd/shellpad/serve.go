package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local fiddle server",
	Long:  `Starts an in-memory fiddle server answering the run, save, favourite, draft and library endpoints the editor uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.New(cfg.LoggerConfig())

		timeout, err := cfg.RequestTimeout()
		if err != nil {
			return fmt.Errorf("server timeout: %w", err)
		}
		scfg := server.Config{
			Listen:         cfg.Server.Listen,
			TitleLimit:     cfg.Server.TitleLimit,
			Endpoints:      cfg.PipelineSettings().Endpoints,
			RequestTimeout: timeout,
			DraftUser:      cfg.User.Username,
		}
		if serveListen != "" {
			scfg.Listen = serveListen
		}
		if scfg.DraftUser == "" {
			scfg.DraftUser = server.DefaultConfig().DraftUser
		}

		srv := server.New(scfg, server.NewStore(server.DefaultLibraries()), logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}

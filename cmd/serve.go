package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kaizoku/internal/extract"
	"kaizoku/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default :3000, or :$PORT)")
	rootCmd.AddCommand(serveCmd)
}

func serveRun(cmd *cobra.Command, args []string) error {
	if flagListen != "" {
		cfg.Listen = flagListen
	}

	client := newClient()
	pipeline := extract.New(client, cfg.Timeout, log)

	store, err := openAudit()
	if err != nil {
		return err
	}

	var recorder server.Recorder
	if store != nil {
		defer store.Close()
		recorder = store
	}

	handlers := server.NewHandlers(newProvider(client), pipeline, recorder, log)
	srv := server.New(cfg.Listen, handlers, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

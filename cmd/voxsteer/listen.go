package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/steerlab/voxsteer/internal/logging"
)

// ListenCmd starts the server and waits for audio clients.
func ListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Start the recognition server",
		Long:  "Starts the HTTP/websocket server. Clients stream microphone audio to /ws/audio and receive live predictions and decisions.",
		Run: func(cmd *cobra.Command, args []string) {
			runListen()
		},
	}
}

func runListen() {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.restoreModel(context.Background())

	srv := a.server()

	// Handle Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Infof("received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlaslearn/atlas/backend/interviewsvc"
)

func newInterviewdCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "interviewd",
		Short: "Run the mock interview service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterviewd(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 5001, "Port to listen on")
	return cmd
}

func runInterviewd(ctx context.Context, port int) error {
	svc := interviewsvc.NewService(nil)
	go svc.Sessions().RunTimeoutChecker(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting interview service", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("interview service error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Interview service forced to shutdown", "error", err)
		return err
	}
	slog.Info("Interview service exited")
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vatmonitor/internal/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long: `Start the HTTP API immediately and load the data in the background.
Data routes answer 503 until loading completes.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Float64("rate-limit", 20, "requests per second per client (0 disables)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.rate_limit", cmd.Flags().Lookup("rate-limit"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// The API is live at once but returns 503 until the engine is set.
	h := api.NewHandler(nil)
	e := api.NewServer(h, api.ServerOptions{
		Logger:    log,
		RateLimit: cfg.Server.RateLimit,
	})

	go func() {
		log.Info().Msg("loading data in background")
		t0 := time.Now()

		eng, err := loadEngine(ctx)
		if err != nil {
			log.Error().Err(err).Msg("data load failed, API stays unavailable")
			return
		}
		h.SetEngine(eng)

		log.Info().
			Dur("elapsed", time.Since(t0)).
			Time("reference", eng.Reference()).
			Msg("data loaded, API is fully ready")
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), api.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

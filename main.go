package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/api"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/config"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/game"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/metrics"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/websocket"
	"github.com/mattn/go-colorable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "tictactoe-server",
		Short:         "Real-time two player tic-tac-toe room server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			closeLog, err := InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer closeLog()

			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	service := game.NewService(game.NewRegistry(),
		game.WithConclusionDelay(cfg.Game.ConclusionDelay),
		game.WithMetrics(m),
	)
	hub := websocket.NewHub(service, m)
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: api.New(service, hub, cfg.WebSocket, reg).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting App")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// InitializeLogger configures the global zerolog logger. The returned func
// closes the log file, if one was opened.
func InitializeLogger(cfg config.LoggingConfig) (func(), error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}
	}

	closeFn := func() {}
	if cfg.ToFile {
		runLogFile, err := os.OpenFile(
			cfg.File,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0664,
		)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(runLogFile, out)
		closeFn = func() { runLogFile.Close() }
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
	return closeFn, nil
}

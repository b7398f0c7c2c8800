package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	router "github.com/dkeye/FrameBridge/internal/adapters/http"
	wssignal "github.com/dkeye/FrameBridge/internal/adapters/signal"
	"github.com/dkeye/FrameBridge/internal/app"
	"github.com/dkeye/FrameBridge/internal/config"
	"github.com/dkeye/FrameBridge/internal/domain"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "framebridge",
		Short:         "Host-page relay for messages between embedded frames",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var env string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host relay and its HTTP/WebSocket endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger(debug)
			return serve(cmd.Context(), env)
		},
	}
	addServeFlags(cmd.Flags(), &env, &debug)
	return cmd
}

func addServeFlags(fs *pflag.FlagSet, env *string, debug *bool) {
	fs.StringVar(env, "env", "", "config environment (config/config.<env>.yaml), defaults to $CONFIG_ENV or dev")
	fs.BoolVar(debug, "debug", false, "enable debug logging")
}

func setupLogger(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func serve(parent context.Context, env string) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(env)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}
	action, err := app.ParseBackpressureAction(cfg.Backpressure)
	if err != nil {
		return err
	}

	hostMeta, err := domain.NewContext("host", domain.Origin(cfg.Origin))
	if err != nil {
		return fmt.Errorf("host context: %w", err)
	}
	win := app.NewWindow(hostMeta, cfg.LoopQueue)
	host := app.NewHost(win, app.NewRegistry(), app.NewInbox(cfg.InboxSize), cfg.TargetOrigin)
	host.Start()
	go win.Loop.Run(ctx)

	ctrl := &wssignal.SignalWSController{
		Host:       host,
		Policy:     app.SimplePolicy{Action: action},
		Limiter:    wssignal.NewRateLimiter(cfg.RateLimit, cfg.RateInterval),
		HostOrigin: hostMeta.Origin,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
	}

	r := router.SetupRouter(ctx, cfg, host, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("target_origin", cfg.TargetOrigin).Msg("FrameBridge started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := host.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("host closed before its event loop drained")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

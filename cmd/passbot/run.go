package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpadapter "github.com/unitpass/passbot/internal/adapters/http"
	"github.com/unitpass/passbot/internal/adapters/postgres"
	"github.com/unitpass/passbot/internal/adapters/telegram"
	"github.com/unitpass/passbot/internal/config"
	"github.com/unitpass/passbot/internal/engine"
	"github.com/unitpass/passbot/internal/langs"
	"github.com/unitpass/passbot/internal/logging"
	"github.com/unitpass/passbot/internal/metrics"
	"github.com/unitpass/passbot/pkg/adapters/memory"
	redisadapter "github.com/unitpass/passbot/pkg/adapters/redis"
	"github.com/unitpass/passbot/pkg/ports"
	"github.com/unitpass/passbot/pkg/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot, the dialog engine and the ops endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")

		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		var store ports.SessionStore
		if cfg.RedisAddr != "" {
			rstore := redisadapter.New(cfg.RedisAddr, "", 0)
			defer rstore.Close()
			store = rstore
			logger.Info("using redis session store", "addr", cfg.RedisAddr)
		} else {
			store = memory.NewStore()
			logger.Info("using in-memory session store")
		}

		registry := prometheus.NewRegistry()
		mset := metrics.New(registry)

		eng := engine.New(
			store,
			langs.NewTable(postgres.NewLanguageSource(db), logger),
			postgres.NewRecorder(db),
			engine.WithLogger(logger),
			engine.WithGuard(session.NewGuard()),
			engine.WithHooks(mset.Hooks()),
		)

		transport, err := telegram.New(cfg.TelegramToken, eng, logger)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: httpadapter.NewHandler(registry),
		}
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("ops endpoints listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		go func() {
			logger.Info("bot started")
			transport.Run(ctx)
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("ops server: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			_ = srv.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/ricochet1k/storymesh/internal/api"
	"github.com/ricochet1k/storymesh/internal/bridge"
	"github.com/ricochet1k/storymesh/internal/classifier"
	"github.com/ricochet1k/storymesh/internal/config"
	"github.com/ricochet1k/storymesh/internal/engine"
	"github.com/ricochet1k/storymesh/internal/queue"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge server around an engine command",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides STORYMESH_ADDR)")
	serveCmd.Flags().String("engine", "", "engine command to run (overrides STORYMESH_ENGINE_CMD)")
	serveCmd.Flags().String("rules", "", "path to a classifier rules JSON file")
	serveCmd.Flags().Bool("autostart", true, "start the engine run on boot")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if engineCmd, _ := cmd.Flags().GetString("engine"); engineCmd != "" {
		cfg.EngineCommand = engineCmd
	}
	if rules, _ := cmd.Flags().GetString("rules"); rules != "" {
		cfg.RulesPath = rules
	}
	if cfg.EngineCommand == "" {
		return errors.New("no engine command configured (set STORYMESH_ENGINE_CMD or --engine)")
	}

	rules, err := classifier.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load classifier rules: %w", err)
	}

	eng, err := engine.NewCommand(engine.CommandConfig{
		Command:    cfg.EngineCommand,
		Args:       cfg.EngineArgs,
		WorkingDir: cfg.EngineDir,
	})
	if err != nil {
		return err
	}

	inputs := queue.NewInputQueue(0)
	hub := bridge.NewHub()
	runner := bridge.NewRunner(bridge.RunnerConfig{
		Engine:       eng,
		Inputs:       inputs,
		Rules:        rules,
		PollInterval: cfg.PollInterval,
		RetryCeiling: cfg.RetryCeiling,
		Status:       hub.UpdateStatus,
	}, hub)

	loop := bridge.NewLoop(hub, cfg.SweepInterval)
	loop.Start()
	defer loop.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if autostart, _ := cmd.Flags().GetBool("autostart"); autostart {
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start engine: %w", err)
		}
		logger.Info("engine run started", "command", cfg.EngineCommand)
	}

	router := chi.NewRouter()
	handler := api.NewHandler(runner, hub, inputs, logger)
	handler.Mount(router)

	server := &http.Server{Addr: cfg.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runner.Stop(shutdownCtx); err != nil {
		logger.Warn("engine did not stop cleanly", "error", err)
	}
	inputs.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

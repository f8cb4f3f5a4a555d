package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"
	app_config "github.com/civicore/civ-app/config"
	"github.com/civicore/civ-app/indexer"
	"github.com/civicore/civ-app/state"
	"github.com/spf13/cobra"
)

var homeDir string

var civCmd = &cobra.Command{
	Use:   "civ",
	Short: "civ runs the governance and token ledger service",
	Long: `Deliberation engine for civic proposals: competence-gated voting,
vote delegation and a dual-token participation ledger.`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	civCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func run(cmd *cobra.Command, args []string) {
	if homeDir == "" {
		homeDir = os.ExpandEnv("$HOME/.civ")
	}

	cfg, err := app_config.Load(homeDir)
	if err != nil {
		stdlog.Fatalf("Reading config: %v", err)
	}

	filter, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to parse log level: %v", err)
	}
	logger := log.NewLogger(os.Stdout, log.FilterOption(filter))

	db, err := state.NewStateDB(cfg.StateDBDir(), logger)
	if err != nil {
		stdlog.Fatalf("open state db err:%v", err)
	}

	idx, err := indexer.NewIndexer(logger, cfg.IndexerDBFile())
	if err != nil {
		stdlog.Fatalf("new indexer err:%v", err)
	}
	db.Subscribe(idx.Events())

	ctx, cancel := context.WithCancel(context.Background())
	go idx.Start(ctx)

	service := indexer.NewService(cfg.Service.ListenAddr, db, idx)
	go func() {
		if err := service.Start(); err != nil {
			stdlog.Fatalf("service err:%v", err)
		}
	}()
	logger.Info("service started", "listen", cfg.Service.ListenAddr)

	defer func() {
		logger.Info("shut down...")
		cancel()
		if err := idx.Close(); err != nil {
			logger.Error("close indexer fail", "err", err)
		}
		if err := db.Close(); err != nil {
			logger.Error("close state db fail", "err", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

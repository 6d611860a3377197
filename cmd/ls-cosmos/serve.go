package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/litescript/ls-cosmos/internal/almanac"
	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cosmic weather HTTP API",
	Long: `Serve the cosmic weather HTTP API:

  GET /api/cosmic?at=RFC3339     snapshot for an instant (default now)
  GET /api/almanac/{YYYY-MM-DD}  stored day, computed on miss
  GET /api/almanac?from=&days=   stored day range
  GET /api/version               build version
  GET /ws                        snapshot push every ws_interval
  GET /metrics                   Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("almanac-path", "", "badger almanac directory (in-memory when empty)")
	serveCmd.Flags().Duration("ws-interval", 0, "WebSocket push interval (default 5s)")
	_ = viper.BindPFlag("server_addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("almanac_path", serveCmd.Flags().Lookup("almanac-path"))
	_ = viper.BindPFlag("ws_interval", serveCmd.Flags().Lookup("ws-interval"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signalContext()
	defer cancel()

	var store *almanac.Store
	if cfg.AlmanacPath != "" {
		store, err = almanac.Open(cfg.AlmanacPath, logger.With("component", "almanac"))
	} else {
		store, err = almanac.OpenInMemory(logger.With("component", "almanac"))
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("%v", err)
		}
	}()

	calc := jyotish.NewCalculator(nil)
	srv := server.New(server.Options{
		Calculator:   calc,
		ProviderName: calc.Provider().Name(),
		Almanac:      store,
		Logger:       logger.With("component", "server"),
		WSInterval:   cfg.WSInterval,
	})

	return srv.ListenAndServe(ctx, cfg.ServerAddr)
}

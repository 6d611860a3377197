package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/state"
	"github.com/litescript/ls-cosmos/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the live cosmic weather dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().Duration("refresh", 0, "recompute interval, clamped to 1s..5m (default 60s)")
	_ = viper.BindPFlag("refresh", tuiCmd.Flags().Lookup("refresh"))

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = cfg.Refresh
	mgr := state.NewManager(stateCfg)

	calc := jyotish.NewCalculator(nil)
	logger.Debug("starting dashboard: provider=%s refresh=%v", calc.Provider().Name(), cfg.Refresh)

	p := tea.NewProgram(ui.New(mgr, calc), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

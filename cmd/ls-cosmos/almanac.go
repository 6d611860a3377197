package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/litescript/ls-cosmos/internal/almanac"
	"github.com/litescript/ls-cosmos/internal/jyotish"
)

var almanacCmd = &cobra.Command{
	Use:   "almanac",
	Short: "Compute, store and print a run of days",
	RunE:  runAlmanac,
}

func init() {
	almanacCmd.Flags().String("from", "", "first day, YYYY-MM-DD (default today, UTC)")
	almanacCmd.Flags().Int("days", 0, "number of days (default 30)")
	almanacCmd.Flags().String("path", "", "badger almanac directory (in-memory when empty)")
	_ = viper.BindPFlag("almanac_days", almanacCmd.Flags().Lookup("days"))

	rootCmd.AddCommand(almanacCmd)
}

func runAlmanac(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	from := almanac.Day(time.Now())
	if raw, _ := cmd.Flags().GetString("from"); raw != "" {
		if from, err = almanac.ParseDay(raw); err != nil {
			return err
		}
	}
	if cfg.AlmanacDays < 1 {
		return fmt.Errorf("invalid --days %d: must be at least 1", cfg.AlmanacDays)
	}

	// --path overrides the configured almanac_path.
	path := cfg.AlmanacPath
	if cmd.Flags().Changed("path") {
		path, _ = cmd.Flags().GetString("path")
	}

	ctx, cancel := signalContext()
	defer cancel()

	var store *almanac.Store
	if path != "" {
		store, err = almanac.Open(path, logger)
	} else {
		store, err = almanac.OpenInMemory(logger)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Fill(ctx, jyotish.NewCalculator(nil), from, cfg.AlmanacDays); err != nil {
		return err
	}

	entries, err := store.Range(from, from.AddDate(0, 0, cfg.AlmanacDays-1))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s  %-11s %-11s %-18s %-24s %s\n", "Date", "Sun", "Moon", "Nakshatra", "Tithi", "Phase")
	for _, e := range entries {
		d := e.Data
		fmt.Fprintf(out, "%-10s  %-11s %-11s %-18s %-24s %s %.0f%%\n",
			e.Date, d.SunSign, d.MoonSign, d.MoonNakshatra.Name,
			fmt.Sprintf("%d %s", d.Tithi.Index, d.Tithi.Name), d.MoonPhase, d.Illumination)
	}
	return nil
}

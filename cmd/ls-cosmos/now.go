package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-cosmos/internal/jyotish"
	"github.com/litescript/ls-cosmos/internal/state"
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print cosmic weather for now or a given time",
	RunE:  runNow,
}

func init() {
	nowCmd.Flags().String("at", "", "calculate for this RFC3339 time instead of now")
	nowCmd.Flags().Bool("json", false, "print a JSON snapshot")
	nowCmd.Flags().Bool("line", false, "print a single summary line")
	nowCmd.Flags().String("snapshot-path", "", "also write a JSON snapshot to this file")
	nowCmd.Flags().Duration("watch", 0, "repeat at this interval (e.g. 1m)")
	nowCmd.Flags().Bool("events", false, "print transits detected between watch updates")
	nowCmd.Flags().Bool("beep", false, "beep on retrograde stations (TTY only)")
	nowCmd.MarkFlagsMutuallyExclusive("at", "watch")
	nowCmd.MarkFlagsMutuallyExclusive("json", "line")

	rootCmd.AddCommand(nowCmd)
}

type nowOptions struct {
	at           time.Time
	json         bool
	line         bool
	snapshotPath string
	watch        time.Duration
	events       bool
	beep         bool
}

func parseNowOptions(cmd *cobra.Command) (nowOptions, error) {
	var o nowOptions
	f := cmd.Flags()

	if raw, _ := f.GetString("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return o, fmt.Errorf("invalid --at %q: want RFC3339 (e.g. 2024-04-08T18:21:00Z)", raw)
		}
		o.at = t
	}
	o.json, _ = f.GetBool("json")
	o.line, _ = f.GetBool("line")
	o.snapshotPath, _ = f.GetString("snapshot-path")
	o.watch, _ = f.GetDuration("watch")
	o.events, _ = f.GetBool("events")
	o.beep, _ = f.GetBool("beep")

	if o.watch < 0 {
		return o, fmt.Errorf("invalid --watch %v: must be positive", o.watch)
	}
	return o, nil
}

func runNow(cmd *cobra.Command, args []string) error {
	opts, err := parseNowOptions(cmd)
	if err != nil {
		return err
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	calc := jyotish.NewCalculator(nil)
	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = cfg.Refresh
	mgr := state.NewManager(stateCfg)
	tty := isTTY()
	out := cmd.OutOrStdout()

	outputOnce := func() error {
		at := opts.at
		if at.IsZero() {
			at = time.Now()
		}

		start := time.Now()
		data, err := calc.Calculate(at)
		if err != nil {
			mgr.Update(nil, time.Since(start), err)
			return err
		}
		mgr.Update(&data, time.Since(start), nil)
		logger.Debug("calculated %s in %v", at.Format(time.RFC3339), time.Since(start))

		if opts.snapshotPath != "" {
			if err := writeSnapshotFile(opts.snapshotPath, data, calc.Provider().Name()); err != nil {
				return err
			}
		}

		switch {
		case opts.json:
			if err := jyotish.ExportSnapshot(data, time.Now().UTC(), calc.Provider().Name()).WriteJSON(out); err != nil {
				return fmt.Errorf("write JSON: %w", err)
			}
		case opts.line:
			jyotish.WriteNowLine(out, data)
		default:
			jyotish.WriteSummaryTable(out, data)
		}

		return nil
	}

	if opts.watch == 0 {
		return outputOnce()
	}

	if err := outputOnce(); err != nil {
		logger.Error("calculation failed: %v", err)
	}

	ticker := time.NewTicker(opts.watch)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var since time.Time
			if snap := mgr.Snapshot(); snap.Data != nil {
				since = snap.Data.Time
			}

			if !opts.line {
				fmt.Fprintln(out)
			}
			if err := outputOnce(); err != nil {
				logger.Error("calculation failed: %v", err)
				continue
			}

			fresh := eventsSince(mgr.RecentEvents(stateCfg.MaxEvents), since)
			if opts.events {
				writeEvents(out, fresh)
			}
			if opts.beep && tty && hasStation(fresh) {
				fmt.Fprint(out, "\a")
			}
		}
	}
}

// eventsSince returns events stamped after since.
func eventsSince(all []state.Event, since time.Time) []state.Event {
	var out []state.Event
	for _, e := range all {
		if e.Timestamp.After(since) {
			out = append(out, e)
		}
	}
	return out
}

func hasStation(events []state.Event) bool {
	for _, e := range events {
		if e.Type == state.EventStationRetro || e.Type == state.EventStationDirect {
			return true
		}
	}
	return false
}

func writeEvents(w io.Writer, events []state.Event) {
	for _, e := range events {
		fmt.Fprintf(w, "  %s  %s\n", e.Timestamp.UTC().Format("2006-01-02 15:04"), e)
	}
}

func writeSnapshotFile(path string, data jyotish.CosmicData, provider string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	if err := jyotish.ExportSnapshot(data, time.Now().UTC(), provider).WriteJSON(f); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

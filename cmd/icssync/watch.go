package main

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/beekhof/ics-sync/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch CALENDAR SOURCE",
	Short: "Sync a feed on a schedule until interrupted",
	Long: `Watch runs the same reconciliation as sync, once at startup and then
on a cron schedule, until the process receives SIGINT or SIGTERM. The
schedule accepts standard cron expressions and descriptors such as
@hourly and @every 30m.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger()
		ctx := cmd.Context()

		schedule, _ := cmd.Flags().GetString("schedule")
		if schedule == "" {
			schedule = cfg.Schedule
		}

		service, err := newStoreService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		calendarID, err := service.ResolveCalendar(args[0])
		if err != nil {
			return err
		}

		opts := engineConfig(cmd, cfg, logger)
		runOnce := func() {
			ledger, err := runSync(ctx, service.Calendar(calendarID), cfg, opts, args[1], logger)
			if err != nil {
				logger.Printf("Warning: sync failed: %v", err)
				return
			}
			fmt.Println(ui.Summary(args[0], ledger))
		}

		scheduler := cron.New()
		if _, err := scheduler.AddFunc(schedule, runOnce); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}

		runOnce()
		scheduler.Start()
		logger.Printf("Watching %s on schedule %q, press Ctrl+C to stop", args[1], schedule)

		<-ctx.Done()
		logger.Printf("Shutting down")
		// Stop returns a context that settles once a running job finishes.
		<-scheduler.Stop().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addEngineFlags(watchCmd)
	watchCmd.Flags().String("schedule", "", "Cron schedule for repeated syncs")
}

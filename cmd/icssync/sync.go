package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beekhof/ics-sync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync CALENDAR SOURCE",
	Short: "Reconcile one feed into one calendar",
	Long: `Sync reads the iCalendar feed at SOURCE (a URL or a local file) and
reconciles it into CALENDAR, which may be a calendar ID or a calendar
name. Events already present and up to date are left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger()
		ctx := cmd.Context()

		service, err := newStoreService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		calendarID, err := service.ResolveCalendar(args[0])
		if err != nil {
			return err
		}

		ledger, err := runSync(ctx, service.Calendar(calendarID), cfg, engineConfig(cmd, cfg, logger), args[1], logger)
		if err != nil {
			return err
		}
		fmt.Println(ui.Summary(args[0], ledger))
		if !ledger.Settled() {
			return fmt.Errorf("nothing was synced from %s", args[1])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addEngineFlags(syncCmd)
}

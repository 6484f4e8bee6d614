package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beekhof/ics-sync/internal/directory"
	"github.com/beekhof/ics-sync/internal/ui"
)

var dirsyncCmd = &cobra.Command{
	Use:   "dirsync SOURCE",
	Short: "Mirror every feed in a directory into its own calendar",
	Long: `Dirsync reads a directory of feeds from SOURCE (a URL returning JSON
or a local YAML file) and syncs each entry into a calendar named after
it, creating calendars that do not exist yet. A failing entry does not
stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger()
		ctx := cmd.Context()

		filter, _ := cmd.Flags().GetString("filter")
		prefix, _ := cmd.Flags().GetString("prefix")
		if prefix == "" {
			prefix = cfg.CalendarPrefix
		}

		provider := directory.NewProvider(args[0], directory.Options{
			Username: cfg.FeedUsername,
			Password: cfg.FeedPassword,
			Proxy:    cfg.Proxy,
		})
		entries, err := provider.List(ctx)
		if err != nil {
			return err
		}
		entries = directory.Filter(entries, filter)
		if len(entries) == 0 {
			return fmt.Errorf("no directory entries matched %q", filter)
		}

		service, err := newStoreService(ctx, cfg, logger)
		if err != nil {
			return err
		}

		opts := engineConfig(cmd, cfg, logger)
		var failed int
		for _, entry := range entries {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			name := entry.CalendarName(prefix)
			if entry.FeedURL == "" {
				logger.Printf("Warning: directory entry %s has no feed URL, skipping", entry.ID)
				failed++
				continue
			}
			logger.Printf("Syncing %s into %q", entry.FeedURL, name)
			calendarID, err := service.FindOrCreateCalendar(name, entry.Timezone)
			if err != nil {
				logger.Printf("[%s] Failed to resolve calendar: %v", name, err)
				failed++
				continue
			}
			ledger, err := runSync(ctx, service.Calendar(calendarID), cfg, opts, entry.FeedURL, logger)
			if err != nil {
				logger.Printf("[%s] Sync failed: %v", name, err)
				failed++
				continue
			}
			fmt.Println(ui.Summary(name, ledger))
		}
		if failed > 0 {
			return fmt.Errorf("sync completed with %d error(s) out of %d entries", failed, len(entries))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dirsyncCmd)
	addEngineFlags(dirsyncCmd)
	dirsyncCmd.Flags().String("filter", "", "Only sync entries whose ID or name matches")
	dirsyncCmd.Flags().String("prefix", "", "Prefix for the names of created calendars")
}

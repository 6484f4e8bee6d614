package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear CALENDAR",
	Short: "Delete every event in a calendar",
	Args:  cobra.ExactArgs(1),
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

		removed, err := service.Calendar(calendarID).Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d events from %s\n", removed, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

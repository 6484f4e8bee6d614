package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beekhof/ics-sync/internal/directory"
)

var listCmd = &cobra.Command{
	Use:   "list SOURCE",
	Short: "Print the entries of a feed directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		filter, _ := cmd.Flags().GetString("filter")
		provider := directory.NewProvider(args[0], directory.Options{
			Username: cfg.FeedUsername,
			Password: cfg.FeedPassword,
			Proxy:    cfg.Proxy,
		})
		entries, err := provider.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, entry := range directory.Filter(entries, filter) {
			fmt.Printf("%-20s %-32s %s\n", entry.ID, entry.Name, entry.FeedURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("filter", "", "Only list entries whose ID or name matches")
}

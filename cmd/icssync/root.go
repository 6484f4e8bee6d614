package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/beekhof/ics-sync/internal/auth"
	"github.com/beekhof/ics-sync/internal/config"
	"github.com/beekhof/ics-sync/internal/feed"
	"github.com/beekhof/ics-sync/internal/store"
	"github.com/beekhof/ics-sync/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "icssync",
	Short: "Mirror iCalendar feeds into Google Calendar",
	Long: `icssync performs one-way, repeatable imports of iCalendar feeds into
Google Calendar. Events are matched by their iCalendar UID, so running
the same feed twice writes nothing the second time, and a changed feed
converges the calendar onto the feed's state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a JSON config file")
	pf.String("credentials", "", "Path to the Google OAuth credentials file")
	pf.String("token", "", "Path to the OAuth token file")
	pf.String("proxy", "", "Proxy URL for feed and directory requests")
	pf.String("feed-user", "", "Basic auth username for feed and directory requests")
	pf.String("feed-password", "", "Basic auth password for feed and directory requests")
	pf.Bool("debug", false, "Log the field differences behind every write")
}

// loadConfig merges the persistent flags with the environment and the
// optional config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	credentials, _ := cmd.Flags().GetString("credentials")
	token, _ := cmd.Flags().GetString("token")
	proxy, _ := cmd.Flags().GetString("proxy")
	feedUser, _ := cmd.Flags().GetString("feed-user")
	feedPassword, _ := cmd.Flags().GetString("feed-password")
	debug, _ := cmd.Flags().GetBool("debug")

	return config.LoadConfig(configFile, config.Flags{
		CredentialsPath: credentials,
		TokenPath:       token,
		Proxy:           proxy,
		FeedUsername:    feedUser,
		FeedPassword:    feedPassword,
		Debug:           debug,
	})
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// newStoreService runs the OAuth dance if needed and returns a Google
// Calendar service backed by the authenticated client.
func newStoreService(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Service, error) {
	clientID, clientSecret, err := config.LoadGoogleCredentials(cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	oauthConfig := auth.GoogleOAuthConfig(clientID, clientSecret)
	tokenStore := auth.NewFileTokenStore(cfg.TokenPath)
	httpClient, err := auth.GetAuthenticatedClient(ctx, oauthConfig, tokenStore)
	if err != nil {
		return nil, err
	}
	return store.NewService(ctx, logger, option.WithHTTPClient(httpClient))
}

// addEngineFlags registers the reconciliation flags shared by the
// commands that import a feed.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clear", false, "Delete every event in the calendar before importing")
	cmd.Flags().Bool("delete", false, "Delete events that are missing from the feed after importing")
	cmd.Flags().Bool("ignore-sequence", false, "Write even when the calendar copy has a newer sequence number")
	cmd.Flags().Bool("dry-run", false, "Log intended writes without touching the calendar")
	cmd.Flags().Bool("include-past", false, "Extend --delete to events before the current time")
}

func engineConfig(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) sync.Config {
	clearFirst, _ := cmd.Flags().GetBool("clear")
	deleteFringe, _ := cmd.Flags().GetBool("delete")
	ignoreSequence, _ := cmd.Flags().GetBool("ignore-sequence")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	includePast, _ := cmd.Flags().GetBool("include-past")

	return sync.Config{
		ClearFirst:     clearFirst,
		DeleteFringe:   deleteFringe,
		IgnoreSequence: ignoreSequence,
		DryRun:         dryRun,
		IncludePast:    includePast,
		Debug:          cfg.Debug,
		Logger:         logger,
	}
}

// runSync reads one feed and reconciles it into one calendar.
func runSync(ctx context.Context, client *store.Client, cfg *config.Config, opts sync.Config, source string, logger *log.Logger) (*sync.Ledger, error) {
	items, err := feed.Read(ctx, source, feed.Options{
		Proxy:    cfg.Proxy,
		Username: cfg.FeedUsername,
		Password: cfg.FeedPassword,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	return sync.NewSyncer(client, opts).Run(ctx, items)
}

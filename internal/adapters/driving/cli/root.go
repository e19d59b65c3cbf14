// Package cli provides the docsync command line.
//
// Commands are thin: they parse flags, call a driving port and print the
// result. Services are injected once by the composition root through
// Configure before Execute runs.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// version is set at build time.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Sync         driving.SyncOrchestrator
	Search       driving.SearchService
	Repositories driving.RepositoryService
	Teams        driving.TeamService
	Settings     driving.SettingsService
	Scheduler    driving.Scheduler

	// Watch, when set, runs alongside the scheduler until ctx ends.
	Watch func(ctx context.Context)
}

var (
	syncOrchestrator  driving.SyncOrchestrator
	searchService     driving.SearchService
	repositoryService driving.RepositoryService
	teamService       driving.TeamService
	settingsService   driving.SettingsService
	scheduler         driving.Scheduler
	watchConfig       func(ctx context.Context)
)

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Synchronise repository content into the docs portal",
	Long: `docsync mirrors markdown documentation, blog posts, authors, API specs
and images from GitHub and Azure DevOps repositories into a local store,
keeps a searchable index and notifies teams about published releases.`,
	SilenceUsage: true,
}

// Configure injects the services used by every command.
func Configure(s Services) {
	syncOrchestrator = s.Sync
	searchService = s.Search
	repositoryService = s.Repositories
	teamService = s.Teams
	settingsService = s.Settings
	scheduler = s.Scheduler
	watchConfig = s.Watch
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the context the command was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

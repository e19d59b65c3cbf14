package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

var syncDue bool

var syncCmd = &cobra.Command{
	Use:   "sync [repository-id]",
	Short: "Synchronise content from repositories",
	Long: `Runs the content sync pipeline for one repository.
Without an ID, every enabled repository is synchronised in turn.
With --due, only repositories whose sync frequency has elapsed are run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDue, "due", false, "sync only repositories that are due")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	ctx := commandContext(cmd)

	if len(args) > 0 {
		return syncOne(ctx, cmd, args[0])
	}

	if syncDue {
		cmd.Println("Synchronising due repositories...")
		if err := syncOrchestrator.SyncDue(ctx, time.Now()); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		cmd.Println("Due repositories synchronised.")
		return nil
	}

	if repositoryService == nil {
		return errors.New("repository service not configured")
	}
	repos, err := repositoryService.List(ctx)
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}

	cmd.Println("Synchronising all repositories...")
	var errs []error
	for i := range repos {
		if !repos[i].Enabled {
			continue
		}
		if err := syncOne(ctx, cmd, repos[i].ID); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	cmd.Println("All repositories synchronised.")
	return nil
}

func syncOne(ctx context.Context, cmd *cobra.Command, repositoryID string) error {
	cmd.Printf("Synchronising repository: %s...\n", repositoryID)
	result, err := syncWithProgress(ctx, cmd, syncOrchestrator, repositoryID)
	if err != nil {
		cmd.Println(errorStyle.Render(fmt.Sprintf("  failed: %v", err)))
		return fmt.Errorf("sync %s failed: %w", repositoryID, err)
	}
	printSyncResult(cmd, result)
	return nil
}

// syncWithProgress runs sync while displaying the current phase.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	repositoryID string,
) (*domain.SyncResult, error) {
	type outcome struct {
		result *domain.SyncResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := syncOrch.Sync(ctx, repositoryID)
		done <- outcome{res, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastPhase := ""
	for {
		select {
		case o := <-done:
			return o.result, o.err
		case <-ticker.C:
			// Best effort; a failed status read only skips one update.
			status, statusErr := syncOrch.Status(ctx, repositoryID)
			if statusErr == nil && status != nil && status.Running && status.Phase != lastPhase {
				cmd.Println(mutedStyle.Render("  " + status.Phase + "..."))
				lastPhase = status.Phase
			}
		}
	}
}

func printSyncResult(cmd *cobra.Command, r *domain.SyncResult) {
	if r == nil {
		return
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("  %d added, %d modified, %d deleted, %d unchanged (%s)",
		r.Added, r.Modified, r.Deleted, r.Skipped, r.Duration.Round(time.Millisecond))))
	if r.CategoriesSaved+r.CategoriesDeleted > 0 {
		cmd.Printf("  categories: %d saved, %d deleted\n", r.CategoriesSaved, r.CategoriesDeleted)
	}
	if r.AuthorsSaved > 0 {
		cmd.Printf("  authors: %d saved\n", r.AuthorsSaved)
	}
	if r.SpecsSaved+r.SpecsDeleted > 0 {
		cmd.Printf("  api specs: %d saved, %d deleted\n", r.SpecsSaved, r.SpecsDeleted)
	}
	if r.ImagesSynced+r.ImagesDeleted > 0 {
		cmd.Printf("  images: %d synced, %d deleted\n", r.ImagesSynced, r.ImagesDeleted)
	}
	if r.ReleasesCreated+r.ReleasesUpdated > 0 {
		cmd.Printf("  releases: %d created, %d updated\n", r.ReleasesCreated, r.ReleasesUpdated)
	}
	for _, e := range r.Errors {
		cmd.Println(warningStyle.Render("  warning: " + e))
	}
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [repository-id]",
	Short: "Show recent sync runs of a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var changesCmd = &cobra.Command{
	Use:   "changes [sync-log-id]",
	Short: "Show the content changes recorded by one sync run",
	Args:  cobra.ExactArgs(1),
	RunE:  runChanges,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(changesCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	ctx := commandContext(cmd)

	status, err := syncOrchestrator.Status(ctx, args[0])
	if err == nil && status != nil && status.Running {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Sync running: %s (since %s)",
			status.Phase, status.StartedAt.Local().Format(time.TimeOnly))))
	}

	logs, err := syncOrchestrator.History(ctx, args[0], historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(logs) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}

	for i := range logs {
		l := &logs[i]
		cmd.Printf("%s  %s  +%d ~%d -%d  %s\n",
			l.StartedAt.Local().Format(time.DateTime),
			statusLabel(l.Status),
			l.FilesAdded, l.FilesChanged, l.FilesDeleted,
			mutedStyle.Render(l.ID))
		if l.Error != "" {
			cmd.Println(errorStyle.Render("  " + l.Error))
		}
	}
	return nil
}

func runChanges(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	changes, err := syncOrchestrator.Changes(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("load changes: %w", err)
	}
	if len(changes) == 0 {
		cmd.Println("No content changes in this run.")
		return nil
	}

	for i := range changes {
		c := &changes[i]
		cmd.Printf("%s %-8s %s", changeMarker(c.ChangeType), c.DocumentType, c.FilePath)
		if c.Title != "" {
			cmd.Print(mutedStyle.Render("  " + c.Title))
		}
		cmd.Println()
	}
	return nil
}

func changeMarker(t domain.ChangeType) string {
	switch t {
	case domain.ChangeAdded:
		return successStyle.Render("+")
	case domain.ChangeDeleted:
		return errorStyle.Render("-")
	default:
		return warningStyle.Render("~")
	}
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse synced content interactively",
	Long: `Opens a terminal browser over the synced content.

Controls:
  Enter    - Search
  Tab      - Cycle kind filter (all, document, blog)
  ↑/k, ↓/j - Navigate results
  / or Esc - New search
  r        - Resync the repository of the selected result
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if searchService == nil {
			return errors.New("search service not configured")
		}
		return tui.Run(commandContext(cmd), searchService, syncOrchestrator)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	searchLimit int
	searchKind  string
	searchRepos []string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search synced content",
	Long: `Performs a keyword search across synced documents and blog posts.
Results are ranked by relevance and may be filtered by kind and repository.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "filter by kind: document or blog")
	searchCmd.Flags().StringSliceVar(&searchRepos, "repo", nil, "filter by repository ID (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	kind := domain.ContentKind(searchKind)
	if kind != domain.ContentUnknown && kind != domain.ContentDocument && kind != domain.ContentBlog {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, searchKind)
	}

	opts := domain.SearchOptions{
		Limit:         searchLimit,
		Kind:          kind,
		RepositoryIDs: searchRepos,
	}

	results, err := searchService.Search(commandContext(cmd), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

type searchHit struct {
	ID           string  `json:"id"`
	RepositoryID string  `json:"repositoryId"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Path         string  `json:"path"`
	Snippet      string  `json:"snippet,omitempty"`
	Score        float64 `json:"score"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	hits := make([]searchHit, 0, len(results))
	for i := range results {
		item := &results[i].Item
		hits = append(hits, searchHit{
			ID:           item.ID,
			RepositoryID: item.RepositoryID,
			Kind:         string(item.Kind),
			Title:        item.Title,
			Slug:         item.Slug,
			Path:         item.FilePath,
			Snippet:      results[i].Snippet,
			Score:        results[i].Score,
		})
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		item := &results[i].Item
		title := item.Title
		if title == "" {
			title = item.FilePath
		}

		cmd.Printf("  [%d] %s %s\n", i+1, title, mutedStyle.Render("("+string(item.Kind)+")"))
		cmd.Printf("      %s\n", item.FilePath)
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}

	return nil
}

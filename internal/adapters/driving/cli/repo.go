package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	repoAddKind      string
	repoAddName      string
	repoAddOwner     string
	repoAddProject   string
	repoAddRepo      string
	repoAddBranch    string
	repoAddBasePath  string
	repoAddBaseURL   string
	repoAddFrequency time.Duration
	repoAddImages    bool
	repoAddDisabled  bool
	repoAddToken     string
	repoAskToken     bool
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage content repositories",
}

var repoAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a repository",
	Long: `Adds a GitHub or Azure DevOps repository as a content source.

Examples:
  docsync repo add --kind github --owner acme --repo handbook --frequency 1h
  docsync repo add --kind azure --owner acme-org --project Docs --repo portal --ask-token`,
	Args: cobra.NoArgs,
	RunE: runRepoAdd,
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories",
	Args:  cobra.NoArgs,
	RunE:  runRepoList,
}

var repoEnableCmd = &cobra.Command{
	Use:   "enable [repository-id]",
	Short: "Enable a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRepoEnabled(cmd, args[0], true)
	},
}

var repoDisableCmd = &cobra.Command{
	Use:   "disable [repository-id]",
	Short: "Disable a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRepoEnabled(cmd, args[0], false)
	},
}

var repoFrequencyCmd = &cobra.Command{
	Use:   "frequency [repository-id] [duration]",
	Short: "Set the scheduled sync interval",
	Long:  `Sets how often the scheduler syncs a repository, e.g. 30m or 6h. Use 0 for manual only.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runRepoFrequency,
}

var repoTokenCmd = &cobra.Command{
	Use:   "token [repository-id]",
	Short: "Replace the stored access token",
	Long:  `Prompts for a new access token. An empty input removes the stored token.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoToken,
}

func init() {
	f := repoAddCmd.Flags()
	f.StringVar(&repoAddKind, "kind", string(domain.RepositoryGitHub), "repository host: github or azure")
	f.StringVar(&repoAddName, "name", "", "display name (defaults to the repository name)")
	f.StringVar(&repoAddOwner, "owner", "", "GitHub owner or Azure DevOps organisation")
	f.StringVar(&repoAddProject, "project", "", "Azure DevOps project")
	f.StringVar(&repoAddRepo, "repo", "", "repository name")
	f.StringVar(&repoAddBranch, "branch", "", "branch to sync (defaults to main)")
	f.StringVar(&repoAddBasePath, "base-path", "", "only sync files under this directory")
	f.StringVar(&repoAddBaseURL, "base-url", "", "API endpoint override, e.g. for GitHub Enterprise")
	f.DurationVar(&repoAddFrequency, "frequency", 0, "scheduled sync interval; 0 means manual only")
	f.BoolVar(&repoAddImages, "images", false, "mirror images from the repository")
	f.BoolVar(&repoAddDisabled, "disabled", false, "add the repository disabled")
	f.StringVar(&repoAddToken, "token", "", "access token (prefer --ask-token)")
	f.BoolVar(&repoAskToken, "ask-token", false, "prompt for the access token")

	repoCmd.AddCommand(repoAddCmd)
	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoEnableCmd)
	repoCmd.AddCommand(repoDisableCmd)
	repoCmd.AddCommand(repoFrequencyCmd)
	repoCmd.AddCommand(repoTokenCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoAdd(cmd *cobra.Command, _ []string) error {
	if repositoryService == nil {
		return errors.New("repository service not configured")
	}

	token := repoAddToken
	if repoAskToken {
		cmd.Print("Access token: ")
		token = readPassword()
		cmd.Println()
	}

	branch := repoAddBranch
	if branch == "" {
		branch = "main"
	}

	repo, err := repositoryService.Add(commandContext(cmd), domain.Repository{
		Name:          repoAddName,
		Kind:          domain.RepositoryKind(repoAddKind),
		Owner:         repoAddOwner,
		Project:       repoAddProject,
		Repo:          repoAddRepo,
		Branch:        branch,
		BasePath:      repoAddBasePath,
		BaseURL:       repoAddBaseURL,
		SyncFrequency: repoAddFrequency,
		SyncImages:    repoAddImages,
		Enabled:       !repoAddDisabled,
	}, token)
	if err != nil {
		return fmt.Errorf("add repository: %w", err)
	}

	cmd.Printf("Added %s\n", repo.DisplayName())
	cmd.Printf("  ID: %s\n", repo.ID)
	return nil
}

func runRepoList(cmd *cobra.Command, _ []string) error {
	if repositoryService == nil {
		return errors.New("repository service not configured")
	}

	repos, err := repositoryService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}
	if len(repos) == 0 {
		cmd.Println("No repositories configured.")
		return nil
	}

	cmd.Println(titleStyle.Render("Repositories"))
	for i := range repos {
		r := &repos[i]
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		freq := "manual"
		if r.SyncFrequency > 0 {
			freq = "every " + r.SyncFrequency.String()
		}

		cmd.Println()
		cmd.Printf("  %s\n", r.DisplayName())
		cmd.Println(mutedStyle.Render(fmt.Sprintf("    id: %s  slug: %s  %s, %s", r.ID, r.Slug, state, freq)))
		last := statusLabel(r.LastSyncStatus)
		if !r.LastSyncAt.IsZero() {
			last += mutedStyle.Render(" at " + r.LastSyncAt.Local().Format(time.DateTime))
		}
		cmd.Printf("    last sync: %s\n", last)
		if r.LastSyncError != "" {
			cmd.Println(errorStyle.Render("    " + r.LastSyncError))
		}
	}
	return nil
}

func setRepoEnabled(cmd *cobra.Command, id string, enabled bool) error {
	if repositoryService == nil {
		return errors.New("repository service not configured")
	}
	if err := repositoryService.SetEnabled(commandContext(cmd), id, enabled); err != nil {
		return fmt.Errorf("update repository: %w", err)
	}
	if enabled {
		cmd.Printf("Repository %s enabled.\n", id)
	} else {
		cmd.Printf("Repository %s disabled.\n", id)
	}
	return nil
}

func runRepoFrequency(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return errors.New("repository service not configured")
	}
	freq, err := parseFrequency(args[1])
	if err != nil {
		return err
	}
	if err := repositoryService.SetFrequency(commandContext(cmd), args[0], freq); err != nil {
		return fmt.Errorf("update repository: %w", err)
	}
	if freq == 0 {
		cmd.Printf("Repository %s is now synced manually only.\n", args[0])
	} else {
		cmd.Printf("Repository %s syncs every %s.\n", args[0], freq)
	}
	return nil
}

func runRepoToken(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return errors.New("repository service not configured")
	}
	cmd.Print("Access token (empty to remove): ")
	token := readPassword()
	cmd.Println()
	if err := repositoryService.SetToken(commandContext(cmd), args[0], token); err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	cmd.Println("Token updated.")
	return nil
}

// parseFrequency accepts a Go duration or a bare 0.
func parseFrequency(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}

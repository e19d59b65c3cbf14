package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	teamAddName     string
	teamAddDisabled bool
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage release notification teams",
	Long: `Teams are the audiences a release block may address. Releases naming
only unknown or disabled teams are ignored. Teams listed in the config
file are seeded on startup.`,
}

var teamAddCmd = &cobra.Command{
	Use:   "add [slug]",
	Short: "Add or update a team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamAdd,
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams",
	Args:  cobra.NoArgs,
	RunE:  runTeamList,
}

func init() {
	teamAddCmd.Flags().StringVar(&teamAddName, "name", "", "display name")
	teamAddCmd.Flags().BoolVar(&teamAddDisabled, "disabled", false, "add the team disabled")
	teamCmd.AddCommand(teamAddCmd)
	teamCmd.AddCommand(teamListCmd)
	rootCmd.AddCommand(teamCmd)
}

func runTeamAdd(cmd *cobra.Command, args []string) error {
	if teamService == nil {
		return errors.New("team service not configured")
	}
	team := domain.Team{Slug: args[0], Name: teamAddName, Enabled: !teamAddDisabled}
	if err := teamService.Save(commandContext(cmd), team); err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	cmd.Printf("Team %s saved.\n", args[0])
	return nil
}

func runTeamList(cmd *cobra.Command, _ []string) error {
	if teamService == nil {
		return errors.New("team service not configured")
	}
	teams, err := teamService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		cmd.Println("No teams configured.")
		return nil
	}
	for _, t := range teams {
		line := fmt.Sprintf("  %-20s %s", t.Slug, t.Name)
		if !t.Enabled {
			line += mutedStyle.Render(" (disabled)")
		}
		cmd.Println(line)
	}
	return nil
}

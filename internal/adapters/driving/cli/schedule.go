package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scheduled syncs in the foreground",
	Long: `Starts the scheduler and blocks until interrupted. Each tick syncs the
enabled repositories whose sync frequency has elapsed. Configuration
changes are picked up while running.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchConfig != nil {
		go watchConfig(ctx)
	}

	cmd.Println(titleStyle.Render("docsync scheduler running") + mutedStyle.Render(" (Ctrl+C to stop)"))
	return scheduler.Start(ctx)
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the configuration stored in the config file.

Keys use dot notation, e.g. scheduler.tick_interval or search.default_limit.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration key",
	Long: `Sets one configuration key. Values are stored as booleans or integers
when they parse as such, otherwise as strings. Use --secret to be
prompted for the value without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsSecret bool

func init() {
	settingsSetCmd.Flags().BoolVar(&settingsSecret, "secret", false, "prompt for the value without echo")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		cmd.Println(errorStyle.Render(fmt.Sprintf("Configuration is invalid: %v", err)))
		return nil
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", orDefault(settings.DataDir))
	if settings.Storage.UsesS3() {
		cmd.Printf("  Images: s3://%s/%s\n", settings.Storage.S3Bucket, settings.Storage.S3Prefix)
		if settings.Storage.S3Endpoint != "" {
			cmd.Printf("  Endpoint: %s\n", settings.Storage.S3Endpoint)
		}
		if settings.Storage.S3SecretKey != "" {
			cmd.Printf("  Secret key: %s\n", maskSecret(settings.Storage.S3SecretKey))
		}
	} else {
		cmd.Printf("  Images: %s\n", orDefault(settings.ImageDir))
	}
	if settings.EncryptionKey != "" {
		cmd.Printf("  Encryption key: %s\n", maskSecret(settings.EncryptionKey))
	} else {
		cmd.Println(warningStyle.Render("  Encryption key: (not set, tokens cannot be stored)"))
	}
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", settings.Scheduler.Enabled)
	cmd.Printf("  Tick interval: %s\n", settings.Scheduler.TickInterval)
	cmd.Printf("  Lock TTL: %s\n", settings.Scheduler.LockTTL)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Default limit: %d\n", settings.Search.DefaultLimit)
	cmd.Printf("  Cache: %d entries, %s\n", settings.Search.CacheSize, settings.Search.CacheTTL)
	cmd.Println()

	cmd.Println("[Notifications]")
	if len(settings.Webhooks) == 0 {
		cmd.Println("  Webhooks: none (events are logged only)")
	}
	for _, w := range settings.Webhooks {
		cmd.Printf("  %s -> %s\n", w.Name, w.URL)
		if len(w.Events) > 0 {
			cmd.Printf("    events: %s\n", strings.Join(w.Events, ", "))
		}
		if len(w.Teams) > 0 {
			cmd.Printf("    teams: %s\n", strings.Join(w.Teams, ", "))
		}
	}
	cmd.Println()

	cmd.Println("[Logging]")
	cmd.Printf("  Verbose: %t  JSON: %t\n", settings.Log.Verbose, settings.Log.JSON)
	if settings.Log.File != "" {
		cmd.Printf("  File: %s (%d MB x %d)\n", settings.Log.File, settings.Log.MaxSizeMB, settings.Log.MaxBackups)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var raw string
	switch {
	case settingsSecret:
		cmd.Printf("%s: ", key)
		raw = readPassword()
		cmd.Println()
	case len(args) == 2:
		raw = args[1]
	default:
		return errors.New("value is required unless --secret is set")
	}

	if err := settingsService.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if _, err := settingsService.Get(); err != nil {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Warning: %v", err)))
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

// parseValue keeps booleans and integers typed in the config file.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

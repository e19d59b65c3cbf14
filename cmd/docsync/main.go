// Command docsync synchronises repository content into the docs portal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docsync/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/docsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsync/internal/adapters/driven/crypto"
	"github.com/custodia-labs/docsync/internal/adapters/driven/httplog"
	"github.com/custodia-labs/docsync/internal/adapters/driven/imagestore"
	"github.com/custodia-labs/docsync/internal/adapters/driven/notify"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/services"
	"github.com/custodia-labs/docsync/internal/logger"
)

// version is set by the linker.
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore(os.Getenv("DOCSYNC_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore)

	settings, err := settingsSvc.Get()
	if err != nil {
		// Still start so the settings command can repair the file.
		logger.Warn("Invalid configuration, using defaults: %v", err)
		defaults := settingsSvc.GetDefaults()
		settings = &defaults
	}
	configureLogger(settings.Log)

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	var cipher driven.CredentialCipher
	if settings.EncryptionKey != "" {
		c, err := crypto.New(settings.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption key: %w", err)
		}
		cipher = c
	}

	imageStorage, err := newImageStorage(ctx, settings)
	if err != nil {
		return err
	}

	transport := httplog.New(http.DefaultTransport, logger.With("component", "http"))
	cache := memory.New(settings.Search.CacheSize, settings.Search.CacheTTL)

	teamSvc := services.NewTeamService(store.TeamStore())
	if err := teamSvc.Seed(ctx, settings.Teams); err != nil {
		logger.Warn("Seeding teams: %v", err)
	}

	syncOrch := services.NewSyncOrchestrator(services.SyncDeps{
		Repositories: store.RepositoryStore(),
		Content:      store.ContentStore(),
		Search:       store.SearchIndexer(),
		Categories:   store.CategoryStore(),
		Authors:      store.AuthorStore(),
		APISpecs:     store.APISpecStore(),
		Images:       store.ImageStore(),
		ImageStorage: imageStorage,
		SyncLogs:     store.SyncLogStore(),
		Releases:     store.ReleaseStore(),
		Teams:        store.TeamStore(),
		Fetchers:     services.NewBuiltinFetcherRegistry(ctx, cipher, transport),
		Notifier:     newNotifier(settings.Webhooks, transport),
		Cache:        cache,
	}, settings.Scheduler)

	cli.SetVersion(version)
	cli.Configure(cli.Services{
		Sync:         syncOrch,
		Search:       services.NewSearchService(store.SearchIndexer(), cache, settings.Search.DefaultLimit),
		Repositories: services.NewRepositoryService(store.RepositoryStore(), cipher),
		Teams:        teamSvc,
		Settings:     settingsSvc,
		Scheduler:    services.NewScheduler(settings.Scheduler, syncOrch),
		Watch: func(ctx context.Context) {
			watchConfig(ctx, configStore, settingsSvc, teamSvc)
		},
	})

	return cli.Execute(ctx)
}

func configureLogger(s domain.LogSettings) {
	logger.Configure(logger.Options{
		Verbose:    s.Verbose,
		JSON:       s.JSON,
		File:       s.File,
		MaxSizeMB:  s.MaxSizeMB,
		MaxBackups: s.MaxBackups,
	})
}

// newImageStorage selects the S3 backend when a bucket is configured and
// the local mirror otherwise.
func newImageStorage(ctx context.Context, settings *domain.Settings) (driven.ImageStorage, error) {
	if settings.Storage.UsesS3() {
		s3, err := imagestore.NewS3(ctx, imagestore.S3Config{
			Endpoint:  settings.Storage.S3Endpoint,
			Region:    settings.Storage.S3Region,
			Bucket:    settings.Storage.S3Bucket,
			AccessKey: settings.Storage.S3AccessKey,
			SecretKey: settings.Storage.S3SecretKey,
			Prefix:    settings.Storage.S3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("image storage: %w", err)
		}
		return s3, nil
	}

	dir := settings.ImageDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".docsync", "public")
	}
	fs, err := imagestore.NewFileSystem(dir)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}
	return fs, nil
}

// newNotifier fans events out to the configured webhooks, or logs them
// when there are none.
func newNotifier(hooks []domain.WebhookSettings, transport http.RoundTripper) driven.Notifier {
	if len(hooks) == 0 {
		return notify.NewLog()
	}
	client := &http.Client{Transport: transport, Timeout: notify.DefaultTimeout}
	multi := make(notify.Multi, 0, len(hooks))
	for _, h := range hooks {
		multi = append(multi, notify.NewWebhook(notify.WebhookConfig{
			Name:   h.Name,
			URL:    h.URL,
			Secret: h.Secret,
			Events: h.Events,
			Teams:  h.Teams,
		}, notify.WithHTTPClient(client)))
	}
	return multi
}

// watchConfig applies logging and team changes from the config file
// while the scheduler runs. Other settings take effect on restart.
func watchConfig(ctx context.Context, store *file.ConfigStore, settingsSvc *services.SettingsService, teams *services.TeamService) {
	onChange := func() {
		settings, err := settingsSvc.Get()
		if err != nil {
			logger.Warn("Ignoring config change: %v", err)
			return
		}
		configureLogger(settings.Log)
		if err := teams.Seed(ctx, settings.Teams); err != nil {
			logger.Warn("Seeding teams: %v", err)
		}
		logger.Info("Configuration reloaded from %s", store.Path())
	}
	onError := func(err error) {
		logger.Warn("Config watch: %v", err)
	}
	if err := store.Watch(ctx, onChange, onError); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Config watch stopped: %v", err)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/unsplash-picker/internal/cache"
	"github.com/donaldgifford/unsplash-picker/internal/config"
	"github.com/donaldgifford/unsplash-picker/internal/notify"
	"github.com/donaldgifford/unsplash-picker/internal/picker"
	"github.com/donaldgifford/unsplash-picker/internal/unsplash"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
)

// app holds the services shared by every command.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	limiter  *unsplash.RateLimiter
	client   *unsplash.Client
	disk     *cache.Disk
	tracker  *unsplash.DownloadTracker
	notifier notify.SelectionNotifier
}

func newApp(cfg *config.Config) (*app, error) {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	a := &app{cfg: cfg, log: log}

	rl := cfg.Unsplash.RateLimit
	a.limiter = unsplash.NewRateLimiter(rl.PerSecond, rl.Burst, rl.HourlyLimit)

	opts := []unsplash.Option{
		unsplash.WithBaseURL(cfg.Unsplash.APIURL),
		unsplash.WithHTTPClient(&http.Client{Timeout: cfg.Unsplash.Timeout}),
		unsplash.WithRateLimiter(a.limiter),
		unsplash.WithLogger(log.With("component", "unsplash")),
	}
	if cfg.Cache.Enabled {
		rc, err := a.openCache()
		if err != nil {
			return nil, err
		}
		if rc != nil {
			opts = append(opts, unsplash.WithCache(rc))
		}
	}
	a.client = unsplash.NewClient(cfg.Unsplash.AccessKey, opts...)

	a.tracker = unsplash.NewDownloadTracker(
		cfg.Unsplash.AccessKey,
		unsplash.WithTrackerLogger(log.With("component", "downloads")),
		unsplash.WithTrackerTimeout(cfg.Unsplash.Timeout),
	)
	a.notifier = newNotifier(&cfg.Notifications, log)

	return a, nil
}

// openCache builds the response cache: memory, disk, or memory in front
// of disk, depending on which capacities are set.
func (a *app) openCache() (cache.Cache, error) {
	c := a.cfg.Cache

	var mem *cache.Memory
	if c.MemoryCapacity > 0 {
		mem = cache.NewMemory(c.MemoryCapacity, c.TTL)
	}
	if c.DiskCapacity == 0 {
		if mem == nil {
			return nil, nil
		}
		return mem, nil
	}

	disk, err := cache.OpenDisk(
		c.DiskPath, c.DiskCapacity, c.TTL,
		cache.WithDiskLogger(a.log.With("component", "cache")),
	)
	if err != nil {
		return nil, fmt.Errorf("opening disk cache: %w", err)
	}
	a.disk = disk

	if mem == nil {
		return disk, nil
	}
	return cache.NewTiered(mem, disk), nil
}

func newNotifier(cfg *config.NotificationsConfig, log *slog.Logger) notify.SelectionNotifier {
	if !cfg.Webhook.Enabled {
		return notify.NewNoOpNotifier(log.With("component", "notify"))
	}
	return notify.NewWebhookNotifier(
		cfg.Webhook.URL,
		notify.WithHTTPClient(&http.Client{Timeout: cfg.Webhook.Timeout}),
		notify.WithHeaders(cfg.Webhook.Headers),
	)
}

func (a *app) newPicker(opts ...picker.Option) (*picker.Picker, error) {
	factory := picker.NewFactory(a.client, picker.FactoryConfig{
		EditorialCollectionID: a.cfg.Picker.EditorialCollectionID,
		PerPage:               a.cfg.Picker.PerPage,
		ContentFilter:         a.cfg.Picker.Filter(),
	}, picker.WithFactoryLogger(a.log.With("component", "paging")))

	base := []picker.Option{
		picker.WithLogger(a.log.With("component", "picker")),
		picker.WithDownloadTracker(a.tracker),
		picker.WithMultipleSelection(a.cfg.Picker.AllowsMultipleSelection),
	}
	p, err := picker.New(factory, a.notifier, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating picker: %w", err)
	}
	return p, nil
}

// Close waits for pending download pings and releases the disk cache.
func (a *app) Close() error {
	a.tracker.Wait()

	var errs []error
	if a.disk != nil {
		if err := a.disk.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing disk cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

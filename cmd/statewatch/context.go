package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/engine"
	"statewatch/internal/logging"
	"statewatch/internal/metrics"
	"statewatch/internal/notify"
	"statewatch/internal/recipients"
	"statewatch/internal/record"
	"statewatch/internal/rules"
	"statewatch/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	format := cfg.Logging.Format
	// Pipelines get machine-readable output unless the config insists.
	if format == "console" && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		format = "json"
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: format,
	})
}

// runtime bundles the assembled stores and pipeline for one command
// invocation. Close releases stores and the data-directory lock.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	records *record.Store
	dir     *directory.Store
	inbox   *notify.InboxStore
	metrics *metrics.Metrics
	engine  *engine.Engine
	lock    *flock.Flock
	closers []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
	if r.lock != nil {
		_ = r.lock.Unlock()
	}
}

// openRuntime assembles the save pipeline. Commands that mutate state
// pass lockData to serialize writers on the data directory.
func (c *commandContext) openRuntime(lockData bool) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	if lockData {
		lock := flock.New(filepath.Join(cfg.Paths.DataDir, "statewatch.lock"))
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock data directory: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("data directory %s is locked by another statewatch process", cfg.Paths.DataDir)
		}
		rt.lock = lock
	}

	records, err := record.Open(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.records = records
	rt.closers = append(rt.closers, records.Close)

	dir, err := directory.Open(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.dir = dir
	rt.closers = append(rt.closers, dir.Close)

	if cfg.InApp.Enabled {
		inbox, err := notify.OpenInbox(cfg)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.inbox = inbox
		rt.closers = append(rt.closers, inbox.Close)
	}

	source, err := workflow.NewFileSource(cfg.Workflow.DefinitionsPath)
	if err != nil {
		rt.Close()
		return nil, err
	}
	fields := workflow.NewFieldResolver(source, cfg.Workflow.DefaultStateField, cfg.Workflow.FallbackStateField)
	detector := workflow.NewDetector(fields, logger)
	resolver := recipients.NewResolver(dir, cfg.Notifications, logger)

	rt.metrics = metrics.New()
	dispatcher := notify.NewDispatcher(
		buildChannels(cfg, rt.inbox),
		rules.NewLogEngine(logger),
		rt.metrics,
		cfg.Paths.RecordBaseURL,
		logger,
	)
	rt.engine = engine.New(records, source, detector, resolver, dispatcher, rt.metrics, logger)
	return rt, nil
}

func buildChannels(cfg *config.Config, inbox *notify.InboxStore) []notify.Channel {
	var channels []notify.Channel
	if cfg.Email.Enabled {
		channels = append(channels, notify.NewEmailChannel(cfg.Email))
	}
	if inbox != nil {
		channels = append(channels, notify.NewInAppChannel(inbox))
	}
	if push := notify.NewPushChannel(cfg.Push); push != nil {
		channels = append(channels, push)
	}
	return channels
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

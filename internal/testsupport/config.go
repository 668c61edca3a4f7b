package testsupport

import (
	"path/filepath"
	"testing"

	"statewatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Workflow.DefinitionsPath = filepath.Join(base, "workflows.toml")
	cfgVal.Email.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRecordBaseURL sets the record link base URL on the test config.
func WithRecordBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.RecordBaseURL = url
	}
}

// WithBroadRoles overrides the broad-role suppression list.
func WithBroadRoles(roles ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.BroadRoles = roles
	}
}

// WithPushTopic enables the push channel against the given endpoint.
func WithPushTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Push.Topic = topic
	}
}

// Package reconcile owns the configuration lifecycle: merging the persisted
// store, the host's live encoding and session edits into the single mutable
// configuration, and writing changes back with debounced persistence.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/field"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

// DefaultDebounce is the coalescing window for persistence writes.
const DefaultDebounce = 2 * time.Second

// SettingsStore is the host's string-only key-value store. Non-string
// configuration values are JSON-encoded before Set.
type SettingsStore interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(key, value string) error
	SaveAsync()
}

// Host is the collaborator contract the widget consumes. Subscriptions
// return their unsubscribe function.
type Host interface {
	GetRows(ctx context.Context) (model.Table, error)
	GetEncodingMap(ctx context.Context) (model.EncodingMap, error)
	OnDataChanged(fn func()) (unsubscribe func())
	OnEncodingChanged(fn func()) (unsubscribe func())
	Settings() SettingsStore
	OpenConfigurationSurface(payload []byte) error
}

type options struct {
	logger   *slog.Logger
	debounce time.Duration
}

// Option customizes a Controller.
type Option func(*options)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDebounce overrides the persistence coalescing window, mainly for
// tests.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

func optionsWithDefaults(opts []Option) *options {
	o := &options{
		logger:   slog.Default().With(slog.String("module", "reconcile")),
		debounce: DefaultDebounce,
	}
	for _, apply := range opts {
		apply(o)
	}

	return o
}

// Controller reconciles the three configuration sources. It is the single
// writer of the shared configuration; the renderer only reads it.
//
// All methods are safe for concurrent use, although the expected host model
// is a single event loop.
type Controller struct {
	*options

	mu     sync.Mutex
	cfg    *config.Config
	store  SettingsStore
	loaded bool
	closed bool

	// last mapping resolved from the live encoding, compared against
	// session edits to derive the manual-override flag
	liveMapping model.FieldMapping

	timer *time.Timer
}

// NewController wraps cfg, which stays owned by the caller and shared with
// the renderer.
func NewController(cfg *config.Config, store SettingsStore, opts ...Option) *Controller {
	return &Controller{
		options: optionsWithDefaults(opts),
		cfg:     cfg,
		store:   store,
	}
}

// Config returns the shared configuration.
func (c *Controller) Config() *config.Config {
	return c.cfg
}

// LoadPersisted merges the persisted store over the current configuration.
// It runs at most once per session; later calls are no-ops.
func (c *Controller) LoadPersisted(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	values, err := c.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading persisted settings: %w", err)
	}

	if err := c.cfg.ApplyStore(values, c.logger); err != nil {
		return fmt.Errorf("applying persisted settings: %w", err)
	}
	c.loaded = true

	c.logger.Debug("persisted settings loaded", slog.Int("keys", len(values)))

	return nil
}

// ApplyEncoding reacts to a live encoding change from the host. Under
// automatic mapping it overwrites the mapping fields from the resolved
// encoding and schedules exactly one persistence write when something
// actually changed; identical repeats schedule nothing. Under manual
// override the encoding is recorded but not applied.
func (c *Controller) ApplyEncoding(enc model.EncodingMap, columns []model.Column) bool {
	mapping := field.ResolveEncoding(enc, columns, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.liveMapping = mapping

	if c.cfg.UseManualMapping {
		c.logger.Debug("encoding change ignored, manual mapping engaged")

		return false
	}

	if mapping == c.cfg.Mapping {
		return false
	}

	c.cfg.Mapping = mapping
	c.scheduleLocked()

	return true
}

// ApplySessionEdit installs a configuration saved from the settings surface.
// The manual-override flag derives from comparing the edited mapping against
// the live encoding: diverging engages the override, matching releases it.
func (c *Controller) ApplySessionEdit(edited config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	edited.Normalize()
	edited.UseManualMapping = edited.Mapping != c.liveMapping

	*c.cfg = edited
	c.scheduleLocked()
}

// ResetManualOverride returns mapping control to the live encoding. The
// recorded encoding applies immediately.
func (c *Controller) ResetManualOverride() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.UseManualMapping {
		return
	}

	c.cfg.UseManualMapping = false
	c.cfg.Mapping = c.liveMapping
	c.scheduleLocked()
}

// Touch schedules a persistence write for an in-place configuration change
// made outside the session-edit flow (e.g. apply-without-closing).
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scheduleLocked()
}

// scheduleLocked coalesces writes: a pending timer is cancelled and
// rescheduled so the eventual write reflects the newest configuration.
func (c *Controller) scheduleLocked() {
	if c.closed {
		return
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.persist)
}

// persist snapshots the configuration at fire time, never the state captured
// when the timer was first armed.
func (c *Controller) persist() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return
	}
	values, err := c.cfg.ToStore()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("encoding settings for persistence", slog.Any("err", err))

		return
	}

	for key, value := range values {
		if err := c.store.Set(key, value); err != nil {
			c.logger.Warn("writing setting", slog.String("key", key), slog.Any("err", err))
		}
	}
	c.store.SaveAsync()
}

// Flush runs a pending write immediately, if any.
func (c *Controller) Flush() {
	c.mu.Lock()
	pending := c.timer != nil && c.timer.Stop()
	c.mu.Unlock()

	if pending {
		c.persist()
	}
}

// Close cancels any pending write. No persistence happens after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Package widget drives the chart lifecycle against a host: initial load,
// event subscriptions, re-renders and the settings surface handshake.
package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/layout"
	"github.com/Shintumon/combochart/internal/pkg/model"
	"github.com/Shintumon/combochart/internal/pkg/reconcile"
	"github.com/Shintumon/combochart/internal/pkg/render"
)

const (
	defaultWidth  = 800.0
	defaultHeight = 600.0
)

type options struct {
	logger   *slog.Logger
	width    float64
	height   float64
	cfg      *config.Config
	debounce []reconcile.Option
	onRender func(*render.Scene)
}

// Option customizes a Widget.
type Option func(*options)

// WithLogger sets the widget logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSize sets the initial container size in pixels.
func WithSize(width, height float64) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithConfig seeds the widget with a pre-built configuration instead of the
// compiled-in defaults. The widget takes ownership of the pointer.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithControllerOptions forwards options to the reconciliation controller.
func WithControllerOptions(opts ...reconcile.Option) Option {
	return func(o *options) {
		o.debounce = opts
	}
}

// WithOnRender registers a sink invoked with every freshly built scene.
func WithOnRender(fn func(*render.Scene)) Option {
	return func(o *options) {
		o.onRender = fn
	}
}

func optionsWithDefaults(opts []Option) *options {
	o := &options{
		logger: slog.Default().With(slog.String("module", "widget")),
		width:  defaultWidth,
		height: defaultHeight,
	}
	for _, apply := range opts {
		apply(o)
	}

	return o
}

// Widget owns one chart instance. The host drives it through events; every
// event ends in a full synchronous rebuild of the scene, so no partial
// output can interleave.
type Widget struct {
	*options

	host reconcile.Host
	ctrl *reconcile.Controller

	mu        sync.Mutex
	table     model.Table
	encoding  model.EncodingMap
	loadErr   error
	scene     *render.Scene
	unsubData func()
	unsubEnc  func()
	started   bool
}

// New builds a widget around the host. Call Run to load and subscribe.
func New(host reconcile.Host, opts ...Option) *Widget {
	o := optionsWithDefaults(opts)
	if o.cfg == nil {
		o.cfg = config.MustDefaults()
	}

	return &Widget{
		options: o,
		host:    host,
		ctrl: reconcile.NewController(o.cfg, host.Settings(),
			append([]reconcile.Option{reconcile.WithLogger(o.logger)}, o.debounce...)...),
	}
}

// Controller exposes the reconciliation controller, mainly for the settings
// surface callbacks.
func (w *Widget) Controller() *reconcile.Controller {
	return w.ctrl
}

// Run performs the initial load and subscribes to host events. The first
// call wins; repeats are no-ops.
func (w *Widget) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()

		return nil
	}
	w.started = true
	w.mu.Unlock()

	if err := w.ctrl.LoadPersisted(ctx); err != nil {
		w.logger.Warn("persisted settings unavailable, using defaults", slog.Any("err", err))
	}

	w.unsubData = w.host.OnDataChanged(func() { w.refreshData(ctx) })
	w.unsubEnc = w.host.OnEncodingChanged(func() { w.refreshEncoding(ctx) })

	w.refreshEncoding(ctx)
	w.refreshData(ctx)

	return w.LoadError()
}

// Retry re-attempts a failed data load. It is the user action behind the
// blocking error state.
func (w *Widget) Retry(ctx context.Context) error {
	w.refreshData(ctx)

	return w.LoadError()
}

// refreshData pulls rows from the host. A fetch failure is the one blocking
// error: the widget renders nothing past it until a retry succeeds.
func (w *Widget) refreshData(ctx context.Context) {
	table, err := w.host.GetRows(ctx)

	w.mu.Lock()
	if err != nil {
		w.loadErr = fmt.Errorf("loading rows: %w", err)
		w.mu.Unlock()

		w.logger.Error("data load failed", slog.Any("err", err))

		return
	}
	w.loadErr = nil
	w.table = table
	enc := w.encoding
	w.mu.Unlock()

	// re-resolve the encoding now that the actual columns are known
	if len(enc) > 0 {
		w.ctrl.ApplyEncoding(enc, table.Columns)
	}

	w.rebuild()
}

// refreshEncoding pulls the live encoding map. Failure degrades to an empty
// map and is not fatal.
func (w *Widget) refreshEncoding(ctx context.Context) {
	enc, err := w.host.GetEncodingMap(ctx)
	if err != nil {
		w.logger.Warn("encoding map unavailable", slog.Any("err", err))
		enc = model.EncodingMap{}
	}

	w.mu.Lock()
	w.encoding = enc
	columns := w.table.Columns
	w.mu.Unlock()

	w.ctrl.ApplyEncoding(enc, columns)
	w.rebuild()
}

// rebuild recomputes layout and scene from current state and hands the
// result to the render sink.
func (w *Widget) rebuild() {
	w.mu.Lock()

	if w.loadErr != nil {
		w.mu.Unlock()

		return
	}

	cfg := w.ctrl.Config()
	data := model.BuildData(&w.table, cfg.Mapping)

	var scene *render.Scene
	l, err := layout.Compute(w.width, w.height, cfg, data)

	var merr *layout.MappingError
	switch {
	case err == nil:
		scene = render.Build(l, cfg)
	case errors.As(err, &merr):
		scene = render.BuildMessage(w.width, w.height, cfg, merr.Missing)
	default:
		w.mu.Unlock()
		w.logger.Error("layout failed", slog.Any("err", err))

		return
	}

	w.scene = scene
	w.mu.Unlock()

	if w.onRender != nil {
		w.onRender(scene)
	}
}

// Scene returns the most recently built scene, nil before the first
// successful render.
func (w *Widget) Scene() *render.Scene {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.scene
}

// LoadError reports the blocking load failure, if any.
func (w *Widget) LoadError() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.loadErr
}

// Resize updates the container size and re-renders.
func (w *Widget) Resize(width, height float64) {
	w.mu.Lock()
	w.width = width
	w.height = height
	w.mu.Unlock()

	w.rebuild()
}

// settingsPayload is the snapshot handed to the configuration surface.
type settingsPayload struct {
	Config      *config.Config    `json:"config"`
	Columns     []model.Column    `json:"columns"`
	EncodingMap model.EncodingMap `json:"encodingMap"`
}

// OpenSettings serializes the current state and asks the host to open the
// configuration surface.
func (w *Widget) OpenSettings() error {
	w.mu.Lock()
	payload := settingsPayload{
		Config:      w.ctrl.Config(),
		Columns:     w.table.Columns,
		EncodingMap: w.encoding,
	}
	buf, err := json.Marshal(payload)
	w.mu.Unlock()

	if err != nil {
		return fmt.Errorf("serializing settings payload: %w", err)
	}

	return w.host.OpenConfigurationSurface(buf)
}

// OnSave installs a configuration saved from the settings surface and
// re-renders.
func (w *Widget) OnSave(edited config.Config) {
	w.ctrl.ApplySessionEdit(edited)
	w.rebuild()
}

// OnApply applies an edited configuration without closing the surface. Same
// merge semantics as OnSave; the surface stays open.
func (w *Widget) OnApply(edited config.Config) {
	w.ctrl.ApplySessionEdit(edited)
	w.rebuild()
}

// OnClose is called when the settings surface closes without saving.
func (w *Widget) OnClose() {}

// Close tears the widget down: unsubscribes from host events and cancels any
// pending persistence write.
func (w *Widget) Close() {
	if w.unsubData != nil {
		w.unsubData()
		w.unsubData = nil
	}
	if w.unsubEnc != nil {
		w.unsubEnc()
		w.unsubEnc = nil
	}
	w.ctrl.Close()
}

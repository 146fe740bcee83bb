package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Shintumon/combochart/internal/pkg/model"
	"github.com/Shintumon/combochart/internal/pkg/reconcile"
)

// FileHost adapts local files to the widget's host contract: a CSV or XLSX
// data file, a static encoding map and a JSON settings file.
type FileHost struct {
	logger   *slog.Logger
	dataPath string
	encoding model.EncodingMap
	settings *FileSettings

	mu       sync.Mutex
	nextSub  int
	dataSubs map[int]func()
	encSubs  map[int]func()
	payloads [][]byte
}

// HostOption customizes a FileHost.
type HostOption func(*FileHost)

// WithHostLogger sets the host logger.
func WithHostLogger(l *slog.Logger) HostOption {
	return func(h *FileHost) {
		h.logger = l
	}
}

// WithEncoding sets the role-to-field encoding the host reports.
func WithEncoding(enc model.EncodingMap) HostOption {
	return func(h *FileHost) {
		h.encoding = enc
	}
}

// NewFileHost builds a host over the data file at dataPath, persisting
// settings at settingsPath.
func NewFileHost(dataPath, settingsPath string, opts ...HostOption) *FileHost {
	h := &FileHost{
		logger:   slog.Default().With(slog.String("module", "datasource")),
		dataPath: dataPath,
		encoding: model.EncodingMap{},
		settings: NewFileSettings(settingsPath),
		dataSubs: map[int]func(){},
		encSubs:  map[int]func(){},
	}
	for _, apply := range opts {
		apply(h)
	}

	return h
}

// GetRows reads the data file.
func (h *FileHost) GetRows(_ context.Context) (model.Table, error) {
	return ReadFile(h.dataPath)
}

// GetEncodingMap returns the configured encoding.
func (h *FileHost) GetEncodingMap(_ context.Context) (model.EncodingMap, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.encoding, nil
}

// OnDataChanged subscribes to data updates.
func (h *FileHost) OnDataChanged(fn func()) func() {
	return h.subscribe(h.dataSubs, fn)
}

// OnEncodingChanged subscribes to encoding updates.
func (h *FileHost) OnEncodingChanged(fn func()) func() {
	return h.subscribe(h.encSubs, fn)
}

func (h *FileHost) subscribe(subs map[int]func(), fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(subs, id)
	}
}

// NotifyDataChanged fires the data subscriptions, e.g. after the data file
// was rewritten.
func (h *FileHost) NotifyDataChanged() {
	for _, fn := range h.snapshot(h.dataSubs) {
		fn()
	}
}

// SetEncoding replaces the reported encoding and fires the subscriptions.
func (h *FileHost) SetEncoding(enc model.EncodingMap) {
	h.mu.Lock()
	h.encoding = enc
	h.mu.Unlock()

	for _, fn := range h.snapshot(h.encSubs) {
		fn()
	}
}

func (h *FileHost) snapshot(subs map[int]func()) []func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]func(), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}

	return out
}

// Settings returns the JSON-file settings store.
func (h *FileHost) Settings() reconcile.SettingsStore {
	return h.settings
}

// OpenConfigurationSurface records the payload; a file host has no UI to
// open.
func (h *FileHost) OpenConfigurationSurface(payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.payloads = append(h.payloads, payload)
	h.logger.Info("configuration surface requested", slog.Int("payload_bytes", len(payload)))

	return nil
}

// FileSettings persists the string key-value store as one JSON document.
type FileSettings struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	loaded bool
}

// NewFileSettings builds a settings store at path. The file is created on
// the first save.
func NewFileSettings(path string) *FileSettings {
	return &FileSettings{
		path:   path,
		values: map[string]string{},
	}
}

// GetAll loads and returns every persisted value.
func (s *FileSettings) GetAll(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}

	return out, nil
}

// Set stores one value in memory; SaveAsync writes the file.
func (s *FileSettings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

// SaveAsync writes the store to disk. Errors are swallowed per the host
// contract; the next save retries with the full state.
func (s *FileSettings) SaveAsync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, buf, 0o600)
}

func (s *FileSettings) loadLocked() error {
	if s.loaded {
		return nil
	}

	buf, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		s.loaded = true

		return nil
	case err != nil:
		return fmt.Errorf("reading settings %s: %w", s.path, err)
	}

	if err := json.Unmarshal(buf, &s.values); err != nil {
		return fmt.Errorf("parsing settings %s: %w", s.path, err)
	}
	s.loaded = true

	return nil
}

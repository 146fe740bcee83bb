package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/Shintumon/combochart/internal/pkg/model"
)

// ToStore flattens the configuration into the host's string-only key-value
// layout: one entry per top-level key, object values JSON-serialized, plain
// strings stored as-is.
func (c *Config) ToStore() (map[string]string, error) {
	var raw map[string]any

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Squash: true,
		Deep:   true,
		Result: &raw,
	})
	if err != nil {
		return nil, fmt.Errorf("creating mapstructure decoder: %w", err)
	}

	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding config to map: %w", err)
	}

	out := make(map[string]string, len(raw))
	for key, value := range raw {
		// store keys are lowercase; overlay decoding is case-insensitive
		key = strings.ToLower(key)
		if s, isString := value.(string); isString {
			out[key] = s

			continue
		}

		buf, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("serializing config key %q: %w", key, err)
		}
		out[key] = string(buf)
	}

	return out, nil
}

// ApplyStore overlays persisted key-value settings onto the configuration.
//
// Each stored value is attempted as JSON first; values that do not parse are
// used as raw strings, tolerating entries written by older versions. Unknown
// keys are ignored.
func (c *Config) ApplyStore(values map[string]string, l *slog.Logger) error {
	if len(values) == 0 {
		return nil
	}
	if l == nil {
		l = slog.Default()
	}

	raw := make(map[string]any, len(values))
	for key, stored := range values {
		var v any
		if err := json.Unmarshal([]byte(stored), &v); err != nil {
			l.Warn("persisted value is not JSON, keeping raw string",
				slog.String("key", key))
			v = stored
		}
		raw[key] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return fmt.Errorf("creating mapstructure decoder: %w", err)
	}

	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("overlaying persisted settings: %w", err)
	}

	c.Normalize()

	return nil
}

// Effective computes the merged configuration snapshot:
// defaults, overlaid by persisted settings, overlaid by the host-derived
// field mapping unless a manual override is engaged. The inputs are not
// mutated; callers receive a fresh value each time.
func Effective(defaults Config, persisted map[string]string, encoding model.FieldMapping, l *slog.Logger) (Config, error) {
	cfg := defaults

	if err := cfg.ApplyStore(persisted, l); err != nil {
		return cfg, err
	}

	if !cfg.UseManualMapping {
		cfg.Mapping = encoding
	}

	return cfg, nil
}

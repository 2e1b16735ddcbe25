package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/fbradar/internal/domain/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FBRADAR_"

// EnvConfigFile names the environment variable holding the YAML path.
const EnvConfigFile = EnvPrefix + "CONFIG"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// listKeys are the string-list settings accepted from env as comma separated
// values.
var listKeys = map[string]bool{
	"table_ids":       true,
	"key_columns":     true,
	"competitions":    true,
	"exclude_columns": true,
	"palette":         true,
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FBRADAR_CONFIG is set
//  3. env (prefix FBRADAR_), lists comma separated
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file
// layer.
func LoadFile(_ context.Context, path string) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FBRADAR_OUTPUT_DIR -> output_dir. Flat keys keep underscores so they
	// match the koanf tags.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Lists replace the defaults wholesale instead of being merged element
	// by element.
	for key, reset := range map[string]func(){
		"players":         func() { cfg.Players = nil },
		"table_ids":       func() { cfg.TableIDs = nil },
		"key_columns":     func() { cfg.KeyColumns = nil },
		"competitions":    func() { cfg.Competitions = nil },
		"exclude_columns": func() { cfg.ExcludeColumns = nil },
		"categories":      func() { cfg.Categories = nil },
		"palette":         func() { cfg.Palette = nil },
	} {
		if k.Exists(key) {
			reset()
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the pipeline relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.OutputDir) == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ChartDir) == "":
		return fmt.Errorf("%w: chart_dir must not be empty", ErrInvalidConfig)
	case !model.IsSeasonLabel(c.StartSeason):
		return fmt.Errorf("%w: start_season %q is not YYYY-YYYY", ErrInvalidConfig, c.StartSeason)
	case len(c.TableIDs) == 0:
		return fmt.Errorf("%w: table_ids must not be empty", ErrInvalidConfig)
	case len(c.KeyColumns) == 0:
		return fmt.Errorf("%w: key_columns must not be empty", ErrInvalidConfig)
	case len(c.Categories) == 0:
		return fmt.Errorf("%w: categories must not be empty", ErrInvalidConfig)
	case len(c.Palette) == 0:
		return fmt.Errorf("%w: palette must not be empty", ErrInvalidConfig)
	case c.HTTPRPS <= 0:
		return fmt.Errorf("%w: http_rps must be positive", ErrInvalidConfig)
	}

	for i, p := range c.Players {
		if p.URL == "" || p.Name == "" {
			return fmt.Errorf("%w: players[%d] needs url and name", ErrInvalidConfig, i)
		}
	}
	for i, cat := range c.Categories {
		if cat.Name == "" || len(cat.Columns) == 0 {
			return fmt.Errorf("%w: categories[%d] needs a name and columns", ErrInvalidConfig, i)
		}
	}
	for _, col := range append([]string{c.BackgroundFrom, c.BackgroundTo}, c.Palette...) {
		if !hexColor.MatchString(col) {
			return fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidConfig, col)
		}
	}
	return nil
}

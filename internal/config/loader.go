package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable holding an optional YAML config path, and the prefix
// of per-key overrides.
const (
	FileEnv   = "GROWTHO_CONFIG"
	EnvPrefix = "GROWTHO_"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New(ctx))
//  2. YAML file named by GROWTHO_CONFIG, when set
//  3. env (GROWTHO_RAW_FILE -> raw_file; GROWTHO_RECIPES is comma separated)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Flat keys: underscores are kept so they match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.Recipes = splitRecipes(cfg.Recipes)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitRecipes flattens comma separated entries, as an env value arrives as
// a single element.
func splitRecipes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, s := range strings.Split(entry, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

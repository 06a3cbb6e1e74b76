package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "WINDMILL_"

// Config holds the tunables of the compiler, decompiler and CLI.
type Config struct {
	Layout   LayoutConfig   `koanf:"layout"`
	Compiler CompilerConfig `koanf:"compiler"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Check    CheckConfig    `koanf:"check"`
}

// LayoutConfig controls node placement when documents are regenerated.
type LayoutConfig struct {
	NodeWidth     float64 `koanf:"node_width" validate:"gt=0"`
	NodeHeight    float64 `koanf:"node_height" validate:"gt=0"`
	SpacingFactor float64 `koanf:"spacing_factor" validate:"gt=0"`
}

type CompilerConfig struct {
	LineWidth int  `koanf:"line_width" validate:"min=40,max=400"`
	SkipLoad  bool `koanf:"skip_load"`
}

// CatalogConfig points at an optional catalog file replacing the built-in one.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// CheckConfig bounds how many documents are checked at once.
type CheckConfig struct {
	Workers int `koanf:"workers" validate:"min=1,max=64"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			NodeWidth:     200,
			NodeHeight:    80,
			SpacingFactor: 2,
		},
		Compiler: CompilerConfig{
			LineWidth: 88,
		},
		Check: CheckConfig{
			Workers: 4,
		},
	}
}

// Load layers the defaults, an optional YAML file and WINDMILL_* environment
// variables (highest precedence), then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for key, value := range flattenMap("", data) {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("failed to set key %s from %s: %w", key, path, err)
			}
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges of a configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	data := make(map[string]any)
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}
	return data, nil
}

// transformEnv maps WINDMILL_LAYOUT_NODE_WIDTH to layout.node_width.
func transformEnv(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], value
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}

func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}

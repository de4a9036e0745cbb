package config

import (
	"fmt"
	"os"
	"strconv"

	"blueforge/internal/resolver"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store struct {
		Path string `yaml:"path" validate:"required"`
	} `yaml:"store"`
	Resolver struct {
		ContentRoots []string `yaml:"content_roots" validate:"min=1,dive,required"`
		NativeRoots  []string `yaml:"native_roots" validate:"min=1,dive,required"`
		UserPrefixes []string `yaml:"user_prefixes"`
		UserTokens   []string `yaml:"user_tokens"`
	} `yaml:"resolver"`
	Engine struct {
		Root          string `yaml:"root" validate:"required"`
		DefaultParent string `yaml:"default_parent" validate:"required"`
	} `yaml:"engine"`
	Manifest struct {
		ComponentToken string `yaml:"component_token" validate:"required"`
	} `yaml:"manifest"`
	Batch struct {
		MaxPasses   int    `yaml:"max_passes" validate:"min=1"`
		DefaultDest string `yaml:"default_dest" validate:"required"`
	} `yaml:"batch"`
}

// Default returns the conventional configuration. The candidate namespace
// lists are deliberately configuration, not code: extending the search is a
// config edit.
func Default() *Config {
	cfg := &Config{}
	cfg.Store.Path = "blueforge.db"
	cfg.Resolver.ContentRoots = []string{"/Game/Blueprints", "/Game"}
	cfg.Resolver.NativeRoots = []string{"/Script/Engine", "/Script/CoreUObject"}
	cfg.Resolver.UserPrefixes = []string{"BP_"}
	cfg.Engine.Root = "/Script/Engine"
	cfg.Engine.DefaultParent = "Actor"
	cfg.Manifest.ComponentToken = "Component"
	cfg.Batch.MaxPasses = 10
	cfg.Batch.DefaultDest = "/Game"
	return cfg
}

// LoadConfig reads the YAML config file over the defaults. A missing file is
// not an error; .env and environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config over defaults
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if storePath := os.Getenv("BLUEFORGE_STORE_PATH"); storePath != "" {
		cfg.Store.Path = storePath
	}
	if parent := os.Getenv("BLUEFORGE_DEFAULT_PARENT"); parent != "" {
		cfg.Engine.DefaultParent = parent
	}
	if passes := os.Getenv("BLUEFORGE_BATCH_MAX_PASSES"); passes != "" {
		if n, err := strconv.Atoi(passes); err == nil && n > 0 {
			cfg.Batch.MaxPasses = n
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ResolverOptions maps the config to the resolver's search options.
func (c *Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		ContentRoots: c.Resolver.ContentRoots,
		NativeRoots:  c.Resolver.NativeRoots,
		UserPrefixes: c.Resolver.UserPrefixes,
		UserTokens:   c.Resolver.UserTokens,
		EngineRoot:   c.Engine.Root,
	}
}

// Package config loads the YAML configuration file and applies environment
// overrides on top of it.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/hetiograph/internal/data/mirror"
	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/labels"
	"github.com/yungbote/hetiograph/internal/observability"
	"github.com/yungbote/hetiograph/internal/platform/envutil"
	"github.com/yungbote/hetiograph/internal/platform/gcp"
	"github.com/yungbote/hetiograph/internal/platform/logger"
	"github.com/yungbote/hetiograph/internal/platform/neo4jdb"
)

const (
	GraphNeo4j  = "neo4j"
	GraphMemory = "memory"

	MirrorNone     = "none"
	MirrorPostgres = "postgres"
	MirrorSQLite   = "sqlite"
	MirrorRedis    = "redis"
)


type GraphConfig struct {
	Backend string         `yaml:"backend"`
	Neo4j   neo4jdb.Config `yaml:"neo4j"`
}

type MirrorConfig struct {
	Backend string             `yaml:"backend"`
	DSN     string             `yaml:"dsn"`
	Redis   mirror.RedisConfig `yaml:"redis"`
}

type LoaderConfig struct {
	BatchSize   int `yaml:"batch_size"`
	EdgeWorkers int `yaml:"edge_workers"`
}

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	// InputRoot is the only directory POST /api/loads may read local files
	// from. Empty restricts HTTP loads to gs:// objects.
	InputRoot string `yaml:"input_root"`
}

type Config struct {
	Log     logger.Config               `yaml:"log"`
	Graph   GraphConfig                 `yaml:"graph"`
	Mirror  MirrorConfig                `yaml:"mirror"`
	Loader  LoaderConfig                `yaml:"loader"`
	HTTP    HTTPConfig                  `yaml:"http"`
	Tracing observability.TracingConfig `yaml:"tracing"`
	Storage gcp.Config                  `yaml:"storage"`
	Schema  domain.Schema               `yaml:"schema"`
}

func Default() Config {
	return Config{
		Log:     logger.Config{Mode: "development", Level: "info", Redact: true},
		Graph:   GraphConfig{Backend: GraphNeo4j, Neo4j: neo4jdb.DefaultConfig()},
		Mirror:  MirrorConfig{Backend: MirrorNone, Redis: mirror.RedisConfig{Addr: "localhost:6379", KeyPrefix: "hetio:node:"}},
		Loader:  LoaderConfig{BatchSize: 1000, EdgeWorkers: 1},
		HTTP:    HTTPConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Tracing: observability.DefaultTracingConfig(),
		Schema:  domain.DefaultSchema(),
	}
}

// Load reads path (optional) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	c.Log.Mode = envutil.String("LOG_MODE", c.Log.Mode)
	c.Log.Level = envutil.String("LOG_LEVEL", c.Log.Level)
	c.Log.Redact = envutil.Bool("LOG_REDACTION_ENABLED", c.Log.Redact)

	c.Graph.Backend = strings.ToLower(envutil.String("GRAPH_BACKEND", c.Graph.Backend))
	c.Graph.Neo4j.ApplyEnv()

	c.Mirror.Backend = strings.ToLower(envutil.String("MIRROR_BACKEND", c.Mirror.Backend))
	c.Mirror.DSN = envutil.String("MIRROR_DSN", c.Mirror.DSN)
	c.Mirror.Redis.Addr = envutil.String("REDIS_ADDR", c.Mirror.Redis.Addr)
	c.Mirror.Redis.Password = envutil.String("REDIS_PASSWORD", c.Mirror.Redis.Password)
	c.Mirror.Redis.DB = envutil.Int("REDIS_DB", c.Mirror.Redis.DB)
	c.Mirror.Redis.KeyPrefix = envutil.String("REDIS_KEY_PREFIX", c.Mirror.Redis.KeyPrefix)

	c.Loader.BatchSize = envutil.Int("LOADER_BATCH_SIZE", c.Loader.BatchSize)
	c.Loader.EdgeWorkers = envutil.Int("LOADER_EDGE_WORKERS", c.Loader.EdgeWorkers)

	c.HTTP.Addr = envutil.String("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", c.HTTP.CORSOrigins)
	c.HTTP.InputRoot = envutil.String("HTTP_INPUT_ROOT", c.HTTP.InputRoot)

	c.Tracing.ApplyEnv()

	c.Storage = gcp.ConfigFromEnv(c.Storage)
}

func (c Config) Validate() error {
	switch c.Graph.Backend {
	case GraphNeo4j, GraphMemory:
	default:
		return fmt.Errorf("config: unknown graph backend %q", c.Graph.Backend)
	}
	switch c.Mirror.Backend {
	case MirrorNone, MirrorRedis:
	case MirrorPostgres, MirrorSQLite:
		if strings.TrimSpace(c.Mirror.DSN) == "" {
			return fmt.Errorf("config: mirror backend %s requires a dsn", c.Mirror.Backend)
		}
	default:
		return fmt.Errorf("config: unknown mirror backend %q", c.Mirror.Backend)
	}
	if c.Loader.BatchSize <= 0 {
		return fmt.Errorf("config: loader batch_size must be positive, got %d", c.Loader.BatchSize)
	}
	if c.Loader.EdgeWorkers <= 0 {
		return fmt.Errorf("config: loader edge_workers must be positive, got %d", c.Loader.EdgeWorkers)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return ValidateSchema(c.Schema)
}

// ValidateSchema checks every configured kind and relation type against the
// strict label grammar.
func ValidateSchema(s domain.Schema) error {
	for _, k := range []string{s.DiseaseKind, s.CompoundKind, s.GeneKind} {
		if _, err := labels.NodeKind(k); err != nil {
			return fmt.Errorf("config: schema kind: %w", err)
		}
	}
	groups := map[string][]string{
		"treats":                 s.Treats,
		"palliates":              s.Palliates,
		"causes":                 s.Causes,
		"localizes":              s.Localizes,
		"location_upregulates":   s.LocationUpregulates,
		"location_downregulates": s.LocationDownregulates,
		"compound_upregulates":   s.CompoundUpregulates,
		"compound_downregulates": s.CompoundDownregulates,
	}
	for name, types := range groups {
		if len(types) == 0 {
			return fmt.Errorf("config: schema %s needs at least one relation type", name)
		}
		if _, err := labels.Strict(types...); err != nil {
			return fmt.Errorf("config: schema %s: %w", name, err)
		}
	}
	return nil
}

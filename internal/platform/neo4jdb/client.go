package neo4jdb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/envutil"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

const storeName = "neo4j"

type Config struct {
	URI         string        `yaml:"uri"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	Database    string        `yaml:"database"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	// RetryTime bounds how long managed transactions retry transient errors.
	RetryTime time.Duration `yaml:"retry_time"`
	// FetchSize is the record batch size pulled by read sessions.
	FetchSize int `yaml:"fetch_size"`
}

func DefaultConfig() Config {
	return Config{
		URI:         "bolt://localhost:7687",
		User:        "neo4j",
		Timeout:     10 * time.Second,
		MaxPoolSize: 50,
		RetryTime:   30 * time.Second,
		FetchSize:   1000,
	}
}

// ApplyEnv overrides cfg with NEO4J_* variables when they are set.
func (cfg *Config) ApplyEnv() {
	cfg.URI = envutil.String("NEO4J_URI", cfg.URI)
	cfg.User = envutil.String("NEO4J_USER", cfg.User)
	cfg.Password = envutil.String("NEO4J_PASSWORD", cfg.Password)
	cfg.Database = envutil.String("NEO4J_DATABASE", cfg.Database)
	cfg.Timeout = envutil.Seconds("NEO4J_TIMEOUT_SECONDS", cfg.Timeout)
	cfg.RetryTime = envutil.Seconds("NEO4J_RETRY_SECONDS", cfg.RetryTime)
	cfg.MaxPoolSize = envutil.Int("NEO4J_MAX_POOL_SIZE", cfg.MaxPoolSize)
	cfg.FetchSize = envutil.Int("NEO4J_FETCH_SIZE", cfg.FetchSize)
}

// withDefaults fills zero and negative fields from DefaultConfig.
func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	cfg.URI = strings.TrimSpace(cfg.URI)
	cfg.Database = strings.TrimSpace(cfg.Database)
	if cfg.User = strings.TrimSpace(cfg.User); cfg.User == "" {
		cfg.User = def.User
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = def.MaxPoolSize
	}
	if cfg.RetryTime <= 0 {
		cfg.RetryTime = def.RetryTime
	}
	if cfg.FetchSize <= 0 {
		cfg.FetchSize = def.FetchSize
	}
	return cfg
}

type Client struct {
	Driver   neo4j.DriverWithContext
	Database string

	fetchSize int
	log       *logger.Logger
}

// New opens a driver and verifies connectivity within cfg.Timeout. An
// unreachable server is a store_connection failure.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	cfg = cfg.withDefaults()
	if cfg.URI == "" {
		return nil, perrors.InvalidArgument("connect", "neo4j uri required")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
		c.MaxTransactionRetryTime = cfg.RetryTime
	})
	if err != nil {
		return nil, perrors.InvalidArgument("connect", "neo4j driver: "+err.Error())
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, perrors.StoreConnection("connect", storeName, err).WithContext("uri", cfg.URI)
	}

	log.Info("neo4j connected", "uri", cfg.URI, "database", cfg.Database, "max_pool", cfg.MaxPoolSize)
	return &Client{
		Driver:    driver,
		Database:  cfg.Database,
		fetchSize: cfg.FetchSize,
		log:       log.With("client", "Neo4jDB"),
	}, nil
}

func (c *Client) ReadSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.Database,
		FetchSize:    c.fetchSize,
	})
}

func (c *Client) WriteSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
}

var errClosed = errors.New("neo4j client closed")

// Ping backs /readyz.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return perrors.StoreConnection("ping", storeName, errClosed)
	}
	if err := c.Driver.VerifyConnectivity(ctx); err != nil {
		return perrors.StoreConnection("ping", storeName, err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

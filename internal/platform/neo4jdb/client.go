package neo4jdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/twingraph-backend/internal/config"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

// New opens the process-wide driver. The driver owns the connection pool; callers open a
// session per operation with ReadSession/WriteSession and close it when done.
func New(ctx context.Context, cfg config.Neo4jConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("neo4jdb: %w", config.ErrMissingPassword)
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		// Startup continues; the store health route reports the outage.
		log.Warn("neo4j connectivity check failed", "uri", cfg.URI, "error", err)
	}

	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "Neo4jDB"),
	}, nil
}

func (c *Client) ReadSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.Database,
	})
}

func (c *Client) WriteSession(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
}

// Ping runs a trivial round trip and reports whether the store answered with the expected literal.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	if c == nil || c.Driver == nil {
		return false, fmt.Errorf("neo4jdb: client not initialized")
	}
	session := c.ReadSession(ctx)
	defer session.Close(ctx)

	res, err := session.Run(ctx, "RETURN 1 AS ok", nil)
	if err != nil {
		return false, err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return false, err
	}
	v, _ := rec.Get("ok")
	n, ok := v.(int64)
	return ok && n == 1, nil
}

// EnsureSchema creates the uniqueness constraint MERGE relies on for atomic upserts.
// Failures are logged and ignored so a read-only or older server still works.
func (c *Client) EnsureSchema(ctx context.Context) {
	if c == nil || c.Driver == nil {
		return
	}
	session := c.WriteSession(ctx)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT component_name_unique IF NOT EXISTS FOR (c:Component) REQUIRE c.name IS UNIQUE`,
	}
	for _, q := range stmts {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			c.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

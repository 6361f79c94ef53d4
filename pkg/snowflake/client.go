package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/snowflakedb/gosnowflake"
)

const defaultMaxConcurrency = 4

// Config holds the warehouse connection parameters.
type Config struct {
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Schema    string
	Role      string
}

// Validate checks that the required connection parameters are present.
func (c Config) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("snowflake account is required")
	}
	if c.User == "" {
		return fmt.Errorf("snowflake user is required")
	}
	if c.Password == "" {
		return fmt.Errorf("snowflake password is required")
	}
	return nil
}

// OpenFunc opens the database handle for a Config. Tests substitute an
// in-memory database here.
type OpenFunc func(cfg Config) (*sql.DB, error)

func openSnowflake(cfg Config) (*sql.DB, error) {
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("build dsn: %w", err)
	}
	return sql.Open("snowflake", dsn)
}

// Client manages a single warehouse connection. Connect and disconnect are
// serialized by a mutex; statement execution borrows a dedicated connection
// per call so session-scoped commands like USE WAREHOUSE stay consistent.
type Client struct {
	cfg  Config
	log  *slog.Logger
	open OpenFunc
	pool pond.Pool

	mu sync.Mutex
	db *sql.DB
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithOpenFunc replaces the database opener.
func WithOpenFunc(open OpenFunc) ClientOption {
	return func(c *Client) { c.open = open }
}

// WithMaxConcurrency bounds the worker pool that runs blocking driver calls.
func WithMaxConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pool = pond.NewPool(n)
		}
	}
}

// NewClient creates a client for the given configuration. No connection is
// opened until the first operation needs one.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:  cfg,
		log:  slog.Default(),
		open: openSnowflake,
		pool: pond.NewPool(defaultMaxConcurrency),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Warehouse returns the configured default warehouse.
func (c *Client) Warehouse() string {
	return c.cfg.Warehouse
}

// ensureConnected opens the database handle if it is not already open.
// Concurrent callers serialize on the mutex so exactly one connection
// attempt runs; a failed attempt leaves no handle behind and the next call
// starts from scratch.
func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return nil
	}

	c.log.Info("connecting to snowflake",
		"account", c.cfg.Account,
		"warehouse", c.cfg.Warehouse,
		"database", c.cfg.Database,
	)

	var db *sql.DB
	err := c.pool.SubmitErr(func() error {
		var err error
		db, err = c.open(c.cfg)
		if err != nil {
			return err
		}
		// A single underlying connection keeps session state such as the
		// active warehouse stable across statements.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return err
		}
		return nil
	}).Wait()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	c.db = db
	c.log.Info("connected to snowflake")
	return nil
}

// Disconnect closes the connection if one is open. Safe to call repeatedly.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}

	db := c.db
	c.db = nil
	if err := c.pool.SubmitErr(db.Close).Wait(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	c.log.Info("disconnected from snowflake")
	return nil
}

// withCursor runs fn with a dedicated connection, releasing it on every
// path. The driver call runs on the bounded worker pool; the dispatched
// work is not cancelled once started.
func (c *Client) withCursor(ctx context.Context, fn func(conn *sql.Conn) error) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	db := c.db
	c.mu.Unlock()
	if db == nil {
		return fmt.Errorf("not connected")
	}

	return c.pool.SubmitErr(func() error {
		conn, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("acquire connection: %w", err)
		}
		defer func() {
			_ = conn.Close()
		}()
		return fn(conn)
	}).Wait()
}

// UseWarehouse switches the session to the named warehouse.
func (c *Client) UseWarehouse(ctx context.Context, name string) error {
	if err := validateIdentifier("warehouse", name); err != nil {
		return err
	}
	c.log.Info("switching warehouse", "warehouse", name)
	return c.withCursor(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, "USE WAREHOUSE "+name); err != nil {
			return fmt.Errorf("use warehouse %s: %w", name, err)
		}
		return nil
	})
}

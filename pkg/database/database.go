package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"credhub/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const DefaultSchema = "public"

//go:embed schema.sql
var schemaSQL string

// Options are the connection parameters for the credentialing store.
type Options struct {
	URL    string
	Schema string
}

// Client is the store handle shared by every repository. A Client built
// without a URL is valid but unconfigured: every call fails with
// common.ErrNotConfigured.
type Client struct {
	pool   *pgxpool.Pool
	schema string
	logger *zap.Logger
}

// NewClient connects to the store described by opts. An empty URL yields an
// unconfigured client rather than an error.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema := strings.TrimSpace(opts.Schema)
	if schema == "" {
		schema = DefaultSchema
	}

	c := &Client{schema: schema, logger: logger}
	if strings.TrimSpace(opts.URL) == "" {
		logger.Warn("database connection parameters missing, running unconfigured")
		return c, nil
	}

	pool, err := NewPool(ctx, opts.URL, schema)
	if err != nil {
		return nil, err
	}
	c.pool = pool

	logger.Info("database connected", zap.String("schema", schema))
	return c, nil
}

// NewPool opens a pgx pool with search_path pinned to schema.
func NewPool(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if schema != "" {
		config.ConnConfig.RuntimeParams["search_path"] = schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Configured reports whether the client holds a live pool.
func (c *Client) Configured() bool {
	return c != nil && c.pool != nil
}

func (c *Client) Schema() string {
	return c.schema
}

// Pool returns the underlying pool, or nil when unconfigured.
func (c *Client) Pool() *pgxpool.Pool {
	if c == nil {
		return nil
	}
	return c.pool
}

func (c *Client) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if !c.Configured() {
		return pgconn.CommandTag{}, common.ErrNotConfigured
	}
	return c.pool.Exec(ctx, sql, args...)
}

func (c *Client) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if !c.Configured() {
		return nil, common.ErrNotConfigured
	}
	return c.pool.Query(ctx, sql, args...)
}

func (c *Client) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if !c.Configured() {
		return errRow{err: common.ErrNotConfigured}
	}
	return c.pool.QueryRow(ctx, sql, args...)
}

func (c *Client) Begin(ctx context.Context) (pgx.Tx, error) {
	if !c.Configured() {
		return nil, common.ErrNotConfigured
	}
	return c.pool.Begin(ctx)
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return common.ErrNotConfigured
	}
	return c.pool.Ping(ctx)
}

// Migrate creates the configured schema if needed and applies the bundled
// schema to it. Statements are idempotent.
func (c *Client) Migrate(ctx context.Context) error {
	if !c.Configured() {
		return common.ErrNotConfigured
	}
	if _, err := c.pool.Exec(ctx, createSchemaSQL(c.schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", c.schema, err)
	}
	if _, err := c.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	c.logger.Info("schema applied", zap.String("schema", c.schema))
	return nil
}

func createSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()
}

func (c *Client) Close() {
	if c.Configured() {
		c.pool.Close()
		c.logger.Info("database disconnected")
	}
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

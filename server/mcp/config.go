package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/datapilot/datapilot/pkg/ai"
	"github.com/datapilot/datapilot/pkg/snowflake"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
)

// Querier is the warehouse surface the tools call. *snowflake.Client
// implements it; tests substitute a stub.
type Querier interface {
	ExecuteQuery(ctx context.Context, query string, limit int, warehouse string) *snowflake.QueryResult
	ListDatabases(ctx context.Context) []string
	ListSchemas(ctx context.Context, database string) ([]string, error)
	ListTables(ctx context.Context, database, schema string) ([]snowflake.TableInfo, error)
	DescribeTable(ctx context.Context, table, database, schema string) ([]snowflake.ColumnInfo, error)
	GetTableSample(ctx context.Context, table string, limit int) (*snowflake.QueryResult, error)
	ListWarehouses(ctx context.Context) []snowflake.Row
	GetWarehouseStatus(ctx context.Context) snowflake.WarehouseStatus
	AnalyzeTableStats(ctx context.Context, table string) (snowflake.Row, error)
}

// Assistant is the AI surface the tools call. *ai.Assistant implements it.
type Assistant interface {
	NaturalLanguageToSQL(ctx context.Context, question string, schemas []ai.TableSchema) (string, error)
	AnalyzeQueryResults(ctx context.Context, query string, rows []snowflake.Row, analysisType string) (string, error)
	SuggestOptimizations(ctx context.Context, query string) (string, error)
	ExplainQuery(ctx context.Context, query string) (string, error)
	GenerateTableInsights(ctx context.Context, table string, columns []snowflake.ColumnInfo, sample []snowflake.Row) (string, error)
}

// Config configures the MCP server.
type Config struct {
	Logger *slog.Logger

	Querier   Querier
	Assistant Assistant

	Version           string
	ListenAddr        string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	AllowedTokens     []string // Bearer tokens allowed for MCP endpoint authentication
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Querier == nil {
		return fmt.Errorf("querier is required")
	}
	if c.Assistant == nil {
		return fmt.Errorf("assistant is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return nil
}

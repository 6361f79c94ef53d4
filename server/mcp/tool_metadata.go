package mcp

import (
	"context"
	"fmt"

	"github.com/datapilot/datapilot/pkg/snowflake"
)

type ListDatabasesInput struct{}

type ListDatabasesOutput struct {
	Databases []string `json:"databases"`
}

type ListSchemasInput struct {
	Database string `json:"database,omitempty"`
}

type ListSchemasOutput struct {
	Schemas []string `json:"schemas"`
}

type ListTablesInput struct {
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty"`
}

type ListTablesOutput struct {
	Tables []snowflake.TableInfo `json:"tables"`
}

type DescribeTableInput struct {
	Table    string `json:"table"`
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty"`
}

type DescribeTableOutput struct {
	Columns []snowflake.ColumnInfo `json:"columns"`
}

type GetTableSampleInput struct {
	Table string `json:"table"`
	Limit int    `json:"limit,omitempty"`
}

type ListWarehousesInput struct{}

type ListWarehousesOutput struct {
	Warehouses []snowflake.Row `json:"warehouses"`
}

type GetWarehouseStatusInput struct{}

type AnalyzeTableStatsInput struct {
	Table string `json:"table"`
}

type AnalyzeTableStatsOutput struct {
	Stats snowflake.Row `json:"stats"`
}

func (s *Server) registerMetadataTools() error {
	if err := addTool(s, "list_databases",
		"List all databases visible to the session.",
		func(ctx context.Context, _ ListDatabasesInput) (ListDatabasesOutput, error) {
			return ListDatabasesOutput{Databases: s.cfg.Querier.ListDatabases(ctx)}, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "list_schemas",
		"List schemas in a database, or in the current database when none is given.",
		func(ctx context.Context, in ListSchemasInput) (ListSchemasOutput, error) {
			schemas, err := s.cfg.Querier.ListSchemas(ctx, in.Database)
			if err != nil {
				return ListSchemasOutput{}, err
			}
			return ListSchemasOutput{Schemas: schemas}, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "list_tables",
		"List tables in a schema, a database, or the session context.",
		func(ctx context.Context, in ListTablesInput) (ListTablesOutput, error) {
			tables, err := s.cfg.Querier.ListTables(ctx, in.Database, in.Schema)
			if err != nil {
				return ListTablesOutput{}, err
			}
			return ListTablesOutput{Tables: tables}, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "describe_table",
		"Describe the columns of a table, optionally qualified by database and schema.",
		func(ctx context.Context, in DescribeTableInput) (DescribeTableOutput, error) {
			if in.Table == "" {
				return DescribeTableOutput{}, fmt.Errorf("table is required")
			}
			columns, err := s.cfg.Querier.DescribeTable(ctx, in.Table, in.Database, in.Schema)
			if err != nil {
				return DescribeTableOutput{}, err
			}
			return DescribeTableOutput{Columns: columns}, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "get_table_sample",
		"Fetch a sample of rows from a table.",
		func(ctx context.Context, in GetTableSampleInput) (snowflake.QueryResult, error) {
			if in.Table == "" {
				return snowflake.QueryResult{}, fmt.Errorf("table is required")
			}
			res, err := s.cfg.Querier.GetTableSample(ctx, in.Table, in.Limit)
			if err != nil {
				return snowflake.QueryResult{}, err
			}
			return *res, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "list_warehouses",
		"List warehouses with their state, size and load.",
		func(ctx context.Context, _ ListWarehousesInput) (ListWarehousesOutput, error) {
			return ListWarehousesOutput{Warehouses: s.cfg.Querier.ListWarehouses(ctx)}, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "get_warehouse_status",
		"Report the session's active warehouse, database and schema.",
		func(ctx context.Context, _ GetWarehouseStatusInput) (snowflake.WarehouseStatus, error) {
			return s.cfg.Querier.GetWarehouseStatus(ctx), nil
		}); err != nil {
		return err
	}

	return addTool(s, "analyze_table_stats",
		"Compute row and distinct-value counts for a table.",
		func(ctx context.Context, in AnalyzeTableStatsInput) (AnalyzeTableStatsOutput, error) {
			if in.Table == "" {
				return AnalyzeTableStatsOutput{}, fmt.Errorf("table is required")
			}
			stats, err := s.cfg.Querier.AnalyzeTableStats(ctx, in.Table)
			if err != nil {
				return AnalyzeTableStatsOutput{}, err
			}
			return AnalyzeTableStatsOutput{Stats: stats}, nil
		})
}

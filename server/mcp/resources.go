package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datapilot/datapilot/pkg/snowflake"
)

const (
	resourceDatabases = "snowflake://databases"
	resourceSchemas   = "snowflake://schemas/{database}"
	resourceTables    = "snowflake://tables/{database}/{schema}"
	resourceTableInfo = "snowflake://table/{database}/{schema}/{table}"
)

// tableInfoSampleRows is how many rows the table detail resource includes.
const tableInfoSampleRows = 5

// tableInfo is the detail record served for a single table: its columns, a
// small data sample and the column count.
type tableInfo struct {
	Table       string                 `json:"table_name"`
	Database    string                 `json:"database"`
	Schema      string                 `json:"schema"`
	Columns     []snowflake.ColumnInfo `json:"columns"`
	SampleData  []snowflake.Row        `json:"sample_data"`
	ColumnCount int                    `json:"column_count"`
}

// registerResources exposes the catalog listings as readable resources.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcpsdk.Resource{
		URI:         resourceDatabases,
		Name:        "databases",
		Description: "All databases visible to the session",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		return jsonResource(req.Params.URI, s.cfg.Querier.ListDatabases(ctx))
	})

	s.mcp.AddResourceTemplate(&mcpsdk.ResourceTemplate{
		URITemplate: resourceSchemas,
		Name:        "schemas",
		Description: "Schemas in a database",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		parts, err := resourcePath(req.Params.URI, "schemas", 1)
		if err != nil {
			return nil, err
		}
		schemas, err := s.cfg.Querier.ListSchemas(ctx, parts[0])
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, schemas)
	})

	s.mcp.AddResourceTemplate(&mcpsdk.ResourceTemplate{
		URITemplate: resourceTables,
		Name:        "tables",
		Description: "Tables in a schema",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		parts, err := resourcePath(req.Params.URI, "tables", 2)
		if err != nil {
			return nil, err
		}
		tables, err := s.cfg.Querier.ListTables(ctx, parts[0], parts[1])
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, tables)
	})

	s.mcp.AddResourceTemplate(&mcpsdk.ResourceTemplate{
		URITemplate: resourceTableInfo,
		Name:        "table",
		Description: "Detailed information about a table: columns, a data sample and the column count",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		parts, err := resourcePath(req.Params.URI, "table", 3)
		if err != nil {
			return nil, err
		}
		info, err := s.tableInfo(ctx, parts[0], parts[1], parts[2])
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, info)
	})
}

// tableInfo assembles the detail record for a table. A failed sample query
// yields an empty sample rather than an error.
func (s *Server) tableInfo(ctx context.Context, database, schema, table string) (tableInfo, error) {
	columns, err := s.cfg.Querier.DescribeTable(ctx, table, database, schema)
	if err != nil {
		return tableInfo{}, err
	}

	sampleData := []snowflake.Row{}
	sample, err := s.cfg.Querier.GetTableSample(ctx, fmt.Sprintf("%s.%s.%s", database, schema, table), tableInfoSampleRows)
	if err != nil {
		return tableInfo{}, err
	}
	if sample.Success {
		sampleData = sample.Rows
	}

	return tableInfo{
		Table:       table,
		Database:    database,
		Schema:      schema,
		Columns:     columns,
		SampleData:  sampleData,
		ColumnCount: len(columns),
	}, nil
}

// resourcePath extracts the path segments of a snowflake:// resource URI
// after the kind prefix and checks their count.
func resourcePath(uri, kind string, want int) ([]string, error) {
	prefix := "snowflake://" + kind + "/"
	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return nil, fmt.Errorf("unexpected resource uri %q", uri)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != want {
		return nil, fmt.Errorf("unexpected resource uri %q", uri)
	}
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("unexpected resource uri %q", uri)
		}
	}
	return parts, nil
}

func jsonResource(uri string, v any) (*mcpsdk.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return &mcpsdk.ReadResourceResult{
		Contents: []*mcpsdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

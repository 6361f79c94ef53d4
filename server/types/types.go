// Package types defines the REST API request and response shapes.
package types

import "github.com/datapilot/datapilot/pkg/snowflake"

// SQLQueryRequest is the body of POST /sql/execute.
type SQLQueryRequest struct {
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
}

// NaturalLanguageRequest is the body of POST /sql/natural.
type NaturalLanguageRequest struct {
	Question string `json:"question"`
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Execute  bool   `json:"execute,omitempty"`
}

// NaturalLanguageResponse is the reply to POST /sql/natural. Result is set
// only when execution was requested.
type NaturalLanguageResponse struct {
	Question string                 `json:"question"`
	SQL      string                 `json:"sql"`
	Result   *snowflake.QueryResult `json:"result,omitempty"`
}

// DatabasesResponse lists database names.
type DatabasesResponse struct {
	Databases []string `json:"databases"`
}

// SchemasResponse lists schema names within a database.
type SchemasResponse struct {
	Database string   `json:"database,omitempty"`
	Schemas  []string `json:"schemas"`
}

// TablesResponse lists tables in scope.
type TablesResponse struct {
	Database string                `json:"database,omitempty"`
	Schema   string                `json:"schema,omitempty"`
	Tables   []snowflake.TableInfo `json:"tables"`
}

// ColumnsResponse lists the columns of a table.
type ColumnsResponse struct {
	Table   string                 `json:"table"`
	Columns []snowflake.ColumnInfo `json:"columns"`
}

// WarehousesResponse lists warehouses as raw catalog rows.
type WarehousesResponse struct {
	Warehouses []snowflake.Row `json:"warehouses"`
}

// HealthResponse is the reply to GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// InfoResponse is the reply to GET /info.
type InfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Warehouse string `json:"warehouse,omitempty"`
}

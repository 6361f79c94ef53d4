// Package snowflake provides the Snowflake data-access layer: a single
// managed connection, query execution with result-size safeguards, and
// catalog metadata derivation.
package snowflake

// Row is a single result row keyed by column name.
type Row map[string]any

// QueryResult is the outcome of a single statement execution. Statement
// failures are reported through Success and Error rather than a Go error.
type QueryResult struct {
	Success         bool     `json:"success"`
	Rows            []Row    `json:"data"`
	Columns         []string `json:"columns"`
	RowCount        int      `json:"row_count"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
	QueryID         string   `json:"query_id,omitempty"`
	WarehouseUsed   string   `json:"warehouse_used,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// TableInfo describes a table as reported by SHOW TABLES.
type TableInfo struct {
	Name     string `json:"table_name"`
	Schema   string `json:"schema_name"`
	Database string `json:"database_name"`
	Kind     string `json:"table_type"`
	RowCount *int64 `json:"row_count"`
	Bytes    *int64 `json:"bytes"`
	Comment  string `json:"comment,omitempty"`
}

// ColumnInfo describes a column as reported by DESCRIBE TABLE.
type ColumnInfo struct {
	Name         string `json:"column_name"`
	Type         string `json:"data_type"`
	IsNullable   bool   `json:"is_nullable"`
	DefaultValue string `json:"default_value,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// WarehouseStatus is the current session context: active warehouse,
// database and schema.
type WarehouseStatus struct {
	CurrentWarehouse string `json:"current_warehouse"`
	CurrentDatabase  string `json:"current_database"`
	CurrentSchema    string `json:"current_schema"`
}

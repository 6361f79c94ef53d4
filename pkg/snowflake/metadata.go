package snowflake

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ListDatabases returns the names of the databases visible to the session.
// Statement failures collapse to an empty listing.
func (c *Client) ListDatabases(ctx context.Context) []string {
	res := c.ExecuteQuery(ctx, "SHOW DATABASES", 0, "")
	if !res.Success {
		c.log.Warn("failed to list databases", "error", res.Error)
		return []string{}
	}
	return namesFromRows(res.Rows)
}

// ListSchemas returns the schema names in the given database, or in the
// current database when database is empty.
func (c *Client) ListSchemas(ctx context.Context, database string) ([]string, error) {
	stmt := "SHOW SCHEMAS"
	if database != "" {
		if err := validateIdentifier("database", database); err != nil {
			return nil, err
		}
		stmt = "SHOW SCHEMAS IN DATABASE " + database
	}

	res := c.ExecuteQuery(ctx, stmt, 0, "")
	if !res.Success {
		c.log.Warn("failed to list schemas", "database", database, "error", res.Error)
		return []string{}, nil
	}
	return namesFromRows(res.Rows), nil
}

// ListTables returns the tables in the given scope. With both database and
// schema the listing is scoped to that schema; with only a database it
// covers the whole database; with neither it uses the session context.
func (c *Client) ListTables(ctx context.Context, database, schema string) ([]TableInfo, error) {
	if database != "" {
		if err := validateIdentifier("database", database); err != nil {
			return nil, err
		}
	}
	if schema != "" {
		if err := validateIdentifier("schema", schema); err != nil {
			return nil, err
		}
	}

	stmt := "SHOW TABLES"
	switch {
	case database != "" && schema != "":
		stmt = fmt.Sprintf("SHOW TABLES IN SCHEMA %s.%s", database, schema)
	case database != "":
		stmt = "SHOW TABLES IN DATABASE " + database
	}

	res := c.ExecuteQuery(ctx, stmt, 0, "")
	if !res.Success {
		c.log.Warn("failed to list tables",
			"database", database,
			"schema", schema,
			"error", res.Error,
		)
		return []TableInfo{}, nil
	}

	tables := make([]TableInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		tables = append(tables, tableFromRow(row))
	}
	return tables, nil
}

// DescribeTable returns the column definitions of a table. Database and
// schema qualify the name when present.
func (c *Client) DescribeTable(ctx context.Context, table, database, schema string) ([]ColumnInfo, error) {
	name, err := qualifiedTable(table, database, schema)
	if err != nil {
		return nil, err
	}

	res := c.ExecuteQuery(ctx, "DESCRIBE TABLE "+name, 0, "")
	if !res.Success {
		c.log.Warn("failed to describe table", "table", name, "error", res.Error)
		return []ColumnInfo{}, nil
	}

	columns := make([]ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		columns = append(columns, columnFromRow(row))
	}
	return columns, nil
}

// GetTableSample returns up to limit rows from a table. The table name may
// be qualified; each dotted part is validated before interpolation.
func (c *Client) GetTableSample(ctx context.Context, table string, limit int) (*QueryResult, error) {
	if err := validateTableRef(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return c.ExecuteQuery(ctx, "SELECT * FROM "+table, limit, ""), nil
}

// ListWarehouses returns the warehouses visible to the session as raw rows,
// since callers want the full SHOW WAREHOUSES attributes (state, size,
// running and queued counts).
func (c *Client) ListWarehouses(ctx context.Context) []Row {
	res := c.ExecuteQuery(ctx, "SHOW WAREHOUSES", 0, "")
	if !res.Success {
		c.log.Warn("failed to list warehouses", "error", res.Error)
		return []Row{}
	}
	return res.Rows
}

// GetWarehouseStatus reports the session's active warehouse, database and
// schema. A failed lookup yields an empty status.
func (c *Client) GetWarehouseStatus(ctx context.Context) WarehouseStatus {
	res := c.ExecuteQuery(ctx, "SELECT CURRENT_WAREHOUSE(), CURRENT_DATABASE(), CURRENT_SCHEMA()", 0, "")
	if !res.Success || len(res.Rows) == 0 {
		if !res.Success {
			c.log.Warn("failed to get warehouse status", "error", res.Error)
		}
		return WarehouseStatus{}
	}

	row := res.Rows[0]
	return WarehouseStatus{
		CurrentWarehouse: stringField(row, "CURRENT_WAREHOUSE()"),
		CurrentDatabase:  stringField(row, "CURRENT_DATABASE()"),
		CurrentSchema:    stringField(row, "CURRENT_SCHEMA()"),
	}
}

// AnalyzeTableStats computes row and distinct-value counts for a table.
// The result row carries row_count plus a <column>_distinct entry per
// column.
func (c *Client) AnalyzeTableStats(ctx context.Context, table string) (Row, error) {
	if err := validateTableRef(table); err != nil {
		return nil, err
	}

	columns, err := c.DescribeTable(ctx, table, "", "")
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns found for table %s", table)
	}

	exprs := []string{"COUNT(*) AS row_count"}
	for _, col := range columns {
		exprs = append(exprs, fmt.Sprintf("COUNT(DISTINCT %s) AS %s_distinct", col.Name, strings.ToLower(col.Name)))
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), table)

	res := c.ExecuteQuery(ctx, stmt, 0, "")
	if !res.Success {
		return nil, fmt.Errorf("analyze table %s: %s", table, res.Error)
	}
	if len(res.Rows) == 0 {
		return Row{}, nil
	}
	return res.Rows[0], nil
}

// validateTableRef validates a possibly qualified table reference, checking
// each dotted part as an identifier.
func validateTableRef(table string) error {
	parts := strings.Split(table, ".")
	if len(parts) > 3 {
		return fmt.Errorf("invalid table reference %q", table)
	}
	for _, part := range parts {
		if err := validateIdentifier("table", part); err != nil {
			return fmt.Errorf("invalid table reference %q", table)
		}
	}
	return nil
}

func namesFromRows(rows []Row) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, stringField(row, "name"))
	}
	return names
}

// tableFromRow reshapes a SHOW TABLES row into a TableInfo record.
func tableFromRow(row Row) TableInfo {
	return TableInfo{
		Name:     stringField(row, "name"),
		Schema:   stringField(row, "schema_name"),
		Database: stringField(row, "database_name"),
		Kind:     stringField(row, "kind"),
		RowCount: intField(row, "rows"),
		Bytes:    intField(row, "bytes"),
		Comment:  stringField(row, "comment"),
	}
}

// columnFromRow reshapes a DESCRIBE TABLE row into a ColumnInfo record.
// A missing nullability field counts as nullable.
func columnFromRow(row Row) ColumnInfo {
	nullable := "Y"
	if v, ok := row["null?"]; ok {
		nullable = stringValue(v)
	}
	return ColumnInfo{
		Name:         stringField(row, "name"),
		Type:         stringField(row, "type"),
		IsNullable:   nullable == "Y",
		DefaultValue: stringField(row, "default"),
		Comment:      stringField(row, "comment"),
	}
}

func stringField(row Row, key string) string {
	v, ok := row[key]
	if !ok {
		return ""
	}
	return stringValue(v)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func intField(row Row, key string) *int64 {
	v, ok := row[key]
	if !ok || v == nil {
		return nil
	}
	var n int64
	switch val := v.(type) {
	case int64:
		n = val
	case int:
		n = int64(val)
	case int32:
		n = int64(val)
	case float64:
		n = int64(val)
	case string:
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

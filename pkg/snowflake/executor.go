package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"github.com/datapilot/datapilot/pkg/query"
)

// ExecuteQuery runs a single statement and always returns a populated
// result. Statement failures never surface as a Go error; they come back
// with Success=false, empty rows and the failure message, so one malformed
// statement cannot take down a caller driving many queries.
//
// When limit is positive and the statement is a SELECT without an existing
// LIMIT clause, " LIMIT n" is appended after stripping a trailing
// semicolon. Non-SELECT statements run unmodified with a warning. When
// warehouse is non-empty the session is switched before execution and the
// switch is part of the reported execution time.
func (c *Client) ExecuteQuery(ctx context.Context, queryText string, limit int, warehouse string) *QueryResult {
	start := time.Now()

	fail := func(err error) *QueryResult {
		c.log.Error("query execution failed", "error", err)
		return &QueryResult{
			Success:         false,
			Rows:            []Row{},
			Columns:         []string{},
			ExecutionTimeMS: time.Since(start).Milliseconds(),
			Error:           err.Error(),
		}
	}

	if warehouse != "" {
		if err := c.UseWarehouse(ctx, warehouse); err != nil {
			return fail(err)
		}
	}

	stmt := c.applyLimit(queryText, limit)

	var (
		columns []string
		rows    []Row
		queryID string
	)
	err := c.withCursor(ctx, func(conn *sql.Conn) error {
		c.log.Info("executing query", "query", truncateSQL(stmt, 100))

		// The driver reports the server-side query ID through a context
		// channel. Other drivers ignore the context value.
		idCh := make(chan string, 1)
		qctx := gosnowflake.WithQueryIDChan(ctx, idCh)

		rs, err := conn.QueryContext(qctx, stmt)
		if err != nil {
			return err
		}
		defer func() {
			_ = rs.Close()
		}()

		columns, rows, err = collectRows(rs)
		if err != nil {
			return err
		}

		select {
		case queryID = <-idCh:
		default:
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}

	used := warehouse
	if used == "" {
		used = c.cfg.Warehouse
	}

	result := &QueryResult{
		Success:         true,
		Rows:            rows,
		Columns:         columns,
		RowCount:        len(rows),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		QueryID:         queryID,
		WarehouseUsed:   used,
	}
	c.log.Info("query executed",
		"rows", result.RowCount,
		"execution_time_ms", result.ExecutionTimeMS,
	)
	return result
}

// applyLimit injects a result-size cap into SELECT statements that do not
// already carry one. A trailing statement terminator is stripped before the
// clause is appended.
func (c *Client) applyLimit(queryText string, limit int) string {
	if limit <= 0 {
		return queryText
	}
	if !query.IsSelect(queryText) {
		c.log.Warn("limit requested for non-SELECT statement, ignoring", "limit", limit)
		return queryText
	}
	if query.ContainsLimit(queryText) {
		return queryText
	}
	return fmt.Sprintf("%s LIMIT %d", strings.TrimRight(queryText, ";"), limit)
}

// collectRows materializes a result set into name-keyed rows. Every row
// carries an entry for every column, keyed exactly by the driver's column
// names.
func collectRows(rs *sql.Rows) ([]string, []Row, error) {
	columns, err := rs.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	rows := make([]Row, 0)
	for rs.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rs.Scan(pointers...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}

// convertValue normalizes driver values into JSON-friendly types.
func convertValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}

func truncateSQL(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package mcp

import (
	"context"
	"fmt"

	"github.com/datapilot/datapilot/pkg/snowflake"
	"github.com/datapilot/datapilot/server/mcp/metrics"
)

// ExecuteSQLInput is the execute_sql tool request.
type ExecuteSQLInput struct {
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
}

func (s *Server) registerQueryTools() error {
	return addTool(s, "execute_sql",
		"Execute a SQL statement against Snowflake. SELECT statements without "+
			"a LIMIT clause are capped at the requested limit. Statement failures "+
			"are reported in the result, not as tool errors.",
		s.handleExecuteSQL)
}

func (s *Server) handleExecuteSQL(ctx context.Context, in ExecuteSQLInput) (snowflake.QueryResult, error) {
	if in.Query == "" {
		return snowflake.QueryResult{}, fmt.Errorf("query is required")
	}

	res := s.cfg.Querier.ExecuteQuery(ctx, in.Query, in.Limit, in.Warehouse)
	if res.Success {
		metrics.QueriesTotal.WithLabelValues("success").Inc()
	} else {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
	}
	return *res, nil
}

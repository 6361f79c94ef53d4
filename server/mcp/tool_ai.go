package mcp

import (
	"context"
	"fmt"

	"github.com/datapilot/datapilot/pkg/ai"
)

// schemaContextTables caps how many tables are described as context for
// SQL generation.
const schemaContextTables = 10

// defaultAnalysisLimit caps how many rows an analysis query fetches when the
// caller does not ask for a specific limit.
const defaultAnalysisLimit = 100

type NaturalLanguageToSQLInput struct {
	Question string `json:"question"`
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty"`
}

type NaturalLanguageToSQLOutput struct {
	SQL string `json:"sql"`
}

type AnalyzeQueryResultsInput struct {
	Query        string `json:"query"`
	ResultsLimit int    `json:"results_limit,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty"`
}

type AnalyzeQueryResultsOutput struct {
	Analysis string `json:"analysis"`
	RowCount int    `json:"row_count"`
}

type SuggestOptimizationsInput struct {
	Query string `json:"query"`
}

type SuggestOptimizationsOutput struct {
	Suggestions string `json:"suggestions"`
}

type ExplainQueryInput struct {
	Query string `json:"query"`
}

type ExplainQueryOutput struct {
	Explanation string `json:"explanation"`
}

type GenerateTableInsightsInput struct {
	Table string `json:"table"`
}

type GenerateTableInsightsOutput struct {
	Insights string `json:"insights"`
}

func (s *Server) registerAITools() error {
	if err := addTool(s, "natural_language_to_sql",
		"Convert a natural language question into a Snowflake SQL query, using "+
			"the tables in the given database and schema as context.",
		s.handleNaturalLanguageToSQL); err != nil {
		return err
	}

	if err := addTool(s, "analyze_query_results",
		"Execute a query and analyze its results. results_limit caps the rows "+
			"fetched; analysis_type steers the angle, for example summary, trends "+
			"or anomalies.",
		s.handleAnalyzeQueryResults); err != nil {
		return err
	}

	if err := addTool(s, "suggest_query_optimizations",
		"Suggest performance optimizations for a Snowflake SQL query.",
		func(ctx context.Context, in SuggestOptimizationsInput) (SuggestOptimizationsOutput, error) {
			if in.Query == "" {
				return SuggestOptimizationsOutput{}, fmt.Errorf("query is required")
			}
			out, err := s.cfg.Assistant.SuggestOptimizations(ctx, in.Query)
			if err != nil {
				return SuggestOptimizationsOutput{}, err
			}
			return SuggestOptimizationsOutput{Suggestions: out}, nil
		}); err != nil {
		return err
	}

	if err := addTool(s, "explain_query",
		"Explain what a SQL query does in plain language.",
		func(ctx context.Context, in ExplainQueryInput) (ExplainQueryOutput, error) {
			if in.Query == "" {
				return ExplainQueryOutput{}, fmt.Errorf("query is required")
			}
			out, err := s.cfg.Assistant.ExplainQuery(ctx, in.Query)
			if err != nil {
				return ExplainQueryOutput{}, err
			}
			return ExplainQueryOutput{Explanation: out}, nil
		}); err != nil {
		return err
	}

	return addTool(s, "generate_table_insights",
		"Describe what a table likely contains and which analyses it supports, "+
			"from its structure and a data sample.",
		s.handleGenerateTableInsights)
}

func (s *Server) handleNaturalLanguageToSQL(ctx context.Context, in NaturalLanguageToSQLInput) (NaturalLanguageToSQLOutput, error) {
	if in.Question == "" {
		return NaturalLanguageToSQLOutput{}, fmt.Errorf("question is required")
	}

	schemas, err := s.schemaContext(ctx, in.Database, in.Schema)
	if err != nil {
		return NaturalLanguageToSQLOutput{}, err
	}

	sql, err := s.cfg.Assistant.NaturalLanguageToSQL(ctx, in.Question, schemas)
	if err != nil {
		return NaturalLanguageToSQLOutput{}, err
	}
	return NaturalLanguageToSQLOutput{SQL: sql}, nil
}

func (s *Server) handleAnalyzeQueryResults(ctx context.Context, in AnalyzeQueryResultsInput) (AnalyzeQueryResultsOutput, error) {
	if in.Query == "" {
		return AnalyzeQueryResultsOutput{}, fmt.Errorf("query is required")
	}

	limit := in.ResultsLimit
	if limit <= 0 {
		limit = defaultAnalysisLimit
	}
	res := s.cfg.Querier.ExecuteQuery(ctx, in.Query, limit, "")
	if !res.Success {
		return AnalyzeQueryResultsOutput{}, fmt.Errorf("query failed: %s", res.Error)
	}

	analysis, err := s.cfg.Assistant.AnalyzeQueryResults(ctx, in.Query, res.Rows, in.AnalysisType)
	if err != nil {
		return AnalyzeQueryResultsOutput{}, err
	}
	return AnalyzeQueryResultsOutput{Analysis: analysis, RowCount: res.RowCount}, nil
}

func (s *Server) handleGenerateTableInsights(ctx context.Context, in GenerateTableInsightsInput) (GenerateTableInsightsOutput, error) {
	if in.Table == "" {
		return GenerateTableInsightsOutput{}, fmt.Errorf("table is required")
	}

	columns, err := s.cfg.Querier.DescribeTable(ctx, in.Table, "", "")
	if err != nil {
		return GenerateTableInsightsOutput{}, err
	}

	sample, err := s.cfg.Querier.GetTableSample(ctx, in.Table, 10)
	if err != nil {
		return GenerateTableInsightsOutput{}, err
	}
	if !sample.Success {
		return GenerateTableInsightsOutput{}, fmt.Errorf("sample query failed: %s", sample.Error)
	}

	insights, err := s.cfg.Assistant.GenerateTableInsights(ctx, in.Table, columns, sample.Rows)
	if err != nil {
		return GenerateTableInsightsOutput{}, err
	}
	return GenerateTableInsightsOutput{Insights: insights}, nil
}

// schemaContext describes the first tables in scope as context for SQL
// generation.
func (s *Server) schemaContext(ctx context.Context, database, schema string) ([]ai.TableSchema, error) {
	tables, err := s.cfg.Querier.ListTables(ctx, database, schema)
	if err != nil {
		return nil, err
	}
	if len(tables) > schemaContextTables {
		tables = tables[:schemaContextTables]
	}

	schemas := make([]ai.TableSchema, 0, len(tables))
	for _, table := range tables {
		columns, err := s.cfg.Querier.DescribeTable(ctx, table.Name, table.Database, table.Schema)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, ai.TableSchema{Name: table.Name, Columns: columns})
	}
	return schemas, nil
}

// Package ai provides the SQL assistant: natural-language-to-SQL
// generation, result analysis and query advice backed by the Anthropic API.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/datapilot/datapilot/pkg/snowflake"
)

// DefaultModel is used when no model is configured.
const DefaultModel = anthropic.ModelClaudeSonnet4_5_20250929

// Sampling parameters per task. Generation runs cold, open-ended analysis
// a little warmer.
const (
	sqlTemperature      = 0.1
	analysisTemperature = 0.3
	optimizeTemperature = 0.2
	explainTemperature  = 0.3
	insightsTemperature = 0.4

	sqlMaxTokens      = 500
	analysisMaxTokens = 1000
	optimizeMaxTokens = 800
	explainMaxTokens  = 600
	insightsMaxTokens = 1000
)

// analysisSampleRows caps how many result rows are sent for analysis.
const analysisSampleRows = 10

// TableSchema is the schema context handed to the SQL generator.
type TableSchema struct {
	Name    string
	Columns []snowflake.ColumnInfo
}

// Assistant answers SQL questions over the Anthropic messages API.
type Assistant struct {
	client anthropic.Client
	model  anthropic.Model
	log    *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

// WithModel overrides the default model.
func WithModel(model string) AssistantOption {
	return func(a *Assistant) {
		if model != "" {
			a.model = anthropic.Model(model)
		}
	}
}

// WithLogger sets the assistant logger.
func WithLogger(log *slog.Logger) AssistantOption {
	return func(a *Assistant) { a.log = log }
}

// NewAssistant creates an assistant. The API key is required; a missing key
// is a configuration error, not something to discover on the first request.
func NewAssistant(apiKey string, opts ...AssistantOption) (*Assistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	a := &Assistant{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  DefaultModel,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// NaturalLanguageToSQL converts a question into a Snowflake SQL statement
// using the provided table schemas as context. Markdown code fences are
// stripped from the generated SQL.
func (a *Assistant) NaturalLanguageToSQL(ctx context.Context, question string, schemas []TableSchema) (string, error) {
	prompt := fmt.Sprintf("Convert this natural language question to a Snowflake SQL query.\n\nQuestion: %s\n\n%s\nReturn only the SQL query, no explanation.",
		question, buildSchemaContext(schemas))

	out, err := a.complete(ctx, sqlSystemPrompt, prompt, sqlTemperature, sqlMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	sql := stripSQLFences(out)
	a.log.Info("generated sql from natural language", "question", question, "sql", sql)
	return sql, nil
}

// AnalyzeQueryResults summarizes a result set. analysisType steers the
// angle, for example "summary", "trends" or "anomalies"; empty means a
// general summary. Only a sample of the rows is sent.
func (a *Assistant) AnalyzeQueryResults(ctx context.Context, query string, rows []snowflake.Row, analysisType string) (string, error) {
	if analysisType == "" {
		analysisType = "summary"
	}
	sample := rows
	if len(sample) > analysisSampleRows {
		sample = sample[:analysisSampleRows]
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("marshal result sample: %w", err)
	}

	prompt := fmt.Sprintf("Analyze these query results (%s analysis).\n\nQuery:\n%s\n\nResults (%d of %d rows):\n%s",
		analysisType, query, len(sample), len(rows), data)

	out, err := a.complete(ctx, analysisSystemPrompt, prompt, analysisTemperature, analysisMaxTokens)
	if err != nil {
		return "", fmt.Errorf("analyze results: %w", err)
	}
	return out, nil
}

// SuggestOptimizations proposes performance improvements for a query.
func (a *Assistant) SuggestOptimizations(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf("Suggest optimizations for this Snowflake SQL query:\n\n%s", query)

	out, err := a.complete(ctx, optimizeSystemPrompt, prompt, optimizeTemperature, optimizeMaxTokens)
	if err != nil {
		return "", fmt.Errorf("suggest optimizations: %w", err)
	}
	return out, nil
}

// ExplainQuery explains what a SQL statement does in plain language.
func (a *Assistant) ExplainQuery(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf("Explain what this SQL query does in simple terms:\n\n%s", query)

	out, err := a.complete(ctx, explainSystemPrompt, prompt, explainTemperature, explainMaxTokens)
	if err != nil {
		return "", fmt.Errorf("explain query: %w", err)
	}
	return out, nil
}

// GenerateTableInsights describes a table from its column definitions and a
// data sample: what it likely holds and which analyses it supports.
func (a *Assistant) GenerateTableInsights(ctx context.Context, table string, columns []snowflake.ColumnInfo, sample []snowflake.Row) (string, error) {
	cols := make([]string, 0, len(columns))
	for _, col := range columns {
		cols = append(cols, fmt.Sprintf("%s (%s)", col.Name, col.Type))
	}
	if len(sample) > analysisSampleRows {
		sample = sample[:analysisSampleRows]
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("marshal table sample: %w", err)
	}

	prompt := fmt.Sprintf("Generate insights about table %s.\n\nColumns: %s\n\nSample data:\n%s",
		table, strings.Join(cols, ", "), data)

	out, err := a.complete(ctx, insightsSystemPrompt, prompt, insightsTemperature, insightsMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate table insights: %w", err)
	}
	return out, nil
}

func (a *Assistant) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Opt(temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, blk := range resp.Content {
		if text := blk.AsText(); text.Text != "" {
			out.WriteString(text.Text)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// stripSQLFences removes a surrounding markdown code fence from generated
// SQL.
func stripSQLFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// buildSchemaContext renders table schemas into prompt context lines.
func buildSchemaContext(schemas []TableSchema) string {
	if len(schemas) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Available tables:\n")
	for _, schema := range schemas {
		cols := make([]string, 0, len(schema.Columns))
		for _, col := range schema.Columns {
			cols = append(cols, fmt.Sprintf("%s (%s)", col.Name, col.Type))
		}
		fmt.Fprintf(&b, "Table %s: %s\n", schema.Name, strings.Join(cols, ", "))
	}
	return b.String()
}

package ai

import (
	"fmt"
	"strings"
)

// System prompts per task.
const (
	sqlSystemPrompt = "You are an expert Snowflake SQL developer. Generate correct, " +
		"efficient SQL for the Snowflake dialect. Use only the tables and columns " +
		"provided in the schema context."

	analysisSystemPrompt = "You are a data analyst. Analyze query results and report " +
		"concrete findings: key figures, trends, outliers and data quality issues."

	optimizeSystemPrompt = "You are a Snowflake performance expert. Review queries for " +
		"clustering, pruning, join order and warehouse sizing issues and suggest " +
		"specific rewrites."

	explainSystemPrompt = "You are a SQL instructor. Explain queries step by step in " +
		"plain language for readers who know basic SQL."

	insightsSystemPrompt = "You are a data analyst. Given a table's structure and a data " +
		"sample, describe what the table likely contains and which analyses it supports."
)

// SQLAnalysisPrompt builds the reusable prompt for analyzing a SQL query,
// optionally with additional business context.
func SQLAnalysisPrompt(query, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this SQL query and explain its purpose, performance characteristics and potential issues:\n\n%s\n", query)
	if context != "" {
		fmt.Fprintf(&b, "\nAdditional context: %s\n", context)
	}
	return b.String()
}

// DataExplorationPrompt builds the reusable prompt for exploring a table,
// optionally with business context.
func DataExplorationPrompt(table, businessContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explore table %s: assess its data quality, the business insights it holds, "+
		"likely use cases, and suggest starter queries for further analysis.\n", table)
	if businessContext != "" {
		fmt.Fprintf(&b, "\nBusiness context: %s\n", businessContext)
	}
	return b.String()
}

// SQLOptimizationPrompt builds the reusable prompt for optimizing a query,
// optionally with observed performance context.
func SQLOptimizationPrompt(query, performanceContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review this Snowflake SQL query for performance problems and "+
		"suggest an optimized version with an explanation of each change:\n\n%s\n", query)
	if performanceContext != "" {
		fmt.Fprintf(&b, "\nPerformance context: %s\n", performanceContext)
	}
	return b.String()
}

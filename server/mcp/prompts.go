package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datapilot/datapilot/pkg/ai"
)

// registerPrompts exposes the reusable prompt templates.
func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcpsdk.Prompt{
		Name:        "sql_analysis_prompt",
		Description: "Analyze a SQL query for purpose, performance and potential issues",
		Arguments: []*mcpsdk.PromptArgument{
			{Name: "query", Description: "The SQL query to analyze", Required: true},
			{Name: "context", Description: "Additional business context"},
		},
	}, func(_ context.Context, req *mcpsdk.GetPromptRequest) (*mcpsdk.GetPromptResult, error) {
		args := req.Params.Arguments
		return userPrompt(ai.SQLAnalysisPrompt(args["query"], args["context"])), nil
	})

	s.mcp.AddPrompt(&mcpsdk.Prompt{
		Name:        "data_exploration_prompt",
		Description: "Explore a data table and find starting points for analysis",
		Arguments: []*mcpsdk.PromptArgument{
			{Name: "table_name", Description: "Table to explore", Required: true},
			{Name: "business_context", Description: "Business context for the exploration"},
		},
	}, func(_ context.Context, req *mcpsdk.GetPromptRequest) (*mcpsdk.GetPromptResult, error) {
		args := req.Params.Arguments
		return userPrompt(ai.DataExplorationPrompt(args["table_name"], args["business_context"])), nil
	})

	s.mcp.AddPrompt(&mcpsdk.Prompt{
		Name:        "sql_optimization_prompt",
		Description: "Review a SQL query for performance problems and suggest a rewrite",
		Arguments: []*mcpsdk.PromptArgument{
			{Name: "query", Description: "The SQL query to optimize", Required: true},
			{Name: "performance_context", Description: "Observed performance, for example runtimes or queue times"},
		},
	}, func(_ context.Context, req *mcpsdk.GetPromptRequest) (*mcpsdk.GetPromptResult, error) {
		args := req.Params.Arguments
		return userPrompt(ai.SQLOptimizationPrompt(args["query"], args["performance_context"])), nil
	})
}

func userPrompt(text string) *mcpsdk.GetPromptResult {
	return &mcpsdk.GetPromptResult{
		Messages: []*mcpsdk.PromptMessage{
			{
				Role:    "user",
				Content: &mcpsdk.TextContent{Text: text},
			},
		},
	}
}

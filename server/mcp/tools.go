package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datapilot/datapilot/server/mcp/metrics"
)

// addTool registers a typed tool with schema generation and per-call
// metrics around the handler.
func addTool[In, Out any](s *Server, name, description string, handle func(ctx context.Context, in In) (Out, error)) error {
	req, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("failed to create %s input schema: %w", name, err)
	}
	res, err := jsonschema.For[Out](nil)
	if err != nil {
		return fmt.Errorf("failed to create %s output schema: %w", name, err)
	}

	mcpsdk.AddTool(s.mcp, &mcpsdk.Tool{
		Name:         name,
		Description:  description,
		InputSchema:  req,
		OutputSchema: res,
	}, func(ctx context.Context, _ *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, Out, error) {
		callID := uuid.NewString()
		s.log.Debug("mcp/tool: call started", "tool", name, "call_id", callID)

		startTime := time.Now()
		out, err := handle(ctx, in)
		duration := time.Since(startTime).Seconds()

		if err != nil {
			s.log.Warn("mcp/tool: call failed", "tool", name, "call_id", callID, "error", err)
			metrics.ToolCallsTotal.WithLabelValues(name, "error").Inc()
			metrics.ToolCallDuration.WithLabelValues(name).Observe(duration)
			var zero Out
			return nil, zero, err
		}

		metrics.ToolCallsTotal.WithLabelValues(name, "success").Inc()
		metrics.ToolCallDuration.WithLabelValues(name).Observe(duration)
		return nil, out, nil
	})
	return nil
}

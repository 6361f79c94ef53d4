// Example: Using the REST API
//
// This example demonstrates how to drive the server via its REST API.
// This is useful for languages that don't have an MCP client.
//
// Start the server:
//
//	go run ./cmd/server
//
// Then run this example:
//
//	go run ./example/restapi
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

var (
	baseURL = getBaseURL()
	apiKey  = os.Getenv("API_KEY")
)

func getBaseURL() string {
	host := os.Getenv("DATAPILOT_HOST")
	if host == "" {
		host = "localhost:8000"
	}
	return fmt.Sprintf("http://%s", host)
}

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

// QueryResult mirrors the server's query result shape.
type QueryResult struct {
	Success         bool             `json:"success"`
	Rows            []map[string]any `json:"data"`
	Columns         []string         `json:"columns"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMS int64            `json:"execution_time_ms"`
	WarehouseUsed   string           `json:"warehouse_used,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func main() {
	fmt.Println("=== REST API Example ===")

	// Example 1: Check the server is up.
	fmt.Println("\n1. Checking health...")
	var health map[string]string
	if err := get("/health", &health); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("   Status: %s\n", health["status"])

	// Example 2: Execute SQL with a row limit.
	fmt.Println("\n2. Executing SQL with limit 5...")
	var result QueryResult
	err := post("/sql/execute", SQLQueryRequest{
		Query: "SELECT * FROM SNOWFLAKE_SAMPLE_DATA.TPCH_SF1.NATION",
		Limit: 5,
	}, &result)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	printResult(&result)

	// Example 3: List databases and warehouses.
	fmt.Println("\n3. Listing resources...")
	var databases struct {
		Databases []string `json:"databases"`
	}
	if err := get("/databases", &databases); err != nil {
		log.Fatalf("Failed to list databases: %v", err)
	}
	for _, db := range databases.Databases {
		fmt.Printf("   - %s\n", db)
	}

	var warehouses struct {
		Warehouses []map[string]any `json:"warehouses"`
	}
	if err := get("/warehouses", &warehouses); err != nil {
		log.Fatalf("Failed to list warehouses: %v", err)
	}
	for _, wh := range warehouses.Warehouses {
		fmt.Printf("   - %v (size: %v, state: %v)\n", wh["name"], wh["size"], wh["state"])
	}

	// Example 4: Ask a question in natural language.
	fmt.Println("\n4. Natural language to SQL...")
	var nlResp struct {
		Question string       `json:"question"`
		SQL      string       `json:"sql"`
		Result   *QueryResult `json:"result,omitempty"`
	}
	err = post("/sql/natural", NaturalLanguageRequest{
		Question: "How many nations are in each region?",
		Database: "SNOWFLAKE_SAMPLE_DATA",
		Schema:   "TPCH_SF1",
		Execute:  true,
	}, &nlResp)
	if err != nil {
		log.Fatalf("Natural language query failed: %v", err)
	}
	fmt.Printf("   Generated SQL: %s\n", nlResp.SQL)
	if nlResp.Result != nil {
		printResult(nlResp.Result)
	}

	fmt.Println("\n=== Example completed successfully! ===")
}

func get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return err
	}
	return do(req, out)
}

func post(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, out)
}

func do(req *http.Request, out any) error {
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}
	return nil
}

func printResult(result *QueryResult) {
	if !result.Success {
		fmt.Printf("   Query failed: %s\n", result.Error)
		return
	}
	fmt.Printf("   Columns: %v (%d rows in %dms, warehouse: %s)\n",
		result.Columns, result.RowCount, result.ExecutionTimeMS, result.WarehouseUsed)
	for i, row := range result.Rows {
		fmt.Printf("   Row %d: %v\n", i+1, row)
	}
}

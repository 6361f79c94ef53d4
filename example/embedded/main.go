// Example: Using the warehouse client as an embedded library
//
// This example demonstrates how to use the warehouse client directly in
// your application without starting an HTTP server. It swaps the
// Snowflake driver for an in-memory DuckDB database via the opener hook,
// which is the same technique the package tests use.
//
// Run this example:
//
//	go run ./example/embedded
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/datapilot/datapilot/pkg/snowflake"
)

func main() {
	fmt.Println("=== Embedded Warehouse Client Example ===")

	client, err := snowflake.NewClient(snowflake.Config{
		Account:   "local",
		User:      "local",
		Password:  "local",
		Warehouse: "COMPUTE_WH",
	}, snowflake.WithOpenFunc(func(snowflake.Config) (*sql.DB, error) {
		return sql.Open("duckdb", "")
	}))
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Create a table and load a few rows.
	fmt.Println("\n1. Creating table 'employees'...")
	result := client.ExecuteQuery(ctx, `
		CREATE TABLE employees (
			id INTEGER,
			name VARCHAR,
			department VARCHAR,
			salary DECIMAL(10,2)
		)
	`, 0, "")
	if !result.Success {
		log.Fatalf("Failed to create table: %s", result.Error)
	}

	fmt.Println("\n2. Inserting test data...")
	result = client.ExecuteQuery(ctx, `
		INSERT INTO employees VALUES
		(1, 'Alice Johnson', 'Engineering', 95000.00),
		(2, 'Bob Smith', 'Engineering', 85000.00),
		(3, 'Charlie Brown', 'Sales', 75000.00),
		(4, 'Diana Ross', 'Marketing', 80000.00),
		(5, 'Eve Wilson', 'Engineering', 105000.00)
	`, 0, "")
	if !result.Success {
		log.Fatalf("Failed to insert data: %s", result.Error)
	}

	// Queries pick up an automatic row limit.
	fmt.Println("\n3. Querying with a safety limit of 3...")
	result = client.ExecuteQuery(ctx, "SELECT name, salary FROM employees ORDER BY salary DESC", 3, "")
	if !result.Success {
		log.Fatalf("Query failed: %s", result.Error)
	}
	printResult(result)

	// Metadata helpers work against whatever backend is connected.
	fmt.Println("\n4. Listing tables...")
	tables, err := client.ListTables(ctx, "", "")
	if err != nil {
		log.Fatalf("Failed to list tables: %v", err)
	}
	for _, table := range tables {
		fmt.Printf("   - %s\n", table.Name)
	}

	fmt.Println("\n5. Describing 'employees'...")
	columns, err := client.DescribeTable(ctx, "employees", "", "")
	if err != nil {
		log.Fatalf("Failed to describe table: %v", err)
	}
	for _, col := range columns {
		fmt.Printf("   - %-12s %s\n", col.Name, col.Type)
	}

	// A failing statement folds into the result instead of an error.
	fmt.Println("\n6. Executing a bad statement...")
	result = client.ExecuteQuery(ctx, "SELECT * FROM no_such_table", 0, "")
	fmt.Printf("   success=%v error=%q\n", result.Success, result.Error)

	fmt.Println("\n=== Example completed successfully! ===")
}

func printResult(result *snowflake.QueryResult) {
	fmt.Printf("   Columns: %v (%d rows in %dms)\n", result.Columns, result.RowCount, result.ExecutionTimeMS)
	for i, row := range result.Rows {
		fmt.Printf("   Row %d: %v\n", i+1, row)
	}
}

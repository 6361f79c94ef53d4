package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

func testConfig() Config {
	return Config{
		Account:   "test-account",
		User:      "test-user",
		Password:  "test-password",
		Warehouse: "COMPUTE_WH",
		Database:  "TEST_DB",
		Schema:    "PUBLIC",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient returns a client backed by an in-memory DuckDB database and
// a counter of how many times the opener ran.
func newTestClient(t *testing.T) (*Client, *atomic.Int64) {
	t.Helper()

	var opens atomic.Int64
	client, err := NewClient(testConfig(),
		WithLogger(testLogger()),
		WithOpenFunc(func(Config) (*sql.DB, error) {
			opens.Add(1)
			return sql.Open("duckdb", "")
		}),
	)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Disconnect(); err != nil {
			t.Errorf("Disconnect() error: %v", err)
		}
	})
	return client, &opens
}

func TestNewClient_ValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing account", Config{User: "u", Password: "p"}},
		{"missing user", Config{Account: "a", Password: "p"}},
		{"missing password", Config{Account: "a", User: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.cfg); err == nil {
				t.Errorf("NewClient(%+v) expected error", tt.cfg)
			}
		})
	}
}

func TestClient_ConnectsOnce(t *testing.T) {
	client, opens := newTestClient(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := client.ExecuteQuery(ctx, "SELECT 1", 0, "")
			if !res.Success {
				t.Errorf("ExecuteQuery failed: %s", res.Error)
			}
		}()
	}
	wg.Wait()

	if got := opens.Load(); got != 1 {
		t.Errorf("opener ran %d times, want 1", got)
	}
}

func TestClient_DisconnectIdempotent(t *testing.T) {
	client, _ := newTestClient(t)

	// Disconnect before any connection exists.
	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect() before connect error: %v", err)
	}

	res := client.ExecuteQuery(context.Background(), "SELECT 1", 0, "")
	if !res.Success {
		t.Fatalf("ExecuteQuery failed: %s", res.Error)
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if err := client.Disconnect(); err != nil {
		t.Fatalf("second Disconnect() error: %v", err)
	}
}

func TestClient_ReconnectsAfterDisconnect(t *testing.T) {
	client, opens := newTestClient(t)
	ctx := context.Background()

	if res := client.ExecuteQuery(ctx, "SELECT 1", 0, ""); !res.Success {
		t.Fatalf("ExecuteQuery failed: %s", res.Error)
	}
	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if res := client.ExecuteQuery(ctx, "SELECT 1", 0, ""); !res.Success {
		t.Fatalf("ExecuteQuery after reconnect failed: %s", res.Error)
	}

	if got := opens.Load(); got != 2 {
		t.Errorf("opener ran %d times, want 2", got)
	}
}

func TestClient_ConnectFailureRetriesFromScratch(t *testing.T) {
	var attempts atomic.Int64
	client, err := NewClient(testConfig(),
		WithLogger(testLogger()),
		WithOpenFunc(func(Config) (*sql.DB, error) {
			if attempts.Add(1) == 1 {
				return nil, fmt.Errorf("network unreachable")
			}
			return sql.Open("duckdb", "")
		}),
	)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	defer func() {
		_ = client.Disconnect()
	}()

	ctx := context.Background()
	if res := client.ExecuteQuery(ctx, "SELECT 1", 0, ""); res.Success {
		t.Fatal("ExecuteQuery succeeded with failing opener")
	}
	if res := client.ExecuteQuery(ctx, "SELECT 1", 0, ""); !res.Success {
		t.Fatalf("ExecuteQuery after opener recovery failed: %s", res.Error)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("opener ran %d times, want 2", got)
	}
}

func TestClient_UseWarehouseRejectsInvalidIdentifier(t *testing.T) {
	client, opens := newTestClient(t)

	err := client.UseWarehouse(context.Background(), "WH; DROP TABLE users")
	if err == nil {
		t.Fatal("UseWarehouse accepted an unsafe identifier")
	}
	// Validation happens before any connection is needed.
	if got := opens.Load(); got != 0 {
		t.Errorf("opener ran %d times, want 0", got)
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datapilot/datapilot/pkg/ai"
	"github.com/datapilot/datapilot/pkg/snowflake"
)

type stubQuerier struct {
	result     *snowflake.QueryResult
	databases  []string
	schemas    []string
	tables     []snowflake.TableInfo
	columns    []snowflake.ColumnInfo
	warehouses []snowflake.Row
	status     snowflake.WarehouseStatus
	err        error
}

func (q *stubQuerier) ExecuteQuery(context.Context, string, int, string) *snowflake.QueryResult {
	return q.result
}

func (q *stubQuerier) ListDatabases(context.Context) []string { return q.databases }

func (q *stubQuerier) ListSchemas(context.Context, string) ([]string, error) {
	return q.schemas, q.err
}

func (q *stubQuerier) ListTables(context.Context, string, string) ([]snowflake.TableInfo, error) {
	return q.tables, q.err
}

func (q *stubQuerier) DescribeTable(context.Context, string, string, string) ([]snowflake.ColumnInfo, error) {
	return q.columns, q.err
}

func (q *stubQuerier) GetTableSample(context.Context, string, int) (*snowflake.QueryResult, error) {
	return q.result, q.err
}

func (q *stubQuerier) ListWarehouses(context.Context) []snowflake.Row { return q.warehouses }

func (q *stubQuerier) GetWarehouseStatus(context.Context) snowflake.WarehouseStatus {
	return q.status
}

type stubAssistant struct {
	sql string
	err error
}

func (a *stubAssistant) NaturalLanguageToSQL(context.Context, string, []ai.TableSchema) (string, error) {
	return a.sql, a.err
}

func newTestHandler(querier *stubQuerier, assistant *stubAssistant) *Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(querier, assistant, log, "test", "COMPUTE_WH")
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	router := newTestHandler(&stubQuerier{}, &stubAssistant{}).Router("")

	rr := doRequest(t, router, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decode[map[string]string](t, rr)
	if resp["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", resp["status"])
	}
}

func TestInfo(t *testing.T) {
	router := newTestHandler(&stubQuerier{}, &stubAssistant{}).Router("")

	rr := doRequest(t, router, http.MethodGet, "/info", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decode[map[string]string](t, rr)
	if resp["name"] != "datapilot" || resp["version"] != "test" || resp["warehouse"] != "COMPUTE_WH" {
		t.Errorf("unexpected info response: %v", resp)
	}
}

func TestExecuteSQL(t *testing.T) {
	querier := &stubQuerier{result: &snowflake.QueryResult{
		Success:  true,
		Rows:     []snowflake.Row{{"id": float64(1)}},
		Columns:  []string{"id"},
		RowCount: 1,
	}}
	router := newTestHandler(querier, &stubAssistant{}).Router("")

	rr := doRequest(t, router, http.MethodPost, "/sql/execute", map[string]any{"query": "SELECT 1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decode[snowflake.QueryResult](t, rr)
	if !resp.Success || resp.RowCount != 1 {
		t.Errorf("unexpected result: %+v", resp)
	}
}

func TestExecuteSQL_BadRequests(t *testing.T) {
	router := newTestHandler(&stubQuerier{}, &stubAssistant{}).Router("")

	rr := doRequest(t, router, http.MethodPost, "/sql/execute", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing query: status = %d, want 400", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/sql/execute", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid json: status = %d, want 400", rec.Code)
	}
}

func TestExecuteSQL_StatementFailureIsHTTP200(t *testing.T) {
	querier := &stubQuerier{result: &snowflake.QueryResult{
		Success: false,
		Rows:    []snowflake.Row{},
		Columns: []string{},
		Error:   "syntax error",
	}}
	router := newTestHandler(querier, &stubAssistant{}).Router("")

	rr := doRequest(t, router, http.MethodPost, "/sql/execute", map[string]any{"query": "SELEKT 1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decode[snowflake.QueryResult](t, rr)
	if resp.Success || resp.Error != "syntax error" {
		t.Errorf("unexpected result: %+v", resp)
	}
}

func TestNaturalLanguageSQL(t *testing.T) {
	querier := &stubQuerier{
		tables:  []snowflake.TableInfo{{Name: "USERS"}},
		columns: []snowflake.ColumnInfo{{Name: "ID", Type: "NUMBER(38,0)"}},
		result:  &snowflake.QueryResult{Success: true, RowCount: 1},
	}
	assistant := &stubAssistant{sql: "SELECT COUNT(*) FROM USERS"}
	router := newTestHandler(querier, assistant).Router("")

	rr := doRequest(t, router, http.MethodPost, "/sql/natural", map[string]any{
		"question": "how many users?",
		"execute":  true,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decode[map[string]any](t, rr)
	if resp["sql"] != "SELECT COUNT(*) FROM USERS" {
		t.Errorf("sql = %v", resp["sql"])
	}
	if resp["result"] == nil {
		t.Error("result missing despite execute=true")
	}

	rr = doRequest(t, router, http.MethodPost, "/sql/natural", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing question: status = %d, want 400", rr.Code)
	}
}

func TestNaturalLanguageSQL_AssistantFailure(t *testing.T) {
	assistant := &stubAssistant{err: fmt.Errorf("model overloaded")}
	router := newTestHandler(&stubQuerier{}, assistant).Router("")

	rr := doRequest(t, router, http.MethodPost, "/sql/natural", map[string]any{"question": "hi"})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}

func TestMetadataEndpoints(t *testing.T) {
	querier := &stubQuerier{
		databases:  []string{"ANALYTICS", "RAW"},
		schemas:    []string{"PUBLIC"},
		tables:     []snowflake.TableInfo{{Name: "USERS"}},
		columns:    []snowflake.ColumnInfo{{Name: "ID", Type: "NUMBER(38,0)"}},
		warehouses: []snowflake.Row{{"name": "COMPUTE_WH"}},
		status:     snowflake.WarehouseStatus{CurrentWarehouse: "COMPUTE_WH"},
		result:     &snowflake.QueryResult{Success: true, RowCount: 2},
	}
	router := newTestHandler(querier, &stubAssistant{}).Router("")

	tests := []struct {
		path    string
		field   string
		wantLen int
	}{
		{"/databases", "databases", 2},
		{"/databases/ANALYTICS/schemas", "schemas", 1},
		{"/tables", "tables", 1},
		{"/tables/USERS/columns", "columns", 1},
		{"/warehouses", "warehouses", 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodGet, tt.path, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			resp := decode[map[string]any](t, rr)
			list, ok := resp[tt.field].([]any)
			if !ok {
				t.Fatalf("field %q missing in %v", tt.field, resp)
			}
			if len(list) != tt.wantLen {
				t.Errorf("len(%s) = %d, want %d", tt.field, len(list), tt.wantLen)
			}
		})
	}

	rr := doRequest(t, router, http.MethodGet, "/warehouses/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	status := decode[snowflake.WarehouseStatus](t, rr)
	if status.CurrentWarehouse != "COMPUTE_WH" {
		t.Errorf("CurrentWarehouse = %q", status.CurrentWarehouse)
	}
}

func TestGetTableSample_InvalidLimit(t *testing.T) {
	router := newTestHandler(&stubQuerier{result: &snowflake.QueryResult{Success: true}}, &stubAssistant{}).Router("")

	rr := doRequest(t, router, http.MethodGet, "/tables/USERS/sample?limit=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	router := newTestHandler(&stubQuerier{}, &stubAssistant{}).Router("secret")

	// Health stays open.
	rr := doRequest(t, router, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rr.Code)
	}

	rr = doRequest(t, router, http.MethodGet, "/databases", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/databases", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}
}

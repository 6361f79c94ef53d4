// Package handlers implements the REST wrapper over the warehouse client
// and the AI assistant.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/datapilot/datapilot/pkg/ai"
	"github.com/datapilot/datapilot/pkg/snowflake"
	"github.com/datapilot/datapilot/server/apierror"
	"github.com/datapilot/datapilot/server/types"
)

// Querier is the warehouse surface the REST handlers call.
type Querier interface {
	ExecuteQuery(ctx context.Context, query string, limit int, warehouse string) *snowflake.QueryResult
	ListDatabases(ctx context.Context) []string
	ListSchemas(ctx context.Context, database string) ([]string, error)
	ListTables(ctx context.Context, database, schema string) ([]snowflake.TableInfo, error)
	DescribeTable(ctx context.Context, table, database, schema string) ([]snowflake.ColumnInfo, error)
	GetTableSample(ctx context.Context, table string, limit int) (*snowflake.QueryResult, error)
	ListWarehouses(ctx context.Context) []snowflake.Row
	GetWarehouseStatus(ctx context.Context) snowflake.WarehouseStatus
}

// Assistant is the AI surface the REST handlers call.
type Assistant interface {
	NaturalLanguageToSQL(ctx context.Context, question string, schemas []ai.TableSchema) (string, error)
}

// Handler serves the REST API.
type Handler struct {
	querier   Querier
	assistant Assistant
	log       *slog.Logger
	version   string
	warehouse string
}

// NewHandler creates a REST handler.
func NewHandler(querier Querier, assistant Assistant, log *slog.Logger, version, warehouse string) *Handler {
	return &Handler{
		querier:   querier,
		assistant: assistant,
		log:       log,
		version:   version,
		warehouse: warehouse,
	}
}

// Router builds the chi router. A non-empty apiKey enables bearer
// authentication on everything except /health.
func (h *Handler) Router(apiKey string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(apiKeyMiddleware(apiKey))
		}

		r.Get("/info", h.Info)
		r.Post("/sql/execute", h.ExecuteSQL)
		r.Post("/sql/natural", h.NaturalLanguageSQL)
		r.Get("/databases", h.ListDatabases)
		r.Get("/databases/{database}/schemas", h.ListSchemas)
		r.Get("/tables", h.ListTables)
		r.Get("/tables/{table}/columns", h.DescribeTable)
		r.Get("/tables/{table}/sample", h.GetTableSample)
		r.Get("/warehouses", h.ListWarehouses)
		r.Get("/warehouses/status", h.GetWarehouseStatus)
	})

	return r
}

// apiKeyMiddleware enforces a bearer API key.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) != apiKey {
				writeError(w, http.StatusUnauthorized, apierror.NewAuthenticationError("invalid or missing API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy"})
}

// Info handles GET /info.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.InfoResponse{
		Name:      "datapilot",
		Version:   h.version,
		Warehouse: h.warehouse,
	})
}

// ExecuteSQL handles POST /sql/execute. The statement outcome, including
// failure, is reported in the result body with HTTP 200.
func (h *Handler) ExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req types.SQLQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apierror.NewInvalidParameterError("body", "invalid JSON"))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, apierror.NewInvalidParameterError("query", "query is required"))
		return
	}

	result := h.querier.ExecuteQuery(r.Context(), req.Query, req.Limit, req.Warehouse)
	writeJSON(w, http.StatusOK, result)
}

// NaturalLanguageSQL handles POST /sql/natural: generate SQL from a
// question and optionally execute it.
func (h *Handler) NaturalLanguageSQL(w http.ResponseWriter, r *http.Request) {
	var req types.NaturalLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apierror.NewInvalidParameterError("body", "invalid JSON"))
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, apierror.NewInvalidParameterError("question", "question is required"))
		return
	}

	ctx := r.Context()
	schemas, err := h.schemaContext(ctx, req.Database, req.Schema)
	if err != nil {
		writeError(w, http.StatusBadRequest, apierror.FromError(err))
		return
	}

	sql, err := h.assistant.NaturalLanguageToSQL(ctx, req.Question, schemas)
	if err != nil {
		h.log.Error("natural language sql generation failed", "error", err)
		writeError(w, http.StatusBadGateway, apierror.NewInternalError(err.Error()))
		return
	}

	resp := types.NaturalLanguageResponse{Question: req.Question, SQL: sql}
	if req.Execute {
		resp.Result = h.querier.ExecuteQuery(ctx, sql, 0, "")
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDatabases handles GET /databases.
func (h *Handler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.DatabasesResponse{
		Databases: h.querier.ListDatabases(r.Context()),
	})
}

// ListSchemas handles GET /databases/{database}/schemas.
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")
	schemas, err := h.querier.ListSchemas(r.Context(), database)
	if err != nil {
		writeError(w, http.StatusBadRequest, apierror.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, types.SchemasResponse{Database: database, Schemas: schemas})
}

// ListTables handles GET /tables with optional database and schema query
// parameters.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	database := r.URL.Query().Get("database")
	schema := r.URL.Query().Get("schema")

	tables, err := h.querier.ListTables(r.Context(), database, schema)
	if err != nil {
		writeError(w, http.StatusBadRequest, apierror.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, types.TablesResponse{Database: database, Schema: schema, Tables: tables})
}

// DescribeTable handles GET /tables/{table}/columns.
func (h *Handler) DescribeTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	database := r.URL.Query().Get("database")
	schema := r.URL.Query().Get("schema")

	columns, err := h.querier.DescribeTable(r.Context(), table, database, schema)
	if err != nil {
		writeError(w, http.StatusBadRequest, apierror.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, types.ColumnsResponse{Table: table, Columns: columns})
}

// GetTableSample handles GET /tables/{table}/sample.
func (h *Handler) GetTableSample(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, apierror.NewInvalidParameterError("limit", "must be an integer"))
			return
		}
		limit = n
	}

	result, err := h.querier.GetTableSample(r.Context(), table, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, apierror.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListWarehouses handles GET /warehouses.
func (h *Handler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.WarehousesResponse{
		Warehouses: h.querier.ListWarehouses(r.Context()),
	})
}

// GetWarehouseStatus handles GET /warehouses/status.
func (h *Handler) GetWarehouseStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.querier.GetWarehouseStatus(r.Context()))
}

// schemaContext describes the tables in scope as generation context.
func (h *Handler) schemaContext(ctx context.Context, database, schema string) ([]ai.TableSchema, error) {
	const maxTables = 10

	tables, err := h.querier.ListTables(ctx, database, schema)
	if err != nil {
		return nil, err
	}
	if len(tables) > maxTables {
		tables = tables[:maxTables]
	}

	schemas := make([]ai.TableSchema, 0, len(tables))
	for _, table := range tables {
		columns, err := h.querier.DescribeTable(ctx, table.Name, table.Database, table.Schema)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, ai.TableSchema{Name: table.Name, Columns: columns})
	}
	return schemas, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *apierror.SnowflakeError) {
	writeJSON(w, status, err.ToResponse())
}

package snowflake

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTableFromRow(t *testing.T) {
	rowCount := int64(1200)
	byteSize := int64(4096)

	tests := []struct {
		name string
		row  Row
		want TableInfo
	}{
		{
			name: "full row",
			row: Row{
				"name":          "USERS",
				"schema_name":   "PUBLIC",
				"database_name": "ANALYTICS",
				"kind":          "TABLE",
				"rows":          int64(1200),
				"bytes":         int64(4096),
				"comment":       "user accounts",
			},
			want: TableInfo{
				Name:     "USERS",
				Schema:   "PUBLIC",
				Database: "ANALYTICS",
				Kind:     "TABLE",
				RowCount: &rowCount,
				Bytes:    &byteSize,
				Comment:  "user accounts",
			},
		},
		{
			name: "numeric fields as strings",
			row: Row{
				"name":  "USERS",
				"rows":  "1200",
				"bytes": "4096",
			},
			want: TableInfo{
				Name:     "USERS",
				RowCount: &rowCount,
				Bytes:    &byteSize,
			},
		},
		{
			name: "missing optional fields",
			row:  Row{"name": "USERS"},
			want: TableInfo{Name: "USERS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tableFromRow(tt.row)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tableFromRow() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColumnFromRow(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want ColumnInfo
	}{
		{
			name: "nullable column",
			row: Row{
				"name":    "EMAIL",
				"type":    "VARCHAR(255)",
				"null?":   "Y",
				"default": "",
				"comment": "contact address",
			},
			want: ColumnInfo{
				Name:       "EMAIL",
				Type:       "VARCHAR(255)",
				IsNullable: true,
				Comment:    "contact address",
			},
		},
		{
			name: "not nullable with default",
			row: Row{
				"name":    "ID",
				"type":    "NUMBER(38,0)",
				"null?":   "N",
				"default": "SEQ.NEXTVAL",
			},
			want: ColumnInfo{
				Name:         "ID",
				Type:         "NUMBER(38,0)",
				DefaultValue: "SEQ.NEXTVAL",
			},
		},
		{
			name: "missing nullability counts as nullable",
			row:  Row{"name": "ID", "type": "INTEGER"},
			want: ColumnInfo{Name: "ID", Type: "INTEGER", IsNullable: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := columnFromRow(tt.row)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("columnFromRow() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIntField(t *testing.T) {
	row := Row{
		"int64":   int64(7),
		"int":     3,
		"float":   float64(9),
		"string":  "11",
		"bad":     "not a number",
		"nothing": nil,
	}

	for key, want := range map[string]int64{"int64": 7, "int": 3, "float": 9, "string": 11} {
		got := intField(row, key)
		if got == nil || *got != want {
			t.Errorf("intField(%q) = %v, want %d", key, got, want)
		}
	}
	for _, key := range []string{"bad", "nothing", "absent"} {
		if got := intField(row, key); got != nil {
			t.Errorf("intField(%q) = %v, want nil", key, *got)
		}
	}
}

func TestListTables(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	mustExec(t, client, "CREATE TABLE orders (id INTEGER)")
	mustExec(t, client, "CREATE TABLE customers (id INTEGER)")

	tables, err := client.ListTables(ctx, "", "")
	if err != nil {
		t.Fatalf("ListTables() error: %v", err)
	}
	names := make(map[string]bool, len(tables))
	for _, tbl := range tables {
		names[tbl.Name] = true
	}
	if !names["orders"] || !names["customers"] {
		t.Errorf("ListTables() = %v, want orders and customers", names)
	}
}

func TestListTables_RejectsInvalidIdentifiers(t *testing.T) {
	client, opens := newTestClient(t)

	if _, err := client.ListTables(context.Background(), "A; DROP", ""); err == nil {
		t.Error("ListTables accepted an unsafe database identifier")
	}
	if _, err := client.ListTables(context.Background(), "DB", "S;"); err == nil {
		t.Error("ListTables accepted an unsafe schema identifier")
	}
	if got := opens.Load(); got != 0 {
		t.Errorf("opener ran %d times, want 0", got)
	}
}

func TestDescribeTable_FailureCollapsesToEmpty(t *testing.T) {
	client, _ := newTestClient(t)

	columns, err := client.DescribeTable(context.Background(), "no_such_table", "", "")
	if err != nil {
		t.Fatalf("DescribeTable() error: %v", err)
	}
	if len(columns) != 0 {
		t.Errorf("DescribeTable() = %v, want empty", columns)
	}
}

func TestDescribeTable_RejectsInvalidIdentifier(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.DescribeTable(context.Background(), "t; DROP TABLE t", "", ""); err == nil {
		t.Error("DescribeTable accepted an unsafe table identifier")
	}
}

func TestGetTableSample(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	mustExec(t, client, "CREATE TABLE metrics (id INTEGER)")
	mustExec(t, client, "INSERT INTO metrics VALUES (1), (2), (3), (4), (5)")

	res, err := client.GetTableSample(ctx, "metrics", 2)
	if err != nil {
		t.Fatalf("GetTableSample() error: %v", err)
	}
	if !res.Success {
		t.Fatalf("GetTableSample() failed: %s", res.Error)
	}
	if res.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", res.RowCount)
	}

	if _, err := client.GetTableSample(ctx, "m; DROP TABLE m", 2); err == nil {
		t.Error("GetTableSample accepted an unsafe table reference")
	}
}

func TestListWarehouses_FailureCollapsesToEmpty(t *testing.T) {
	client, _ := newTestClient(t)

	// The test database rejects SHOW WAREHOUSES.
	warehouses := client.ListWarehouses(context.Background())
	if len(warehouses) != 0 {
		t.Errorf("ListWarehouses() = %v, want empty", warehouses)
	}
}

func TestGetWarehouseStatus_FailureYieldsEmptyStatus(t *testing.T) {
	client, _ := newTestClient(t)

	status := client.GetWarehouseStatus(context.Background())
	if status != (WarehouseStatus{}) {
		t.Errorf("GetWarehouseStatus() = %+v, want zero value", status)
	}
}

func TestAnalyzeTableStats(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := client.AnalyzeTableStats(ctx, "t; DROP"); err == nil {
		t.Error("AnalyzeTableStats accepted an unsafe table reference")
	}
	if _, err := client.AnalyzeTableStats(ctx, "no_such_table"); err == nil {
		t.Error("AnalyzeTableStats succeeded on a missing table")
	}
}

package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want ClassifyResult
	}{
		{
			name: "select statement",
			sql:  "SELECT * FROM users",
			want: ClassifyResult{Type: StatementTypeQuery, IsQuery: true, IsSelect: true},
		},
		{
			name: "lowercase select with leading whitespace",
			sql:  "  select id from orders",
			want: ClassifyResult{Type: StatementTypeQuery, IsQuery: true, IsSelect: true},
		},
		{
			name: "show statement",
			sql:  "SHOW TABLES IN DATABASE TEST_DB",
			want: ClassifyResult{Type: StatementTypeQuery, IsQuery: true},
		},
		{
			name: "describe statement",
			sql:  "DESCRIBE TABLE users",
			want: ClassifyResult{Type: StatementTypeQuery, IsQuery: true},
		},
		{
			name: "explain statement",
			sql:  "EXPLAIN SELECT * FROM users",
			want: ClassifyResult{Type: StatementTypeQuery, IsQuery: true},
		},
		{
			name: "create table",
			sql:  "CREATE TABLE users (id INTEGER)",
			want: ClassifyResult{Type: StatementTypeDDL, IsDDL: true},
		},
		{
			name: "drop table",
			sql:  "DROP TABLE users",
			want: ClassifyResult{Type: StatementTypeDDL, IsDDL: true},
		},
		{
			name: "alter table",
			sql:  "ALTER TABLE users ADD COLUMN email VARCHAR",
			want: ClassifyResult{Type: StatementTypeDDL, IsDDL: true},
		},
		{
			name: "insert statement",
			sql:  "INSERT INTO users VALUES (1)",
			want: ClassifyResult{Type: StatementTypeDML, IsDML: true},
		},
		{
			name: "merge statement",
			sql:  "MERGE INTO target USING source ON target.id = source.id",
			want: ClassifyResult{Type: StatementTypeDML, IsDML: true},
		},
		{
			name: "use warehouse",
			sql:  "USE WAREHOUSE COMPUTE_WH",
			want: ClassifyResult{Type: StatementTypeUse},
		},
		{
			name: "begin transaction",
			sql:  "BEGIN",
			want: ClassifyResult{Type: StatementTypeTransaction},
		},
		{
			name: "unknown statement",
			sql:  "GRANT SELECT ON users TO role1",
			want: ClassifyResult{Type: StatementTypeOther},
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.sql)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.sql, diff)
			}
		})
	}
}

func TestClassifier_IsSelect(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  select 1", true},
		{"SHOW DATABASES", false},
		{"INSERT INTO t VALUES (1)", false},
		{"WITH cte AS (SELECT 1) SELECT * FROM cte", false},
	}

	for _, tt := range tests {
		if got := IsSelect(tt.sql); got != tt.want {
			t.Errorf("IsSelect(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

func TestClassifier_ContainsLimit(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT * FROM t LIMIT 10", true},
		{"SELECT * FROM t limit 10", true},
		{"SELECT * FROM t", false},
		{"SELECT rate_limits FROM t", false},
	}

	for _, tt := range tests {
		if got := ContainsLimit(tt.sql); got != tt.want {
			t.Errorf("ContainsLimit(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

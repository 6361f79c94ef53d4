// Package query provides SQL statement classification.
package query

import (
	"regexp"
	"strings"
)

// StatementType represents the category of a SQL statement.
type StatementType int

// Statement types.
const (
	StatementTypeQuery       StatementType = iota // SELECT, SHOW, DESCRIBE, EXPLAIN
	StatementTypeDML                              // INSERT, UPDATE, DELETE, MERGE
	StatementTypeDDL                              // CREATE, DROP, ALTER
	StatementTypeUse                              // USE DATABASE/SCHEMA/WAREHOUSE
	StatementTypeTransaction                      // BEGIN, COMMIT, ROLLBACK
	StatementTypeOther                            // Unknown or unsupported
)

// Classifier provides SQL statement classification functionality.
type Classifier struct{}

// NewClassifier creates a new SQL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyResult contains the classification result of a SQL statement.
type ClassifyResult struct {
	Type     StatementType
	IsQuery  bool
	IsSelect bool
	IsDDL    bool
	IsDML    bool
}

// Classify analyzes a SQL statement and returns its classification.
func (c *Classifier) Classify(sql string) ClassifyResult {
	upperSQL := strings.ToUpper(strings.TrimSpace(sql))

	if c.isQueryStatement(upperSQL) {
		return ClassifyResult{
			Type:     StatementTypeQuery,
			IsQuery:  true,
			IsSelect: strings.HasPrefix(upperSQL, "SELECT"),
		}
	}

	if strings.HasPrefix(upperSQL, "CREATE") ||
		strings.HasPrefix(upperSQL, "DROP") ||
		strings.HasPrefix(upperSQL, "ALTER") {
		return ClassifyResult{
			Type:  StatementTypeDDL,
			IsDDL: true,
		}
	}

	if strings.HasPrefix(upperSQL, "USE") {
		return ClassifyResult{
			Type: StatementTypeUse,
		}
	}

	if c.isTransactionStatement(upperSQL) {
		return ClassifyResult{
			Type: StatementTypeTransaction,
		}
	}

	if strings.HasPrefix(upperSQL, "INSERT") ||
		strings.HasPrefix(upperSQL, "UPDATE") ||
		strings.HasPrefix(upperSQL, "DELETE") ||
		strings.HasPrefix(upperSQL, "MERGE") ||
		strings.HasPrefix(upperSQL, "COPY") {
		return ClassifyResult{
			Type:  StatementTypeDML,
			IsDML: true,
		}
	}

	return ClassifyResult{
		Type: StatementTypeOther,
	}
}

// isQueryStatement checks if the SQL is a query (read-only) statement.
func (c *Classifier) isQueryStatement(upperSQL string) bool {
	return strings.HasPrefix(upperSQL, "SELECT") ||
		strings.HasPrefix(upperSQL, "SHOW") ||
		strings.HasPrefix(upperSQL, "DESCRIBE") ||
		strings.HasPrefix(upperSQL, "DESC") ||
		strings.HasPrefix(upperSQL, "EXPLAIN")
}

// isTransactionStatement checks if the SQL is a transaction control statement.
func (c *Classifier) isTransactionStatement(upperSQL string) bool {
	return strings.HasPrefix(upperSQL, "BEGIN") ||
		strings.HasPrefix(upperSQL, "START TRANSACTION") ||
		strings.HasPrefix(upperSQL, "COMMIT") ||
		strings.HasPrefix(upperSQL, "ROLLBACK")
}

// IsSelect checks if the SQL is a SELECT statement. Only SELECT statements
// are eligible for result-limit injection.
func (c *Classifier) IsSelect(sql string) bool {
	upperSQL := strings.ToUpper(strings.TrimSpace(sql))
	return strings.HasPrefix(upperSQL, "SELECT")
}

var limitPattern = regexp.MustCompile(`(?i)\bLIMIT\b`)

// ContainsLimit checks if the SQL already carries a LIMIT clause,
// case-insensitively.
func (c *Classifier) ContainsLimit(sql string) bool {
	return limitPattern.MatchString(sql)
}

// DefaultClassifier is the default SQL classifier instance.
var DefaultClassifier = NewClassifier()

// ClassifySQL is a convenience function using the default classifier.
func ClassifySQL(sql string) ClassifyResult {
	return DefaultClassifier.Classify(sql)
}

// IsQuery is a convenience function to check if SQL is a query.
func IsQuery(sql string) bool {
	return DefaultClassifier.Classify(sql).IsQuery
}

// IsSelect is a convenience function to check if SQL is a SELECT statement.
func IsSelect(sql string) bool {
	return DefaultClassifier.IsSelect(sql)
}

// IsDDL is a convenience function to check if SQL is a DDL statement.
func IsDDL(sql string) bool {
	return DefaultClassifier.Classify(sql).IsDDL
}

// ContainsLimit is a convenience function to check for an existing LIMIT clause.
func ContainsLimit(sql string) bool {
	return DefaultClassifier.ContainsLimit(sql)
}

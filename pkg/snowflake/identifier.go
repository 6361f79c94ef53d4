package snowflake

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches unquoted Snowflake identifiers: letters, digits,
// underscore and dollar sign, not starting with a digit.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdentifier reports whether name is a safe unquoted identifier.
// Catalog commands interpolate identifiers into SQL text, so anything that
// fails this check must be rejected before it reaches the warehouse.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func validateIdentifier(kind, name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("invalid %s identifier %q", kind, name)
	}
	return nil
}

// qualifiedTable builds the qualified table name for catalog commands.
// Database and schema together yield database.schema.table, schema alone
// yields schema.table, and anything else leaves the bare table name to
// resolve against the session context. A database without a schema cannot
// qualify a table, so it is ignored.
func qualifiedTable(table, database, schema string) (string, error) {
	if err := validateIdentifier("table", table); err != nil {
		return "", err
	}
	if database != "" {
		if err := validateIdentifier("database", database); err != nil {
			return "", err
		}
	}
	if schema != "" {
		if err := validateIdentifier("schema", schema); err != nil {
			return "", err
		}
	}
	switch {
	case database != "" && schema != "":
		return strings.Join([]string{database, schema, table}, "."), nil
	case schema != "":
		return schema + "." + table, nil
	default:
		return table, nil
	}
}

// Package sqlutil builds safe MySQL identifiers for tables and columns named
// in configuration.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
//
//	"order_items" -> "`order_items`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Only ASCII letters, digits and underscore are accepted from configuration.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name is a plain identifier.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe validates then quotes name.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// QuoteQualifiedSafe validates and quotes a table reference that may carry
// a schema prefix: "shop.order_items" -> "`shop`.`order_items`".
func QuoteQualifiedSafe(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", &InvalidIdentifierError{Name: name}
	}
	quoted := make([]string, len(parts))
	for i, p := range parts {
		q, err := QuoteIdentifierSafe(p)
		if err != nil {
			return "", &InvalidIdentifierError{Name: name}
		}
		quoted[i] = q
	}
	return strings.Join(quoted, "."), nil
}

// InvalidIdentifierError is returned for identifiers outside [a-zA-Z0-9_].
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}

package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsafeQuery is returned when a generated statement fails the read-only
// policy. The statement is never sent to the data store in that case.
var ErrUnsafeQuery = errors.New("unsafe query")

// Mutating or otherwise disallowed top-level constructs. Checked as word
// tokens anywhere in the statement so that CTE-wrapped writes
// (WITH x AS (DELETE ...) SELECT ...) are caught too.
var forbiddenKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "DROP": {}, "ALTER": {},
	"CREATE": {}, "TRUNCATE": {}, "GRANT": {}, "REVOKE": {}, "MERGE": {},
	"COPY": {}, "VACUUM": {}, "REINDEX": {}, "CLUSTER": {}, "CALL": {},
	"DO": {}, "EXECUTE": {}, "PREPARE": {}, "SET": {}, "RESET": {},
	"LISTEN": {}, "NOTIFY": {}, "LOCK": {}, "RETURNING": {}, "INTO": {},
}

// EnsureReadOnly rejects any statement that is not a single read-only query.
// Comments are stripped before inspection so keywords cannot hide behind them.
func EnsureReadOnly(sqlQuery string) error {
	stripped := stripSQLComments(sqlQuery)
	stmt := strings.TrimSpace(stripped)
	stmt = strings.TrimSuffix(stmt, ";")
	if stmt == "" {
		return fmt.Errorf("%w: empty statement", ErrUnsafeQuery)
	}

	// A remaining semicolon means multiple statements were chained.
	if strings.Contains(stmt, ";") {
		return fmt.Errorf("%w: multiple statements are not allowed", ErrUnsafeQuery)
	}

	tokens := tokenizeSQLWords(stmt)
	if len(tokens) == 0 {
		return fmt.Errorf("%w: empty statement", ErrUnsafeQuery)
	}
	if tokens[0] != "SELECT" && tokens[0] != "WITH" {
		return fmt.Errorf("%w: only SELECT statements are allowed", ErrUnsafeQuery)
	}
	for _, tok := range tokens {
		if _, bad := forbiddenKeywords[tok]; bad {
			return fmt.Errorf("%w: statement contains %s", ErrUnsafeQuery, tok)
		}
	}
	return nil
}

// stripSQLComments removes -- line comments and /* */ block comments while
// leaving quoted string contents untouched.
func stripSQLComments(s string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch {
		case c == '\'':
			inString = true
			b.WriteByte(c)
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			b.WriteByte('\n')
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// tokenizeSQLWords returns the uppercased word tokens of a statement,
// skipping quoted string literals.
func tokenizeSQLWords(s string) []string {
	var tokens []string
	var word strings.Builder
	inString := false
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, strings.ToUpper(word.String()))
			word.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\'' {
				inString = false
			}
			continue
		}
		switch {
		case c == '\'':
			flush()
			inString = true
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			word.WriteByte(c)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapPostgres maps analytical database errors to the unified Error type.
func WrapPostgres(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, PostgresErrorMessage)
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}

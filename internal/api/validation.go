package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/irynahryshanovich/automation-suite/internal/database"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseLogLimit parses and bounds-checks the log listing limit.
func ParseLogLimit(raw string) (int, error) {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: "limit", Message: "must be an integer"}
	}
	if limit < 1 || limit > database.MaxLogLimit {
		return 0, ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", database.MaxLogLimit)}
	}
	return limit, nil
}

func writeValidationError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

package notion

import (
	"errors"
	"net/http"

	"github.com/jomei/notionapi"
)

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return status(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return status(err) == http.StatusUnauthorized
}

func status(err error) int {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

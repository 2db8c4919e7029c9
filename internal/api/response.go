package api

import (
	"encoding/json"
	"errors"
	"net/http"

	idb "community_whatsapp_bot/internal/infra/database"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// HandleError maps repository sentinel errors to HTTP status codes and
// writes the response. Anything unrecognized is a persistence-level 500.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, idb.ErrUserNotFound),
		errors.Is(err, idb.ErrFAQNotFound),
		errors.Is(err, idb.ErrCourseNotFound),
		errors.Is(err, idb.ErrContentNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, idb.ErrDuplicatePhoneNumber):
		Error(w, http.StatusConflict, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}

// Package httputil renders JSON responses and translates domain errors into
// HTTP status codes and bodies.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "bloodbank/pkg/domain-errors"
)

// wireError is the HTTP rendering of one domain code.
type wireError struct {
	status int
	code   string
}

var wireErrors = map[dErrors.Code]wireError{
	dErrors.CodeNotFound:           {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:         {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:         {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation: {http.StatusBadRequest, "validation_error"},
	dErrors.CodeConflict:           {http.StatusConflict, "conflict"},
	dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:          {http.StatusForbidden, "forbidden"},
	dErrors.CodeTooLarge:           {http.StatusRequestEntityTooLarge, "request_too_large"},
}

var internalError = wireError{http.StatusInternalServerError, "internal_error"}

func lookup(code dErrors.Code) wireError {
	if w, ok := wireErrors[code]; ok {
		return w
	}
	return internalError
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError renders err as {"error", "error_description"} plus its details.
// Errors without a domain code are rendered as a bare internal error so that
// infrastructure messages never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	domainErr, ok := dErrors.As(err)
	if !ok {
		WriteJSON(w, internalError.status, map[string]string{"error": internalError.code})
		return
	}

	wire := lookup(domainErr.Code)
	body := make(map[string]any, len(domainErr.Details)+2)
	for k, v := range domainErr.Details {
		body[k] = v
	}
	body["error"] = wire.code
	if domainErr.Message != "" {
		body["error_description"] = domainErr.Message
	} else {
		delete(body, "error_description")
	}
	WriteJSON(w, wire.status, body)
}

// DomainCodeToHTTPStatus returns the status WriteError would use for code.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	return lookup(code).status
}

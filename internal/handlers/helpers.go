package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/models"
	"github.com/bobmcallan/vire-tracker/internal/resolver"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service error to an HTTP status.
// Invalid input is 400, not found is 404 and a total provider failure is 502.
func WriteServiceError(w http.ResponseWriter, logger *common.Logger, err error) {
	var apf *resolver.AllProvidersFailedError
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidHolding):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &apf):
		if logger != nil {
			logger.Warn().Err(err).Msg("All providers failed")
		}
		msg := fmt.Sprintf("all providers failed for %s", apf.Op)
		if names := apf.Providers(); len(names) > 0 {
			msg += ": " + strings.Join(names, ", ")
		}
		WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
			"status":    "error",
			"error":     msg,
			"providers": apf.Providers(),
		})
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "upstream request timed out")
	default:
		if logger != nil {
			logger.Error().Err(err).Msg("Request failed")
		}
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// SplitSymbols splits a comma separated symbol list, dropping blanks.
func SplitSymbols(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PathParam returns the path segment after prefix, e.g. "/api/holdings/AAPL" -> "AAPL".
func PathParam(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

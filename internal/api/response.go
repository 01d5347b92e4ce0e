package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/leftoverhq/leftover/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, errorBody{Error: message, Code: code})
}

// errorStatus maps a domain error kind to its HTTP status and code.
var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{model.ErrExpired, http.StatusGone, "expired"},
	{model.ErrValidation, http.StatusBadRequest, "validation"},
	{model.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
}

// writeError writes a domain error with its mapped status. Anything else is
// logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			jsonError(w, e.status, e.code, err.Error())
			return
		}
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	jsonError(w, http.StatusInternalServerError, "internal", "internal error")
}

// decodeJSON decodes a JSON request body into the given target. Malformed
// bodies become validation errors; field decoding errors that already carry
// a domain kind are returned as is.
func decodeJSON(r *http.Request, target any) error {
	return decodeBody(r, target, false)
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be empty.
func decodeOptionalJSON(r *http.Request, target any) error {
	return decodeBody(r, target, true)
}

func decodeBody(r *http.Request, target any, optional bool) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || (optional && err == io.EOF) {
		return nil
	}
	var domain *model.Error
	if errors.As(err, &domain) {
		return err
	}
	return model.Validationf("invalid request body: %v", err)
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Validationf("invalid %s", name)
	}
	return id, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SuccessResponse wraps every successful JSON reply.
type SuccessResponse struct {
	Data any `json:"data"`
}

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, SuccessResponse{Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// respondInvalid replies 400 with one message per failed field.
func respondInvalid(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("%s is required", name)
		case "gte", "min":
			fields[name] = fmt.Sprintf("%s must be at least %s", name, fe.Param())
		case "lte", "max":
			fields[name] = fmt.Sprintf("%s must be at most %s", name, fe.Param())
		default:
			fields[name] = fmt.Sprintf("%s failed %s validation", name, fe.Tag())
		}
	}
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_failed",
		Message: "request validation failed",
		Fields:  fields,
	})
}

// queryFloat parses the named query parameter, returning def when absent.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

// queryInt parses the named query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

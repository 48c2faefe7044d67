package common

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// TotalCountHeader carries the unpaginated row count of a list response.
const TotalCountHeader = "X-Total-Count"

// ErrorBody is the payload under "error" in every failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v as the response body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data writes v wrapped in the {"data": ...} envelope.
func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, map[string]any{"data": v})
}

// Page writes one page of a list with its pagination block and the total count header.
func Page(w http.ResponseWriter, items any, p Pagination) {
	w.Header().Set(TotalCountHeader, strconv.Itoa(p.TotalItems))
	JSON(w, http.StatusOK, map[string]any{"data": items, "pagination": p})
}

// JSONError renders {"error": {"code", "message", "details"}}.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{"error": ErrorBody{Code: code, Message: message, Details: details}})
}

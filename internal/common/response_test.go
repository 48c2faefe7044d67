package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageSetsTotalHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	Page(rr, []string{"a", "b"}, Pagination{Page: 2, PerPage: 2, TotalItems: 7})

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "7", rr.Header().Get(TotalCountHeader))
	var body struct {
		Data       []string   `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, []string{"a", "b"}, body.Data)
	require.Equal(t, 2, body.Pagination.Page)
}

func TestErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, NewAppError("EMPTY_CART", "cart is empty", http.StatusUnprocessableEntity, nil))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.JSONEq(t, `{"error":{"code":"EMPTY_CART","message":"cart is empty"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	Data(rr, http.StatusCreated, map[string]int{"n": 1})
	require.JSONEq(t, `{"data":{"n":1}}`, rr.Body.String())
}

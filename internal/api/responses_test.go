package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"ok": "yes"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "yes", got["ok"])
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusNotFound, "not found")

	require.Equal(t, http.StatusNotFound, w.Code)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "not found", got.Error)
	require.Empty(t, got.Detail)
}

func TestWriteErrorDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorDetail(w, http.StatusBadRequest, "bad request", "missing field x")

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "bad request", got.Error)
	require.Equal(t, "missing field x", got.Detail)
}

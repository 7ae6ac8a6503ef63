package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/view"
)

type fakeViewSource struct{ v view.View }

func (f fakeViewSource) LatestView() view.View { return f.v }

func TestViewHandler_ReturnsCurrentView(t *testing.T) {
	src := fakeViewSource{v: view.View{DefaultSinkName: "alsa_output"}}
	rec := httptest.NewRecorder()
	ViewHandler(src)(rec, httptest.NewRequest(http.MethodGet, "/view", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got view.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "alsa_output", got.DefaultSinkName)
}

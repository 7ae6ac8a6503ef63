package api

import (
	"net/http"

	"github.com/wiremix/mixerd/internal/view"
)

// ViewSource supplies the current graph projection. Satisfied by
// *session.Session.
type ViewSource interface {
	LatestView() view.View
}

// ViewHandler serves GET /view: the current View as JSON, exactly what a
// UI client would otherwise have to assemble from a WebSocket stream.
func ViewHandler(src ViewSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, src.LatestView())
	}
}

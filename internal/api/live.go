package api

import (
	"net/http"

	"github.com/erazemk/kitreq/internal/live"
)

// LiveHandler serves the WebSocket snapshot feed.
type LiveHandler struct {
	Hub *live.Hub
}

// Subscribe handles GET /api/live?collections=inventory,requests,settings.
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	collections, err := live.ParseCollections(r.URL.Query().Get("collections"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.Hub.ServeWS(w, r, collections)
}

package web

import (
	_ "embed"
	"encoding/json"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

// NewHandler serves the map page, the websocket and a health probe.
func NewHandler(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", serveIndex)
	mux.HandleFunc("GET /ws", hub.ServeWS)
	mux.HandleFunc("GET /healthz", hub.serveHealth)
	return mux
}

func serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(indexHTML)
}

func (h *Hub) serveHealth(w http.ResponseWriter, _ *http.Request) {
	status := h.Status()
	w.Header().Set("Content-Type", "application/json")
	if status == "failed" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

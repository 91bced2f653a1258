package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Stations lists the recognized station query values a front-end may use
// when presenting itself (purely informational; the hub does not filter
// frames by station — every connection receives every published topic
// and the station front-end selects what it renders, same as the
// teacher's single-broadcast-channel-fans-to-all-clients model).
var Stations = []string{"captain", "helm", "sonar", "weapons", "engineering", "debug", "fleet"}

// NewRouter builds the HTTP surface: the WebSocket upgrade endpoint, a
// liveness probe, and a station-list helper for front-ends, grounded on
// the teacher's main.go route registration generalized from Netrek's
// single /ws + static-file mux to gorilla/mux's explicit route table.
func NewRouter(hub *Hub) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", hub.ServeWS).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/stations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Stations)
	}).Methods(http.MethodGet)

	return r
}

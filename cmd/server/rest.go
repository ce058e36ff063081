package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// restRouter builds the read-only REST surface that runs alongside the
// intent/stream host on its own port: a lobby listing and a per-game
// omniscient snapshot, for operators and tooling that want a plain request/
// response view instead of the websocket stream. It carries no mutation
// routes; every state change still goes through postIntent.
func (s *server) restRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.restHealth).Methods(http.MethodGet)
	api.HandleFunc("/games", s.restListGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameId}", s.restGetGame).Methods(http.MethodGet)

	return r
}

func (s *server) restHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "games": s.manager.Count()})
}

func (s *server) restListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"gameIds": s.manager.List()})
}

func (s *server) restGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	sess, ok := s.manager.Get(gameID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "no such game"})
		return
	}
	snap, err := sess.View(r.Context(), "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

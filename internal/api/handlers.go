// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hotlist/postpulse/internal/logging"
	"github.com/hotlist/postpulse/internal/streaming"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleHealthz reports liveness. It never depends on WAL or snapshot write
// health since those subsystems are best-effort by design; the manager
// existing at all means load_prev_state already ran during construction.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleState serializes the manager's current aggregate state, the same
// shape persisted to the snapshot file.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.manager.GetCurrentState().View())
}

// handleFeed upgrades the connection to a WebSocket and registers it with
// the live feed hub.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("feed upgrade failed")
		return
	}

	client := streaming.NewClient(s.hub, conn)
	s.hub.Register <- client
	client.Start()
}

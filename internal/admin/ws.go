package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"exchange-latency-sim/internal/telemetry"
)

const (
	wsSendBuffer   = 4
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// wsMessage is the envelope for every frame sent on the live feed.
type wsMessage struct {
	Type string             `json:"type"`
	Data telemetry.Snapshot `json:"data"`
}

// handleWS upgrades the connection and forwards every stream snapshot to the
// client. A client that falls behind loses snapshots; the stream is never
// blocked by a slow reader.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	s.metrics.WSConnected(1)
	defer s.metrics.WSConnected(-1)
	defer conn.Close()

	send := make(chan []byte, wsSendBuffer)
	done := make(chan struct{})

	unsubscribe := s.Sim.Stream().Subscribe(func(snap telemetry.Snapshot) {
		data, err := json.Marshal(wsMessage{Type: "snapshot", Data: snap})
		if err != nil {
			return
		}
		select {
		case send <- data:
		default:
		}
	})
	defer unsubscribe()

	go func() {
		defer close(done)
		conn.SetReadLimit(1 << 12)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case data := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

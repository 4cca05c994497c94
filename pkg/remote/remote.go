// Package remote is a minimal websocket debug server: it streams the
// current register/PPU-mode snapshot as JSON to every connected client,
// for watching emulation state from a browser instead of a debugger.
package remote

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"gomeboy/pkg/log"
)

// Snapshot is one point-in-time view of the machine, sent to every
// connected client on every call to Broadcast.
type Snapshot struct {
	PC      uint16 `json:"pc"`
	SP      uint16 `json:"sp"`
	AF      uint16 `json:"af"`
	BC      uint16 `json:"bc"`
	DE      uint16 `json:"de"`
	HL      uint16 `json:"hl"`
	PPUMode uint8  `json:"ppu_mode"`
	LY      uint8  `json:"ly"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server fans a stream of Snapshots out to every connected client.
type Server struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	log log.Logger
}

func NewServer(logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	return &Server{clients: make(map[*websocket.Conn]chan []byte), log: logger}
}

// Handler upgrades incoming HTTP connections to websockets and registers
// them to receive future Broadcasts. It never reads from the client: this
// is a one-way telemetry feed.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Errorf("remote: upgrade failed: %v", err)
			return
		}

		send := make(chan []byte, 8)
		s.mu.Lock()
		s.clients[conn] = send
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()

		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	})
}

// Broadcast encodes snap as JSON and sends it to every connected client,
// dropping any client whose outbound buffer is full rather than blocking.
func (s *Server) Broadcast(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Errorf("remote: marshal snapshot: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, send := range s.clients {
		select {
		case send <- data:
		default:
			delete(s.clients, conn)
			close(send)
		}
	}
}

// ListenAndServe starts the HTTP server backing Handler. It blocks until
// the server errors out.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"pdfrag/pkg/rag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the frame exchanged over the WebSocket. Clients send
// {"type":"query","content":"..."}; the server replies with status,
// response, and error frames.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// WSServer exposes the QA pipeline over a WebSocket endpoint.
type WSServer struct {
	engine *rag.Engine
}

func NewWSServer(engine *rag.Engine) *WSServer {
	return &WSServer{engine: engine}
}

// ListenAndServe registers /ws and /health and blocks serving them.
func (s *WSServer) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	log.Printf("Starting WebSocket server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("Error reading message: %v", err)
			break
		}

		s.handleMessage(r.Context(), conn, msg)
	}
}

func (s *WSServer) handleMessage(ctx context.Context, conn *websocket.Conn, msg Message) {
	if msg.Type != "query" || msg.Content == "" {
		s.sendMessage(conn, "error", "expected a non-empty query message")
		return
	}

	s.sendMessage(conn, "status", "Searching documentation...")

	answer := s.engine.Ask(ctx, msg.Content)

	sources := make([]string, 0, len(answer.Hits))
	for _, hit := range answer.Hits {
		sources = append(sources, hit.Source)
	}

	if err := conn.WriteJSON(Message{
		Type:    "response",
		Content: answer.Text,
		Data:    map[string]interface{}{"sources": sources},
	}); err != nil {
		log.Printf("Error sending response: %v", err)
	}
}

func (s *WSServer) sendMessage(conn *websocket.Conn, msgType string, content string) {
	msg := Message{
		Type:    msgType,
		Content: content,
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

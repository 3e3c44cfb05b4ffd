package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vuongle/docquery-be/types"
)

type WebSocketService struct {
	workflow *WorkflowService
	upgrader websocket.Upgrader
}

func NewWebSocketService(workflow *WorkflowService) *WebSocketService {
	return &WebSocketService{
		workflow: workflow,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

// HandleQuery upgrades the connection and serves query messages until the
// client disconnects. Each query runs through the full pipeline; the
// result envelope mirrors the HTTP query endpoint.
func (s *WebSocketService) HandleQuery(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketQuery:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				log.Println("Marshal error:", err)
				s.writeError(conn, "invalid payload")
				continue
			}
			var query types.QueryRequest
			if err := json.Unmarshal(payloadBytes, &query); err != nil {
				log.Println("Unmarshal error:", err)
				s.writeError(conn, "invalid payload")
				continue
			}
			result := s.workflow.ProcessQuery(ctx, query)
			response := types.WebsocketResponse{
				Type:    types.TypeWebsocketQuery,
				Payload: result,
			}
			if err := conn.WriteJSON(response); err != nil {
				log.Println("Write error:", err)
			}
		case types.TypeWebsocketPing:
			pong := types.WebsocketResponse{Type: types.TypeWebsocketPong}
			if err := conn.WriteJSON(pong); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type:", req.Type)
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	response := types.WebsocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: map[string]string{"message": message},
	}
	if err := conn.WriteJSON(response); err != nil {
		log.Println("Write error:", err)
	}
}

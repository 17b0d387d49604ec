package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/bdvbs4e/backtriviapp/internal/game"
	"github.com/bdvbs4e/backtriviapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type SocketHandler struct {
	hub  *ws.Hub
	game *game.Handler
}

func NewSocketHandler(hub *ws.Hub, gameHandler *game.Handler) *SocketHandler {
	return &SocketHandler{hub: hub, game: gameHandler}
}

// HandlePlaySocket godoc
// @Summary      WebSocket endpoint for players
// @Description  Connect via WebSocket to join rooms and play; frames are {"type","data"}
// @Tags         websocket
// @Router       /ws/play [get]
func (h *SocketHandler) HandlePlaySocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn)
	log.Printf("ws: client connected: %s", client.SessionID())

	defer func() {
		h.game.HandleDisconnect(client.SessionID())
		h.hub.RemoveClient(client)
	}()

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			break
		}
		h.dispatch(client, frame)
	}
}

func (h *SocketHandler) dispatch(client *ws.Client, frame *ws.Frame) {
	switch frame.Type {
	case "player-join":
		var req game.JoinRequest
		if err := json.Unmarshal(frame.Data, &req); err == nil {
			h.game.HandleJoin(client, req)
		}
	case "player-ready":
		var req game.ReadyRequest
		if err := json.Unmarshal(frame.Data, &req); err == nil {
			h.game.HandleReady(req)
		}
	case "player-answer":
		var req game.AnswerRequest
		if err := json.Unmarshal(frame.Data, &req); err == nil {
			h.game.HandleAnswer(req)
		}
	case "player-leave":
		var req game.LeaveRequest
		if err := json.Unmarshal(frame.Data, &req); err == nil {
			h.game.HandleLeave(req)
		}
	case "get-results":
		var req game.ResultsRequest
		if err := json.Unmarshal(frame.Data, &req); err == nil {
			h.game.HandleGetResults(client, req)
		}
	}
}

// HandleDashboardSocket godoc
// @Summary      WebSocket endpoint for dashboard observers
// @Description  Receives full-rooms snapshots on every room mutation
// @Tags         websocket
// @Router       /ws/dashboard [get]
func (h *SocketHandler) HandleDashboardSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn)
	log.Printf("ws: dashboard client connected: %s", client.SessionID())

	h.hub.AddDashboard(client)
	defer h.hub.RemoveClient(client)

	// New observers get the current snapshot instead of replayed history.
	h.game.HandleDashboardJoin(client)

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			break
		}
		if frame.Type == "dashboard-join" {
			h.game.HandleDashboardJoin(client)
		}
	}
}

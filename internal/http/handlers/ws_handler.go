package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/apperr"
	"github.com/tumo-mining/backend/internal/auth"
	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/events"
	"github.com/tumo-mining/backend/internal/http/dto"
	"github.com/tumo-mining/backend/internal/models"
)

// wsClient serializes writes; the read loop and the hub both write.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.TextMessage, data)
}

type WSHub struct {
	cfg         *config.Config
	mining      TickRecorder
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[string][]*wsClient // wallet -> clients
}

func NewWSHub(cfg *config.Config, mining TickRecorder, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		mining:      mining,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[string][]*wsClient),
	}
}

// Start relays settlement and claim events until ctx is done.
func (h *WSHub) Start(ctx context.Context) {
	if h.subscriber == nil {
		return
	}
	err := h.subscriber.Subscribe(ctx, events.Stream, func(event events.Event) {
		if event.Wallet == "" {
			h.broadcast(event)
			return
		}
		h.SendToWallet(event.Wallet, event)
	})
	if err != nil {
		h.log.Error("ws hub subscribe failed", zap.Error(err))
	}
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.connections {
		for _, cl := range clients {
			cl.write(data)
		}
	}
}

func (h *WSHub) SendToWallet(wallet string, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, cl := range h.connections[wallet] {
		cl.write(data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) register(wallet string, cl *wsClient) {
	h.mu.Lock()
	h.connections[wallet] = append(h.connections[wallet], cl)
	h.mu.Unlock()
}

func (h *WSHub) unregister(wallet string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.connections[wallet]
	for i, c := range clients {
		if c == cl {
			h.connections[wallet] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.connections[wallet]) == 0 {
		delete(h.connections, wallet)
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	// Extract token from query
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	wallet := claims.Wallet
	cl := &wsClient{conn: conn}
	h.register(wallet, cl)
	defer func() {
		h.unregister(wallet, cl)
		conn.Close()
	}()

	// Read loop, каждое сообщение это тик {"points":n}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		cl.write(h.handleTick(wallet, msg))
	}
}

func (h *WSHub) handleTick(wallet string, msg []byte) []byte {
	var tick dto.WSTick
	if err := json.Unmarshal(msg, &tick); err != nil {
		return []byte(`{"error":"bad message"}`)
	}

	ctx := context.Background()
	if _, err := h.mining.RecordTick(ctx, wallet, tick.Points, models.ReasonWS); err != nil {
		if apperr.KindOf(err) == apperr.KindUpstream {
			h.log.Error("ws tick failed", zap.String("wallet", wallet), zap.Error(err))
		}
		data, _ := json.Marshal(dto.ErrorResponse{Error: apperr.PublicMessage(err)})
		return data
	}

	payload := map[string]any{"points": tick.Points}
	if today, err := h.mining.TodayPoints(ctx, wallet); err == nil {
		payload["today"] = today.Points
	}
	data, _ := json.Marshal(events.Event{Type: events.EventTickAck, Wallet: wallet, Payload: payload})
	return data
}

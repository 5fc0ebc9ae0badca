package http

import (
	"context"
	"sync"
	"time"

	"codbank/internal/shared/contextkeys"
	"codbank/internal/shared/eventbus"
	"codbank/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPingInterval = 30 * time.Second
	writeTimeout        = 10 * time.Second
	clientBuffer        = 16
)

// RealtimeMessage is what the dashboard socket receives.
type RealtimeMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type realtimeClient struct {
	id   string
	send chan RealtimeMessage
}

// RealtimeHub pushes a user's own balance and account events to their open sockets.
type RealtimeHub struct {
	mu           sync.RWMutex
	clients      map[string]map[string]*realtimeClient
	pingInterval time.Duration
	logger       logger.Logger
}

func NewRealtimeHub(log logger.Logger) *RealtimeHub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RealtimeHub{
		clients:      make(map[string]map[string]*realtimeClient),
		pingInterval: defaultPingInterval,
		logger:       log.WithComponent("realtime_hub"),
	}
}

// Subscribe attaches the hub to the events it forwards.
func (h *RealtimeHub) Subscribe(bus eventbus.EventBusInterface) {
	bus.Subscribe(eventbus.EventTypeBalanceChanged, h.HandleEvent)
	bus.Subscribe(eventbus.EventTypeAccountOpened, h.HandleEvent)
}

// HandleEvent delivers event to every socket of the user named in its payload.
// Slow sockets drop messages rather than block the publisher.
func (h *RealtimeHub) HandleEvent(_ context.Context, event eventbus.Event) error {
	data, ok := event.Data().(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := data["userId"].(string)
	if userID == "" {
		return nil
	}

	msg := RealtimeMessage{Type: event.Type(), Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		select {
		case client.send <- msg:
		default:
			h.logger.Warnf("Dropping %s for slow client %s", event.Type(), client.id)
		}
	}
	return nil
}

// Connections returns the number of open sockets for userID.
func (h *RealtimeHub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *RealtimeHub) register(userID string) *realtimeClient {
	client := &realtimeClient{
		id:   uuid.NewString(),
		send: make(chan RealtimeMessage, clientBuffer),
	}
	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[string]*realtimeClient)
	}
	h.clients[userID][client.id] = client
	h.mu.Unlock()
	return client
}

func (h *RealtimeHub) unregister(userID string, client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID][client.id]; !ok {
		return
	}
	delete(h.clients[userID], client.id)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	close(client.send)
}

// SetupRoutes mounts GET /dashboard. requireSession runs before the upgrade.
func (h *RealtimeHub) SetupRoutes(router fiber.Router, requireSession fiber.Handler) {
	router.Get("/dashboard", requireSession, upgradeOnly, websocket.New(h.serve))
}

func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
		"error": "Websocket upgrade required",
	})
}

func (h *RealtimeHub) serve(conn *websocket.Conn) {
	userID, _ := conn.Locals(string(contextkeys.UserIDKey)).(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	client := h.register(userID)
	h.logger.WithFields(map[string]interface{}{
		"user_id":   userID,
		"client_id": client.id,
	}).Info("Realtime client connected")

	done := make(chan struct{})
	go h.writeLoop(conn, client, done)

	// Reads only detect disconnects; clients send nothing meaningful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("Realtime client %s read error: %v", client.id, err)
			}
			break
		}
	}

	h.unregister(userID, client)
	<-done
	h.logger.Debugf("Realtime client %s disconnected", client.id)
}

func (h *RealtimeHub) writeLoop(conn *websocket.Conn, client *realtimeClient, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warnf("Realtime client %s write failed: %v", client.id, err)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

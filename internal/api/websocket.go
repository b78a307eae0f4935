// Package api provides WebSocket functionality for real-time updates.
package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/internal/autonomous"
	"github.com/atlas-desktop/recall-agent/internal/execution"
	"github.com/atlas-desktop/recall-agent/pkg/types"
)

// MessageType defines WebSocket message types.
type MessageType string

const (
	// Server -> Client messages
	MsgTypeSignalUpdate MessageType = "signal_update"
	MsgTypeTradeUpdate  MessageType = "trade_update"
	MsgTypeCycleReport  MessageType = "cycle_report"
	MsgTypeAgentStatus  MessageType = "agent_status"
	MsgTypeRiskAlert    MessageType = "risk_alert"
	MsgTypeError        MessageType = "error"
	MsgTypeHeartbeat    MessageType = "heartbeat"
	MsgTypeAck          MessageType = "ack"

	// Client -> Server messages
	MsgTypeSubscribe   MessageType = "subscribe"
	MsgTypeUnsubscribe MessageType = "unsubscribe"
)

// Channels clients can subscribe to.
const (
	ChannelSignals = "signals"
	ChannelTrades  = "trades"
	ChannelCycles  = "cycles"
	ChannelErrors  = "errors"
)

// WSMessage is a WebSocket message.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Channel   string          `json:"channel,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// TradeUpdate is published on the trades channel for every executed trade.
type TradeUpdate struct {
	Signal   types.TradingSignal           `json:"signal"`
	Request  types.TradeExecutionRequest   `json:"request"`
	Response *types.TradeExecutionResponse `json:"response"`
}

// Client is a WebSocket client connection.
type Client struct {
	id            string
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	subscriptions map[string]bool
	registered    chan struct{}
	mu            sync.RWMutex
}

// Hub manages WebSocket connections.
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	channels   map[string]map[*Client]bool
	mu         sync.RWMutex
	heartbeat  time.Duration
	done       chan struct{}
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger.Named("ws-hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		channels:   make(map[string]map[*Client]bool),
		heartbeat:  30 * time.Second,
		done:       make(chan struct{}),
	}
}

// Run services registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			close(client.registered)
			h.logger.Debug("Client registered", zap.String("id", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", zap.String("id", client.id))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()

		case <-ticker.C:
			h.sendHeartbeat()
		}
	}
}

// removeLocked drops client from every index and closes its send queue.
// The caller holds h.mu.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	client.mu.RLock()
	defer client.mu.RUnlock()
	for channel := range client.subscriptions {
		if clients, ok := h.channels[channel]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}
	}
}

// sendHeartbeat sends heartbeat to all clients.
func (h *Hub) sendHeartbeat() {
	msg := WSMessage{
		Type:      MsgTypeHeartbeat,
		Timestamp: time.Now().UnixMilli(),
	}

	data, _ := json.Marshal(msg)

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
	h.mu.RUnlock()
}

// Subscribe subscribes a client to a channel.
func (h *Hub) Subscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	client.mu.Lock()
	client.subscriptions[channel] = true
	client.mu.Unlock()

	h.logger.Debug("Client subscribed to channel",
		zap.String("client", client.id),
		zap.String("channel", channel))
}

// Unsubscribe unsubscribes a client from a channel.
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	client.mu.Lock()
	delete(client.subscriptions, channel)
	client.mu.Unlock()
}

// PublishToChannel publishes a message to a channel's subscribers.
func (h *Hub) PublishToChannel(channel string, msgType MessageType, data interface{}) {
	msgBytes, err := encodeMessage(msgType, channel, data)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.channels[channel] {
		select {
		case client.send <- msgBytes:
		default:
		}
	}
}

// Broadcast sends a message to all clients.
func (h *Hub) Broadcast(msgType MessageType, data interface{}) {
	msgBytes, err := encodeMessage(msgType, "", data)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- msgBytes:
	default:
		h.logger.Warn("Broadcast channel full, dropping message")
	}
}

func encodeMessage(msgType MessageType, channel string, data interface{}) ([]byte, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{
		Type:      msgType,
		Channel:   channel,
		Data:      dataBytes,
		Timestamp: time.Now().UnixMilli(),
	})
}

// BroadcastSignal publishes a signal that cleared the confidence floor.
func (h *Hub) BroadcastSignal(signal types.TradingSignal) {
	h.PublishToChannel(ChannelSignals, MsgTypeSignalUpdate, signal)
	h.PublishToChannel(ChannelSignals+":"+signal.Token, MsgTypeSignalUpdate, signal)
}

// BroadcastTrade publishes an executed trade.
func (h *Hub) BroadcastTrade(signal types.TradingSignal, req types.TradeExecutionRequest, resp *types.TradeExecutionResponse) {
	update := TradeUpdate{Signal: signal, Request: req, Response: resp}
	h.PublishToChannel(ChannelTrades, MsgTypeTradeUpdate, update)
	h.PublishToChannel(ChannelTrades+":"+signal.Token, MsgTypeTradeUpdate, update)
}

// BroadcastCycle publishes a cycle summary.
func (h *Hub) BroadcastCycle(report autonomous.CycleReport) {
	h.PublishToChannel(ChannelCycles, MsgTypeCycleReport, report)
}

// BroadcastError publishes an agent fault.
func (h *Hub) BroadcastError(err error) {
	h.PublishToChannel(ChannelErrors, MsgTypeError, map[string]string{"error": err.Error()})
}

// BroadcastRiskAlert publishes a rejected trade on the errors channel.
func (h *Hub) BroadcastRiskAlert(violation execution.RiskViolation) {
	h.PublishToChannel(ChannelErrors, MsgTypeRiskAlert, violation)
}

// BroadcastAgentStatus broadcasts agent status to every client.
func (h *Hub) BroadcastAgentStatus(status autonomous.AgentStatus) {
	h.Broadcast(MsgTypeAgentStatus, status)
}

// Attach registers client and starts its pumps. It reports false if the hub
// has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.register <- client:
	case <-h.done:
		return false
	}
	select {
	case <-client.registered:
	case <-h.done:
		return false
	}
	go client.WritePump()
	go client.ReadPump()
	return true
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewClient creates a new client.
func NewClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:            id,
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 256),
		subscriptions: make(map[string]bool),
		registered:    make(chan struct{}),
	}
}

// ReadPump pumps messages from the WebSocket to the hub.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error", zap.Error(err))
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Warn("Invalid WebSocket message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case MsgTypeSubscribe:
			c.hub.Subscribe(c, msg.Channel)
			c.ack(msg)
		case MsgTypeUnsubscribe:
			c.hub.Unsubscribe(c, msg.Channel)
			c.ack(msg)
		}
	}
}

func (c *Client) ack(msg WSMessage) {
	data, err := encodeMessage(MsgTypeAck, msg.Channel, map[string]string{"type": string(msg.Type)})
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// WritePump pumps messages from the hub to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	TypePrintJob      MessageType = "print_job"
	TypePrintFallback MessageType = "print_fallback"
	TypeNotification  MessageType = "notification"
	TypeHeartbeat     MessageType = "heartbeat"
	TypeAuthResponse  MessageType = "auth_response"
)

// ClientType represents the type of connected client
type ClientType string

const (
	ClientKasir   ClientType = "kasir"
	ClientDisplay ClientType = "display"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	ClientID  string          `json:"client_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID          string
	Type        ClientType
	Connection  *websocket.Conn
	Send        chan []byte
	Server      *Server
	ConnectedAt time.Time
	RemoteAddr  string
}

// Server pushes print jobs and notifications to connected kasir
// terminals and announces itself on the local network via mDNS.
type Server struct {
	clients      map[string]*Client
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *Client
	upgrader     websocket.Upgrader
	mu           sync.RWMutex
	port         string
	mdnsShutdown chan bool
}

// NewServer creates a new WebSocket server listening on port (":8081").
func NewServer(port string) *Server {
	return &Server{
		clients:      make(map[string]*Client),
		broadcast:    make(chan []byte),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		port:         port,
		mdnsShutdown: make(chan bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Terminals live on the local network
				return true
			},
		},
	}
}

// Start runs the hub and serves WebSocket upgrades. Blocks.
func (s *Server) Start() error {
	go s.run()
	go s.startMDNS()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	log.Printf("WebSocket server starting on port %s", s.port)
	return http.ListenAndServe(s.port, mux)
}

// startMDNS announces the server on the local network so Android
// terminals can find it without typing an address.
func (s *Server) startMDNS() {
	portStr := strings.TrimPrefix(s.port, ":")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Printf("mDNS: Invalid port format %s: %v", s.port, err)
		return
	}

	server, err := zeroconf.Register(
		"KasirApp Server",
		"_kasirapp._tcp",
		"local.",
		port,
		[]string{"version=1.0"},
		nil,
	)
	if err != nil {
		log.Printf("mDNS: Failed to register service: %v", err)
		return
	}

	log.Println("mDNS: KasirApp server announced on _kasirapp._tcp.local")

	<-s.mdnsShutdown
	server.Shutdown()
	log.Println("mDNS: Service announcement stopped")
}

// Stop shuts down mDNS and disconnects every client.
func (s *Server) Stop() {
	select {
	case s.mdnsShutdown <- true:
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, client := range s.clients {
		close(client.Send)
		client.Connection.Close()
	}
	s.clients = make(map[string]*Client)
}

func (s *Server) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("Client registered: %s (type: %s)", client.ID, client.Type)
			s.sendAuthResponse(client)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.Send)
				log.Printf("Client unregistered: %s", client.ID)
			}
			s.mu.Unlock()

		case message := <-s.broadcast:
			s.mu.Lock()
			for id, client := range s.clients {
				select {
				case client.Send <- message:
				default:
					// Buffer full, drop the client
					delete(s.clients, id)
					close(client.Send)
				}
			}
			s.mu.Unlock()

		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientType := ClientType(r.URL.Query().Get("type"))
	if clientType == "" {
		clientType = ClientKasir
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:          generateClientID(),
		Type:        clientType,
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Server:      s,
		ConnectedAt: time.Now(),
		RemoteAddr:  r.RemoteAddr,
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": clientCount,
		"time":    time.Now(),
	})
}

func (c *Client) readPump() {
	defer func() {
		c.Server.unregister <- c
		c.Connection.Close()
	}()

	c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Connection.SetPongHandler(func(string) error {
		c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := c.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var message Message
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			log.Printf("Error parsing message: %v", err)
			continue
		}

		c.handleMessage(&message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Connection.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message *Message) {
	switch message.Type {
	case TypeHeartbeat:
		c.sendMessage(Message{
			Type:      TypeHeartbeat,
			Timestamp: time.Now(),
			Data:      json.RawMessage(`{"status":"alive"}`),
		})

	case TypeNotification:
		// Relay notifications between terminals
		c.Server.broadcastToAll(message)

	default:
		log.Printf("Unknown message type: %s", message.Type)
	}
}

func (c *Client) sendMessage(message Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return fmt.Errorf("client send channel is full")
	}
}

// BroadcastMessage broadcasts a message to all connected clients
func (s *Server) BroadcastMessage(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	s.broadcast <- data
}

func (s *Server) broadcastToAll(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send to client %s", client.ID)
		}
	}
}

// NotifyPrintFallback tells every terminal that a handheld print attempt
// fell back to the browser path, so the cashier knows why a print dialog
// appeared instead of the receipt printer.
func (s *Server) NotifyPrintFallback(notaID string, reason string) {
	data, _ := json.Marshal(map[string]interface{}{
		"nota_id": notaID,
		"reason":  reason,
		"time":    time.Now(),
	})

	s.broadcastToAll(&Message{
		Type:      TypePrintFallback,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendPrintJob pushes a rendered print dispatch to every terminal.
func (s *Server) SendPrintJob(job interface{}) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Printf("Error marshaling print job: %v", err)
		return
	}

	s.broadcastToAll(&Message{
		Type:      TypePrintJob,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendNotification broadcasts a free-form notification.
func (s *Server) SendNotification(title, body string) {
	data, _ := json.Marshal(map[string]string{
		"title": title,
		"body":  body,
	})

	s.broadcastToAll(&Message{
		Type:      TypeNotification,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (s *Server) sendHeartbeat() {
	s.broadcastToAll(&Message{
		Type:      TypeHeartbeat,
		Timestamp: time.Now(),
		Data:      json.RawMessage(`{"ping":"pong"}`),
	})
}

func (s *Server) sendAuthResponse(client *Client) {
	data, _ := json.Marshal(map[string]interface{}{
		"success":   true,
		"client_id": client.ID,
	})

	client.sendMessage(Message{
		Type:      TypeAuthResponse,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// GetServerStatus returns current server status
func (s *Server) GetServerStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kasirCount := 0
	displayCount := 0
	for _, client := range s.clients {
		switch client.Type {
		case ClientKasir:
			kasirCount++
		case ClientDisplay:
			displayCount++
		}
	}

	return map[string]interface{}{
		"running":         true,
		"port":            s.port,
		"total_clients":   len(s.clients),
		"kasir_clients":   kasirCount,
		"display_clients": displayCount,
	}
}

// GetPort returns the server port
func (s *Server) GetPort() string {
	return s.port
}

func generateClientID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

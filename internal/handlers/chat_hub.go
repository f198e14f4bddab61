// classnow/internal/handlers/chat_hub.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Githubuser102234/ClassNow/internal/authz"
	"github.com/Githubuser102234/ClassNow/models"
)

// --- Глобальные переменные и константы ---

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Для разработки разрешаем все источники
	},
}

// GlobalHub - единственный экземпляр хаба для всего приложения.
var GlobalHub = NewHub()

// --- Структуры ---

// Event - кадр, уходящий подписчикам класса.
type Event struct {
	Type    string             `json:"type"`
	Payload models.ChatMessage `json:"payload"`
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	classID string
	userID  uint
}

type roomMessage struct {
	classID string
	data    []byte
}

// Hub раздает события чата подписчикам по классам. Подписка живет в
// рамках одного соединения; после обрыва клиент переподключается и
// добирает историю через REST.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
}

// --- Методы Хаба ---

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan roomMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.rooms[client.classID] == nil {
				h.rooms[client.classID] = make(map[*Client]bool)
			}
			h.rooms[client.classID][client] = true
			slog.Info("Chat subscriber registered", "class_id", client.classID, "user_id", client.userID)

		case client := <-h.unregister:
			if room, ok := h.rooms[client.classID]; ok && room[client] {
				delete(room, client)
				close(client.send)
				if len(room) == 0 {
					delete(h.rooms, client.classID)
				}
			}
			slog.Info("Chat subscriber unregistered", "class_id", client.classID, "user_id", client.userID)

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.classID] {
				select {
				case client.send <- msg.data:
				default:
					// Переполненный клиент отключается, чтобы не тормозить
					// остальных.
					delete(h.rooms[msg.classID], client)
					close(client.send)
				}
			}
		}
	}
}

// Publish рассылает новое сообщение чата всем подписчикам класса.
// Вызывается из REST-обработчика после успешной записи в хранилище.
func (h *Hub) Publish(classID string, msg models.ChatMessage) {
	data, err := json.Marshal(Event{Type: "chat_message", Payload: msg})
	if err != nil {
		slog.Error("Failed to marshal chat event", "error", err)
		return
	}
	h.broadcast <- roomMessage{classID: classID, data: data}
}

// --- Клиентские насосы ---

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Входящие кадры не обрабатываем: отправка идет через REST,
		// чтобы сообщения проходили те же проверки авторизации.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ChatWSEndpoint подписывает клиента на новые сообщения чата класса.
// Доступ тот же, что и у чтения чата: участник, чат не отключен.
func ChatWSEndpoint(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionViewChat)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:     GlobalHub,
		conn:    conn,
		send:    make(chan []byte, 16),
		classID: class.ID,
		userID:  user.ID,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

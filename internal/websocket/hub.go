package websocket

import (
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"statarb/internal/models"
	"statarb/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Hub управляет всеми активными WebSocket соединениями.
//
// Центральный менеджер broadcast: события конвейера (прогоны, сигналы,
// намерения, уведомления) доставляются всем подключенным клиентам без
// polling. Поток сообщений односторонний, от сервера к клиенту.
//
// Использование:
//  1. hub := NewHub(logger)
//  2. go hub.Run()
//  3. hub.BroadcastRunUpdate(summary) и т.д.
type Hub struct {
	clients map[*Client]bool

	// Broadcast канал для отправки сообщений всем клиентам
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client

	// Сообщения, сброшенные из-за переполнения broadcast-канала
	dropped atomic.Int64

	done chan struct{}

	logger *utils.Logger

	mu sync.RWMutex
}

// NewHub создает новый Hub
func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("websocket"),
	}
}

// Run запускает главный цикл Hub.
//
// Должен запускаться в отдельной горутине: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", utils.Int("total", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", utils.Int("total", total))

		case message := <-h.broadcast:
			// Копируем список клиентов под коротким RLock,
			// отправляем без блокировки register/unregister
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Клиент не успевает вычитывать - отключаем
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				total := len(h.clients)
				h.mu.Unlock()
				h.logger.Warn("removed slow clients",
					utils.Int("removed", len(toRemove)),
					utils.Int("total", total))
			}
		}
	}
}

// Broadcast сериализует сообщение и рассылает всем клиентам
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal broadcast message", utils.Err(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// Канал переполнен: событие наблюдаемости теряем, не блокируя конвейер
		h.dropped.Add(1)
	}
}

// Stop завершает главный цикл и отключает всех клиентов
func (h *Hub) Stop() {
	close(h.done)
}

// DroppedMessages возвращает количество сброшенных сообщений
func (h *Hub) DroppedMessages() int64 {
	return h.dropped.Load()
}

// BroadcastRunUpdate отправляет состояние/итог прогона
func (h *Hub) BroadcastRunUpdate(summary *models.RunSummary) {
	h.Broadcast(NewRunUpdateMessage(summary))
}

// BroadcastSignal отправляет сигнал по паре
func (h *Hub) BroadcastSignal(sig *models.Signal) {
	h.Broadcast(NewSignalMessage(sig))
}

// BroadcastIntent отправляет ордер-намерение
func (h *Hub) BroadcastIntent(intent *models.OrderIntent) {
	h.Broadcast(NewIntentMessage(intent))
}

// BroadcastNotification отправляет уведомление журнала
func (h *Hub) BroadcastNotification(n *models.Notification) {
	h.Broadcast(NewNotificationMessage(n))
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

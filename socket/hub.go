package socket

import (
	"context"
	"sync"

	"pagenest/internal/page/model"
	"pagenest/pkg/logger"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// ChangeEvent is a row-level change notification for one user's pages. Every
// session of that user receives it, including the one that caused the change.
type ChangeEvent struct {
	Action string `json:"action"`
	UserID string `json:"user_id"`
	PageID string `json:"page_id"`
}

// PageStore is the slice of the page service a session needs: ownership-checked
// reads plus the draft save the autosave controller flushes through.
type PageStore interface {
	Get(ctx context.Context, userID, pageID string) (model.Page, error)
	List(ctx context.Context, userID string) ([]model.Page, error)
	Save(ctx context.Context, userID string, req model.SavePageRequest) error
}

// Hub routes change events to the open sessions of each user. Rooms are keyed
// by user id: a user's tabs all share one room and stay eventually consistent
// through full reloads on every event.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan ChangeEvent
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan ChangeEvent),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Notify publishes a change event. Callers are the mutation paths of the page
// service; the hub fans the event out to the affected user's sessions.
func (h *Hub) Notify(action, userID, pageID string) {
	h.Broadcast <- ChangeEvent{Action: action, UserID: userID, PageID: pageID}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()
			logger.Sugar.Infof("Session joined for user %s", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.UserID][client]; ok {
				delete(h.Rooms[client.UserID], client)
				close(client.Events)
				if len(h.Rooms[client.UserID]) == 0 {
					delete(h.Rooms, client.UserID)
					logger.Sugar.Infof("Closed empty room for user %s", client.UserID)
				}
			}
			h.mu.Unlock()

		case ev := <-h.Broadcast:
			h.mu.Lock()
			clients := make([]*Client, 0, len(h.Rooms[ev.UserID]))
			for client := range h.Rooms[ev.UserID] {
				clients = append(clients, client)
			}
			h.mu.Unlock()

			// Deliver outside the lock. A full event buffer means the session
			// is lagging badly; the event is dropped rather than blocking the
			// hub, and the next event will trigger the reload anyway.
			for _, client := range clients {
				select {
				case client.Events <- ev:
				default:
					logger.Sugar.Warnf("Event buffer full for a session of user %s, dropping %s", ev.UserID, ev.Action)
				}
			}
		}
	}
}

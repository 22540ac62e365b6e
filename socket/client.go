package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"pagenest/internal/autosave"
	"pagenest/internal/page/model"
	"pagenest/internal/page/tree"
	"pagenest/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	// Inbound.
	OpenPageType     = "OPEN_PAGE"     // open a page: reseed autosave, reply with PAGE + TREE
	EditType         = "EDIT"          // buffer title/content/icon edits for debounced persistence
	ToggleExpandType = "TOGGLE_EXPAND" // flip a node's expand state, local only

	// Outbound.
	PageType  = "PAGE"  // full page row for the session's open page
	TreeType  = "TREE"  // visible rows of the rebuilt page tree
	ErrorType = "ERROR" // load failure; payload carries the redirect target
)

type WSMessage struct {
	Type    string          `json:"type"`
	PageID  string          `json:"page_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EditPayload carries partial buffer updates; nil fields are untouched.
type EditPayload struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Icon    *string `json:"icon"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin allows connections from the dev frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one browser session: it holds the expand state of the sidebar
// tree, the autosave controller for whichever page is open, and the cached
// page listing the tree is rendered from.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Store  PageStore
	Send   chan []byte
	Events chan ChangeEvent

	saver *autosave.Controller
	done  chan struct{}

	mu        sync.Mutex
	expanded  map[string]bool
	lastPages []model.Page
}

// ServeWs upgrades the connection and starts the session's pumps.
func ServeWs(hub *Hub, store PageStore, saveDelay time.Duration, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:      hub,
		Conn:     conn,
		UserID:   userID,
		Store:    store,
		Send:     make(chan []byte, 256),
		Events:   make(chan ChangeEvent, 16),
		done:     make(chan struct{}),
		expanded: make(map[string]bool),
	}
	client.saver = autosave.New(saveDelay, client.persistDraft)

	client.Hub.Register <- client

	go client.writePump()
	go client.reloadLoop()
	go client.readPump()
}

func (c *Client) persistDraft(ctx context.Context, d autosave.Draft) error {
	return c.Store.Save(ctx, c.UserID, model.SavePageRequest{
		PageID:  d.PageID,
		Title:   d.Title,
		Content: d.Content,
		Icon:    d.Icon,
	})
}

func (c *Client) readPump() {
	defer func() {
		// A pending draft is dropped, not flushed: navigating away inside the
		// debounce window loses the final edit.
		c.saver.Close()
		c.Hub.Unregister <- c
		c.Conn.Close()
		close(c.done)
	}()

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		switch msg.Type {
		case OpenPageType:
			c.openPage(msg.PageID)
		case EditType:
			var edit EditPayload
			if err := json.Unmarshal(msg.Payload, &edit); err != nil {
				logger.Sugar.Errorf("Error unmarshalling edit payload: %v", err)
				continue
			}
			if edit.Title != nil {
				c.saver.SetTitle(*edit.Title)
			}
			if edit.Content != nil {
				c.saver.SetContent(*edit.Content)
			}
			if edit.Icon != nil {
				c.saver.SetIcon(*edit.Icon)
			}
		case ToggleExpandType:
			c.toggleExpand(msg.PageID)
		default:
			logger.Sugar.Warnf("Unknown message type %q from user %s", msg.Type, c.UserID)
		}
	}
}

// openPage loads the requested page, reseeds the autosave buffers from it and
// replies with the page plus a fresh tree. A load failure (missing page,
// foreign owner) sends the session back to the application root.
func (c *Client) openPage(pageID string) {
	p, err := c.Store.Get(context.Background(), c.UserID, pageID)
	if err != nil {
		c.sendJSON(ErrorType, pageID, map[string]string{"redirect": "/"})
		return
	}

	c.saver.Seed(p)
	c.sendJSON(PageType, p.ID, p)
	c.reload()
}

// toggleExpand flips the node's expand state and re-renders from the cached
// listing. Purely local: no backend call, no cascading collapse of descendants.
func (c *Client) toggleExpand(pageID string) {
	c.mu.Lock()
	if c.expanded[pageID] {
		delete(c.expanded, pageID)
	} else {
		c.expanded[pageID] = true
	}
	rows := c.renderLocked()
	c.mu.Unlock()

	c.sendJSON(TreeType, "", rows)
}

// reloadLoop turns every change event into a full re-query and tree push.
// Deliberately unconsolidated: a burst of N events produces N reloads.
func (c *Client) reloadLoop() {
	for {
		select {
		case _, ok := <-c.Events:
			if !ok {
				return
			}
			c.reload()
		case <-c.done:
			return
		}
	}
}

func (c *Client) reload() {
	pages, err := c.Store.List(context.Background(), c.UserID)
	if err != nil {
		logger.Sugar.Errorf("Failed to reload pages for user %s: %v", c.UserID, err)
		return
	}

	c.mu.Lock()
	c.lastPages = pages
	rows := c.renderLocked()
	c.mu.Unlock()

	c.sendJSON(TreeType, "", rows)
}

func (c *Client) renderLocked() []tree.Row {
	forest := tree.Build(c.lastPages)
	return tree.Flatten(forest, c.expanded)
}

func (c *Client) sendJSON(msgType, pageID string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", msgType, err)
		return
	}
	raw, err := json.Marshal(WSMessage{Type: msgType, PageID: pageID, Payload: body})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s message: %v", msgType, err)
		return
	}

	select {
	case c.Send <- raw:
	default:
		logger.Sugar.Warnf("Send buffer full for a session of user %s, dropping %s", c.UserID, msgType)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.Send:
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		case <-c.done:
			return
		}
	}
}

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/rs/zerolog"
)

// ChatSender persists a chat message on behalf of a connected user
type ChatSender interface {
	SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
}

// PresenceTracker records online transitions of users
type PresenceTracker interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64, at time.Time) error
}

// Hub maintains the set of active clients and routes events between them
type Hub struct {
	// Registered clients organized by user ID; a user may hold several sockets
	clients map[int64]map[*Client]bool

	// Call rooms organized by room ID
	rooms map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	// Mutex for concurrent access to clients and rooms
	mu sync.RWMutex

	chat     ChatSender
	presence PresenceTracker

	// Timeout for persistence and presence calls made on behalf of a client
	opTimeout time.Duration

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(chat ChatSender, presence PresenceTracker, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		chat:       chat,
		presence:   presence,
		opTimeout:  5 * time.Second,
		logger:     logger,
	}
}

// Run handles client registrations until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register hands a new client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister hands a closing client to the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.removeClient(client)
	}
}

func (h *Hub) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.opTimeout)
}

// registerClient adds a client; the first socket of a user brings it online
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	first := len(h.clients[client.userID]) == 1
	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", client.userID).
		Bool("first", first).
		Msg("Client registered")

	if first {
		h.markOnline(client.userID)
	}
}

// removeClient drops a client from the hub. It is safe to call more than once.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	sockets, ok := h.clients[client.userID]
	if !ok || !sockets[client] {
		h.mu.Unlock()
		return
	}
	delete(sockets, client)
	client.closeSend()
	for roomID := range client.rooms {
		h.leaveRoomLocked(client, roomID)
	}
	last := len(sockets) == 0
	if last {
		delete(h.clients, client.userID)
	}
	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", client.userID).
		Bool("last", last).
		Msg("Client unregistered")

	if last {
		h.markOffline(client.userID, time.Now())
	}
}

func (h *Hub) markOnline(userID int64) {
	if h.presence != nil {
		ctx, cancel := h.opContext()
		if err := h.presence.SetOnline(ctx, userID); err != nil {
			h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to record online status")
		}
		cancel()
	}
	h.BroadcastStatus()
}

func (h *Hub) markOffline(userID int64, at time.Time) {
	if h.presence != nil {
		ctx, cancel := h.opContext()
		if err := h.presence.SetOffline(ctx, userID, at); err != nil {
			h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to record offline status")
		}
		cancel()
	}
	h.BroadcastStatus()
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	all := make([]*Client, 0)
	for _, sockets := range h.clients {
		for c := range sockets {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.removeClient(c)
	}
}

// OnlineUsers lists the users holding at least one socket, in ascending order
func (h *Hub) OnlineUsers() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int64, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsOnline reports whether userID holds at least one socket
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// deliver queues data on each client still registered. Clients whose buffer is full are dropped.
func (h *Hub) deliver(targets []*Client, data []byte) int {
	sent := 0
	var slow []*Client

	// send channels are only closed under the write lock
	h.mu.RLock()
	for _, c := range targets {
		if !h.clients[c.userID][c] {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().Int64("userID", c.userID).Msg("Dropping slow client")
		h.removeClient(c)
	}
	return sent
}

// collect snapshots the clients matching keep
func (h *Hub) collect(keep func(*Client) bool) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*Client
	for _, sockets := range h.clients {
		for c := range sockets {
			if keep(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (h *Hub) userClients(userID int64) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) send(targets []*Client, event string, data any) int {
	if len(targets) == 0 {
		return 0
	}
	payload, err := encode(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event")
		return 0
	}
	return h.deliver(targets, payload)
}

// SendToUser emits an event on every socket of userID. It reports whether any socket received it;
// events for users without sockets are dropped.
func (h *Hub) SendToUser(userID int64, event string, data any) bool {
	return h.send(h.userClients(userID), event, data) > 0
}

// BroadcastToCollege emits an event to every connected user of a college
func (h *Hub) BroadcastToCollege(collegeID int64, event string, data any) {
	n := h.send(h.collect(func(c *Client) bool { return c.collegeID == collegeID }), event, data)
	h.logger.Debug().Int64("collegeID", collegeID).Str("event", event).Int("clientCount", n).Msg("Event broadcasted to college")
}

// Broadcast emits an event to every connected client
func (h *Hub) Broadcast(event string, data any) {
	h.send(h.collect(func(*Client) bool { return true }), event, data)
}

// BroadcastStatus emits the current online user list to everyone
func (h *Hub) BroadcastStatus() {
	h.Broadcast(EventUpdateUserStatus, StatusPayload{OnlineUsers: h.OnlineUsers()})
}

// joinRoom adds client to a call room and returns the other members
func (h *Hub) joinRoom(client *Client, roomID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true

	return h.othersLocked(client, roomID)
}

// leaveRoom removes client from a call room and returns the remaining members.
// joined is false when client was not in the room.
func (h *Hub) leaveRoom(client *Client, roomID string) (others []*Client, joined bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.rooms[roomID][client] {
		return nil, false
	}
	others = h.othersLocked(client, roomID)
	h.leaveRoomLocked(client, roomID)
	return others, true
}

func (h *Hub) othersLocked(client *Client, roomID string) []*Client {
	var out []*Client
	for c := range h.rooms[roomID] {
		if c != client {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) leaveRoomLocked(client *Client, roomID string) {
	delete(client.rooms, roomID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// RoomSize returns the number of sockets in a call room
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

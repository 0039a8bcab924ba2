package websocket

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
)

func isSyntaxError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// handleEvent dispatches one client frame. Frames of a socket are handled in order.
func (h *Hub) handleEvent(c *Client, env *Envelope) {
	switch env.Event {
	case EventUserOnline:
		h.BroadcastStatus()

	case EventSendMessage:
		var p SendMessagePayload
		if !h.decode(c, env, &p) {
			return
		}
		h.handleSendMessage(c, p)

	case EventTyping, EventStopTyping:
		var p TypingPayload
		if !h.decode(c, env, &p) || p.ReceiverID == 0 {
			return
		}
		h.SendToUser(p.ReceiverID, env.Event, TypingPayload{ReceiverID: p.ReceiverID, SenderID: c.userID})

	case EventJoinRoom:
		var p JoinRoomPayload
		if !h.decode(c, env, &p) {
			return
		}
		if p.RoomID == "" {
			h.sendError(c, env.Event, "roomId is required")
			return
		}
		if !callMember(c.userID, p.RoomID) {
			c.logger.Warn().Str("roomID", p.RoomID).Msg("Refused call room join")
			h.sendError(c, env.Event, "not a participant of this call")
			return
		}
		others := h.joinRoom(c, p.RoomID)
		h.send(others, EventRemotePeerID, RemotePeerPayload{PeerID: p.PeerID, UserID: c.userID})
		c.logger.Debug().Str("roomID", p.RoomID).Int("peers", len(others)).Msg("Joined call room")

	case EventEndCall:
		var p EndCallPayload
		if !h.decode(c, env, &p) || p.RoomID == "" {
			return
		}
		// ending a call the socket never joined is ignored
		others, joined := h.leaveRoom(c, p.RoomID)
		if !joined {
			return
		}
		h.send(others, EventCallEnded, EndCallPayload{RoomID: p.RoomID, UserID: c.userID})

	default:
		h.sendError(c, env.Event, "unknown event")
	}
}

// callMember reports whether userID is one of the two users of a call room
func callMember(userID int64, roomID string) bool {
	a, b, ok := models.ParseRoomID(roomID)
	return ok && (userID == a || userID == b)
}

func (h *Hub) decode(c *Client, env *Envelope, v any) bool {
	if len(env.Data) == 0 {
		h.sendError(c, env.Event, "missing data")
		return false
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		h.sendError(c, env.Event, "invalid data")
		return false
	}
	return true
}

// handleSendMessage persists a chat message, then pushes it to the receiver if connected and acks the sender
func (h *Hub) handleSendMessage(c *Client, p SendMessagePayload) {
	if p.ReceiverID == 0 || strings.TrimSpace(p.Content) == "" {
		h.sendError(c, EventSendMessage, "receiverId and content are required")
		return
	}
	if h.chat == nil {
		h.sendError(c, EventSendMessage, "messaging unavailable")
		return
	}

	ctx, cancel := h.opContext()
	defer cancel()

	msg, err := h.chat.SendMessage(ctx, c.userID, p.ReceiverID, p.Content)
	if err != nil {
		c.logger.Error().Err(err).Int64("receiverID", p.ReceiverID).Msg("Failed to persist socket message")
		h.sendError(c, EventSendMessage, apperrors.Message(err, "failed to send message"))
		return
	}

	delivered := h.SendToUser(p.ReceiverID, EventReceiveMessage, msg)
	h.SendToUser(c.userID, EventMessageSent, msg)

	c.logger.Debug().
		Int64("messageID", msg.ID).
		Str("roomID", msg.RoomID).
		Bool("delivered", delivered).
		Msg("Socket message sent")
}

func (h *Hub) sendError(c *Client, event, message string) {
	h.send([]*Client{c}, EventError, ErrorPayload{Event: event, Message: message})
}

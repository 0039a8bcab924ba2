package websocket

import "encoding/json"

// Client to server events
const (
	EventUserOnline  = "userOnline"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventJoinRoom    = "joinRoom"
	EventEndCall     = "end-call"
)

// Server to client events
const (
	EventUpdateUserStatus = "updateUserStatus"
	EventReceiveMessage   = "receiveMessage"
	EventMessageSent      = "messageSent"
	EventRemotePeerID     = "remote-peer-id"
	EventCallEnded        = "call-ended"
	EventNewPost          = "new-post"
	EventNewBounty        = "newBounty"
	EventError            = "error"
)

// Envelope is the frame exchanged over the socket
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

// SendMessagePayload is the data of a sendMessage event
type SendMessagePayload struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

// TypingPayload is the data of typing and stopTyping events
type TypingPayload struct {
	ReceiverID int64 `json:"receiverId"`
	SenderID   int64 `json:"senderId,omitempty"`
}

// JoinRoomPayload is the data of a joinRoom event
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	PeerID string `json:"peerId"`
}

// RemotePeerPayload announces a peer joining a call room
type RemotePeerPayload struct {
	PeerID string `json:"peerId"`
	UserID int64  `json:"userId"`
}

// EndCallPayload is the data of end-call and call-ended events
type EndCallPayload struct {
	RoomID string `json:"roomId"`
	UserID int64  `json:"userId,omitempty"`
}

// StatusPayload lists the users with at least one live socket
type StatusPayload struct {
	OnlineUsers []int64 `json:"onlineUsers"`
}

// ErrorPayload reports a rejected client event
type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

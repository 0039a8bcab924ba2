package dto

import (
	"time"

	"github.com/campusconnect/backend/internal/app/models"
)

// SendMessageRequest is a REST fallback for sending a chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// MessageHistoryQuery pages backwards through a conversation
type MessageHistoryQuery struct {
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit  int        `form:"limit" binding:"omitempty,min=1,max=200"`
}

// ConnectionsQuery selects the audience of the connection list
type ConnectionsQuery struct {
	Variant string `form:"variant" binding:"omitempty,oneof=general alumni junior director"`
}

// MessageResponse is a persisted chat message
type MessageResponse struct {
	ID              int64     `json:"id"`
	SenderID        int64     `json:"senderId"`
	ReceiverID      int64     `json:"receiverId"`
	Content         string    `json:"content"`
	RoomID          string    `json:"roomId"`
	MessageType     string    `json:"messageType"`
	IsCampusMessage bool      `json:"isCampusMessage"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewMessageResponse converts a message into its API shape
func NewMessageResponse(m *models.Message) *MessageResponse {
	return &MessageResponse{
		ID:              m.ID,
		SenderID:        m.SenderID,
		ReceiverID:      m.ReceiverID,
		Content:         m.Content,
		RoomID:          m.RoomID,
		MessageType:     m.MessageType,
		IsCampusMessage: m.IsCampusMessage,
		CreatedAt:       m.CreatedAt,
	}
}

// LastMessageResponse previews the latest message with a connection
type LastMessageResponse struct {
	Content   string    `json:"content"`
	SenderID  int64     `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConnectionResponse is one entry of the ranked connection list
type ConnectionResponse struct {
	User        *UserSummary         `json:"user"`
	RoomID      string               `json:"roomId"`
	Label       string               `json:"label"`
	LastMessage *LastMessageResponse `json:"lastMessage,omitempty"`
}

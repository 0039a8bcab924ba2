package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message is a one-to-one chat message. Messages are append-only.
type Message struct {
	ID              int64     `json:"id" db:"id"`
	SenderID        int64     `json:"senderId" db:"sender_id"`
	ReceiverID      int64     `json:"receiverId" db:"receiver_id"`
	Content         string    `json:"content" db:"content"`
	RoomID          string    `json:"roomId" db:"room_id"`
	MessageType     string    `json:"messageType" db:"message_type"`
	IsCampusMessage bool      `json:"isCampusMessage" db:"is_campus_message"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// RoomID returns the conversation id shared by two users. It is symmetric in its arguments.
func RoomID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// ParseRoomID returns the two users of a room id in the canonical form RoomID produces
func ParseRoomID(roomID string) (a, b int64, ok bool) {
	left, right, found := strings.Cut(roomID, "_")
	if !found {
		return 0, 0, false
	}
	a, errA := strconv.ParseInt(left, 10, 64)
	b, errB := strconv.ParseInt(right, 10, 64)
	if errA != nil || errB != nil || a <= 0 || a >= b || RoomID(a, b) != roomID {
		return 0, 0, false
	}
	return a, b, true
}

// LastMessage is the most recent message exchanged with a counterpart
type LastMessage struct {
	CounterpartID int64     `db:"counterpart_id"`
	Content       string    `db:"content"`
	SenderID      int64     `db:"sender_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// MessageFilter pages through a room's history
type MessageFilter struct {
	RoomID string
	Before *time.Time
	Limit  uint64
}

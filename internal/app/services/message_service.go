package services

import (
	"context"
	"sort"
	"strings"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/campusconnect/backend/internal/app/repositories"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// Connection list variants
const (
	VariantGeneral  = "general"
	VariantAlumni   = "alumni"
	VariantJunior   = "junior"
	VariantDirector = "director"
)

// LabelMessaged marks a connection the caller has exchanged messages with
const LabelMessaged = "messaged"

// audience is the set of users a connection variant ranks
type audience struct {
	roles []models.RoleType
	label string
}

func variantAudience(actor Actor, variant string) (audience, error) {
	switch variant {
	case "", VariantGeneral:
		return audience{roles: []models.RoleType{actor.Role}, label: "same-role-same-college"}, nil
	case VariantAlumni:
		return audience{roles: []models.RoleType{models.RoleAlumni}, label: "same-college-alumni"}, nil
	case VariantJunior:
		return audience{roles: []models.RoleType{models.RoleStudent}, label: "same-college-junior"}, nil
	case VariantDirector:
		return audience{roles: []models.RoleType{models.RoleDirector, models.RoleFaculty}, label: "same-college-staff"}, nil
	}
	return audience{}, apperrors.NewBadRequestError("Unknown connection variant")
}

// MessageService persists one-to-one messages and ranks connections
type MessageService struct {
	messageRepo repositories.IMessageRepository
	userRepo    repositories.IUserRepository
	notifier    Notifier
	logger      zerolog.Logger
}

// NewMessageService creates a new message service
func NewMessageService(
	messageRepo repositories.IMessageRepository,
	userRepo repositories.IUserRepository,
	logger zerolog.Logger,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// SetNotifier attaches the socket hub. The hub itself depends on the service for chat persistence.
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendMessage persists a text message from sender to receiver
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewBadRequestError("Message content is required")
	}
	if receiverID <= 0 {
		return nil, apperrors.NewBadRequestError("Receiver is required")
	}
	if receiverID == senderID {
		return nil, apperrors.NewBadRequestError("You cannot message yourself")
	}
	if _, err := s.userRepo.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		MessageType: models.MessageTypeText,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Send persists a message and pushes it to the receiver's sockets
func (s *MessageService) Send(ctx context.Context, actor Actor, receiverID int64, content string) (*models.Message, error) {
	msg, err := s.SendMessage(ctx, actor.UserID, receiverID, content)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		delivered := s.notifier.SendToUser(receiverID, websocket.EventReceiveMessage, msg)
		s.logger.Debug().Int64("messageID", msg.ID).Bool("delivered", delivered).Msg("Message sent")
	}
	return msg, nil
}

// GetHistory returns the conversation between the caller and other, oldest first
func (s *MessageService) GetHistory(ctx context.Context, actor Actor, otherID int64, query *dto.MessageHistoryQuery) ([]*models.Message, error) {
	if otherID <= 0 {
		return nil, apperrors.NewBadRequestError("User id is required")
	}

	filter := models.MessageFilter{RoomID: models.RoomID(actor.UserID, otherID)}
	if query != nil {
		filter.Before = query.Before
		if query.Limit > 0 {
			filter.Limit = uint64(query.Limit)
		}
	}
	return s.messageRepo.ListByRoom(ctx, filter)
}

// GetConnections ranks the users of the variant's audience. Users the caller has messaged come first,
// most recent conversation first; everyone else follows by name.
func (s *MessageService) GetConnections(ctx context.Context, actor Actor, variant string) ([]*dto.ConnectionResponse, error) {
	aud, err := variantAudience(actor, variant)
	if err != nil {
		return nil, err
	}

	candidates, err := s.userRepo.ListUsers(ctx, repositories.UserFilter{
		CollegeID:   actor.CollegeID,
		Roles:       aud.roles,
		ExcludeID:   actor.UserID,
		OrderByName: true,
	})
	if err != nil {
		return nil, err
	}

	last, err := s.messageRepo.LastMessages(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	return rankConnections(actor.UserID, candidates, last, aud.label), nil
}

// rankConnections orders candidates by conversation recency. Counterparts outside candidates are ignored.
func rankConnections(selfID int64, candidates []*models.User, last []models.LastMessage, label string) []*dto.ConnectionResponse {
	lastBy := make(map[int64]models.LastMessage, len(last))
	for _, m := range last {
		lastBy[m.CounterpartID] = m
	}

	messaged := make([]*dto.ConnectionResponse, 0, len(last))
	rest := make([]*dto.ConnectionResponse, 0, len(candidates))
	for _, u := range candidates {
		conn := &dto.ConnectionResponse{
			User:   dto.NewUserSummary(u),
			RoomID: models.RoomID(selfID, u.ID),
			Label:  label,
		}
		if m, ok := lastBy[u.ID]; ok {
			conn.Label = LabelMessaged
			conn.LastMessage = &dto.LastMessageResponse{
				Content:   m.Content,
				SenderID:  m.SenderID,
				CreatedAt: m.CreatedAt,
			}
			messaged = append(messaged, conn)
			continue
		}
		rest = append(rest, conn)
	}

	sort.SliceStable(messaged, func(i, j int) bool {
		return messaged[i].LastMessage.CreatedAt.After(messaged[j].LastMessage.CreatedAt)
	})
	return append(messaged, rest...)
}

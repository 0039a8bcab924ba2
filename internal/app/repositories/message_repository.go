package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/db"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultHistoryLimit = 100

// IMessageRepository defines chat message database operations
type IMessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	CreateMany(ctx context.Context, msgs []*models.Message) error
	ListByRoom(ctx context.Context, filter models.MessageFilter) ([]*models.Message, error)
	LastMessages(ctx context.Context, userID int64) ([]models.LastMessage, error)
}

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MessageRepository) insertQuery(msg *models.Message) (string, []interface{}, error) {
	if msg.RoomID == "" {
		msg.RoomID = models.RoomID(msg.SenderID, msg.ReceiverID)
	}
	if msg.MessageType == "" {
		msg.MessageType = models.MessageTypeText
	}
	return r.sb.Insert("messages").
		Columns("sender_id", "receiver_id", "content", "room_id", "message_type", "is_campus_message").
		Values(msg.SenderID, msg.ReceiverID, msg.Content, msg.RoomID, msg.MessageType, msg.IsCampusMessage).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
}

// Create persists a message; the room id is derived from the participants when unset
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	sql, args, err := r.insertQuery(msg)
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// CreateMany persists a batch of messages in one transaction
func (r *MessageRepository) CreateMany(ctx context.Context, msgs []*models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, msg := range msgs {
			sql, args, err := r.insertQuery(msg)
			if err != nil {
				return fmt.Errorf("failed to build create message query: %w", err)
			}
			batch.Queue(sql, args...)
		}

		results := tx.SendBatch(ctx, batch)
		for _, msg := range msgs {
			if err := results.QueryRow().Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
				_ = results.Close()
				if dberrors.IsForeignKeyError(err) {
					return apperrors.ErrUserNotFound
				}
				return fmt.Errorf("error creating message: %w", err)
			}
		}
		return results.Close()
	})
}

// ListByRoom returns the most recent messages of a room in ascending time order
func (r *MessageRepository) ListByRoom(ctx context.Context, filter models.MessageFilter) ([]*models.Message, error) {
	limit := filter.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	inner := r.sb.Select("id", "sender_id", "receiver_id", "content", "room_id", "message_type",
		"is_campus_message", "created_at", "updated_at").
		From("messages").
		Where(squirrel.Eq{"room_id": filter.RoomID})
	if filter.Before != nil {
		inner = inner.Where(squirrel.Lt{"created_at": *filter.Before})
	}
	inner = inner.OrderBy("created_at DESC", "id DESC").Limit(limit)

	sql, args, err := r.sb.Select("*").
		FromSelect(inner, "recent").
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.RoomID, &m.MessageType,
			&m.IsCampusMessage, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// LastMessages returns, per counterpart, the most recent message userID sent or received
func (r *MessageRepository) LastMessages(ctx context.Context, userID int64) ([]models.LastMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (counterpart_id) counterpart_id, content, sender_id, created_at
		FROM (
			SELECT receiver_id AS counterpart_id, content, sender_id, created_at, id
			FROM messages WHERE sender_id = $1
			UNION ALL
			SELECT sender_id AS counterpart_id, content, sender_id, created_at, id
			FROM messages WHERE receiver_id = $1
		) exchanged
		WHERE counterpart_id <> $1
		ORDER BY counterpart_id, created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying last messages: %w", err)
	}

	last, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LastMessage])
	if err != nil {
		return nil, fmt.Errorf("error scanning last messages: %w", err)
	}
	return last, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// ConversationRepository handles the append-only group message log
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Append inserts one message and fills in the poster's current username.
func (r *ConversationRepository) Append(ctx context.Context, msg *models.ChatMessage) error {
	err := r.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, msg.PosterID).Scan(&msg.PosterName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NotFound("user not found")
		}
		return storeErr("send message", err)
	}

	query := `
		INSERT INTO conversations (id, group_id, user_id, message_type, message_content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query,
		msg.ID, msg.GroupID, msg.PosterID, msg.MessageType, msg.MessageContent, msg.SentAt,
	)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return errs.NotFound("group or user not found")
		}
		return storeErr("send message", err)
	}
	return nil
}

// Recent returns the newest messages of a group, newest first.
func (r *ConversationRepository) Recent(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT c.id, c.group_id, c.user_id, u.username, c.message_type, c.message_content, c.sent_at
		FROM conversations c
		JOIN users u ON c.user_id = u.id
		WHERE c.group_id = $1
		ORDER BY c.sent_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, groupID, limit)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		err := rows.Scan(&m.ID, &m.GroupID, &m.PosterID, &m.PosterName, &m.MessageType, &m.MessageContent, &m.SentAt)
		if err != nil {
			return nil, storeErr("list messages", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list messages", err)
	}
	return messages, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// GroupRepository handles database operations for groups and their rosters
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateWithMembers inserts a group and its initial member set in a single
// transaction. memberIDs must already contain the creator.
func (r *GroupRepository) CreateWithMembers(ctx context.Context, group *models.Group, memberIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr("create group", err)
	}
	defer tx.Rollback(ctx)

	insertGroup := `
		INSERT INTO groups (id, name, picture_url)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertGroup, group.ID, group.Name, group.PictureURL).Scan(&group.CreatedAt)
	if err != nil {
		return storeErr("create group", err)
	}

	addMembers := `
		INSERT INTO group_members (group_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, addMembers, group.ID, memberIDs); err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return errs.NotFound("one or more initial members not found")
		}
		return storeErr("add initial group members", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("create group", err)
	}
	return nil
}

// AddMembers bulk-inserts memberships, skipping users that already belong,
// and returns how many rows were actually inserted.
func (r *GroupRepository) AddMembers(ctx context.Context, groupID string, userIDs []string) (int, error) {
	query := `
		INSERT INTO group_members (group_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, groupID, userIDs)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return 0, errs.NotFound("group or one or more users not found")
		}
		return 0, storeErr("add group members", err)
	}
	return int(tag.RowsAffected()), nil
}

// Exists checks if a group exists
func (r *GroupRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, storeErr("check group existence", err)
	}
	return exists, nil
}

// IsMember checks whether a user belongs to a group
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	var member bool
	if err := r.db.QueryRow(ctx, query, groupID, userID).Scan(&member); err != nil {
		return false, storeErr("check group membership", err)
	}
	return member, nil
}

// ListForUser returns every group the user belongs to, annotated with the
// latest message of each, most recently active groups first and groups
// with no messages last.
func (r *GroupRepository) ListForUser(ctx context.Context, userID string) ([]models.GroupPreview, error) {
	query := `
		WITH latest_messages AS (
			SELECT DISTINCT ON (group_id) group_id, user_id, message_content, sent_at
			FROM conversations
			ORDER BY group_id, sent_at DESC
		)
		SELECT g.id, g.name, g.picture_url, lm.message_content, lm.sent_at, u.username
		FROM group_members gm
		JOIN groups g ON gm.group_id = g.id
		LEFT JOIN latest_messages lm ON g.id = lm.group_id
		LEFT JOIN users u ON lm.user_id = u.id
		WHERE gm.user_id = $1
		ORDER BY lm.sent_at DESC NULLS LAST, g.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list groups", err)
	}
	defer rows.Close()

	var previews []models.GroupPreview
	for rows.Next() {
		var p models.GroupPreview
		err := rows.Scan(
			&p.GroupID, &p.GroupName, &p.PictureURL,
			&p.LastMessageContent, &p.LastMessageAt, &p.LastMessagePosterName,
		)
		if err != nil {
			return nil, storeErr("list groups", err)
		}
		previews = append(previews, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list groups", err)
	}
	return previews, nil
}

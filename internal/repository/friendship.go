package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// FriendshipRepository handles database operations for friendships
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Create inserts a pending friendship for the canonical pair. The caller
// must pass the pair already ordered. An existing row for the pair, in any
// state, leaves the table untouched and surfaces as Conflict.
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (user_one_id, user_two_id, status, action_user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_one_id, user_two_id) DO NOTHING
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		f.UserOneID, f.UserTwoID, string(f.Status), f.ActionUserID,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.Conflict("a friendship or pending request already exists between these users")
		}
		if isPgCode(err, pgForeignKeyViolation) {
			return errs.NotFound("one or both users not found")
		}
		return storeErr("create friend request", err)
	}
	return nil
}

// RespondPending finalizes a pending request in one conditional update.
// The row must still be pending and must have been initiated by
// requesterID, otherwise nothing matches and NotFound is returned.
func (r *FriendshipRepository) RespondPending(ctx context.Context, userOneID, userTwoID, requesterID, responderID string, status models.FriendshipStatus) error {
	query := `
		UPDATE friendships
		SET status = $1, action_user_id = $2, updated_at = now()
		WHERE user_one_id = $3 AND user_two_id = $4
		  AND status = 'pending' AND action_user_id = $5
	`
	tag, err := r.db.Exec(ctx, query, string(status), responderID, userOneID, userTwoID, requesterID)
	if err != nil {
		return storeErr("respond to friend request", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("no pending friend request found to respond to")
	}
	return nil
}

// CountAccepted returns the number of accepted friendships the user is a
// side of.
func (r *FriendshipRepository) CountAccepted(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM friendships
		WHERE (user_one_id = $1 OR user_two_id = $1) AND status = 'accepted'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, storeErr("count friends", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

const userColumns = "id, username, pfp, description, location, calendar_id, auth_subject, push_token, created_at"

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.PFP, &user.Description, &user.Location,
		&user.CalendarID, &user.AuthSubject, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, auth_subject)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.AuthSubject).Scan(&user.CreatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return errs.Conflict("a user with this identity already exists")
		}
		return storeErr("create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("user not found")
		}
		return nil, storeErr("get user", err)
	}
	return user, nil
}

// GetBySubject retrieves a user by external auth subject
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_subject = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("user not found with the provided sub")
		}
		return nil, storeErr("get user by sub", err)
	}
	return user, nil
}

// Update applies a partial profile update and returns the updated row.
// Only the fields present in upd are touched.
func (r *UserRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Username != nil {
		add("username", *upd.Username)
	}
	if upd.PFP != nil {
		add("pfp", *upd.PFP)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.CalendarID != nil {
		add("calendar_id", *upd.CalendarID)
	}
	if len(set) == 0 {
		return nil, errs.InvalidArgument("no update data provided")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(set, ", "), len(args),
	)
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("user not found")
		}
		if isPgCode(err, pgUniqueViolation) {
			return nil, errs.Conflict("username is already taken")
		}
		return nil, storeErr("update user", err)
	}
	return user, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return storeErr("update push token", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}

// PushToken returns the registered device token for a user, nil when the
// user never registered one.
func (r *UserRepository) PushToken(ctx context.Context, userID string) (*string, error) {
	query := `SELECT push_token FROM users WHERE id = $1`
	var token *string
	err := r.db.QueryRow(ctx, query, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("user not found")
		}
		return nil, storeErr("get push token", err)
	}
	return token, nil
}

// GroupPushTokens returns the device tokens of every member of a group
// except exceptUserID, skipping members without a registered token.
func (r *UserRepository) GroupPushTokens(ctx context.Context, groupID, exceptUserID string) ([]string, error) {
	query := `
		SELECT u.push_token
		FROM users u
		JOIN group_members gm ON u.id = gm.user_id
		WHERE gm.group_id = $1 AND u.id <> $2 AND u.push_token IS NOT NULL
	`
	rows, err := r.db.Query(ctx, query, groupID, exceptUserID)
	if err != nil {
		return nil, storeErr("list group push tokens", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, storeErr("list group push tokens", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list group push tokens", err)
	}
	return tokens, nil
}

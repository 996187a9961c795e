package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// PostRepository handles database operations for posts and their galleries
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post and fills in the stored timestamps
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, event_id, poster_id, title, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		post.ID, post.EventID, post.PosterID, post.Title, post.Description,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return errs.NotFound("event or user not found")
		}
		return storeErr("create post", err)
	}
	return nil
}

// GetDetail returns a post with its poster and its pictures in display
// order.
func (r *PostRepository) GetDetail(ctx context.Context, id string) (*models.PostDetail, error) {
	postQuery := `
		SELECT p.id, p.event_id, p.poster_id, p.title, p.description, p.created_at, p.updated_at,
		       u.id, u.username, u.pfp
		FROM posts p
		JOIN users u ON p.poster_id = u.id
		WHERE p.id = $1
	`
	var detail models.PostDetail
	err := r.db.QueryRow(ctx, postQuery, id).Scan(
		&detail.ID, &detail.EventID, &detail.PosterID, &detail.Title, &detail.Description,
		&detail.CreatedAt, &detail.UpdatedAt,
		&detail.Poster.ID, &detail.Poster.Username, &detail.Poster.PFP,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("post not found")
		}
		return nil, storeErr("get post", err)
	}

	picturesQuery := `
		SELECT id, post_id, picture_url, display_order, uploaded_at
		FROM post_pictures
		WHERE post_id = $1
		ORDER BY display_order ASC, uploaded_at ASC
	`
	rows, err := r.db.Query(ctx, picturesQuery, id)
	if err != nil {
		return nil, storeErr("list post pictures", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PostPicture
		if err := rows.Scan(&p.ID, &p.PostID, &p.PictureURL, &p.DisplayOrder, &p.UploadedAt); err != nil {
			return nil, storeErr("list post pictures", err)
		}
		detail.Pictures = append(detail.Pictures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list post pictures", err)
	}
	if detail.Pictures == nil {
		detail.Pictures = []models.PostPicture{}
	}
	return &detail, nil
}

// AddPicture inserts a post picture after verifying, inside the same
// transaction, that the uploader is the original poster.
func (r *PostRepository) AddPicture(ctx context.Context, pic *models.PostPicture, uploaderID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr("add post picture", err)
	}
	defer tx.Rollback(ctx)

	var posterID string
	err = tx.QueryRow(ctx, `SELECT poster_id FROM posts WHERE id = $1`, pic.PostID).Scan(&posterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NotFound("post not found")
		}
		return storeErr("add post picture", err)
	}
	if posterID != uploaderID {
		return errs.Forbidden("only the original poster can add pictures to a post")
	}

	insert := `
		INSERT INTO post_pictures (id, post_id, picture_url)
		VALUES ($1, $2, $3)
		RETURNING display_order, uploaded_at
	`
	err = tx.QueryRow(ctx, insert, pic.ID, pic.PostID, pic.PictureURL).Scan(&pic.DisplayOrder, &pic.UploadedAt)
	if err != nil {
		return storeErr("add post picture", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("add post picture", err)
	}
	return nil
}

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

const eventColumns = "id, name, description, location, starts_at, created_by, created_at"

// EventRepository handles database operations for events, their member
// rosters and their picture galleries
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// CreateWithCreator inserts an event and enrolls its creator as the first
// member in a single transaction.
func (r *EventRepository) CreateWithCreator(ctx context.Context, event *models.Event) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr("create event", err)
	}
	defer tx.Rollback(ctx)

	insertEvent := `
		INSERT INTO events (id, name, description, location, starts_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertEvent,
		event.ID, event.Name, event.Description, event.Location, event.StartsAt, event.CreatedBy,
	).Scan(&event.CreatedAt)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return errs.NotFound("creator user not found")
		}
		return storeErr("create event", err)
	}

	addCreator := `INSERT INTO event_members (event_id, user_id) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, addCreator, event.ID, event.CreatedBy); err != nil {
		return storeErr("enroll event creator", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("create event", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var event models.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.Description, &event.Location,
		&event.StartsAt, &event.CreatedBy, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("event not found")
		}
		return nil, storeErr("get event", err)
	}
	return &event, nil
}

// Update applies a partial event update and returns the updated row
func (r *EventRepository) Update(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.StartsAt != nil {
		add("starts_at", *upd.StartsAt)
	}
	if len(set) == 0 {
		return nil, errs.InvalidArgument("no update data provided")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE events SET %s WHERE id = $%d RETURNING `+eventColumns,
		strings.Join(set, ", "), len(args),
	)
	var event models.Event
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&event.ID, &event.Name, &event.Description, &event.Location,
		&event.StartsAt, &event.CreatedBy, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("event not found")
		}
		return nil, storeErr("update event", err)
	}
	return &event, nil
}

// Exists checks if an event exists
func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, storeErr("check event existence", err)
	}
	return exists, nil
}

// AddMembers bulk-inserts memberships, skipping users that already belong,
// and returns how many rows were actually inserted.
func (r *EventRepository) AddMembers(ctx context.Context, eventID string, userIDs []string) (int, error) {
	query := `
		INSERT INTO event_members (event_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, eventID, userIDs)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return 0, errs.NotFound("event or one or more users not found")
		}
		return 0, storeErr("add event members", err)
	}
	return int(tag.RowsAffected()), nil
}

// IsMember checks whether a user belongs to an event
func (r *EventRepository) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM event_members WHERE event_id = $1 AND user_id = $2)`
	var member bool
	if err := r.db.QueryRow(ctx, query, eventID, userID).Scan(&member); err != nil {
		return false, storeErr("check event membership", err)
	}
	return member, nil
}

// Tap marks both membership rows as tapped inside one transaction. The
// event lookup and the dual-membership count run in the same transaction
// so the update only happens when both users are still members.
func (r *EventRepository) Tap(ctx context.Context, eventID, tapperID, tappedID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr("record tap", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return storeErr("record tap", err)
	}
	if !exists {
		return errs.NotFound("event not found")
	}

	pair := []string{tapperID, tappedID}
	var memberCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_members WHERE event_id = $1 AND user_id = ANY($2::uuid[])`,
		eventID, pair,
	).Scan(&memberCount)
	if err != nil {
		return storeErr("record tap", err)
	}
	if memberCount != 2 {
		return errs.Forbidden("both users must be members of the event to tap")
	}

	_, err = tx.Exec(ctx,
		`UPDATE event_members SET tapped = TRUE WHERE event_id = $1 AND user_id = ANY($2::uuid[])`,
		eventID, pair,
	)
	if err != nil {
		return storeErr("record tap", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("record tap", err)
	}
	return nil
}

// Attendees lists the users attending an event
func (r *EventRepository) Attendees(ctx context.Context, eventID string) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.pfp
		FROM users u
		JOIN event_members em ON u.id = em.user_id
		WHERE em.event_id = $1
		ORDER BY em.added_at ASC
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, storeErr("list attendees", err)
	}
	defer rows.Close()

	var attendees []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.PFP); err != nil {
			return nil, storeErr("list attendees", err)
		}
		attendees = append(attendees, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list attendees", err)
	}
	return attendees, nil
}

// Pictures lists an event's gallery ordered by display order, then upload
// time, each picture annotated with its uploader's username.
func (r *EventRepository) Pictures(ctx context.Context, eventID string) ([]models.EventPictureDetail, error) {
	query := `
		SELECT ep.id, ep.event_id, ep.uploader_id, ep.picture_url, ep.display_order, ep.uploaded_at, u.username
		FROM event_pictures ep
		JOIN users u ON ep.uploader_id = u.id
		WHERE ep.event_id = $1
		ORDER BY ep.display_order ASC, ep.uploaded_at ASC
	`
	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, storeErr("list event pictures", err)
	}
	defer rows.Close()

	var pictures []models.EventPictureDetail
	for rows.Next() {
		var p models.EventPictureDetail
		err := rows.Scan(&p.ID, &p.EventID, &p.UploaderID, &p.PictureURL, &p.DisplayOrder, &p.UploadedAt, &p.UploaderName)
		if err != nil {
			return nil, storeErr("list event pictures", err)
		}
		pictures = append(pictures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list event pictures", err)
	}
	return pictures, nil
}

// AddPicture inserts a gallery picture and fills in the stored ordering
// and timestamp
func (r *EventRepository) AddPicture(ctx context.Context, pic *models.EventPicture) error {
	query := `
		INSERT INTO event_pictures (id, event_id, uploader_id, picture_url)
		VALUES ($1, $2, $3, $4)
		RETURNING display_order, uploaded_at
	`
	err := r.db.QueryRow(ctx, query, pic.ID, pic.EventID, pic.UploaderID, pic.PictureURL).Scan(&pic.DisplayOrder, &pic.UploadedAt)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return errs.NotFound("event or user not found")
		}
		return storeErr("add event picture", err)
	}
	return nil
}

// CountForUser returns the number of events the user belongs to
func (r *EventRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM event_members WHERE user_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, storeErr("count events", err)
	}
	return count, nil
}

// LatestForUser returns the most recent events the user belongs to, newest
// start first, each annotated with the first picture of its gallery when
// one exists.
func (r *EventRepository) LatestForUser(ctx context.Context, userID string, limit int) ([]models.EventPreview, error) {
	query := `
		WITH first_pictures AS (
			SELECT DISTINCT ON (event_id) event_id, picture_url
			FROM event_pictures
			ORDER BY event_id, display_order ASC, uploaded_at ASC
		)
		SELECT e.id, e.name, e.description, e.location, e.starts_at, fp.picture_url
		FROM events e
		JOIN event_members em ON e.id = em.event_id
		LEFT JOIN first_pictures fp ON e.id = fp.event_id
		WHERE em.user_id = $1
		ORDER BY e.starts_at DESC, e.id
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, storeErr("list latest events", err)
	}
	defer rows.Close()

	var previews []models.EventPreview
	for rows.Next() {
		var p models.EventPreview
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Location, &p.StartsAt, &p.FirstPictureURL)
		if err != nil {
			return nil, storeErr("list latest events", err)
		}
		previews = append(previews, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list latest events", err)
	}
	return previews, nil
}

package models

import "time"

// FriendshipStatus is the lifecycle state of a friendship row.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// User represents a user in the system.
type User struct {
	ID          string    `json:"user_id"`
	Username    string    `json:"username"`
	PFP         *string   `json:"pfp"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	CalendarID  *string   `json:"calendar_id"`
	AuthSubject string    `json:"auth_subject"`
	PushToken   *string   `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserSummary is the compact user shape embedded in rosters and posts.
type UserSummary struct {
	ID       string  `json:"user_id"`
	Username string  `json:"username"`
	PFP      *string `json:"pfp"`
}

// UserUpdate carries the optional profile fields of a partial update. A nil
// field is left unchanged; the set of editable columns is fixed here, never
// assembled from caller-controlled keys.
type UserUpdate struct {
	Username    *string `json:"username"`
	PFP         *string `json:"pfp"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	CalendarID  *string `json:"calendar_id"`
}

// IsEmpty reports whether no field is set.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.PFP == nil && u.Description == nil &&
		u.Location == nil && u.CalendarID == nil
}

// Friendship represents an unordered pair of users stored in canonical
// order (user_one_id < user_two_id).
type Friendship struct {
	UserOneID    string           `json:"user_one_id"`
	UserTwoID    string           `json:"user_two_id"`
	Status       FriendshipStatus `json:"status"`
	ActionUserID string           `json:"action_user_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Event represents a scheduled event.
type Event struct {
	ID          string    `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventUpdate carries the optional event fields of a partial update.
type EventUpdate struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
}

// IsEmpty reports whether no field is set.
func (u EventUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Location == nil &&
		u.StartsAt == nil
}

// EventPicture represents one picture in an event gallery.
type EventPicture struct {
	ID           string    `json:"picture_id"`
	EventID      string    `json:"event_id"`
	UploaderID   string    `json:"uploader_id"`
	PictureURL   string    `json:"picture_url"`
	DisplayOrder int       `json:"display_order"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// EventPictureDetail is an event picture enriched with the uploader's name.
type EventPictureDetail struct {
	EventPicture
	UploaderName string `json:"uploader_name"`
}

// EventDetail is the full shape of a single event: the event itself plus
// its attendee roster and ordered gallery.
type EventDetail struct {
	Event
	Attendees []UserSummary        `json:"attendees"`
	Pictures  []EventPictureDetail `json:"pictures"`
}

// EventPreview is the event shape embedded in a profile, annotated with the
// gallery's first picture when one exists.
type EventPreview struct {
	ID              string    `json:"event_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	StartsAt        time.Time `json:"starts_at"`
	FirstPictureURL *string   `json:"first_picture_url"`
}

// Profile is the aggregate read of a user: identity fields plus friend and
// event counts and the latest events the user belongs to.
type Profile struct {
	UserID       string         `json:"user_id"`
	Username     string         `json:"username"`
	PFP          *string        `json:"pfp"`
	Description  *string        `json:"description"`
	FriendCount  int            `json:"friend_count"`
	EventCount   int            `json:"event_count"`
	LatestEvents []EventPreview `json:"latest_events"`
}

// Group represents a group chat.
type Group struct {
	ID         string    `json:"group_id"`
	Name       string    `json:"name"`
	PictureURL *string   `json:"picture_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// GroupPreview is a group annotated with its most recent message. The
// message fields are nil for a group with no messages yet.
type GroupPreview struct {
	GroupID               string     `json:"group_id"`
	GroupName             string     `json:"group_name"`
	PictureURL            *string    `json:"picture_url"`
	LastMessageContent    *string    `json:"last_message_content"`
	LastMessageAt         *time.Time `json:"last_message_at"`
	LastMessagePosterName *string    `json:"last_message_poster_name"`
}

// ChatMessage is one message in a group conversation, enriched with the
// poster's display name.
type ChatMessage struct {
	ID             string    `json:"message_id"`
	GroupID        string    `json:"group_id"`
	PosterID       string    `json:"poster_id"`
	PosterName     string    `json:"poster_name"`
	MessageType    string    `json:"message_type"`
	MessageContent string    `json:"message_content"`
	SentAt         time.Time `json:"sent_at"`
}

// Post represents a post attached to an event.
type Post struct {
	ID          string    `json:"post_id"`
	EventID     string    `json:"event_id"`
	PosterID    string    `json:"poster_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostPicture represents one picture attached to a post.
type PostPicture struct {
	ID           string    `json:"picture_id"`
	PostID       string    `json:"post_id"`
	PictureURL   string    `json:"picture_url"`
	DisplayOrder int       `json:"display_order"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// PostDetail is the full shape of a single post: the post plus poster info
// and the ordered picture list.
type PostDetail struct {
	Post
	Poster   UserSummary   `json:"poster"`
	Pictures []PostPicture `json:"pictures"`
}

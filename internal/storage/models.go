package storage

import "time"

// User is an account that can log in.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DateJoined   time.Time
}

// Profile holds the editable public details of a user.
type Profile struct {
	ID         int64
	OwnerID    int64
	Username   string // joined from users
	FirstName  string
	LastName   string
	AvatarURL  string
	AvatarName string
	Bio        string
}

// ProfileUpdate lists the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	FirstName  *string
	LastName   *string
	AvatarURL  *string
	AvatarName *string
	Bio        *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.AvatarURL == nil && u.AvatarName == nil && u.Bio == nil
}

// Kind is the type of item a rating is attached to.
type Kind string

const (
	KindEpisode   Kind = "episode"
	KindCharacter Kind = "character"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := tables[k]
	return ok
}

// Rating is one user's rating and collection flag for one item.
type Rating struct {
	ID          int64
	Kind        Kind
	ItemID      int64
	Rating      *int // nil when unrated
	OwnerID     int64
	IsCollected bool
}

// RatingUpdate lists the fields to change. SetRating with a nil Rating clears it.
type RatingUpdate struct {
	SetRating   bool
	Rating      *int
	IsCollected *bool
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // required for pq.StringArray
	"gorm.io/gorm"
)

// User is a directory record for one account. Identity itself (tokens,
// login) lives with the external identity collaborator; this row only
// carries profile attributes and the queue-membership flag the pairing
// protocol mutates.
type User struct {
	ID               string         `gorm:"primaryKey" json:"id"`
	InQueue          bool           `gorm:"index" json:"in_queue"`
	Age              int            `json:"age"`
	Gender           string         `json:"gender"`
	GenderPreference string         `json:"gender_preference"`
	Bio              string         `gorm:"type:text" json:"bio"`
	PhotoRefs        pq.StringArray `gorm:"type:text[]" json:"photo_refs"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the ID is
// not set by the caller.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Profile is the snapshot of a user shown to a counterpart after reveal.
// The queue flag and preference fields stay private to the owner.
type Profile struct {
	ID        string   `json:"id"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Bio       string   `json:"bio"`
	PhotoRefs []string `json:"photo_refs"`
}

// Profile builds the public snapshot for this user.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		PhotoRefs: []string(u.PhotoRefs),
	}
}

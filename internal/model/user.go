package model

import (
	"time"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Subject   string    `db:"subject" json:"subject"` // External identity provider subject
	Email     string    `db:"email" json:"email"`
	Name      *string   `db:"name" json:"name,omitempty"` // Nullable until a profile sync supplies one
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplayName returns the stored name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

package models

import "time"

// Profile represents a user profile row.
// Maps to: profiles table. Created implicitly on first authentication.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	DisplayName *string   `db:"display_name" json:"display_name,omitempty"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

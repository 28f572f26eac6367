package models

import "time"

type User struct {
	ID        string    `json:"id" example:"5b1f3c1e-8f2a-4c55-9d1e-0a7f0c2b9e11"` // User ID
	Name      string    `json:"name" example:"Ada Lovelace"`                        // Display name
	Email     string    `json:"email" example:"ada@example.com"`                    // User email
	Image     string    `json:"image,omitempty"`                                    // Avatar URL (OAuth only)
	Provider  string    `json:"provider" example:"credentials"`                     // credentials or google
	CreatedAt time.Time `json:"createdAt"`
}

package model

import "time"

// Hero is a registered user of the guild.
type Hero struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Level        int       `json:"level"`
	Experience   int       `json:"experience"`
	Class        string    `json:"class"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

const DefaultHeroClass = "Adventurer"

// Contacts returns the addresses notifications can reach.
func (h *Hero) Contacts() []string {
	var out []string
	if h.Email != "" {
		out = append(out, h.Email)
	}
	if h.Phone != "" {
		out = append(out, h.Phone)
	}
	return out
}

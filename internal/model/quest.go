package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks quests for display and notifications.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Low"
	}
}

// ParsePriority accepts the priority name in any case, or its number 1-3.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "1":
		return PriorityLow, nil
	case "medium", "2":
		return PriorityMedium, nil
	case "high", "3":
		return PriorityHigh, nil
	}
	return PriorityLow, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

const (
	MaxTitleLength       = 100
	DefaultRequiredGame  = "tetris"
	DefaultRequiredLevel = 3
	nearDeadlineWindow   = 24 * time.Hour
)

// Quest is one entry in a hero's to-do list.
type Quest struct {
	ID          int64      `json:"id"`
	HeroID      int64      `json:"hero_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Priority    Priority   `json:"priority"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RequiresGameCompletion bool   `json:"requires_game_completion"`
	RequiredGame           string `json:"required_game,omitempty"`
	RequiredGameLevel      int    `json:"required_game_level,omitempty"`
	IsGameCompleted        bool   `json:"is_game_completed"`
}

// Validate checks the fields a hero controls.
func (q *Quest) Validate() error {
	title := strings.TrimSpace(q.Title)
	if title == "" || len([]rune(title)) > MaxTitleLength {
		return ErrInvalidTitle
	}
	if q.Priority < PriorityLow || q.Priority > PriorityHigh {
		return ErrInvalidPriority
	}
	if q.RequiresGameCompletion && (q.RequiredGameLevel < 1 || q.RequiredGameLevel > 10) {
		return ErrInvalidGameTarget
	}
	return nil
}

// IsNearDeadline reports whether an open quest is due within a day of now.
// Overdue quests count as near their deadline.
func (q *Quest) IsNearDeadline(now time.Time) bool {
	return !q.IsCompleted && q.DueDate.Sub(now) <= nearDeadlineWindow
}

// HasPendingChallenge reports whether completion is still gated on a game.
func (q *Quest) HasPendingChallenge() bool {
	return q.RequiresGameCompletion && !q.IsGameCompleted
}

// MarkComplete records completion at the given time.
func (q *Quest) MarkComplete(at time.Time) {
	q.IsCompleted = true
	q.CompletedAt = &at
}

// Status is a short human readable state.
func (q *Quest) Status(now time.Time) string {
	switch {
	case q.IsCompleted:
		return "Completed"
	case q.HasPendingChallenge():
		return fmt.Sprintf("Awaiting %s challenge (level %d)", q.RequiredGame, q.RequiredGameLevel)
	case now.After(q.DueDate):
		return "Overdue"
	case q.IsNearDeadline(now):
		return "Due soon"
	default:
		return "Active"
	}
}

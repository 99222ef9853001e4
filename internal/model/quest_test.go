package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := map[string]Priority{"low": PriorityLow, "Medium": PriorityMedium, " HIGH ": PriorityHigh, "3": PriorityHigh}
	for in, want := range tests {
		got, err := ParsePriority(in)
		if err != nil || got != want {
			t.Errorf("ParsePriority(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestQuestValidate(t *testing.T) {
	ok := Quest{Title: "Slay the dragon", Priority: PriorityHigh}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid quest rejected: %v", err)
	}

	long := Quest{Title: strings.Repeat("a", 101)}
	if err := long.Validate(); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("101-char title: got %v, want ErrInvalidTitle", err)
	}

	blank := Quest{Title: "   "}
	if err := blank.Validate(); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("blank title: got %v, want ErrInvalidTitle", err)
	}

	badGame := Quest{Title: "x", RequiresGameCompletion: true, RequiredGameLevel: 11}
	if err := badGame.Validate(); !errors.Is(err, ErrInvalidGameTarget) {
		t.Errorf("level 11: got %v, want ErrInvalidGameTarget", err)
	}
}

func TestIsNearDeadline(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		q    Quest
		want bool
	}{
		{"due in 23h", Quest{DueDate: now.Add(23 * time.Hour)}, true},
		{"due in exactly 24h", Quest{DueDate: now.Add(24 * time.Hour)}, true},
		{"due in 25h", Quest{DueDate: now.Add(25 * time.Hour)}, false},
		{"overdue", Quest{DueDate: now.Add(-time.Hour)}, true},
		{"completed", Quest{DueDate: now.Add(time.Hour), IsCompleted: true}, false},
	}
	for _, tt := range tests {
		if got := tt.q.IsNearDeadline(now); got != tt.want {
			t.Errorf("%s: IsNearDeadline = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestQuestStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	q := Quest{DueDate: now.Add(72 * time.Hour), RequiresGameCompletion: true, RequiredGame: "tetris", RequiredGameLevel: 3}
	if got := q.Status(now); got != "Awaiting tetris challenge (level 3)" {
		t.Errorf("Status = %q", got)
	}
	q.IsGameCompleted = true
	if got := q.Status(now); got != "Active" {
		t.Errorf("Status = %q, want Active", got)
	}
	q.MarkComplete(now)
	if got := q.Status(now); got != "Completed" || q.CompletedAt == nil {
		t.Errorf("Status = %q, CompletedAt = %v", got, q.CompletedAt)
	}
}

func TestHeroContacts(t *testing.T) {
	h := Hero{Email: "a@b.com"}
	if got := h.Contacts(); len(got) != 1 {
		t.Errorf("Contacts() = %v", got)
	}
	h.Phone = "5551234567"
	if got := h.Contacts(); len(got) != 2 || got[1] != "5551234567" {
		t.Errorf("Contacts() = %v", got)
	}
}

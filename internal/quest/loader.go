package quest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/questguild/questguild/internal/model"
)

// Draft is a quest read from a quest file, not yet owned by a hero.
type Draft struct {
	Title       string
	Description string
	Due         time.Time
	// Priority is nil when the file leaves it to the advisor.
	Priority *model.Priority
	// ChallengeLevel is the target level of a tetris challenge, 0 for none.
	ChallengeLevel int
	Source         string
}

// Quest converts the draft, using fallback when it carries no priority.
func (d Draft) Quest(fallback model.Priority) *model.Quest {
	q := &model.Quest{
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.Due,
		Priority:    fallback,
	}
	if d.Priority != nil {
		q.Priority = *d.Priority
	}
	if d.ChallengeLevel > 0 {
		q.RequiredGame = model.DefaultRequiredGame
		q.RequiredGameLevel = d.ChallengeLevel
	}
	return q
}

var (
	separatorRe = regexp.MustCompile(`(?m)^-{3,}[ \t]*$`)
	dueLayouts  = []string{"2006-01-02 15:04", "2006-01-02"}
)

// LoadQuests reads quest drafts from files or directories of files. Quests
// in a file are separated by a line of three or more dashes and start with
// "KEY: value" headers (TITLE, DUE, PRIORITY, CHALLENGE). The remaining
// lines form the description.
func LoadQuests(paths []string) ([]Draft, error) {
	var drafts []Draft

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if !info.IsDir() {
			d, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			drafts = append(drafts, d...)
			continue
		}

		files, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
		}
		for _, entry := range files {
			if entry.IsDir() {
				continue
			}
			d, err := loadFile(filepath.Join(path, entry.Name()))
			if err != nil {
				return nil, err
			}
			drafts = append(drafts, d...)
		}
	}

	return drafts, nil
}

func loadFile(path string) ([]Draft, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var content strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		content.WriteString(scanner.Text() + "\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file %s: %w", path, err)
	}

	var drafts []Draft
	for i, part := range separatorRe.Split(content.String(), -1) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		d, err := parseDraft(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%s: block %d: %w", path, i+1, err)
		}
		d.Source = path
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func parseDraft(block string) (Draft, error) {
	var d Draft
	lines := strings.Split(block, "\n")

	body := 0
headers:
	for ; body < len(lines); body++ {
		key, value, ok := strings.Cut(lines[body], ":")
		if !ok {
			break
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "TITLE":
			d.Title = value
		case "DUE":
			due, err := ParseDue(value)
			if err != nil {
				return d, err
			}
			d.Due = due
		case "PRIORITY":
			p, err := model.ParsePriority(value)
			if err != nil {
				return d, err
			}
			d.Priority = &p
		case "CHALLENGE":
			level, err := strconv.Atoi(value)
			if err != nil || level < 1 || level > 10 {
				return d, fmt.Errorf("%w: %q", model.ErrInvalidGameTarget, value)
			}
			d.ChallengeLevel = level
		default:
			break headers
		}
	}
	d.Description = strings.TrimSpace(strings.Join(lines[body:], "\n"))

	if d.Title == "" {
		return d, model.ErrInvalidTitle
	}
	if d.Due.IsZero() {
		return d, fmt.Errorf("quest %q has no DUE date", d.Title)
	}
	return d, nil
}

// ParseDue accepts "YYYY-MM-DD" or "YYYY-MM-DD HH:MM" in local time.
func ParseDue(value string) (time.Time, error) {
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid DUE date %q, want YYYY-MM-DD [HH:MM]", value)
}

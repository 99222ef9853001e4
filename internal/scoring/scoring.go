package scoring

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/questguild/questguild/internal/challenge"
)

// Scoring tracks a hero's challenge history for one game and records the
// outcome of the current run.
type Scoring struct {
	storage ScoreStorage
	history ScoreHistory
	key     string
	hero    string
	game    string
}

// InitScoring loads the history of hero for game from storage.
func InitScoring(hero, game string, storage ScoreStorage) (*Scoring, error) {
	s := &Scoring{
		storage: storage,
		key:     calculateHash(hero + "\x00" + game),
		hero:    hero,
		game:    game,
	}

	allEntries, err := s.storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("could not load score history: %w", err)
	}

	filteredEntries := []ScoreHistoryEntry{}
	for _, entry := range allEntries {
		if entry.Hash == s.key {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	sort.SliceStable(filteredEntries, func(i, j int) bool {
		return filteredEntries[i].Score > filteredEntries[j].Score
	})

	s.history.Entries = filteredEntries
	s.history.Attempts = len(filteredEntries)
	for _, e := range filteredEntries {
		if e.Success {
			s.history.Wins++
		}
	}
	if len(filteredEntries) > 0 {
		s.history.HighScoreEntry = &filteredEntries[0]
	}
	return s, nil
}

// Record sets the finished challenge as the current run.
func (s *Scoring) Record(res challenge.Result, questTitle string, at time.Time) {
	s.history.CurrentScore = &ScoreHistoryEntry{
		Hash:      s.key,
		Hero:      s.hero,
		Game:      s.game,
		Score:     res.Score,
		Level:     res.FinalLevel,
		Lines:     res.LinesCleared,
		Success:   res.Success,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Title:     questTitle,
	}
}

// SaveEntries appends the current run to the stored history.
func (s *Scoring) SaveEntries() error {
	if s.history.CurrentScore == nil {
		return nil // Nothing to save.
	}

	allEntries, err := s.storage.LoadAll()
	if err != nil {
		return fmt.Errorf("could not load scores for saving: %w", err)
	}

	updated := make([]ScoreHistoryEntry, 0, len(allEntries)+1)
	for _, entry := range allEntries {
		// Skip a copy of the current run if it was saved before.
		if entry.Hash == s.key && entry.Timestamp == s.history.CurrentScore.Timestamp {
			continue
		}
		updated = append(updated, entry)
	}
	updated = append(updated, *s.history.CurrentScore)

	return s.storage.SaveAll(updated)
}

// Accessor methods for score history, delegating to the history object.
func (s *Scoring) GetHighScore() *ScoreHistoryEntry {
	return s.history.GetHighScoreEntry()
}

func (s *Scoring) GetAttempts() int {
	return s.history.Attempts
}

func (s *Scoring) GetWins() int {
	return s.history.Wins
}

func (s *Scoring) GotHighScore() bool {
	return s.history.GotHighScore()
}

func (s *Scoring) GetNScoreEntries(n int) []ScoreHistoryEntry {
	return s.history.GetNScoreEntries(n)
}

// calculateHash generates a SHA256 hash for the given text.
func calculateHash(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}

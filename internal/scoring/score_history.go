package scoring

// ScoreHistory is one hero's record in one game. Entries are kept best
// score first.
type ScoreHistory struct {
	Entries        []ScoreHistoryEntry
	HighScoreEntry *ScoreHistoryEntry
	// CurrentScore is the run being recorded, not yet part of Entries.
	CurrentScore *ScoreHistoryEntry
	Attempts     int
	Wins         int
}

// ScoreHistoryEntry is a single finished challenge.
type ScoreHistoryEntry struct {
	Hash      string `json:"hash"`
	Hero      string `json:"hero"`
	Game      string `json:"game"`
	Score     int    `json:"score"`
	Level     int    `json:"level"`
	Lines     int    `json:"lines"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// GetHighScoreEntry returns the best previous run, or nil.
func (sh ScoreHistory) GetHighScoreEntry() *ScoreHistoryEntry {
	return sh.HighScoreEntry
}

// GetNScoreEntries returns a copy of at most n best previous runs.
func (sh ScoreHistory) GetNScoreEntries(n int) []ScoreHistoryEntry {
	n = min(max(n, 0), len(sh.Entries))
	return append([]ScoreHistoryEntry(nil), sh.Entries[:n]...)
}

// GotHighScore reports whether the current run matches or beats the best
// previous one. A first run always does.
func (sh ScoreHistory) GotHighScore() bool {
	switch {
	case sh.CurrentScore == nil:
		return false
	case sh.HighScoreEntry == nil:
		return true
	default:
		return sh.CurrentScore.Score >= sh.HighScoreEntry.Score
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS Heroes (
	Id            INTEGER PRIMARY KEY AUTOINCREMENT,
	Username      TEXT NOT NULL UNIQUE,
	Password      TEXT NOT NULL,
	Email         TEXT NOT NULL,
	Phone         TEXT NULL,
	Level         INTEGER NOT NULL DEFAULT 1,
	Experience    INTEGER NOT NULL DEFAULT 0,
	Class         TEXT NOT NULL DEFAULT 'Adventurer',
	LastLoginDate TEXT NULL,
	CreatedAt     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Quests (
	Id            INTEGER PRIMARY KEY AUTOINCREMENT,
	HeroId        INTEGER NOT NULL REFERENCES Heroes(Id),
	Title         TEXT NOT NULL,
	Description   TEXT NOT NULL DEFAULT '',
	DueDate       TEXT NOT NULL,
	Priority      INTEGER NOT NULL DEFAULT 0,
	IsCompleted   INTEGER NOT NULL DEFAULT 0,
	CreatedDate   TEXT NOT NULL,
	CompletedDate TEXT NULL
);

CREATE INDEX IF NOT EXISTS idx_quests_hero ON Quests(HeroId);
`

// column is a Quests column added after the first release.
type column struct {
	Name string
	Def  string
}

var questColumns = []column{
	{"RequiresGameCompletion", "INTEGER NOT NULL DEFAULT 0"},
	{"RequiredGame", "TEXT NOT NULL DEFAULT ''"},
	{"RequiredGameLevel", "INTEGER NOT NULL DEFAULT 0"},
	{"IsGameCompleted", "INTEGER NOT NULL DEFAULT 0"},
}

const questFields = `Id, HeroId, Title, Description, DueDate, Priority, IsCompleted, CreatedDate, CompletedDate,
	RequiresGameCompletion, RequiredGame, RequiredGameLevel, IsGameCompleted`

const heroFields = `Id, Username, Password, Email, Phone, Level, Experience, Class, LastLoginDate, CreatedAt`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db     *sql.DB
	logger *zap.Logger
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open opens (creating if needed) the database at path and brings the schema
// up to date.
func Open(path string, logger *zap.Logger) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}

	s := &Storage{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	existing, err := s.columns("Quests")
	if err != nil {
		return err
	}
	for _, c := range questColumns {
		if existing[c.Name] {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE Quests ADD COLUMN %s %s", c.Name, c.Def)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to add column Quests.%s: %w", c.Name, err)
		}
		s.logger.Info("added missing column", zap.String("table", "Quests"), zap.String("column", c.Name))
	}
	return nil
}

// columns lists a table's column names using PRAGMA table_info.
func (s *Storage) columns(table string) (map[string]bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// formatTime keeps the zone offset so times read back with the wall clock
// they were written with.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type scanner interface {
	Scan(dest ...any) error
}

// Hero operations

func (s *Storage) CreateHero(ctx context.Context, hero *model.Hero) error {
	var lastLogin sql.NullString
	if !hero.LastLoginAt.IsZero() {
		lastLogin = nullString(formatTime(hero.LastLoginAt))
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO Heroes (Username, Password, Email, Phone, Level, Experience, Class, LastLoginDate, CreatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hero.Username, hero.PasswordHash, hero.Email, nullString(hero.Phone),
		hero.Level, hero.Experience, hero.Class, lastLogin, formatTime(hero.CreatedAt))
	if isUniqueViolation(err) {
		return model.ErrUsernameExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert hero: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	hero.ID = id
	return nil
}

func scanHero(row scanner) (*model.Hero, error) {
	var h model.Hero
	var phone, lastLogin sql.NullString
	var createdAt string
	err := row.Scan(&h.ID, &h.Username, &h.PasswordHash, &h.Email, &phone,
		&h.Level, &h.Experience, &h.Class, &lastLogin, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrHeroNotFound
	}
	if err != nil {
		return nil, err
	}
	h.Phone = phone.String
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		if h.LastLoginAt, err = parseTime(lastLogin.String); err != nil {
			return nil, err
		}
	}
	return &h, nil
}

func (s *Storage) GetHero(ctx context.Context, id int64) (*model.Hero, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+heroFields+" FROM Heroes WHERE Id = ?", id)
	return scanHero(row)
}

func (s *Storage) GetHeroByUsername(ctx context.Context, username string) (*model.Hero, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+heroFields+" FROM Heroes WHERE Username = ?", username)
	return scanHero(row)
}

func (s *Storage) UpdateHero(ctx context.Context, hero *model.Hero) error {
	var lastLogin sql.NullString
	if !hero.LastLoginAt.IsZero() {
		lastLogin = nullString(formatTime(hero.LastLoginAt))
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE Heroes SET Username = ?, Password = ?, Email = ?, Phone = ?, Level = ?, Experience = ?,
		 Class = ?, LastLoginDate = ? WHERE Id = ?`,
		hero.Username, hero.PasswordHash, hero.Email, nullString(hero.Phone), hero.Level,
		hero.Experience, hero.Class, lastLogin, hero.ID)
	if isUniqueViolation(err) {
		return model.ErrUsernameExists
	}
	if err != nil {
		return fmt.Errorf("failed to update hero: %w", err)
	}
	return expectOne(res, model.ErrHeroNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Quest operations

func completedAt(q *model.Quest) sql.NullString {
	if q.CompletedAt == nil {
		return sql.NullString{}
	}
	return nullString(formatTime(*q.CompletedAt))
}

func (s *Storage) CreateQuest(ctx context.Context, quest *model.Quest) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO Quests (HeroId, Title, Description, DueDate, Priority, IsCompleted, CreatedDate, CompletedDate,
		 RequiresGameCompletion, RequiredGame, RequiredGameLevel, IsGameCompleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quest.HeroID, quest.Title, quest.Description, formatTime(quest.DueDate), int(quest.Priority),
		quest.IsCompleted, formatTime(quest.CreatedAt), completedAt(quest),
		quest.RequiresGameCompletion, quest.RequiredGame, quest.RequiredGameLevel, quest.IsGameCompleted)
	if err != nil {
		return fmt.Errorf("failed to insert quest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	quest.ID = id
	return nil
}

func scanQuest(row scanner) (*model.Quest, error) {
	var q model.Quest
	var due, created string
	var completed sql.NullString
	var priority int
	err := row.Scan(&q.ID, &q.HeroID, &q.Title, &q.Description, &due, &priority, &q.IsCompleted,
		&created, &completed, &q.RequiresGameCompletion, &q.RequiredGame, &q.RequiredGameLevel, &q.IsGameCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrQuestNotFound
	}
	if err != nil {
		return nil, err
	}
	q.Priority = model.Priority(priority)
	if q.DueDate, err = parseTime(due); err != nil {
		return nil, err
	}
	if q.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if completed.Valid {
		at, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		q.CompletedAt = &at
	}
	return &q, nil
}

func (s *Storage) GetQuest(ctx context.Context, id int64) (*model.Quest, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+questFields+" FROM Quests WHERE Id = ?", id)
	return scanQuest(row)
}

func (s *Storage) UpdateQuest(ctx context.Context, quest *model.Quest) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE Quests SET Title = ?, Description = ?, DueDate = ?, Priority = ?, IsCompleted = ?, CompletedDate = ?,
		 RequiresGameCompletion = ?, RequiredGame = ?, RequiredGameLevel = ?, IsGameCompleted = ? WHERE Id = ?`,
		quest.Title, quest.Description, formatTime(quest.DueDate), int(quest.Priority), quest.IsCompleted,
		completedAt(quest), quest.RequiresGameCompletion, quest.RequiredGame, quest.RequiredGameLevel,
		quest.IsGameCompleted, quest.ID)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	return expectOne(res, model.ErrQuestNotFound)
}

func (s *Storage) DeleteQuest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM Quests WHERE Id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}
	return expectOne(res, model.ErrQuestNotFound)
}

func (s *Storage) ListQuests(ctx context.Context, heroID int64) ([]*model.Quest, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+questFields+" FROM Quests WHERE HeroId = ? ORDER BY Id", heroID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var out []*model.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

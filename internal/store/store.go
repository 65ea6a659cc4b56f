package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/agentran/internal"
)

// ErrNotFound is returned when a session or glossary entry does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at dbPath. The parent
// directory must exist.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- sessions keeps one row per completed translation session
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		output_file TEXT,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translation_type TEXT,
		profiles TEXT,
		provider TEXT,
		model TEXT,
		chunks INTEGER DEFAULT 0,
		tokens INTEGER DEFAULT 0,
		seconds REAL DEFAULT 0,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- glossary stores user-defined terminology merged into sessions on request
	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_lang, target_lang, source_term)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	CREATE INDEX IF NOT EXISTS idx_glossary_lookup ON glossary(source_lang, target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession inserts rec, assigning an ID and timestamp when they are
// empty, and returns the ID.
func (s *Store) SaveSession(ctx context.Context, rec internal.SessionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, source_file, output_file, source_lang, target_lang, translation_type, profiles, provider, model, chunks, tokens, seconds, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceFile, rec.OutputFile, rec.SourceLang, rec.TargetLang, rec.TranslationType,
		strings.Join(rec.Profiles, ","), rec.Provider, rec.Model, rec.Chunks, rec.Tokens, rec.Seconds,
		rec.Details, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return rec.ID, nil
}

const sessionColumns = `id, source_file, COALESCE(output_file, ''), source_lang, target_lang, COALESCE(translation_type, ''), COALESCE(profiles, ''), COALESCE(provider, ''), COALESCE(model, ''), chunks, tokens, seconds, COALESCE(details, ''), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (internal.SessionRecord, error) {
	var rec internal.SessionRecord
	var profiles string
	err := row.Scan(&rec.ID, &rec.SourceFile, &rec.OutputFile, &rec.SourceLang, &rec.TargetLang,
		&rec.TranslationType, &profiles, &rec.Provider, &rec.Model, &rec.Chunks, &rec.Tokens,
		&rec.Seconds, &rec.Details, &rec.CreatedAt)
	if err != nil {
		return rec, err
	}
	if profiles != "" {
		rec.Profiles = strings.Split(profiles, ",")
	}
	return rec, nil
}

// GetSession returns the session with the given ID or unique ID prefix.
func (s *Store) GetSession(ctx context.Context, id string) (*internal.SessionRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE substr(id, 1, ?) = ? ORDER BY id = ? DESC LIMIT 2`,
		len(id), id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	var found []internal.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	case found[0].ID == id || len(found) == 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("session prefix %q is ambiguous", id)
	}
}

// ListSessions returns up to limit sessions, newest first. Details are
// not loaded. limit ≤ 0 means all.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]internal.SessionRecord, error) {
	query := `SELECT id, source_file, COALESCE(output_file, ''), source_lang, target_lang, COALESCE(translation_type, ''), COALESCE(profiles, ''), COALESCE(provider, ''), COALESCE(model, ''), chunks, tokens, seconds, '', created_at
		FROM sessions ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// DeleteSession removes a session by exact ID.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// SessionStats summarises the session history.
type SessionStats struct {
	Sessions     int
	Chunks       int
	TotalTokens  int
	TotalSeconds float64
	ByType       map[string]int
}

func (s *Store) Stats(ctx context.Context) (*SessionStats, error) {
	stats := &SessionStats{ByType: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(chunks), 0),
			COALESCE(SUM(tokens), 0),
			COALESCE(SUM(seconds), 0)
		FROM sessions`).Scan(
		&stats.Sessions,
		&stats.Chunks,
		&stats.TotalTokens,
		&stats.TotalSeconds,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(translation_type, ''), COUNT(*) FROM sessions GROUP BY translation_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		stats.ByType[kind] = n
	}
	return stats, rows.Err()
}

// GlossaryEntry represents a row in the glossary table.
type GlossaryEntry struct {
	ID         string
	SourceLang string
	TargetLang string
	SourceTerm string
	TargetTerm string
	CreatedAt  time.Time
}

// AddGlossaryTerm inserts or replaces a glossary entry. Terms are trimmed
// and NFC-normalised so the same term typed two ways is one entry.
func (s *Store) AddGlossaryTerm(ctx context.Context, sourceLang, targetLang, sourceTerm, targetTerm string) error {
	return addTerm(ctx, s.db, sourceLang, targetLang, sourceTerm, targetTerm)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func addTerm(ctx context.Context, db execer, sourceLang, targetLang, sourceTerm, targetTerm string) error {
	src, tgt := normalizeText(sourceTerm), normalizeText(targetTerm)
	if src == "" || tgt == "" {
		return fmt.Errorf("glossary term and translation must not be empty")
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary (id, source_lang, target_lang, source_term, target_term)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), sourceLang, targetLang, src, tgt)
	return err
}

// ImportGlossary adds every term in one transaction and returns how many
// were written.
func (s *Store) ImportGlossary(ctx context.Context, sourceLang, targetLang string, terms map[string]string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	n := 0
	for src, tgt := range terms {
		if err := addTerm(ctx, tx, sourceLang, targetLang, src, tgt); err != nil {
			return 0, fmt.Errorf("failed to import %q: %w", src, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return n, nil
}

// GetGlossaryTerms returns the glossary for a language pair as a
// source-term → target-term map.
func (s *Store) GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_term, target_term FROM glossary WHERE source_lang = ? AND target_lang = ?`,
		sourceLang, targetLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make(map[string]string)
	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			return nil, err
		}
		terms[src] = tgt
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns all glossary entries, optionally filtered by language
// pair (pass empty strings to return everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, sourceLang, targetLang string) ([]GlossaryEntry, error) {
	query := `SELECT id, source_lang, target_lang, source_term, target_term, created_at FROM glossary`
	var args []any

	switch {
	case sourceLang != "" && targetLang != "":
		query += ` WHERE source_lang = ? AND target_lang = ?`
		args = append(args, sourceLang, targetLang)
	case sourceLang != "":
		query += ` WHERE source_lang = ?`
		args = append(args, sourceLang)
	case targetLang != "":
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY source_lang, target_lang, source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlossaryEntry
	for rows.Next() {
		var e GlossaryEntry
		if err := rows.Scan(&e.ID, &e.SourceLang, &e.TargetLang, &e.SourceTerm, &e.TargetTerm, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("glossary entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// normalizeText trims whitespace and applies Unicode NFC normalization.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mockexam/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrAttemptNotFound is returned for an unknown attempt id.
var ErrAttemptNotFound = errors.New("attempt not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for attempt data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			exam_id TEXT NOT NULL,
			locale TEXT NOT NULL,
			score REAL NOT NULL,
			total_marks REAL NOT NULL,
			elapsed_min INTEGER NOT NULL,
			submitted_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_answers (
			attempt_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			question_id TEXT NOT NULL,
			selected TEXT NOT NULL,
			answered INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_submitted_at ON attempts(submitted_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_exam_id ON attempts(exam_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveAttempt stores a finished attempt with its answers and returns the
// generated attempt id.
func (s *Store) SaveAttempt(ctx context.Context, result model.AttemptResult) (id string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id = uuid.NewString()
	locale := result.Locale
	if locale == "" {
		locale = model.LocalePrimary
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, exam_id, locale, score, total_marks, elapsed_min, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		result.ExamID,
		string(locale),
		result.Score,
		result.TotalMarks,
		result.ElapsedMinutes,
		s.now().UTC().Format(timeLayout),
	); err != nil {
		return "", err
	}

	if len(result.Answers) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO attempt_answers (attempt_id, position, question_id, selected, answered, correct)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, a := range result.Answers {
			if _, err = stmt.ExecContext(ctx, id, i, a.QuestionID, a.Selected, boolInt(a.Answered), boolInt(a.Correct)); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetAttempt loads one attempt with its answers.
func (s *Store) GetAttempt(ctx context.Context, id string) (model.StoredAttempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, exam_id, locale, score, total_marks, elapsed_min, submitted_at
		 FROM attempts WHERE id = ?`, id)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoredAttempt{}, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	if err != nil {
		return model.StoredAttempt{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, selected, answered, correct
		 FROM attempt_answers WHERE attempt_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return model.StoredAttempt{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var a model.AnswerRecord
		var answered, correct int
		if err := rows.Scan(&a.QuestionID, &a.Selected, &answered, &correct); err != nil {
			return model.StoredAttempt{}, err
		}
		a.Answered = answered != 0
		a.Correct = correct != 0
		attempt.Answers = append(attempt.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return model.StoredAttempt{}, err
	}
	return attempt, nil
}

// ListAttempts returns attempt summaries, oldest first, without answers.
func (s *Store) ListAttempts(ctx context.Context, filter model.HistoryFilter) ([]model.StoredAttempt, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.ExamID != "" {
		clauses = append(clauses, "exam_id = ?")
		args = append(args, filter.ExamID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "submitted_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT * FROM (
		SELECT id, exam_id, locale, score, total_marks, elapsed_min, submitted_at
		FROM attempts
		WHERE %s
		ORDER BY submitted_at DESC
		LIMIT ?
	) ORDER BY submitted_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.StoredAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (model.StoredAttempt, error) {
	var a model.StoredAttempt
	var locale, submittedAt string
	if err := row.Scan(&a.ID, &a.ExamID, &locale, &a.Score, &a.TotalMarks, &a.ElapsedMinutes, &submittedAt); err != nil {
		return model.StoredAttempt{}, err
	}
	parsed, err := time.Parse(timeLayout, submittedAt)
	if err != nil {
		return model.StoredAttempt{}, err
	}
	a.SubmittedAt = parsed
	a.Locale = model.Locale(locale)
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package library

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/promptlab/promptlab/errors"
)

// Store handles prompt persistence
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewStore creates a prompt store
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{db: db, logger: logger}
}

const promptColumns = "id, name, description, system_prompt, objective, model, temperature, created_at, updated_at"

// Create saves a new prompt. A duplicate name is a conflict, never an
// overwrite.
func (s *Store) Create(ctx context.Context, prompt *Prompt) (*Prompt, error) {
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (name, description, system_prompt, objective, model, temperature, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, prompt.Name, prompt.Description, prompt.SystemPrompt, prompt.Objective, prompt.Model, prompt.Temperature, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewConflictError("prompt %q already exists", prompt.Name)
		}
		return nil, errors.Wrap(err, "failed to create prompt")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read prompt ID")
	}

	created := *prompt
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	s.logger.Debugw("Prompt created", "prompt_id", id, "name", prompt.Name)
	return &created, nil
}

// GetByID returns a prompt, or (nil, nil) when no row matches.
func (s *Store) GetByID(ctx context.Context, id int64) (*Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+promptColumns+" FROM prompts WHERE id = ?", id)
	return scanPrompt(row)
}

// GetByName returns a prompt by its unique name, or (nil, nil) when no
// row matches.
func (s *Store) GetByName(ctx context.Context, name string) (*Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+promptColumns+" FROM prompts WHERE name = ?", name)
	return scanPrompt(row)
}

// Update replaces the stored fields of an existing prompt. Renaming
// onto another prompt's name is a conflict.
func (s *Store) Update(ctx context.Context, id int64, prompt *Prompt) (*Prompt, error) {
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE prompts
		SET name = ?, description = ?, system_prompt = ?, objective = ?, model = ?, temperature = ?, updated_at = ?
		WHERE id = ?
	`, prompt.Name, prompt.Description, prompt.SystemPrompt, prompt.Objective, prompt.Model, prompt.Temperature, now, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewConflictError("prompt %q already exists", prompt.Name)
		}
		return nil, errors.Wrap(err, "failed to update prompt")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check update result")
	}
	if affected == 0 {
		return nil, errors.NewNotFoundError("prompt %d not found", id)
	}

	s.logger.Debugw("Prompt updated", "prompt_id", id, "name", prompt.Name)
	return s.GetByID(ctx, id)
}

// Delete removes a prompt by ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete prompt")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check delete result")
	}
	if affected == 0 {
		return errors.NewNotFoundError("prompt %d not found", id)
	}

	s.logger.Debugw("Prompt deleted", "prompt_id", id)
	return nil
}

// List returns prompts ordered most recently updated first. A non-empty
// search term filters by case-insensitive substring match on name,
// description, and system prompt.
func (s *Store) List(ctx context.Context, search string) ([]*Prompt, error) {
	query := "SELECT " + promptColumns + " FROM prompts"
	var args []any

	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query += ` WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR system_prompt LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY updated_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list prompts")
	}
	defer rows.Close()

	prompts := make([]*Prompt, 0)
	for rows.Next() {
		prompt, err := scanPromptRow(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate prompts")
	}

	return prompts, nil
}

// Count returns the number of saved prompts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM prompts").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count prompts")
	}
	return count, nil
}

func validatePrompt(prompt *Prompt) error {
	if strings.TrimSpace(prompt.Name) == "" {
		return errors.NewInvalidRequestError("prompt name is required")
	}
	if strings.TrimSpace(prompt.SystemPrompt) == "" {
		return errors.NewInvalidRequestError("system prompt is required")
	}
	if prompt.Temperature < 0 || prompt.Temperature > 2 {
		return errors.NewInvalidRequestError("temperature must be between 0.0 and 2.0, got %f", prompt.Temperature)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row *sql.Row) (*Prompt, error) {
	prompt, err := scanPromptRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return prompt, err
}

func scanPromptRow(row rowScanner) (*Prompt, error) {
	var prompt Prompt
	err := row.Scan(
		&prompt.ID,
		&prompt.Name,
		&prompt.Description,
		&prompt.SystemPrompt,
		&prompt.Objective,
		&prompt.Model,
		&prompt.Temperature,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to scan prompt row")
	}
	return &prompt, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLike escapes LIKE metacharacters so search terms match
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

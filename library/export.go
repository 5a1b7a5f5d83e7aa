package library

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/errors"
	"github.com/promptlab/promptlab/version"
)

// ExportMetadata describes one exported library snapshot.
type ExportMetadata struct {
	LibraryID   string    `json:"library_id"`
	ExportedAt  time.Time `json:"exported_at"`
	AppVersion  string    `json:"app_version"`
	PromptCount int       `json:"prompt_count"`
}

// ExportDocument is the portable form of the whole prompt library.
type ExportDocument struct {
	Metadata ExportMetadata `json:"metadata"`
	Prompts  []*Prompt      `json:"prompts"`
}

// ImportSummary reports what an import actually did. Prompts whose
// names already exist are skipped, never overwritten.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// Export snapshots every prompt into a document tagged with a fresh
// library ID.
func (s *Store) Export(ctx context.Context) (*ExportDocument, error) {
	prompts, err := s.List(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to export library")
	}

	doc := &ExportDocument{
		Metadata: ExportMetadata{
			LibraryID:   uuid.NewString(),
			ExportedAt:  time.Now().UTC(),
			AppVersion:  version.Version,
			PromptCount: len(prompts),
		},
		Prompts: prompts,
	}

	s.logger.Infow("Library exported", "count", len(prompts), "library_id", doc.Metadata.LibraryID)
	return doc, nil
}

// Import loads prompts from an export document. Name conflicts with
// existing prompts are recorded and skipped; any other failure aborts
// the import.
func (s *Store) Import(ctx context.Context, doc *ExportDocument) (*ImportSummary, error) {
	if doc == nil {
		return nil, errors.NewInvalidRequestError("import document is required")
	}

	summary := &ImportSummary{Skipped: []string{}}
	for _, prompt := range doc.Prompts {
		imported := &Prompt{
			Name:         prompt.Name,
			Description:  prompt.Description,
			SystemPrompt: prompt.SystemPrompt,
			Objective:    prompt.Objective,
			Model:        prompt.Model,
			Temperature:  prompt.Temperature,
		}

		if _, err := s.Create(ctx, imported); err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped = append(summary.Skipped, prompt.Name)
				continue
			}
			return nil, errors.Wrapf(err, "failed to import prompt %q", prompt.Name)
		}
		summary.Imported++
	}

	s.logger.Infow("Library imported",
		"imported", summary.Imported, "skipped", len(summary.Skipped))
	return summary, nil
}

package library

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta"} {
		_, err := store.Create(ctx, samplePrompt(name))
		require.NoError(t, err)
	}

	doc, err := store.Export(ctx)
	require.NoError(t, err)

	assert.Len(t, doc.Prompts, 2)
	assert.Equal(t, 2, doc.Metadata.PromptCount)
	assert.False(t, doc.Metadata.ExportedAt.IsZero())

	_, err = uuid.Parse(doc.Metadata.LibraryID)
	assert.NoError(t, err, "library_id must be a valid UUID")
}

func TestExportEmptyLibrary(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Export(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Prompts)
	assert.Equal(t, 0, doc.Metadata.PromptCount)

	// An empty library must serialize with an empty array, not null
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"prompts":[]`)
}

func TestImport(t *testing.T) {
	source := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta"} {
		_, err := source.Create(ctx, samplePrompt(name))
		require.NoError(t, err)
	}
	doc, err := source.Export(ctx)
	require.NoError(t, err)

	target := newTestStore(t)
	summary, err := target.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Empty(t, summary.Skipped)

	count, err := target.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportSkipsConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	existing := samplePrompt("alpha")
	existing.SystemPrompt = "Original content that must survive."
	_, err := store.Create(ctx, existing)
	require.NoError(t, err)

	doc := &ExportDocument{
		Prompts: []*Prompt{samplePrompt("alpha"), samplePrompt("beta")},
	}

	summary, err := store.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, []string{"alpha"}, summary.Skipped)

	kept, err := store.GetByName(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "Original content that must survive.", kept.SystemPrompt,
		"existing prompts are never overwritten")
}

func TestImportNilDocument(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Import(context.Background(), nil)
	require.Error(t, err)
}

func TestImportAssignsFreshIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	imported := samplePrompt("alpha")
	imported.ID = 42

	_, err := store.Import(ctx, &ExportDocument{Prompts: []*Prompt{imported}})
	require.NoError(t, err)

	got, err := store.GetByName(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID, "imported prompts get new IDs")
}

package library

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/errors"
	qtesting "github.com/promptlab/promptlab/internal/testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(qtesting.CreateMigratedTestDB(t), nil)
}

func samplePrompt(name string) *Prompt {
	return &Prompt{
		Name:         name,
		Description:  "A test prompt",
		SystemPrompt: "You are a helpful assistant.",
		Objective:    "be helpful",
		Model:        "llama3.2:3b",
		Temperature:  0.7,
	}
}

func TestStoreCreate(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(context.Background(), samplePrompt("reviewer"))
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, "reviewer", created.Name)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestStoreCreateDuplicateName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(context.Background(), samplePrompt("reviewer"))
	require.NoError(t, err)

	_, err = store.Create(context.Background(), samplePrompt("reviewer"))
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestStoreCreateValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name   string
		mutate func(*Prompt)
	}{
		{"empty name", func(p *Prompt) { p.Name = "  " }},
		{"empty system prompt", func(p *Prompt) { p.SystemPrompt = "" }},
		{"temperature too high", func(p *Prompt) { p.Temperature = 2.5 }},
		{"negative temperature", func(p *Prompt) { p.Temperature = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := samplePrompt("valid")
			tt.mutate(prompt)
			_, err := store.Create(context.Background(), prompt)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err))
		})
	}
}

func TestStoreCreateZeroTemperature(t *testing.T) {
	store := newTestStore(t)

	prompt := samplePrompt("deterministic")
	prompt.Temperature = 0.0

	created, err := store.Create(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.Temperature)
}

func TestStoreGetByID(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(context.Background(), samplePrompt("reviewer"))
	require.NoError(t, err)

	got, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "You are a helpful assistant.", got.SystemPrompt)
	assert.Equal(t, "be helpful", got.Objective)
}

func TestStoreGetByIDMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreGetByName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(context.Background(), samplePrompt("reviewer"))
	require.NoError(t, err)

	got, err := store.GetByName(context.Background(), "reviewer")
	require.NoError(t, err)
	require.NotNil(t, got)

	missing, err := store.GetByName(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(context.Background(), samplePrompt("reviewer"))
	require.NoError(t, err)

	updated := samplePrompt("reviewer")
	updated.Description = "Updated description"
	updated.Temperature = 1.2

	got, err := store.Update(context.Background(), created.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, "Updated description", got.Description)
	assert.Equal(t, 1.2, got.Temperature)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestStoreUpdateMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(context.Background(), 9999, samplePrompt("ghost"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestStoreUpdateNameConflict(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(context.Background(), samplePrompt("first"))
	require.NoError(t, err)
	second, err := store.Create(context.Background(), samplePrompt("second"))
	require.NoError(t, err)

	renamed := samplePrompt("first")
	_, err = store.Update(context.Background(), second.ID, renamed)
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(context.Background(), samplePrompt("reviewer"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), created.ID))

	got, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreDeleteMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := store.Create(ctx, samplePrompt(name))
		require.NoError(t, err)
	}

	prompts, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, prompts, 3)
	// Newest first; equal timestamps fall back to descending ID
	assert.Equal(t, "gamma", prompts[0].Name)
}

func TestStoreListSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reviewer := samplePrompt("code-reviewer")
	reviewer.Description = "Reviews pull requests"
	_, err := store.Create(ctx, reviewer)
	require.NoError(t, err)

	writer := samplePrompt("writer")
	writer.SystemPrompt = "You write release notes."
	_, err = store.Create(ctx, writer)
	require.NoError(t, err)

	byName, err := store.List(ctx, "reviewer")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "code-reviewer", byName[0].Name)

	byDescription, err := store.List(ctx, "pull requests")
	require.NoError(t, err)
	assert.Len(t, byDescription, 1)

	bySystemPrompt, err := store.List(ctx, "release notes")
	require.NoError(t, err)
	assert.Len(t, bySystemPrompt, 1)

	none, err := store.List(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreListSearchEscapesWildcards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	literal := samplePrompt("percent")
	literal.Description = "Contains a literal 100% marker"
	_, err := store.Create(ctx, literal)
	require.NoError(t, err)

	other := samplePrompt("other")
	other.Description = "Contains 100 things"
	_, err = store.Create(ctx, other)
	require.NoError(t, err)

	results, err := store.List(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "percent", results[0].Name)
}

func TestStoreCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = store.Create(ctx, samplePrompt("one"))
	require.NoError(t, err)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStoreListQueryError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT .* FROM prompts").WillReturnError(assert.AnError)

	store := NewStore(mockDB, nil)
	_, err = store.List(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list prompts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

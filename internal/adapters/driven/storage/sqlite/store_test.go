package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStoreCreatesDatabaseFile(t *testing.T) {
	store := setupTestStore(t)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestNewStoreMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Re-opening the same directory re-runs migrate against an already
	// current schema.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestDocumentStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	doc := &domain.KnowledgeDocument{
		ID:         "doc-1",
		BaseID:     "base-1",
		Title:      "Getting Started",
		Markup:     "<h1>Getting Started</h1><p>body</p>",
		SourcePath: "docs/getting-started.md",
		UpdatedAt:  now,
	}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Markup, got.Markup)
	assert.Equal(t, doc.SourcePath, got.SourcePath)
	assert.True(t, got.UpdatedAt.Equal(now))
	assert.Nil(t, got.Vectorization)
}

func TestDocumentStoreSaveIsUpsert(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.KnowledgeDocument{ID: "doc-1", BaseID: "base-1", Title: "v1", Markup: "<p>one</p>"}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	doc.Title = "v2"
	doc.Markup = "<p>two</p>"
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, "<p>two</p>", got.Markup)
}

func TestDocumentStoreGetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStoreListByBase(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	for _, d := range []*domain.KnowledgeDocument{
		{ID: "d3", BaseID: "base-1", Title: "Charlie", Markup: "<p>c</p>"},
		{ID: "d1", BaseID: "base-1", Title: "Alpha", Markup: "<p>a</p>"},
		{ID: "d2", BaseID: "base-2", Title: "Bravo", Markup: "<p>b</p>"},
	} {
		require.NoError(t, docs.SaveDocument(ctx, d))
	}

	list, err := docs.ListDocumentsByBase(ctx, "base-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Title)
	assert.Equal(t, "Charlie", list[1].Title)
}

func TestDocumentStoreVectorizationLifecycle(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.KnowledgeDocument{ID: "doc-1", BaseID: "base-1", Title: "T", Markup: "<p>x</p>"}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	v := &domain.KnowledgeDocumentVectorization{
		Collection:   "kb-main",
		ProviderID:   "provider-1",
		Dimensions:   768,
		ChunkSize:    1000,
		ChunkOverlap: 200,
		RecordIDs:    []string{"r1", "r2"},
		PointCount:   2,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, docs.SetVectorization(ctx, "doc-1", v))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got.Vectorization)
	assert.Equal(t, "kb-main", got.Vectorization.Collection)
	assert.Equal(t, []string{"r1", "r2"}, got.Vectorization.RecordIDs)
	assert.Equal(t, 2, got.Vectorization.PointCount)

	// A nil record clears the link.
	require.NoError(t, docs.SetVectorization(ctx, "doc-1", nil))
	got, err = docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, got.Vectorization)

	assert.ErrorIs(t, docs.SetVectorization(ctx, "absent", v), domain.ErrNotFound)
}

func TestDocumentStoreDelete(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, &domain.KnowledgeDocument{ID: "doc-1", BaseID: "b", Title: "T", Markup: "<p>x</p>"}))
	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, docs.DeleteDocument(ctx, "doc-1"))
}

func TestActionStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	actions := store.ActionStore()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	action := &domain.IndexingAction{
		ID:     "act-1",
		BaseID: "base-1",
		Status: domain.StatusProcessing,
		Stage:  domain.StageChunking,
		Progress: domain.ActionProgress{
			ProcessedDocuments: 3,
			TotalDocuments:     10,
			DisplayText:        "chunking documents",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, actions.CreateAction(ctx, action))

	got, err := actions.GetAction(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Equal(t, domain.StageChunking, got.Stage)
	assert.Equal(t, 3, got.Progress.ProcessedDocuments)
	assert.Equal(t, "chunking documents", got.Progress.DisplayText)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestActionStoreCreateDuplicate(t *testing.T) {
	store := setupTestStore(t)
	actions := store.ActionStore()
	ctx := context.Background()

	action := &domain.IndexingAction{ID: "act-1", BaseID: "base-1", Status: domain.StatusProcessing, Stage: domain.StageInitializing}
	require.NoError(t, actions.CreateAction(ctx, action))
	assert.ErrorIs(t, actions.CreateAction(ctx, action), domain.ErrAlreadyExists)
}

func TestActionStoreUpdate(t *testing.T) {
	store := setupTestStore(t)
	actions := store.ActionStore()
	ctx := context.Background()

	action := &domain.IndexingAction{ID: "act-1", BaseID: "base-1", Status: domain.StatusProcessing, Stage: domain.StageInitializing}
	require.NoError(t, actions.CreateAction(ctx, action))

	action.Status = domain.StatusDone
	action.Stage = domain.StageCompleted
	action.Progress.Percent = 100
	require.NoError(t, actions.UpdateAction(ctx, action))

	got, err := actions.GetAction(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
	assert.Equal(t, 100, got.Progress.Percent)

	missing := &domain.IndexingAction{ID: "absent", BaseID: "base-1", Status: domain.StatusDone, Stage: domain.StageCompleted}
	assert.ErrorIs(t, actions.UpdateAction(ctx, missing), domain.ErrNotFound)
}

func TestActionStoreListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	actions := store.ActionStore()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"act-old", "act-mid", "act-new"} {
		require.NoError(t, actions.CreateAction(ctx, &domain.IndexingAction{
			ID:        id,
			BaseID:    "base-1",
			Status:    domain.StatusDone,
			Stage:     domain.StageCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, actions.CreateAction(ctx, &domain.IndexingAction{
		ID: "other", BaseID: "base-2", Status: domain.StatusDone, Stage: domain.StageCompleted, CreatedAt: base,
	}))

	list, err := actions.ListActionsByBase(ctx, "base-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "act-new", list[0].ID)
	assert.Equal(t, "act-old", list[2].ID)
}

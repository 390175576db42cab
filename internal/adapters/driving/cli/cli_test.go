package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
)

// mockImporter implements driving.Importer for testing.
type mockImporter struct {
	result *driving.ImportResult
	err    error

	gotBaseID string
	gotPath   string
}

func (m *mockImporter) ImportArchive(_ context.Context, baseID, path string) (*driving.ImportResult, error) {
	m.gotBaseID = baseID
	m.gotPath = path
	return m.result, m.err
}

// mockIndexing implements driving.IndexingController for testing.
type mockIndexing struct {
	action  *domain.IndexingAction
	actions []*domain.IndexingAction
	err     error

	paused   []string
	resumed  []string
	canceled []string
}

func (m *mockIndexing) Start(_ context.Context, _ string, _ driving.IndexingParams) (*domain.IndexingAction, error) {
	return m.action, m.err
}

func (m *mockIndexing) Pause(_ context.Context, actionID string) error {
	m.paused = append(m.paused, actionID)
	return m.err
}

func (m *mockIndexing) Resume(_ context.Context, actionID string) error {
	m.resumed = append(m.resumed, actionID)
	return m.err
}

func (m *mockIndexing) Cancel(_ context.Context, actionID string, _ bool) error {
	m.canceled = append(m.canceled, actionID)
	return m.err
}

func (m *mockIndexing) Status(_ context.Context, _ string) (*domain.IndexingAction, error) {
	return m.action, m.err
}

func (m *mockIndexing) List(_ context.Context, _ string) ([]*domain.IndexingAction, error) {
	return m.actions, m.err
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "kbctl version test-version-1.0.0")
}

func TestImportCmd_Use(t *testing.T) {
	assert.Equal(t, "import <archive>", importCmd.Use)
}

func TestImportCmd_RequiresBase(t *testing.T) {
	oldImporter := importer
	importer = &mockImporter{result: &driving.ImportResult{}}
	defer func() { importer = oldImporter }()

	_, err := execute(t, "import", "base.zip")
	assert.Error(t, err)
}

func TestImportCmd_Executes(t *testing.T) {
	mock := &mockImporter{result: &driving.ImportResult{
		Tree: []domain.TreeNode{
			{
				Title: "notes",
				Kind:  domain.NodeFolder,
				Children: []domain.TreeNode{
					{Title: "Readme", Kind: domain.NodeDocument, DocumentID: "d1"},
				},
			},
		},
		Summary: domain.ImportSummary{
			TotalFiles:    3,
			ImportedFiles: 2,
			SkippedFiles:  1,
			Errors: []domain.ImportError{
				{Path: "tool.exe", Code: domain.ImportErrUnsupportedType, Message: "unsupported"},
			},
		},
	}}
	oldImporter := importer
	importer = mock
	defer func() { importer = oldImporter }()

	out, err := execute(t, "import", "base.zip", "--base", "base-1")
	require.NoError(t, err)

	assert.Equal(t, "base-1", mock.gotBaseID)
	assert.Equal(t, "base.zip", mock.gotPath)
	assert.Contains(t, out, "Imported 2 of 3 files (1 skipped).")
	assert.Contains(t, out, "tool.exe")
	assert.Contains(t, out, "notes/")
	assert.Contains(t, out, "Readme")
}

func TestImportCmd_NotConfigured(t *testing.T) {
	oldImporter := importer
	importer = nil
	defer func() { importer = oldImporter }()

	_, err := execute(t, "import", "base.zip", "--base", "base-1")
	assert.Error(t, err)
}

func TestIndexStartCmd_Executes(t *testing.T) {
	mock := &mockIndexing{action: &domain.IndexingAction{
		ID:     "act-1",
		BaseID: "base-1",
		Status: domain.StatusProcessing,
		Stage:  domain.StageInitializing,
	}}
	oldIndexing := indexing
	indexing = mock
	defer func() { indexing = oldIndexing }()

	out, err := execute(t, "index", "start",
		"--base", "base-1", "--collection", "kb-main", "--dimensions", "768")
	require.NoError(t, err)
	assert.Contains(t, out, "Started action act-1 for base base-1.")
}

func TestIndexSteeringCmds(t *testing.T) {
	mock := &mockIndexing{}
	oldIndexing := indexing
	indexing = mock
	defer func() { indexing = oldIndexing }()

	_, err := execute(t, "index", "pause", "act-1")
	require.NoError(t, err)
	_, err = execute(t, "index", "resume", "act-1")
	require.NoError(t, err)
	_, err = execute(t, "index", "cancel", "act-1", "--delete-data")
	require.NoError(t, err)

	assert.Equal(t, []string{"act-1"}, mock.paused)
	assert.Equal(t, []string{"act-1"}, mock.resumed)
	assert.Equal(t, []string{"act-1"}, mock.canceled)
}

func TestIndexStatusCmd_Executes(t *testing.T) {
	mock := &mockIndexing{action: &domain.IndexingAction{
		ID:     "act-1",
		BaseID: "base-1",
		Status: domain.StatusProcessing,
		Stage:  domain.StageVectorizing,
		Progress: domain.ActionProgress{
			ProcessedDocuments: 4,
			TotalDocuments:     10,
			DisplayText:        "vectorizing documents",
		},
		UpdatedAt: time.Now(),
	}}
	oldIndexing := indexing
	indexing = mock
	defer func() { indexing = oldIndexing }()

	out, err := execute(t, "index", "status", "act-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:    processing")
	assert.Contains(t, out, "Stage:     vectorizing")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "vectorizing documents")
}

func TestIndexListCmd_Empty(t *testing.T) {
	mock := &mockIndexing{}
	oldIndexing := indexing
	indexing = mock
	defer func() { indexing = oldIndexing }()

	out, err := execute(t, "index", "list", "--base", "base-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No actions for base base-1.")
}

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch <inbox-dir>", watchCmd.Use)
}

package converters

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

func newTestService() *Service {
	return NewDefault(nil)
}

func TestService_Supported(t *testing.T) {
	s := newTestService()

	assert.True(t, s.Supported("notes.md"))
	assert.True(t, s.Supported("report.pdf"))
	assert.True(t, s.Supported("DECK.PPTX"))
	assert.False(t, s.Supported("tool.exe"))
	assert.False(t, s.Supported("Makefile"))
}

func TestService_Convert(t *testing.T) {
	s := newTestService()

	res, err := s.Convert(context.Background(), "guide.md", []byte("# Guide\n\nbody text"))
	require.NoError(t, err)

	assert.Equal(t, "Guide", res.Title)
	assert.Equal(t, domain.FormatMarkdown, res.Format)
	assert.Contains(t, res.Markup, "<h1>Guide</h1>")
}

func TestService_Convert_UnsupportedType(t *testing.T) {
	_, err := newTestService().Convert(context.Background(), "tool.exe", []byte("MZ"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestService_Convert_SignatureMismatch(t *testing.T) {
	// A .pdf extension on plain text content.
	_, err := newTestService().Convert(context.Background(), "fake.pdf", []byte("hello"))
	assert.ErrorIs(t, err, domain.ErrFormatMismatch)
}

func TestService_Convert_EmptyDocument(t *testing.T) {
	_, err := newTestService().Convert(context.Background(), "blank.txt", []byte("   \n  \n"))
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestService_Convert_TitleSynthesizedFromFilename(t *testing.T) {
	res, err := newTestService().Convert(context.Background(), "meeting-notes_2026.md", []byte("no heading here"))
	require.NoError(t, err)
	assert.Equal(t, "Meeting notes 2026", res.Title)
}

func TestService_Convert_SynthesizedHeadingPrefixesMarkup(t *testing.T) {
	body := []byte("This body has no heading at all.\n\nSecond paragraph.")

	res, err := newTestService().Convert(context.Background(), "release_notes.txt", body)
	require.NoError(t, err)

	assert.Equal(t, "Release notes", res.Title)
	assert.True(t, strings.HasPrefix(res.Markup, "<h1>Release notes</h1>"), res.Markup)
	assert.Contains(t, res.Markup, "<p>This body has no heading at all.</p>")
}

func TestService_Convert_ExistingHeadingNotPrefixed(t *testing.T) {
	res, err := newTestService().Convert(context.Background(), "guide.md", []byte("# Guide\n\nbody"))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(res.Markup, "<h1>"))
	assert.Equal(t, "Guide", res.Title)
}

package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

func buildPptx(t *testing.T, slides map[int]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for n, content := range slides {
		f, err := w.Create("ppt/slides/slide" + string(rune('0'+n)) + ".xml")
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func slideXMLWith(texts ...string) string {
	body := ""
	for _, text := range texts {
		body += `<p><r><t>` + text + `</t></r></p>`
	}
	return `<?xml version="1.0"?><sld><cSld><spTree><sp><txBody>` + body + `</txBody></sp></spTree></cSld></sld>`
}

func TestConvert(t *testing.T) {
	data := buildPptx(t, map[int]string{
		1: slideXMLWith("Welcome", "An overview of the roadmap"),
		2: slideXMLWith("Milestones"),
	})

	res, err := New().Convert(context.Background(), "deck.pptx", data)
	require.NoError(t, err)

	assert.Contains(t, res.Markup, "<h2>Slide 1</h2>")
	assert.Contains(t, res.Markup, "<p>Welcome</p>")
	assert.Contains(t, res.Markup, "<p>An overview of the roadmap</p>")
	assert.Contains(t, res.Markup, "<h2>Slide 2</h2>")
	assert.Contains(t, res.Markup, "<p>Milestones</p>")

	// Slide order, not zip entry order.
	assert.Less(t, bytes.Index([]byte(res.Markup), []byte("Slide 1")), bytes.Index([]byte(res.Markup), []byte("Slide 2")))
}

func TestConvert_NoSlides(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("ppt/presentation.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<presentation/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = New().Convert(context.Background(), "deck.pptx", buf.Bytes())
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

func TestConvert_NotAZip(t *testing.T) {
	_, err := New().Convert(context.Background(), "deck.pptx", []byte("nope"))
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

package eml

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

const plainMessage = `From: Ada <ada@example.com>
To: Grace <grace@example.com>
Date: Mon, 02 Mar 2026 10:00:00 +0000
Subject: Meeting notes

We agreed to ship the importer first.

Second paragraph here.
`

func TestConvert(t *testing.T) {
	res, err := New().Convert(context.Background(), "mail.eml", []byte(strings.ReplaceAll(plainMessage, "\n", "\r\n")))
	require.NoError(t, err)

	assert.Equal(t, "Meeting notes", res.Title)
	assert.Contains(t, res.Markup, "From: Ada")
	assert.Contains(t, res.Markup, "Subject: Meeting notes")
	assert.Contains(t, res.Markup, "We agreed to ship the importer first.")
}

func TestConvert_EncodedSubject(t *testing.T) {
	msg := "Subject: =?UTF-8?B?0J/RgNC40LLQtdGC?=\r\n\r\nbody text\r\n"

	res, err := New().Convert(context.Background(), "mail.eml", []byte(msg))
	require.NoError(t, err)
	assert.Equal(t, "Привет", res.Title)
}

func TestConvert_MultipartPrefersPlainText(t *testing.T) {
	msg := strings.Join([]string{
		"Subject: Multi",
		`Content-Type: multipart/alternative; boundary="sep"`,
		"",
		"--sep",
		"Content-Type: text/plain",
		"",
		"plain body",
		"--sep",
		"Content-Type: text/html",
		"",
		"<p>html body</p>",
		"--sep--",
		"",
	}, "\r\n")

	res, err := New().Convert(context.Background(), "mail.eml", []byte(msg))
	require.NoError(t, err)
	assert.Contains(t, res.Markup, "plain body")
	assert.NotContains(t, res.Markup, "html body")
}

func TestConvert_QuotedPrintableBody(t *testing.T) {
	msg := strings.Join([]string{
		"Subject: QP",
		"Content-Type: text/plain",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"caf=C3=A9 talk",
		"",
	}, "\r\n")

	res, err := New().Convert(context.Background(), "mail.eml", []byte(msg))
	require.NoError(t, err)
	assert.Contains(t, res.Markup, "café talk")
}

func TestConvert_SubjectBecomesHeading(t *testing.T) {
	res, err := New().Convert(context.Background(), "mail.eml", []byte(strings.ReplaceAll(plainMessage, "\n", "\r\n")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Markup, "<h1>Meeting notes</h1>"), res.Markup)
}

func TestConvert_Windows1251Body(t *testing.T) {
	// "Привет мир" in windows-1251
	body := []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2, 0x20, 0xEC, 0xE8, 0xF0}
	msg := append([]byte("Subject: Greeting\r\nContent-Type: text/plain\r\n\r\n"), body...)

	res, err := New().Convert(context.Background(), "mail.eml", msg)
	require.NoError(t, err)
	assert.Contains(t, res.Markup, "Привет мир")
}

func TestConvert_NotAMessage(t *testing.T) {
	_, err := New().Convert(context.Background(), "mail.eml", []byte("\x00\x01\x02"))
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

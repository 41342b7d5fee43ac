package mailbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

const sampleMbox = `From alice@example.com Sat Mar  9 08:00:00 2024
From: Alice <alice@example.com>
Subject: Old news
Date: Fri, 08 Mar 2024 08:00:00 +0000
Message-ID: <old@example.com>

This message is too old to be included.

From bob@example.com Sun Mar 10 09:00:00 2024
From: Bob <bob@example.com>
Subject: =?UTF-8?Q?Caf=C3=A9_update?=
Date: Sun, 10 Mar 2024 09:00:00 +0000
Message-ID: <plain@example.com>
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

The caf=C3=A9 opens at nine. Coffee is free on Monday=
s.
>From the manager.

From carol@example.com Sun Mar 10 10:00:00 2024
From: Carol <carol@example.com>
Subject: Newsletter
Date: Sun, 10 Mar 2024 10:00:00 +0000
Message-ID: <multi@example.com>
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="XYZ"

--XYZ
Content-Type: text/html; charset=utf-8

<p>HTML version.</p>
--XYZ
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: base64

UGxhaW4gdmVyc2lvbi4=
--XYZ--

From dave@example.com Sun Mar 10 11:00:00 2024
From: Dave <dave@example.com>
Subject: Only HTML
Date: Sun, 10 Mar 2024 11:00:00 +0000
Content-Type: text/html; charset=utf-8

<html><body><p>Rich <b>text</b> only.</p></body></html>

From erin@example.com Sun Mar 10 11:30:00 2024
From: Erin <erin@example.com>
Subject: Attachment only
Date: Sun, 10 Mar 2024 11:30:00 +0000
Content-Type: application/pdf

JVBERi0xLjQK
`

func writeMbox(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inbox")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSplitMbox(t *testing.T) {
	messages, err := splitMbox(strings.NewReader(sampleMbox))
	require.NoError(t, err)
	require.Len(t, messages, 5)
	assert.Contains(t, string(messages[1]), "\r\nFrom the manager.")
	assert.NotContains(t, string(messages[1]), ">From")
}

func TestUnquoteFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{">From here", "From here", true},
		{">>From here", ">From here", true},
		{"> quoted reply", "> quoted reply", false},
		{"From sender", "From sender", false},
	}
	for _, tt := range tests {
		got, ok := unquoteFrom(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestParseMessage_QuotedPrintable(t *testing.T) {
	messages, err := splitMbox(strings.NewReader(sampleMbox))
	require.NoError(t, err)

	m, err := parseMessage(messages[1])
	require.NoError(t, err)
	assert.Equal(t, "Café update", m.Subject)
	assert.Equal(t, "plain@example.com", m.ID)
	assert.Equal(t, "The café opens at nine. Coffee is free on Mondays.\nFrom the manager.", m.Text)
}

func TestParseMessage_PrefersPlainPart(t *testing.T) {
	messages, err := splitMbox(strings.NewReader(sampleMbox))
	require.NoError(t, err)

	m, err := parseMessage(messages[2])
	require.NoError(t, err)
	assert.Equal(t, "Plain version.", m.Text)
}

func TestParseMessage_HTMLFallback(t *testing.T) {
	messages, err := splitMbox(strings.NewReader(sampleMbox))
	require.NoError(t, err)

	m, err := parseMessage(messages[3])
	require.NoError(t, err)
	assert.Equal(t, "Rich text only.", m.Text)
}

func TestSource_Documents(t *testing.T) {
	src := NewSource("", writeMbox(t, sampleMbox), 0)
	src.now = func() time.Time { return fixedNow }

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "Café update", docs[0].Title)
	assert.Equal(t, "mid:plain@example.com", docs[0].Origin)
	assert.Equal(t, "Newsletter", docs[1].Title)
	assert.Equal(t, "Only HTML", docs[2].Title)
	assert.Equal(t, src.path, docs[2].Origin)
	assert.True(t, docs[0].ReceivedAt.Equal(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)))
}

func TestSource_Window(t *testing.T) {
	src := NewSource("inbox", writeMbox(t, sampleMbox), 2*time.Hour)
	src.now = func() time.Time { return fixedNow }

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Newsletter", docs[0].Title)
	assert.Equal(t, "inbox", src.Name())
}

func TestSource_DefaultWindowStartsYesterday(t *testing.T) {
	const inbox = `From dave@example.com Sat Mar  9 00:30:00 2024
From: Dave <dave@example.com>
Subject: Early yesterday
Date: Sat, 09 Mar 2024 00:30:00 +0000

Sent shortly after midnight.

From erin@example.com Fri Mar  8 23:30:00 2024
From: Erin <erin@example.com>
Subject: Day before
Date: Fri, 08 Mar 2024 23:30:00 +0000

Sent before yesterday.
`
	path := writeMbox(t, inbox)

	tests := []struct {
		name   string
		window time.Duration
		want   []string
	}{
		{name: "default", window: 0, want: []string{"Early yesterday"}},
		{name: "rolling 24h", window: 24 * time.Hour, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource("", path, tt.window)
			src.now = func() time.Time { return fixedNow }

			docs, err := src.Documents(context.Background())
			require.NoError(t, err)
			var titles []string
			for _, d := range docs {
				titles = append(titles, d.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestSource_MissingFile(t *testing.T) {
	src := NewSource("", filepath.Join(t.TempDir(), "missing"), 0)

	_, err := src.Documents(context.Background())
	assert.ErrorIs(t, err, ErrMailboxUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

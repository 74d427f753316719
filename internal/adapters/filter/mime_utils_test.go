package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestParseEmailPlain(t *testing.T) {
	raw := crlf(`From: Jane Smith <jane@example.com>
To: me@example.com, Other <other@example.com>
Subject: Lunch tomorrow?
Message-Id: <abc@example.com>

Can we meet at noon?
`)

	email, err := ParseEmail(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith <jane@example.com>", email.From)
	assert.Equal(t, []string{"me@example.com", "other@example.com"}, email.To)
	assert.Equal(t, "Lunch tomorrow?", email.Subject)
	assert.Equal(t, "<abc@example.com>", email.MessageID)
	assert.Equal(t, "Can we meet at noon?\r\n", email.Body)
	assert.Equal(t, []string{"Lunch tomorrow?"}, email.Headers["Subject"])
}

func TestParseEmailEncodedHeaders(t *testing.T) {
	raw := crlf(`From: =?UTF-8?Q?Ren=C3=A9e?= <renee@example.com>
Subject: =?ISO-8859-1?Q?Caf=E9_meeting?=

body
`)

	email, err := ParseEmail(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Renée <renee@example.com>", email.From)
	assert.Equal(t, "Café meeting", email.Subject)
}

func TestParseEmailMultipart(t *testing.T) {
	raw := crlf(`From: alerts@bank.com
Subject: Statement
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

Your statement is =E2=82=AC10.
--inner
Content-Type: text/html

<p>Your statement</p>
--inner--
--outer
Content-Type: text/plain
Content-Disposition: attachment; filename="notes.txt"

attached notes
--outer
Content-Type: text/plain; charset=iso-8859-1
Content-Transfer-Encoding: base64

Q2Fm6Q==
--outer--
`)

	email, err := ParseEmail(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Contains(t, email.Body, "Your statement is €10.")
	assert.Contains(t, email.Body, "Café")
	assert.NotContains(t, email.Body, "<p>")
	assert.NotContains(t, email.Body, "attached notes")
}

func TestParseEmailMultipartWithoutText(t *testing.T) {
	raw := crlf(`From: a@b.com
Content-Type: multipart/mixed; boundary="b"

--b
Content-Type: image/png

xxxx
--b--
`)

	email, err := ParseEmail(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, NoTextContent, email.Body)
}

func TestParseEmailInvalid(t *testing.T) {
	_, err := ParseEmail(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDecodeEncodedHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hello", "Hello"},
		{"utf8 base64", "=?UTF-8?B?SGVsbG8gV29ybGQ=?=", "Hello World"},
		{"windows-1252", "=?windows-1252?Q?=93quoted=94?=", "“quoted”"},
		{"unknown charset", "=?x-made-up?Q?abc?=", "=?x-made-up?Q?abc?="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeEncodedHeader(tt.input))
		})
	}
}

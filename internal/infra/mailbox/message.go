package mailbox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"textdigest/internal/infra/htmltext"
)

// maxPartDepth bounds multipart nesting.
const maxPartDepth = 8

var errNoTextPart = errors.New("no text part")

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.NewReaderLabel}

// message is the part of a mail message a digest needs.
type message struct {
	ID      string
	From    string
	Subject string
	Date    time.Time
	Text    string
}

// parseMessage reads raw as an RFC 5322 message and extracts its readable
// body: the first text/plain part, or else the first text/html part flattened
// to text.
func parseMessage(raw []byte) (message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return message{}, fmt.Errorf("parse message: %w", err)
	}

	m := message{
		ID:      strings.Trim(msg.Header.Get("Message-Id"), "<> "),
		From:    decodeHeader(msg.Header.Get("From")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
	}
	if date, err := msg.Header.Date(); err == nil {
		m.Date = date
	}

	plain, html, err := readBody(mailHeader(msg.Header), msg.Body, 0)
	if err != nil && !errors.Is(err, errNoTextPart) {
		return m, err
	}
	switch {
	case strings.TrimSpace(plain) != "":
		m.Text = strings.TrimSpace(plain)
	case html != "":
		m.Text = htmltext.ToText(html)
	}
	return m, nil
}

func decodeHeader(v string) string {
	decoded, err := wordDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

// header is the subset of header access shared by mail and multipart headers.
type header interface {
	Get(key string) string
}

type mailHeader mail.Header

func (h mailHeader) Get(key string) string { return mail.Header(h).Get(key) }

// readBody walks a (possibly multipart) body and returns the first plain and
// html texts found.
func readBody(h header, body io.Reader, depth int) (plain, html string, err error) {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		// RFC 2045 default.
		mediaType, params = "text/plain", map[string]string{"charset": "us-ascii"}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxPartDepth {
			return "", "", fmt.Errorf("multipart nesting deeper than %d", maxPartDepth)
		}
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextRawPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return plain, html, fmt.Errorf("read multipart: %w", err)
			}
			if strings.HasPrefix(part.Header.Get("Content-Disposition"), "attachment") {
				continue
			}
			p, hm, err := readBody(part.Header, part, depth+1)
			if err != nil && !errors.Is(err, errNoTextPart) {
				return plain, html, err
			}
			if plain == "" {
				plain = p
			}
			if html == "" {
				html = hm
			}
			if plain != "" {
				break
			}
		}
		return plain, html, nil
	}

	if mediaType != "text/plain" && mediaType != "text/html" {
		return "", "", errNoTextPart
	}

	text, err := decodePart(body, h.Get("Content-Transfer-Encoding"), params["charset"])
	if err != nil {
		return "", "", err
	}
	if mediaType == "text/html" {
		return "", text, nil
	}
	return text, "", nil
}

// decodePart undoes the transfer encoding and converts charset to UTF-8.
func decodePart(body io.Reader, encoding, charsetLabel string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	}

	if charsetLabel != "" && !strings.EqualFold(charsetLabel, "utf-8") && !strings.EqualFold(charsetLabel, "us-ascii") {
		converted, err := charset.NewReaderLabel(charsetLabel, body)
		if err == nil {
			body = converted
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

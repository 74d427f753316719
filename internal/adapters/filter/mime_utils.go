package filter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/mikey/inbox-triage/internal/core"
	"golang.org/x/text/encoding/htmlindex"
)

// NoTextContent is the body used when a multipart message has no text/plain part
const NoTextContent = "[No text content found in multipart message]"

// maxMultipartDepth bounds recursion into nested multipart bodies
const maxMultipartDepth = 5

var headerDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// ParseEmail reads an RFC 822 message into a core.Email with decoded
// headers and a plain-text body
func ParseEmail(r io.Reader) (*core.Email, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	email := &core.Email{
		MessageID: strings.TrimSpace(msg.Header.Get("Message-Id")),
		From:      decodeEncodedHeader(msg.Header.Get("From")),
		Subject:   decodeEncodedHeader(msg.Header.Get("Subject")),
		Body:      body,
		Headers:   make(map[string][]string, len(msg.Header)),
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
	}
	if to, err := msg.Header.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}

	return email, nil
}

// decodeEncodedHeader decodes RFC 2047 encoded words, returning the input
// unchanged when it cannot be decoded
func decodeEncodedHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// charsetReader converts input in the named charset to UTF-8
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8", "us-ascii":
		return input, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// extractTextFromMessage extracts the text content from an email message.
// For multipart messages, it collects the text/plain parts.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	return extractText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0)
}

func extractText(contentType, transferEncoding string, body io.Reader, depth int) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || contentType == "" {
		// Treat unlabelled or unparsable content as plain text
		mediaType, params = "text/plain", map[string]string{}
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return decodeBody(body, transferEncoding, params["charset"])
	}

	boundary, ok := params["boundary"]
	if !ok || depth >= maxMultipartDepth {
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	var textContent bytes.Buffer
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever was read before the malformed part
			break
		}

		partType := part.Header.Get("Content-Type")
		partMedia, _, _ := mime.ParseMediaType(partType)
		switch {
		case partType == "" || partMedia == "text/plain":
			if isAttachment(part) {
				continue
			}
			text, err := extractText(partType, part.Header.Get("Content-Transfer-Encoding"), part, depth+1)
			if err != nil {
				continue
			}
			textContent.WriteString(text)
			textContent.WriteString("\n")
		case strings.HasPrefix(partMedia, "multipart/"):
			text, err := extractText(partType, "", part, depth+1)
			if err != nil || text == NoTextContent {
				continue
			}
			textContent.WriteString(text)
		}
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return NoTextContent, nil
}

func isAttachment(part *multipart.Part) bool {
	disposition, _, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}

// decodeBody undoes the transfer encoding and converts the charset to UTF-8
func decodeBody(body io.Reader, transferEncoding, charset string) (string, error) {
	var r io.Reader = body
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		r = quotedprintable.NewReader(body)
	}

	if decoded, err := charsetReader(charset, r); err == nil {
		r = decoded
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

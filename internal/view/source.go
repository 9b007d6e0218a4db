package view

import (
	"net/url"
	"strings"

	"github.com/BetterCallFirewall/Cryptoscope/internal/jsonvalue"
	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
)

const (
	placeholderHeaders  = "(no headers)"
	placeholderParams   = "(no params)"
	placeholderPayload  = "(no payload)"
	placeholderResponse = "(empty response)"
)

// rawSource is what a field shows in raw mode and what it hands to the codec.
type rawSource struct {
	text    string // raw display text, empty when there is no content
	decrypt string // codec input
	ok      bool
}

func sourceFor(field Field, e models.Exchange) rawSource {
	switch field {
	case FieldHeaders:
		text := FormatHeaders(e.RequestHeaders, e.ResponseHeaders)
		return rawSource{text: text, decrypt: text, ok: text != ""}
	case FieldParams:
		key, value, ok := FirstQueryParam(e.URL)
		if !ok {
			return rawSource{}
		}
		pair := jsonvalue.Object{Members: []jsonvalue.Member{
			{Key: "key", Value: jsonvalue.String(key)},
			{Key: "value", Value: jsonvalue.String(value)},
		}}
		return rawSource{text: jsonvalue.Indent(pair), decrypt: strings.TrimSpace(value), ok: true}
	case FieldPayload:
		return rawSource{text: e.RequestBody, decrypt: e.RequestBody, ok: e.RequestBody != ""}
	case FieldResponse:
		return rawSource{text: e.ResponseBody, decrypt: strings.TrimSpace(e.ResponseBody), ok: e.ResponseBody != ""}
	}
	return rawSource{}
}

func placeholder(field Field) string {
	switch field {
	case FieldHeaders:
		return placeholderHeaders
	case FieldParams:
		return placeholderParams
	case FieldPayload:
		return placeholderPayload
	default:
		return placeholderResponse
	}
}

// FormatHeaders renders request and response header lines as one block.
// A block with no headers is left out.
func FormatHeaders(request, response []models.Header) string {
	var b strings.Builder
	if len(request) > 0 {
		b.WriteString("Request headers:\n")
		writeHeaderLines(&b, request)
	}
	if len(response) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Response headers:\n")
		writeHeaderLines(&b, response)
	}
	return b.String()
}

func writeHeaderLines(b *strings.Builder, headers []models.Header) {
	for i, h := range headers {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
	}
}

// FirstQueryParam returns the first key/value pair of the URL query in order
// of appearance. '+' is kept as is so base64 tokens survive.
func FirstQueryParam(rawURL string) (string, string, bool) {
	var query string
	if u, err := url.Parse(rawURL); err == nil {
		query = u.RawQuery
	} else if _, after, found := strings.Cut(rawURL, "?"); found {
		query, _, _ = strings.Cut(after, "#")
	}

	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		return unescape(key), unescape(value), true
	}
	return "", "", false
}

func unescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}

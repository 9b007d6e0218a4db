package capture

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
)

// Event is a finished exchange as reported by a devtools-style collaborator.
// Request and response use HAR field names, so a HAR entry decodes into it too.
type Event struct {
	RequestID       string    `json:"requestId,omitempty"`
	StartedDateTime string    `json:"startedDateTime,omitempty"`
	Request         Request   `json:"request"`
	Response        *Response `json:"response,omitempty"`
}

type Request struct {
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Headers  []NameValue `json:"headers"`
	PostData *PostData   `json:"postData,omitempty"`
}

type PostData struct {
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

type Response struct {
	Status  int         `json:"status"`
	Headers []NameValue `json:"headers"`
	Content Content     `json:"content"`
}

type Content struct {
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
	Encoding string `json:"encoding,omitempty"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Body returns the decoded response text.
func (c Content) Body() string {
	if !strings.EqualFold(c.Encoding, "base64") {
		return c.Text
	}
	decoded, err := base64.StdEncoding.DecodeString(c.Text)
	if err != nil {
		return c.Text
	}
	return string(decoded)
}

// exchange builds the record without the response body.
func (ev Event) exchange(id string, now time.Time) models.Exchange {
	e := models.Exchange{
		ID:             id,
		URL:            ev.Request.URL,
		ShortURL:       models.ShortenURL(ev.Request.URL),
		Domain:         models.Origin(ev.Request.URL),
		Method:         strings.ToUpper(ev.Request.Method),
		RequestHeaders: headers(ev.Request.Headers),
		CapturedAt:     now,
	}
	if ev.Request.PostData != nil {
		e.RequestBody = ev.Request.PostData.Text
	}
	if ev.Response != nil {
		if ev.Response.Status > 0 {
			e.Status = ev.Response.Status
		}
		e.ResponseHeaders = headers(ev.Response.Headers)
	}
	if started, err := time.Parse(time.RFC3339Nano, ev.StartedDateTime); err == nil {
		e.CapturedAt = started
	}
	return e
}

func headers(in []NameValue) []models.Header {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Header, 0, len(in))
	for _, h := range in {
		out = append(out, models.Header{Name: h.Name, Value: h.Value})
	}
	return out
}

package models

import (
	"net/url"
	"strings"
	"time"
)

// Exchange - один захваченный запрос/ответ
type Exchange struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	ShortURL        string    `json:"short_url"`
	Domain          string    `json:"domain"`
	Method          string    `json:"method"`
	Status          int       `json:"status,omitempty"` // 0 - ответа нет (в полёте или ошибка)
	RequestHeaders  []Header  `json:"request_headers"`
	ResponseHeaders []Header  `json:"response_headers"`
	RequestBody     string    `json:"request_body"`
	ResponseBody    string    `json:"response_body"`
	CapturedAt      time.Time `json:"captured_at"`
}

// Header keeps wire order, so it is a pair rather than a map entry.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HasStatus reports whether the response status is known.
func (e Exchange) HasStatus() bool {
	return e.Status > 0
}

// Clone returns a copy that shares no slices with e.
func (e Exchange) Clone() Exchange {
	out := e
	out.RequestHeaders = append([]Header(nil), e.RequestHeaders...)
	out.ResponseHeaders = append([]Header(nil), e.ResponseHeaders...)
	return out
}

// ShortenURL strips the query string and fragment.
func ShortenURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Origin returns scheme://host of raw, or "" when raw is not absolute.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

package capture

import (
	"net/url"
	"strings"
)

const defaultMarker = "/v1/"

// Filter решает, какие обмены вообще попадают в сессию.
// URL должен быть абсолютным http(s) и содержать один из маркеров API.
type Filter struct {
	markers []string
}

func NewFilter(markers []string) *Filter {
	var cleaned []string
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{defaultMarker}
	}
	return &Filter{markers: cleaned}
}

// Match reports whether rawURL is captured, with the reason when it is not.
func (f *Filter) Match(rawURL string) (bool, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, "unparsable url"
	}
	if !u.IsAbs() || u.Host == "" {
		return false, "not an absolute url"
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return false, "unsupported scheme: " + u.Scheme
	}

	for _, marker := range f.markers {
		if strings.Contains(rawURL, marker) {
			return true, ""
		}
	}
	return false, "no api marker in url"
}

func (f *Filter) Markers() []string {
	return append([]string(nil), f.markers...)
}

package codec

import (
	"encoding/base64"
	"strings"
)

var escapeCleaner = strings.NewReplacer(`\/`, "/", `\n`, "", `\r`, "")

// Normalize removes the serialization artifacts captured values tend to carry:
// surrounding whitespace, JSON string quotes, escaped slashes and literal
// \n / \r escapes. Cleaning repeats until the text is stable, so the result is
// a fixed point.
func Normalize(s string) string {
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return escapeCleaner.Replace(s)
}

// decodeBase64 accepts the standard alphabet with or without padding and
// falls back to the URL-safe one.
func decodeBase64(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var firstErr error
	for _, enc := range encodings {
		blob, err := enc.DecodeString(s)
		if err == nil {
			return blob, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

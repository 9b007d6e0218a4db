package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
)

func TestParseField(t *testing.T) {
	tests := map[string]Field{
		"headers":       FieldHeaders,
		"params":        FieldParams,
		"query-param":   FieldParams,
		"payload":       FieldPayload,
		"Request-Body":  FieldPayload,
		" response ":    FieldResponse,
		"response-body": FieldResponse,
	}
	for in, want := range tests {
		got, ok := ParseField(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseField("cookies")
	assert.False(t, ok)
}

func TestFirstQueryParam(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		key   string
		value string
		ok    bool
	}{
		{"first of many", "https://a.test/v1/x?b=2&a=1", "b", "2", true},
		{"plus is kept", "https://a.test/v1/x?t=ab+c/d==", "t", "ab+c/d==", true},
		{"escaped value", "https://a.test/v1/x?t=ab%2Bc%2Fd%3D%3D", "t", "ab+c/d==", true},
		{"no value", "https://a.test/v1/x?flag", "flag", "", true},
		{"leading ampersand", "https://a.test/v1/x?&k=v", "k", "v", true},
		{"fragment ignored", "https://a.test/v1/x?k=v#frag", "k", "v", true},
		{"no query", "https://a.test/v1/x", "", "", false},
		{"empty query", "https://a.test/v1/x?", "", "", false},
		{"bad escape kept", "https://a.test/v1/x?k=%zz", "k", "%zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := FirstQueryParam(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestFormatHeaders(t *testing.T) {
	req := []models.Header{{Name: "Accept", Value: "*/*"}, {Name: "X-Id", Value: "1"}}
	resp := []models.Header{{Name: "Server", Value: "nginx"}}

	assert.Equal(t,
		"Request headers:\nAccept: */*\nX-Id: 1\n\nResponse headers:\nServer: nginx",
		FormatHeaders(req, resp))
	assert.Equal(t, "Request headers:\nAccept: */*\nX-Id: 1", FormatHeaders(req, nil))
	assert.Equal(t, "Response headers:\nServer: nginx", FormatHeaders(nil, resp))
	assert.Empty(t, FormatHeaders(nil, nil))
}

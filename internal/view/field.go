package view

import "strings"

// Field is a logical part of an exchange that can be shown raw or decrypted.
type Field string

const (
	FieldHeaders  Field = "headers"
	FieldParams   Field = "params"
	FieldPayload  Field = "payload"
	FieldResponse Field = "response"
)

// Fields lists every field in presentation order.
var Fields = []Field{FieldHeaders, FieldParams, FieldPayload, FieldResponse}

var fieldAliases = map[string]Field{
	"headers":       FieldHeaders,
	"params":        FieldParams,
	"query-param":   FieldParams,
	"query_param":   FieldParams,
	"payload":       FieldPayload,
	"request-body":  FieldPayload,
	"request_body":  FieldPayload,
	"response":      FieldResponse,
	"response-body": FieldResponse,
	"response_body": FieldResponse,
}

// ParseField resolves a field name or one of its aliases.
func ParseField(s string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

type Mode string

const (
	ModeRaw       Mode = "raw"
	ModeDecrypted Mode = "decrypted"
)

package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BetterCallFirewall/Cryptoscope/internal/jsonvalue"
)

type staticKey string

func (k staticKey) CurrentKey() string { return string(k) }

var fixedIV = []byte("0123456789abcdef")

func mustEncrypt(t *testing.T, plaintext, key string) string {
	t.Helper()
	wire, err := Encrypt([]byte(plaintext), key, fixedIV)
	require.NoError(t, err)
	return wire
}

func TestDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		want      jsonvalue.Value
	}{
		{
			name:      "json object",
			plaintext: `{"user":"alice","roles":["admin"],"active":true}`,
			want: jsonvalue.Object{Members: []jsonvalue.Member{
				{Key: "user", Value: jsonvalue.String("alice")},
				{Key: "roles", Value: jsonvalue.Array{jsonvalue.String("admin")}},
				{Key: "active", Value: jsonvalue.Bool(true)},
			}},
		},
		{name: "plain text", plaintext: "hello, world", want: jsonvalue.String("hello, world")},
		{name: "json number", plaintext: "123", want: jsonvalue.Number("123")},
		{name: "exact block", plaintext: "sixteen bytes!!!", want: jsonvalue.String("sixteen bytes!!!")},
		{name: "empty", plaintext: "", want: jsonvalue.String("")},
		{name: "unicode", plaintext: `{"msg":"привет 👋"}`, want: jsonvalue.Object{Members: []jsonvalue.Member{
			{Key: "msg", Value: jsonvalue.String("привет 👋")},
		}}},
	}

	c := NewCodec(staticKey("k1"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Decrypt(mustEncrypt(t, tt.plaintext, "k1"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecryptRandomIV(t *testing.T) {
	wire, err := Encrypt([]byte(`{"n":1}`), "secret", nil)
	require.NoError(t, err)

	got, err := NewCodec(staticKey("secret")).Decrypt(wire)
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(raw))
}

func TestDecryptToleratesWireArtifacts(t *testing.T) {
	// an IV of 0xff bytes guarantees '/' in the encoded output
	iv := bytes.Repeat([]byte{0xff}, 16)
	wire, err := Encrypt([]byte(`{"ok":true}`), "k1", iv)
	require.NoError(t, err)
	require.Contains(t, wire, "/")

	escaped := strings.ReplaceAll(wire, "/", `\/`)
	withBreaks := escaped[:10] + `\n` + escaped[10:20] + `\r\n` + escaped[20:]

	inputs := map[string]string{
		"quoted":           `"` + wire + `"`,
		"escaped slashes":  escaped,
		"escaped newlines": withBreaks,
		"everything":       "  \"" + withBreaks + "\"\n\t",
	}

	c := NewCodec(staticKey("k1"))
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := c.Decrypt(input)
			require.NoError(t, err)
			assert.Equal(t, jsonvalue.Object{Members: []jsonvalue.Member{{Key: "ok", Value: jsonvalue.Bool(true)}}}, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc", "abc"},
		{"  abc \n", "abc"},
		{`"abc"`, "abc"},
		{`"abc`, `"abc`},
		{`a\/b\/c`, "a/b/c"},
		{`ab\ncd\r\nef`, "abcdef"},
		{`" \"x\" "`, `\"x\"`},
		{`""abc""`, "abc"},
		{`\\nn`, ""},
		{`\\//`, "//"},
		{`" "`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	pieces := []string{`"`, `\/`, `\n`, `\r`, " ", "\t", `\`, "/", "n", "r", "AbC+", "="}

	// every combination of three pieces, wrapped in assorted quoting
	for _, a := range pieces {
		for _, b := range pieces {
			for _, c := range pieces {
				body := a + b + c
				for _, s := range []string{body, `"` + body + `"`, " " + body + "\n", `""` + body + `""`} {
					once := Normalize(s)
					assert.Equal(t, once, Normalize(once), "input %q", s)
				}
			}
		}
	}
}

func TestDecryptFailsOpen(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("only-ten-b"))
	ivOnly := base64.StdEncoding.EncodeToString(fixedIV)
	ragged := base64.StdEncoding.EncodeToString(append(bytes.Clone(fixedIV), []byte("not a block")...))

	inputs := []string{
		"",
		"not base64 at all!",
		"%%%%",
		short,
		ivOnly,
		ragged,
		"Request headers:\ncontent-type: application/json",
	}

	c := NewCodec(staticKey("k1"))
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := c.Decrypt(input)
			require.Error(t, err)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))

			assert.Equal(t, jsonvalue.String(input), c.DecryptOrOriginal(input))
		})
	}
}

func TestDecryptErrorStages(t *testing.T) {
	c := NewCodec(staticKey("k1"))

	_, err := c.Decrypt("***")
	assertStage(t, err, StageBase64)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assertStage(t, err, StageLayout)
	assert.ErrorIs(t, err, ErrShortBlob)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(fixedIV))
	assert.ErrorIs(t, err, ErrCiphertextSize)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(unpaddedBlock(t, "k1", []byte("fifteen bytes..\x00"))))
	assertStage(t, err, StagePadding)
	assert.ErrorIs(t, err, ErrPadding)
}

// unpaddedBlock encrypts a single raw block without PKCS#7 padding.
func unpaddedBlock(t *testing.T, key string, block []byte) []byte {
	t.Helper()
	require.Len(t, block, aes.BlockSize)

	b, err := aes.NewCipher(deriveKey(key))
	require.NoError(t, err)

	out := make([]byte, aes.BlockSize*2)
	copy(out, fixedIV)
	cipher.NewCBCEncrypter(b, fixedIV).CryptBlocks(out[aes.BlockSize:], block)
	return out
}

func TestUnpad(t *testing.T) {
	good := append([]byte("abcdefghijklm"), 3, 3, 3)
	out, err := unpad(good)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefghijklm"), out)

	bad := [][]byte{
		{},
		append([]byte("abcdefghijklmno"), 0),
		append([]byte("abcdefghijklmn"), 1, 2),
		append([]byte("abcdefghijklmno"), 17),
	}
	for _, b := range bad {
		_, err := unpad(b)
		assert.ErrorIs(t, err, ErrPadding)
	}
}

func TestDecryptWrongKeyNeverYieldsPlaintext(t *testing.T) {
	wire := mustEncrypt(t, `{"secret":"value"}`, "k1")

	got := NewCodec(staticKey("k2")).DecryptOrOriginal(wire)
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotEqual(t, `{"secret":"value"}`, string(raw))
}

func TestDecryptWithoutKeySource(t *testing.T) {
	wire := mustEncrypt(t, "hello", "k1")

	c := NewCodec(nil)
	_, err := c.Decrypt(wire)
	assertStage(t, err, StageEngine)
	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.Equal(t, jsonvalue.String(wire), c.DecryptOrOriginal(wire))

	var nilCodec *Codec
	assert.Equal(t, jsonvalue.String(wire), nilCodec.DecryptOrOriginal(wire))
}

func TestDecryptInvalidUTF8(t *testing.T) {
	wire, err := Encrypt([]byte{0xff, 0xfe, 0xfd}, "k1", fixedIV)
	require.NoError(t, err)

	_, err = DecryptWithKey(wire, "k1")
	assertStage(t, err, StageUTF8)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestEncryptRejectsBadIV(t *testing.T) {
	_, err := Encrypt([]byte("x"), "k1", []byte("short"))
	assert.Error(t, err)
}

func assertStage(t *testing.T, err error, stage Stage) {
	t.Helper()
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr), "expected DecodeError, got %v", err)
	assert.Equal(t, stage, decodeErr.Stage)
}

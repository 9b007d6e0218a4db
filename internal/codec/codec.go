package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"log"
	"unicode/utf8"

	"github.com/BetterCallFirewall/Cryptoscope/internal/jsonvalue"
)

// ivSize is four 32-bit words at the head of the blob.
const ivSize = aes.BlockSize

// KeySource supplies the key material of the active environment.
type KeySource interface {
	CurrentKey() string
}

// Codec decrypts captured wire values encrypted with AES-256-CBC under
// SHA-256(key material), IV prepended to the ciphertext.
type Codec struct {
	keys KeySource
}

func NewCodec(keys KeySource) *Codec {
	return &Codec{keys: keys}
}

// Decrypt runs the full pipeline against the current key. Plaintext that is
// not JSON comes back as a jsonvalue.String.
func (c *Codec) Decrypt(wireText string) (jsonvalue.Value, error) {
	if c == nil || c.keys == nil {
		return nil, stageErr(StageEngine, ErrEngineUnavailable)
	}
	return DecryptWithKey(wireText, c.keys.CurrentKey())
}

// DecryptOrOriginal never fails: any error is logged and the unmodified input
// is returned as a string value.
func (c *Codec) DecryptOrOriginal(wireText string) jsonvalue.Value {
	v, err := c.Decrypt(wireText)
	if err != nil {
		log.Printf("⚠️ decrypt failed, showing original value: %v", err)
		return jsonvalue.String(wireText)
	}
	return v
}

// DecryptWithKey decrypts wireText under an explicit key.
func DecryptWithKey(wireText, key string) (jsonvalue.Value, error) {
	blob, err := decodeBase64(Normalize(wireText))
	if err != nil {
		return nil, stageErr(StageBase64, err)
	}

	if len(blob) < ivSize {
		return nil, stageErr(StageLayout, ErrShortBlob)
	}
	iv, ciphertext := blob[:ivSize], blob[ivSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, stageErr(StageLayout, ErrCiphertextSize)
	}

	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return nil, stageErr(StageCipher, err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = unpad(plain)
	if err != nil {
		return nil, stageErr(StagePadding, err)
	}

	if !utf8.Valid(plain) {
		return nil, stageErr(StageUTF8, ErrInvalidUTF8)
	}

	v, err := jsonvalue.Parse(plain)
	if err != nil {
		return jsonvalue.String(plain), nil
	}
	return v, nil
}

func deriveKey(material string) []byte {
	sum := sha256.Sum256([]byte(material))
	return sum[:]
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, ErrPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrPadding
		}
	}
	return b[:len(b)-n], nil
}

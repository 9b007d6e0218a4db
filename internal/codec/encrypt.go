package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Encrypt is the sender-side counterpart of Decrypt. It produces
// base64(iv || AES-256-CBC(pkcs7(plaintext))). A nil iv is replaced by a
// random one.
func Encrypt(plaintext []byte, key string, iv []byte) (string, error) {
	if iv == nil {
		iv = make([]byte, ivSize)
		if _, err := rand.Read(iv); err != nil {
			return "", fmt.Errorf("generate iv: %w", err)
		}
	}
	if len(iv) != ivSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", ivSize, len(iv))
	}

	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	padded := pad(plaintext)
	out := make([]byte, ivSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[ivSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

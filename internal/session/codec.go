package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keyInfo = "dashboard-session-cookie"

var errMalformed = errors.New("malformed ciphertext")

// Codec seals cookie payloads with AES-256-GCM. Sealed values cannot be read
// or modified without the secret the codec was built from.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives a 32-byte key from secret and returns a codec using it.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session: empty secret")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Codec{aead: gcm}, nil
}

// Encode seals plaintext into a URL-safe string
func (c *Codec) Encode(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decode opens a value produced by Encode
func (c *Codec) Decode(encoded string) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < c.aead.NonceSize() {
		return nil, errMalformed
	}

	nonce, ciphertext := ciphertext[:c.aead.NonceSize()], ciphertext[c.aead.NonceSize():]
	return c.aead.Open(nil, nonce, ciphertext, nil)
}

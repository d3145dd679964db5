package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// File header bytes distinguishing an encrypted payload from plaintext
// JSON, per spec §4.1. A plaintext JSON blob always starts with '{' or
// '[' byte, neither of which collides with this marker.
var encryptedHeader = []byte("PCENC1\x00")

const (
	saltSize = 32
	keyIter  = 10000
)

// cipherBox implements AES-256-GCM at-rest encryption for the store,
// grounded directly on the teacher pack's EncryptionService
// (smartramana-developer-mesh/pkg/security/encryption.go): per-write
// random salt, PBKDF2-SHA256 key derivation from the configured
// environment key, random GCM nonce, salt‖nonce‖ciphertext layout.
type cipherBox struct {
	masterKey []byte
}

func newCipherBox(envKey string) *cipherBox {
	if key, ok := decodeKey(envKey); ok {
		return &cipherBox{masterKey: key}
	}
	hash := sha256.Sum256([]byte(envKey))
	return &cipherBox{masterKey: hash[:]}
}

// decodeKey reads envKey per spec §6's documented format for
// PATTERNCORE_SESSION_ENCRYPTION_KEY, "a hex- or base64-encoded 32-byte
// key": hex first, then standard and raw (no-padding) base64. Anything
// that doesn't decode to exactly 32 bytes falls through to newCipherBox's
// opaque-passphrase path rather than erroring, so an operator who sets a
// plain passphrase instead of an encoded key still gets a usable cipher.
func decodeKey(envKey string) ([]byte, bool) {
	if b, err := hex.DecodeString(envKey); err == nil && len(b) == 32 {
		return b, true
	}
	if b, err := base64.StdEncoding.DecodeString(envKey); err == nil && len(b) == 32 {
		return b, true
	}
	if b, err := base64.RawStdEncoding.DecodeString(envKey); err == nil && len(b) == 32 {
		return b, true
	}
	return nil, false
}

func (c *cipherBox) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(c.masterKey, salt, keyIter, 32, sha256.New)
}

// seal encrypts plaintext and prepends the header, so the written file
// is self-describing on the next load.
func (c *cipherBox) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := c.deriveKey(salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(encryptedHeader)+saltSize+len(nonce)+len(ciphertext))
	out = append(out, encryptedHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// open decrypts a payload previously produced by seal.
func (c *cipherBox) open(payload []byte) ([]byte, error) {
	body := payload[len(encryptedHeader):]
	if len(body) < saltSize {
		return nil, fmt.Errorf("encrypted payload too short")
	}
	salt, rest := body[:saltSize], body[saltSize:]

	key := c.deriveKey(salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted payload missing nonce")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

func isEncrypted(payload []byte) bool {
	if len(payload) < len(encryptedHeader) {
		return false
	}
	for i, b := range encryptedHeader {
		if payload[i] != b {
			return false
		}
	}
	return true
}

package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turtle/pkg/ports"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// envelopePrefix marks the single line an encrypted script is stored as.
const envelopePrefix = "enc:v1:"

// ErrNotEncrypted is returned when a stored artifact is missing its encrypted envelope.
var ErrNotEncrypted = errors.New("missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

func mustValidate(config EncryptionConfig) {
	if len(config.ActiveKey) != KeySize {
		panic("active key must be 32 bytes (AES-256)")
	}
}

type encryptedScripts struct {
	next   ports.ScriptStore
	config EncryptionConfig
}

// NewEncryptedScripts encrypts each script with AES-GCM and stores it as one opaque line.
func NewEncryptedScripts(config EncryptionConfig) ScriptMiddleware {
	mustValidate(config)
	return func(next ports.ScriptStore) ports.ScriptStore {
		return &encryptedScripts{next: next, config: config}
	}
}

func (m *encryptedScripts) Save(ctx context.Context, name string, lines []string) error {
	ciphertext, err := encrypt([]byte(strings.Join(lines, "\n")), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt script: %w", err)
	}
	return m.next.Save(ctx, name, []string{envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)})
}

func (m *encryptedScripts) Load(ctx context.Context, name string) ([]string, error) {
	stored, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(stored) != 1 || !strings.HasPrefix(stored[0], envelopePrefix) {
		return nil, fmt.Errorf("script %q: %w", name, ErrNotEncrypted)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored[0], envelopePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt script: %w", err)
	}
	if len(plain) == 0 {
		return []string{}, nil
	}
	return strings.Split(string(plain), "\n"), nil
}

func (m *encryptedScripts) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptedScripts) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

type encryptedImages struct {
	next   ports.ImageStore
	config EncryptionConfig
}

// NewEncryptedImages encrypts image bytes with AES-GCM before they reach the store.
func NewEncryptedImages(config EncryptionConfig) ImageMiddleware {
	mustValidate(config)
	return func(next ports.ImageStore) ports.ImageStore {
		return &encryptedImages{next: next, config: config}
	}
}

func (m *encryptedImages) Save(ctx context.Context, name string, data []byte) error {
	ciphertext, err := encrypt(data, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt image: %w", err)
	}
	return m.next.Save(ctx, name, ciphertext)
}

func (m *encryptedImages) Load(ctx context.Context, name string) ([]byte, error) {
	ciphertext, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt image: %w", err)
	}
	return plain, nil
}

func (m *encryptedImages) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptedImages) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}

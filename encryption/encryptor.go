package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor seals and opens values bound to a context string.
type Encryptor interface {
	Encrypt(plaintext, context string) (string, error)
	Decrypt(sealed, context string) (string, error)
}

// Algorithm names a supported AEAD.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is ChaCha20-Poly1305, fast without AES hardware.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

var (
	// ErrDecrypt is returned for a value that does not open with this key
	// and context.
	ErrDecrypt = errors.New("encryption: value does not decrypt")
	// ErrAlgorithm is returned for a value sealed with another algorithm.
	ErrAlgorithm = errors.New("encryption: algorithm mismatch")
)

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the cipher. Defaults to AES-256-GCM.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// ParseAlgorithm maps a config value to an Algorithm. Empty means the default.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", AlgorithmAESGCM:
		return AlgorithmAESGCM, nil
	case AlgorithmChaCha20:
		return AlgorithmChaCha20, nil
	default:
		return "", fmt.Errorf("unknown encryption algorithm %q (want %s or %s)", s, AlgorithmAESGCM, AlgorithmChaCha20)
	}
}

// New creates an Encryptor. The passphrase is hashed with SHA-256 into the
// 32-byte key both ciphers take.
func New(passphrase string, opts ...Option) (Encryptor, error) {
	if passphrase == "" {
		return nil, errors.New("encryption: key is required")
	}
	o := options{algorithm: AlgorithmAESGCM}
	for _, opt := range opts {
		opt(&o)
	}

	key := sha256.Sum256([]byte(passphrase))
	var (
		aead cipher.AEAD
		err  error
	)
	switch o.algorithm {
	case AlgorithmAESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key[:]); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key[:])
	default:
		return nil, fmt.Errorf("encryption: unknown algorithm %q", o.algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("encryption: create %s: %w", o.algorithm, err)
	}
	return &sealer{aead: aead, prefix: string(o.algorithm) + ":"}, nil
}

type sealer struct {
	aead   cipher.AEAD
	prefix string
}

func (s *sealer) Encrypt(plaintext, context string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("encryption: nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(context))
	return s.prefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *sealer) Decrypt(sealed, context string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, s.prefix)
	if !ok {
		return "", ErrAlgorithm
	}
	data, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(data) < s.aead.NonceSize() {
		return "", ErrDecrypt
	}
	nonce, ciphertext := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(context))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

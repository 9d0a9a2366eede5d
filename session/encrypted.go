package session

import (
	"context"
	"fmt"

	"github.com/kbukum/bookstore/encryption"
)

// EncryptedStore seals every value before it reaches the wrapped backend.
// Each value is bound to its key, so a value moved under another key fails
// to open.
type EncryptedStore struct {
	next Backend
	enc  encryption.Encryptor
}

// NewEncryptedStore wraps next.
func NewEncryptedStore(next Backend, enc encryption.Encryptor) *EncryptedStore {
	return &EncryptedStore{next: next, enc: enc}
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.next.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	value, err := s.enc.Decrypt(sealed, key)
	if err != nil {
		return "", false, fmt.Errorf("session: open %q: %w", key, err)
	}
	return value, true, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.enc.Encrypt(value, key)
	if err != nil {
		return fmt.Errorf("session: seal %q: %w", key, err)
	}
	return s.next.Set(ctx, key, sealed)
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *EncryptedStore) Close() error { return s.next.Close() }

var _ Backend = (*EncryptedStore)(nil)

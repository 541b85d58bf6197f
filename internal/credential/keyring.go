package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"go.uber.org/zap"
)

// SecretKeys are the configuration keys that may be resolved from the keyring
var SecretKeys = []string{
	"mail.password",
	"gemini.api_key",
	"vertex.api_key",
	"openai.api_key",
	"notify.smtp.password",
}

// Settings is the configuration surface the store fills secrets into
type Settings interface {
	GetString(key string) string
	Set(key string, value any)
}

// Store reads and writes credentials in the system keyring
type Store struct {
	ring keyring.Keyring
}

// Open returns a store backed by the first available system keyring
func Open(service string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + service + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// NewStore wraps an opened keyring
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Get retrieves a credential value by key
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key
func (s *Store) Delete(key string) error {
	if err := s.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Fill sets every secret key that is empty in settings from the keyring.
// Keys absent from the keyring are left empty.
func (s *Store) Fill(settings Settings, logger *zap.Logger) error {
	for _, key := range SecretKeys {
		if settings.GetString(key) != "" {
			continue
		}
		item, err := s.ring.Get(key)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("getting credential %q: %w", key, err)
		}
		settings.Set(key, string(item.Data))
		logger.Debug("Loaded credential from keyring", zap.String("key", key))
	}
	return nil
}

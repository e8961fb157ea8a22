package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/rdq-notify/internal/model"
)

const serviceName = "rdq-notify"

// SessionTokenKey is the keyring key of the API session token.
const SessionTokenKey = "session-token"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(model.ConfigDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("rdq-notify-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "RDQ notification session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key. A missing key is not an error.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// SessionToken returns the stored session token, or "" when none is
// stored or the keyring is unavailable. It is the transport client's
// token source and is read on every request.
func SessionToken() string {
	tok, err := Get(SessionTokenKey)
	if err != nil {
		return ""
	}
	return tok
}

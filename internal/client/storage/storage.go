package storage

import (
	"context"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/TrueFit/internal/client/session"
)

// DefaultFileName is the session file created under the user's config dir.
const DefaultFileName = "session.json"

// fileRecord is the on-disk layout. Token holds the sealed form when Sealed
// is set.
type fileRecord struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Sealed   bool   `json:"sealed,omitempty"`
}

// FileStore persists a session record as a small JSON file. When an AEAD is
// configured the token is sealed before it reaches the disk.
type FileStore struct {
	path string
	aead cipher.AEAD
	mu   sync.Mutex
}

// NewFileStore returns a FileStore writing to path. aead may be nil.
func NewFileStore(path string, aead cipher.AEAD) *FileStore {
	return &FileStore{path: path, aead: aead}
}

// DefaultPath returns $HOME/.truefit/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".truefit", DefaultFileName), nil
}

func (fs *FileStore) Load(_ context.Context) (session.Record, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return session.Record{}, nil
		}
		return session.Record{}, err
	}
	defer f.Close()

	var fr fileRecord
	if err := json.NewDecoder(f).Decode(&fr); err != nil {
		return session.Record{}, fmt.Errorf("decode %s: %w", fs.path, err)
	}

	rec := session.Record{Token: fr.Token, Username: fr.Username}
	if fr.Sealed && fr.Token != "" {
		if fs.aead == nil {
			return session.Record{}, errors.New("session token is sealed but no key is configured")
		}
		plain, err := Open(fs.aead, fr.Token)
		if err != nil {
			return session.Record{}, err
		}
		rec.Token = string(plain)
	}
	return rec, nil
}

func (fs *FileStore) Save(_ context.Context, r session.Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fr := fileRecord{Token: r.Token, Username: r.Username}
	if fs.aead != nil && r.Token != "" {
		sealed, err := Seal(fs.aead, []byte(r.Token))
		if err != nil {
			return err
		}
		fr.Token = sealed
		fr.Sealed = true
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	// Write to a sibling file first so a crash never leaves half a record.
	tmp := fs.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(fr); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path)
}

func (fs *FileStore) Clear(_ context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

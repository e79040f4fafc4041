// Package localstore persists the reader's small bits of state, the
// encrypted API key blob and the recently-opened-files history, in an
// embedded badger database.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dgallion1/pdfchat/internal/vault"
)

const (
	credentialKey = "encryptedData"
	historyKey    = "previous_files"
)

// FileHistory is one entry of the recently-opened-files list.
type FileHistory struct {
	Title           string   `json:"title"`
	FileName        string   `json:"fileName"`
	Author          string   `json:"author"`
	Thumbnail       string   `json:"thumbnail"`
	LastVisitedPage int      `json:"lastVisitedPage"`
	LastOpenedDate  int64    `json:"lastOpenedDate"`
	OutlineState    []string `json:"outlineState"`
}

// Store is a badger-backed key-value store for reader state.
type Store struct {
	db           *badger.DB
	historyLimit int
}

// Open opens (or creates) the store in dir. An empty dir opens an
// in-memory store, used by tests.
func Open(dir string, historyLimit int) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if historyLimit < 1 {
		historyLimit = 1
	}
	return &Store{db: db, historyLimit: historyLimit}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string, v any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, v)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// SaveCredential overwrites the stored encrypted API key blob.
func (s *Store) SaveCredential(b vault.Blob) error {
	return s.put(credentialKey, b)
}

// Credential loads the stored blob; found is false when none was saved.
func (s *Store) Credential() (b vault.Blob, found bool, err error) {
	found, err = s.get(credentialKey, &b)
	return b, found, err
}

// DeleteCredential removes the stored blob.
func (s *Store) DeleteCredential() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(credentialKey))
	})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// History returns the recent files, most recently opened first.
func (s *Store) History() ([]FileHistory, error) {
	var entries []FileHistory
	if _, err := s.get(historyKey, &entries); err != nil {
		return nil, err
	}
	if len(entries) > s.historyLimit {
		entries = entries[:s.historyLimit]
	}
	return entries, nil
}

// TouchHistory moves the entry for the given title to the front,
// creating it if absent. An existing entry keeps its last-visited page
// and outline state; the list is capped at the configured limit.
func (s *Store) TouchHistory(entry FileHistory) error {
	entries, err := s.History()
	if err != nil {
		return err
	}

	updated := entry
	rest := make([]FileHistory, 0, len(entries))
	for _, e := range entries {
		if e.Title == entry.Title {
			updated = e
			updated.LastOpenedDate = entry.LastOpenedDate
			continue
		}
		rest = append(rest, e)
	}
	if updated.LastOpenedDate == 0 {
		updated.LastOpenedDate = time.Now().UnixMilli()
	}
	if updated.LastVisitedPage == 0 {
		updated.LastVisitedPage = 1
	}

	entries = append([]FileHistory{updated}, rest...)
	if len(entries) > s.historyLimit {
		entries = entries[:s.historyLimit]
	}
	return s.put(historyKey, entries)
}

// LastVisitedPage returns the saved reading position for a file, or 1.
func (s *Store) LastVisitedPage(fileName string) int {
	entries, err := s.History()
	if err != nil {
		return 1
	}
	for _, e := range entries {
		if e.FileName == fileName {
			return e.LastVisitedPage
		}
	}
	return 1
}

// SetLastVisitedPage updates the reading position for a known file.
// Unknown files are ignored.
func (s *Store) SetLastVisitedPage(fileName string, page int) error {
	entries, err := s.History()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].FileName == fileName {
			entries[i].LastVisitedPage = page
			return s.put(historyKey, entries)
		}
	}
	return nil
}

// SetOutlineState saves the expanded-outline state for a known file.
func (s *Store) SetOutlineState(fileName string, state []string) error {
	entries, err := s.History()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].FileName == fileName {
			entries[i].OutlineState = state
			return s.put(historyKey, entries)
		}
	}
	return nil
}

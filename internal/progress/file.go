// Package progress keeps the durable, append-only history of evaluation rounds.
package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	lockWait  = 5 * time.Second
	lockRetry = 25 * time.Millisecond
	lockStale = 30 * time.Second
)

// FileStore persists the whole history as a single JSON array. Every Append
// rewrites the document through a temp file and a rename, under an in-process
// mutex and a lock file shared with other processes using the same path.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Recorder = (*FileStore)(nil)

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

// Append adds entry after all stored entries. A corrupt document is treated
// as an empty history and replaced.
func (s *FileStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireLock(s.path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	entries, corrupt := s.loadUnlocked()
	if corrupt {
		s.backupCorrupt()
	}
	entries = append(entries, entry)
	return s.saveUnlocked(entries)
}

// LoadAll returns the stored history, or an empty slice when the file is
// absent, empty or unreadable.
func (s *FileStore) LoadAll() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, _ := s.loadUnlocked()
	return entries
}

// RenderHistory formats the full stored history.
func (s *FileStore) RenderHistory() string {
	return Render(s.LoadAll())
}

func (s *FileStore) loadUnlocked() ([]Entry, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("⚠️ progress: failed to read %s: %v", s.path, err)
		}
		return []Entry{}, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Entry{}, false
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ progress: %s is not valid history, treating as empty: %v", s.path, err)
		return []Entry{}, true
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, false
}

func (s *FileStore) saveUnlocked(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

func (s *FileStore) backupCorrupt() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	if err := os.WriteFile(s.path+".corrupt", data, 0o644); err != nil {
		log.Printf("⚠️ progress: failed to back up corrupt history: %v", err)
	}
}

// acquireLock creates path exclusively, waiting up to lockWait. A lock file
// older than lockStale is assumed abandoned and taken over.
func acquireLock(path string) (func(), error) {
	deadline := time.Now().Add(lockWait)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock: %w", err)
		}
		if st, statErr := os.Stat(path); statErr == nil && time.Since(st.ModTime()) > lockStale {
			log.Printf("⚠️ progress: removing stale lock %s", path)
			_ = os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("history is locked by another writer: %s", path)
		}
		time.Sleep(lockRetry)
	}
}

package lyrics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists lyrics as one text file per item id. Lookup is a direct
// path construction, O(1) regardless of library size. Synced lyrics keep
// the .lrc extension so other tools recognize them.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a lyrics store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lyrics dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Has reports whether lyrics are stored for the item.
func (s *Store) Has(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pathFor(itemID) != ""
}

// Get returns the stored lyrics for the item.
func (s *Store) Get(itemID string) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(itemID)
	if path == "" {
		return Candidate{}, ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("read lyrics: %w", err)
	}

	return Candidate{
		Text:   string(data),
		Synced: strings.HasSuffix(path, ".lrc"),
		Source: "cache",
	}, nil
}

// Put stores lyrics for the item, replacing any previous file. A synced
// candidate is written as .lrc, plain text as .txt.
func (s *Store) Put(itemID string, c Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop a stale file with the other extension first so only one
	// rendition exists per item.
	s.removeLocked(itemID)

	ext := ".txt"
	if c.Synced {
		ext = ".lrc"
	}

	path := filepath.Join(s.dir, itemID+ext)
	if err := os.WriteFile(path, []byte(c.Text), 0o600); err != nil {
		return fmt.Errorf("write lyrics: %w", err)
	}
	return nil
}

// Remove deletes stored lyrics for the item. Missing files are not an error.
func (s *Store) Remove(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(itemID)
}

// CleanupOrphans removes every stored lyrics file whose item id is not in
// live. Returns the number of files removed.
func (s *Store) CleanupOrphans(live map[string]bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read lyrics dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		id := strings.TrimSuffix(strings.TrimSuffix(name, ".txt"), ".lrc")
		if live[id] {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// pathFor returns the existing file path for an item id, or "".
// Caller holds the lock.
func (s *Store) pathFor(itemID string) string {
	for _, ext := range []string{".lrc", ".txt"} {
		path := filepath.Join(s.dir, itemID+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// removeLocked deletes both renditions best-effort. Caller holds the lock.
func (s *Store) removeLocked(itemID string) {
	for _, ext := range []string{".lrc", ".txt"} {
		_ = os.Remove(filepath.Join(s.dir, itemID+ext))
	}
}

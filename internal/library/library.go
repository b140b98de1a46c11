// Package library is the SQLite-backed store of music items that artwork
// and lyrics are acquired for. Items are created by scanning music
// directories; the acquisition layer only mutates the artwork reference
// and the favorite flag.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ArtworkRef is the explicit presence/absence state of an item's resolved
// artwork. The zero value means "no artwork".
type ArtworkRef struct {
	Valid  bool
	Source string
}

// Item is one track in the library.
type Item struct {
	ID       string
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Favorite bool
	Artwork  ArtworkRef
}

// Store wraps the library database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the library database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			favorite INTEGER NOT NULL DEFAULT 0,
			artwork_source TEXT,
			added_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_artist_album ON items(artist, album);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Add inserts a new item, or updates the metadata of an existing item with
// the same path while keeping its id, favorite flag, and artwork reference.
func (s *Store) Add(item Item) error {
	_, err := s.db.Exec(`
		INSERT INTO items (id, path, title, artist, album, duration_ms, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration_ms = excluded.duration_ms
	`, item.ID, item.Path, item.Title, item.Artist, item.Album,
		item.Duration.Milliseconds(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// ErrNotFound is returned by Get for an id with no item.
var ErrNotFound = errors.New("item not found")

// Get returns one item by id, or ErrNotFound.
func (s *Store) Get(id string) (*Item, error) {
	row := s.db.QueryRow(`
		SELECT id, path, title, artist, album, duration_ms, favorite, artwork_source
		FROM items WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// All returns every item, ordered by artist then album then title.
func (s *Store) All() ([]Item, error) {
	rows, err := s.db.Query(`
		SELECT id, path, title, artist, album, duration_ms, favorite, artwork_source
		FROM items
		ORDER BY artist COLLATE NOCASE, album COLLATE NOCASE, title COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// LiveIDs returns the set of item ids currently in the library, for use by
// orphan cleanup.
func (s *Store) LiveIDs() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list ids: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// SetArtwork records the artwork reference for an item. An invalid ref
// clears it back to the explicit "no artwork" state.
func (s *Store) SetArtwork(id string, ref ArtworkRef) error {
	var source any
	if ref.Valid {
		source = ref.Source
	}

	_, err := s.db.Exec(`UPDATE items SET artwork_source = ? WHERE id = ?`, source, id)
	if err != nil {
		return fmt.Errorf("set artwork: %w", err)
	}
	return nil
}

// SetFavorite flips the favorite flag on an item.
func (s *Store) SetFavorite(id string, favorite bool) error {
	_, err := s.db.Exec(`UPDATE items SET favorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	return nil
}

// Remove deletes an item.
func (s *Store) Remove(id string) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item       Item
		durationMS int64
		source     sql.NullString
	)

	err := row.Scan(&item.ID, &item.Path, &item.Title, &item.Artist, &item.Album,
		&durationMS, &item.Favorite, &source)
	if err != nil {
		return nil, err
	}

	item.Duration = time.Duration(durationMS) * time.Millisecond
	if source.Valid {
		item.Artwork = ArtworkRef{Valid: true, Source: source.String}
	}
	return &item, nil
}

package library

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
)

// audioExtensions lists the file types picked up by a scan.
var audioExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".opus"}

// ScanStats summarizes a completed scan.
type ScanStats struct {
	Scanned int // audio files visited
	Added   int // new or updated items
	Skipped int // unreadable files
}

// Scan walks the given source directories, reads tags from every audio
// file, and upserts items into the store. Files whose tags cannot be read
// are skipped with a log line rather than failing the scan.
func (s *Store) Scan(sources []string) (ScanStats, error) {
	var stats ScanStats

	for _, source := range sources {
		err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
				return nil
			}

			stats.Scanned++

			item, err := readItem(path)
			if err != nil {
				log.Printf("library: skipping %s: %v", path, err)
				stats.Skipped++
				return nil
			}

			if err := s.Add(*item); err != nil {
				return err
			}
			stats.Added++
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("scan %s: %w", source, err)
		}
	}

	return stats, nil
}

// readItem builds an item from a file's tags. Missing tags fall back to
// path-derived values so every scanned file yields a usable item.
func readItem(path string) (*Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	item := Item{
		ID:   uuid.NewString(),
		Path: path,
	}

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// A file without a tag block is still a track.
		item.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return &item, nil
	}

	item.Title = meta.Title()
	item.Artist = meta.Artist()
	item.Album = meta.Album()

	if item.Title == "" {
		item.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if item.Artist == "" {
		if aa := meta.AlbumArtist(); aa != "" {
			item.Artist = aa
		}
	}

	return &item, nil
}

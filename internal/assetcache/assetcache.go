// Package assetcache stores downloaded artwork on disk: full-resolution
// assets in one directory, generated thumbnails in another, and a JSON index
// mapping item ids to metadata. The in-memory index is the single source of
// truth and is rewritten to disk after every mutation.
package assetcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// Register decoders for the formats artwork sources actually serve.
	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	fullDirName  = "full"
	thumbDirName = "thumbs"
	indexName    = "index.json"

	// DefaultMaxAssetSize rejects anything above 5 MB before decoding.
	DefaultMaxAssetSize = 5 << 20

	// DefaultThumbnailSize is the bounding box for generated thumbnails.
	DefaultThumbnailSize = 150
)

// ErrInvalidAsset is returned by Put when the bytes are not a decodable
// image or exceed the configured size ceiling. Nothing is written.
var ErrInvalidAsset = errors.New("invalid asset")

// ErrNotCached is returned by Get when no asset is stored for the item.
var ErrNotCached = errors.New("asset not cached")

// Metadata is the persisted per-item record. It exists if and only if the
// backing file exists on disk.
type Metadata struct {
	ItemID        string    `json:"item_id"`
	Filename      string    `json:"filename"`
	ThumbFilename string    `json:"thumb_filename,omitempty"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	Size          int64     `json:"size"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
}

// Options tunes the store limits. Zero values select the defaults.
type Options struct {
	MaxAssetSize  int64
	ThumbnailSize int
}

// Store is the on-disk artwork cache. All index mutations are serialized
// through a single mutex so concurrent acquisitions cannot lose an update
// to the on-disk index.
type Store struct {
	mu        sync.Mutex
	fullDir   string
	thumbDir  string
	indexPath string
	index     map[string]Metadata

	maxAssetSize int64
	thumbSize    int
}

// Open creates (or reopens) a store rooted at dir. A missing index file is
// a cold start, not an error.
func Open(dir string, opts Options) (*Store, error) {
	if opts.MaxAssetSize <= 0 {
		opts.MaxAssetSize = DefaultMaxAssetSize
	}
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = DefaultThumbnailSize
	}

	s := &Store{
		fullDir:      filepath.Join(dir, fullDirName),
		thumbDir:     filepath.Join(dir, thumbDirName),
		indexPath:    filepath.Join(dir, indexName),
		index:        make(map[string]Metadata),
		maxAssetSize: opts.MaxAssetSize,
		thumbSize:    opts.ThumbnailSize,
	}

	for _, d := range []string{s.fullDir, s.thumbDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	if err := s.loadIndex(); err != nil {
		return nil, err
	}

	return s, nil
}

// Has reports whether an asset is cached for the item. A metadata entry
// whose backing file disappeared is treated as "not present".
func (s *Store) Has(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.index[itemID]
	if !ok {
		return false
	}
	_, err := os.Stat(filepath.Join(s.fullDir, meta.Filename))
	return err == nil
}

// Lookup returns the metadata entry for an item, if any.
func (s *Store) Lookup(itemID string) (Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.index[itemID]
	return meta, ok
}

// Path returns the on-disk location of the cached asset. With preferThumb,
// the thumbnail path is returned when one exists.
func (s *Store) Path(itemID string, preferThumb bool) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.index[itemID]
	if !ok {
		return "", false
	}

	if preferThumb && meta.ThumbFilename != "" {
		path := filepath.Join(s.thumbDir, meta.ThumbFilename)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	path := filepath.Join(s.fullDir, meta.Filename)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Get reads the cached asset bytes for the item.
func (s *Store) Get(itemID string, preferThumb bool) ([]byte, error) {
	path, ok := s.Path(itemID, preferThumb)
	if !ok {
		return nil, ErrNotCached
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cached asset: %w", err)
	}
	return data, nil
}

// PutInfo carries the naming and provenance details for a stored asset.
type PutInfo struct {
	Artist string
	Album  string
	Source string
}

// Put validates, stores, and indexes an asset for the item. The bytes must
// decode as an image and fit under the size ceiling. A thumbnail is derived
// deterministically. A previous asset for the same item is replaced; no
// duplicate index entry is ever created. If any file write fails, no
// metadata is recorded.
func (s *Store) Put(itemID string, data []byte, info PutInfo) (Metadata, error) {
	if int64(len(data)) > s.maxAssetSize {
		return Metadata{}, fmt.Errorf("%w: %d bytes exceeds ceiling of %d", ErrInvalidAsset, len(data), s.maxAssetSize)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filename := makeFilename(info.Artist, info.Album, format)
	thumbName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "_thumb.jpg"

	fullPath := filepath.Join(s.fullDir, filename)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return Metadata{}, fmt.Errorf("write asset: %w", err)
	}

	if err := s.writeThumbnail(img, thumbName); err != nil {
		// Keep the invariant: no metadata without a consistent write.
		_ = os.Remove(fullPath)
		return Metadata{}, err
	}

	// Replace any previous asset for this item
	if old, ok := s.index[itemID]; ok {
		s.removeFilesLocked(old)
	}

	bounds := img.Bounds()
	meta := Metadata{
		ItemID:        itemID,
		Filename:      filename,
		ThumbFilename: thumbName,
		Source:        info.Source,
		CreatedAt:     time.Now().UTC(),
		Size:          int64(len(data)),
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
	}
	s.index[itemID] = meta

	if err := s.persistIndexLocked(); err != nil {
		// Roll the whole put back rather than leave index and disk split.
		delete(s.index, itemID)
		s.removeFilesLocked(meta)
		return Metadata{}, err
	}

	return meta, nil
}

// Remove deletes the asset files and metadata for an item. Missing files
// are not an error.
func (s *Store) Remove(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.index[itemID]
	if !ok {
		return nil
	}

	s.removeFilesLocked(meta)
	delete(s.index, itemID)

	return s.persistIndexLocked()
}

// CleanupOrphans removes every cached asset whose item id is not in live.
// Returns the number of entries removed.
func (s *Store) CleanupOrphans(live map[string]bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, meta := range s.index {
		if live[id] {
			continue
		}
		s.removeFilesLocked(meta)
		delete(s.index, id)
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistIndexLocked()
}

// Stats reports the number of cached assets and their total byte size.
func (s *Store) Stats() (count int, totalBytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, meta := range s.index {
		count++
		totalBytes += meta.Size
	}
	return count, totalBytes
}

// writeThumbnail derives and writes the thumbnail. Caller holds the lock.
func (s *Store) writeThumbnail(img image.Image, name string) error {
	thumb := resize.Thumbnail(uint(s.thumbSize), uint(s.thumbSize), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}

	path := filepath.Join(s.thumbDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return nil
}

// removeFilesLocked deletes both files best-effort. Caller holds the lock.
func (s *Store) removeFilesLocked(meta Metadata) {
	_ = os.Remove(filepath.Join(s.fullDir, meta.Filename))
	if meta.ThumbFilename != "" {
		_ = os.Remove(filepath.Join(s.thumbDir, meta.ThumbFilename))
	}
}

// loadIndex reads the serialized index. Missing file means empty cache.
func (s *Store) loadIndex() error {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read index: %w", err)
	}

	if err := json.Unmarshal(data, &s.index); err != nil {
		return fmt.Errorf("parse index: %w", err)
	}
	return nil
}

// persistIndexLocked rewrites the index file atomically via a temp file
// and rename. Caller holds the lock.
func (s *Store) persistIndexLocked() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	tmp := s.indexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// makeFilename builds a unique filesystem-safe name from the artist and
// album plus a random suffix, so items sharing the same artist and album
// pair never collide.
func makeFilename(artist, album, format string) string {
	ext := "." + format
	if format == "" {
		ext = ".img"
	}

	base := sanitizeFilename(artist + "_" + album)
	suffix := uuid.NewString()[:8]

	return base + "_" + suffix + ext
}

// invalidFilenameChars matches characters that are problematic in filenames.
var invalidFilenameChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", "\"", "_", "/", "_",
	"\\", "_", "|", "_", "?", "_", "*", "_", " ", "_",
)

func sanitizeFilename(name string) string {
	name = invalidFilenameChars.Replace(name)
	name = strings.Trim(name, " ._")
	if len(name) > 80 {
		name = name[:80]
	}
	if name == "" {
		name = "asset"
	}
	return strings.ToLower(name)
}

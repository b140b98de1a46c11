package assetcache

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes renders a small solid-color PNG for use as a fake asset.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 144, B: 255, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, Options{})
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	data := pngBytes(t, 300, 300)

	meta, err := s.Put("item-1", data, PutInfo{Artist: "Ed Sheeran", Album: "Divide", Source: "itunes"})
	require.NoError(t, err)

	assert.Equal(t, "item-1", meta.ItemID)
	assert.Equal(t, "itunes", meta.Source)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, 300, meta.Width)
	assert.Equal(t, 300, meta.Height)
	assert.NotEmpty(t, meta.ThumbFilename)

	assert.True(t, s.Has("item-1"))

	got, err := s.Get("item-1", false)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Thumbnail is a decodable image bounded by the thumbnail box
	thumbData, err := s.Get("item-1", true)
	require.NoError(t, err)
	thumb, _, err := image.Decode(bytes.NewReader(thumbData))
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), DefaultThumbnailSize)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), DefaultThumbnailSize)
}

func TestPut_Idempotent(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	data := pngBytes(t, 50, 50)

	first, err := s.Put("item-1", data, PutInfo{Artist: "a", Album: "b", Source: "s"})
	require.NoError(t, err)
	second, err := s.Put("item-1", data, PutInfo{Artist: "a", Album: "b", Source: "s"})
	require.NoError(t, err)

	assert.True(t, s.Has("item-1"))

	// Second write replaced, not duplicated: exactly one entry, and the
	// first write's files are gone from disk.
	count, _ := s.Stats()
	assert.Equal(t, 1, count)
	assert.NoFileExists(t, filepath.Join(s.fullDir, first.Filename))
	assert.FileExists(t, filepath.Join(s.fullDir, second.Filename))
}

func TestPut_RejectsNonImage(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	_, err := s.Put("item-1", []byte("<html>not an image</html>"), PutInfo{Source: "s"})
	assert.ErrorIs(t, err, ErrInvalidAsset)
	assert.False(t, s.Has("item-1"))
}

func TestPut_RejectsOversizedAsset(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, Options{MaxAssetSize: 64})
	require.NoError(t, err)

	_, err = s.Put("item-1", pngBytes(t, 200, 200), PutInfo{Source: "s"})
	assert.ErrorIs(t, err, ErrInvalidAsset)
	assert.False(t, s.Has("item-1"))
}

func TestHas_SelfHealsWhenFileMissing(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	meta, err := s.Put("item-1", pngBytes(t, 40, 40), PutInfo{Artist: "a", Album: "b", Source: "s"})
	require.NoError(t, err)

	// A file deleted behind the cache's back is "not present", not an error.
	require.NoError(t, os.Remove(filepath.Join(s.fullDir, meta.Filename)))
	assert.False(t, s.Has("item-1"))

	_, err = s.Get("item-1", false)
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestRemove(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	meta, err := s.Put("item-1", pngBytes(t, 40, 40), PutInfo{Artist: "a", Album: "b", Source: "s"})
	require.NoError(t, err)

	require.NoError(t, s.Remove("item-1"))
	assert.False(t, s.Has("item-1"))
	assert.NoFileExists(t, filepath.Join(s.fullDir, meta.Filename))
	assert.NoFileExists(t, filepath.Join(s.thumbDir, meta.ThumbFilename))

	// Removing a missing item is a no-op
	require.NoError(t, s.Remove("item-1"))
}

func TestCleanupOrphans(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	liveData := pngBytes(t, 60, 60)

	_, err := s.Put("live", liveData, PutInfo{Artist: "a", Album: "b", Source: "s"})
	require.NoError(t, err)
	_, err = s.Put("dead-1", pngBytes(t, 40, 40), PutInfo{Artist: "c", Album: "d", Source: "s"})
	require.NoError(t, err)
	_, err = s.Put("dead-2", pngBytes(t, 40, 40), PutInfo{Artist: "e", Album: "f", Source: "s"})
	require.NoError(t, err)

	removed, err := s.CleanupOrphans(map[string]bool{"live": true})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.False(t, s.Has("dead-1"))
	assert.False(t, s.Has("dead-2"))
	assert.True(t, s.Has("live"))

	// The surviving asset is byte-identical after cleanup
	got, err := s.Get("live", false)
	require.NoError(t, err)
	assert.Equal(t, liveData, got)
}

func TestIndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 80, 80)

	s := openTestStore(t, dir)
	_, err := s.Put("item-1", data, PutInfo{Artist: "a", Album: "b", Source: "musicbrainz"})
	require.NoError(t, err)

	reopened := openTestStore(t, dir)
	assert.True(t, reopened.Has("item-1"))

	meta, ok := reopened.Lookup("item-1")
	require.True(t, ok)
	assert.Equal(t, "musicbrainz", meta.Source)

	got, err := reopened.Get("item-1", false)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOpen_ColdStartWithoutIndex(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	count, total := s.Stats()
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(0), total)
}

func TestMakeFilename_UniquePerCall(t *testing.T) {
	a := makeFilename("AC/DC", "Back in Black", "png")
	b := makeFilename("AC/DC", "Back in Black", "png")

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, " ")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "ac_dc", sanitizeFilename("AC/DC"))
	assert.Equal(t, "asset", sanitizeFilename(""))
	assert.Equal(t, "a_b", sanitizeFilename("a b"))
}

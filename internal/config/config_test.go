package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, 0.4, cfg.Artwork.ArtistWeight)
	assert.Equal(t, 0.6, cfg.Artwork.AlbumWeight)
	assert.Equal(t, 5, cfg.Artwork.MaxAssetMB)
	assert.Equal(t, 150, cfg.Artwork.ThumbnailSize)
	assert.Equal(t, 500, cfg.Artwork.BatchDelayMS)
	assert.Equal(t, 0.6, cfg.Lyrics.TitleWeight)
	assert.Equal(t, 0.4, cfg.Lyrics.ArtistWeight)
	assert.Equal(t, 0.6, cfg.Stockphoto.Confidence)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.NotEmpty(t, cfg.DatabasePath)
}

func TestApplyDefaults_KeepsValidValues(t *testing.T) {
	cfg := &Config{}
	cfg.Artwork.ArtistWeight = 0.5
	cfg.Artwork.AlbumWeight = 0.5
	cfg.Stockphoto.Confidence = 0.3
	applyDefaults(cfg)

	assert.Equal(t, 0.5, cfg.Artwork.ArtistWeight)
	assert.Equal(t, 0.5, cfg.Artwork.AlbumWeight)
	assert.Equal(t, 0.3, cfg.Stockphoto.Confidence)
}

func TestApplyDefaults_RejectsOutOfRangeWeights(t *testing.T) {
	cfg := &Config{}
	cfg.Artwork.ArtistWeight = 1.7
	cfg.Lyrics.TitleWeight = -2
	applyDefaults(cfg)

	assert.Equal(t, 0.4, cfg.Artwork.ArtistWeight)
	assert.Equal(t, 0.6, cfg.Lyrics.TitleWeight)
}

func TestHasLastfm(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasLastfm())

	cfg.Lastfm.APIKey = "key"
	assert.True(t, cfg.HasLastfm())
}

func TestHasStockphoto(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasStockphoto())

	cfg.Stockphoto.AccessKey = "key"
	assert.True(t, cfg.HasStockphoto())
}

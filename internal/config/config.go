// Package config loads sleeve's TOML configuration. Scoring weights and
// fixed tier confidences are tuning knobs, not invariants, so they are all
// exposed here with sane defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "sleeve"

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music
	CacheDir       string   `koanf:"cache_dir"`       // artwork + lyrics cache root
	DatabasePath   string   `koanf:"database_path"`   // library database file

	Artwork ArtworkConfig `koanf:"artwork"`
	Lyrics  LyricsConfig  `koanf:"lyrics"`

	// Last.fm artist photos (enables the artist-photo tier when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// Stock photo search (enables the themed-image tier when configured)
	Stockphoto StockphotoConfig `koanf:"stockphoto"`
}

// ArtworkConfig holds artwork acquisition tuning.
type ArtworkConfig struct {
	ArtistWeight  float64 `koanf:"artist_weight"`  // similarity blend (default: 0.4)
	AlbumWeight   float64 `koanf:"album_weight"`   // similarity blend (default: 0.6)
	MaxAssetMB    int     `koanf:"max_asset_mb"`   // download size ceiling (default: 5)
	ThumbnailSize int     `koanf:"thumbnail_size"` // bounding box in px (default: 150)
	BatchDelayMS  int     `koanf:"batch_delay_ms"` // delay between batch items (default: 500)
}

// LyricsConfig holds lyrics acquisition tuning.
type LyricsConfig struct {
	TitleWeight  float64 `koanf:"title_weight"`  // similarity blend (default: 0.6)
	ArtistWeight float64 `koanf:"artist_weight"` // similarity blend (default: 0.4)
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// StockphotoConfig holds the stock photo API credential and tuning.
type StockphotoConfig struct {
	AccessKey  string  `koanf:"access_key"`
	Confidence float64 `koanf:"confidence"` // fixed tier confidence (default: 0.6)
}

// Load reads config files in priority order (last wins) and applies
// defaults for everything left unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.CacheDir = expandPath(cfg.CacheDir)
	cfg.DatabasePath = expandPath(cfg.DatabasePath)

	return cfg, nil
}

func configPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		"config.toml",
	}
}

func applyDefaults(cfg *Config) {
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(xdg.CacheHome, appName)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(xdg.DataHome, appName, "library.db")
	}

	if cfg.Artwork.ArtistWeight <= 0 || cfg.Artwork.ArtistWeight > 1 {
		cfg.Artwork.ArtistWeight = 0.4
	}
	if cfg.Artwork.AlbumWeight <= 0 || cfg.Artwork.AlbumWeight > 1 {
		cfg.Artwork.AlbumWeight = 0.6
	}
	if cfg.Artwork.MaxAssetMB <= 0 {
		cfg.Artwork.MaxAssetMB = 5
	}
	if cfg.Artwork.ThumbnailSize <= 0 {
		cfg.Artwork.ThumbnailSize = 150
	}
	if cfg.Artwork.BatchDelayMS <= 0 {
		cfg.Artwork.BatchDelayMS = 500
	}

	if cfg.Lyrics.TitleWeight <= 0 || cfg.Lyrics.TitleWeight > 1 {
		cfg.Lyrics.TitleWeight = 0.6
	}
	if cfg.Lyrics.ArtistWeight <= 0 || cfg.Lyrics.ArtistWeight > 1 {
		cfg.Lyrics.ArtistWeight = 0.4
	}

	if cfg.Stockphoto.Confidence <= 0 || cfg.Stockphoto.Confidence > 1 {
		cfg.Stockphoto.Confidence = 0.6
	}
}

// BatchDelay returns the pause between items during batch acquisition.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Artwork.BatchDelayMS) * time.Millisecond
}

// HasLastfm returns true if the artist-photo tier is configured.
func (c *Config) HasLastfm() bool {
	return c.Lastfm.APIKey != ""
}

// HasStockphoto returns true if the themed-image tier is configured.
func (c *Config) HasStockphoto() bool {
	return c.Stockphoto.AccessKey != ""
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

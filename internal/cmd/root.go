// Package cmd holds sleeve's command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tferrand/sleeve/internal/acquire"
	"github.com/tferrand/sleeve/internal/artwork"
	"github.com/tferrand/sleeve/internal/assetcache"
	"github.com/tferrand/sleeve/internal/config"
	"github.com/tferrand/sleeve/internal/itunes"
	"github.com/tferrand/sleeve/internal/lastfm"
	"github.com/tferrand/sleeve/internal/library"
	"github.com/tferrand/sleeve/internal/lyrics"
	"github.com/tferrand/sleeve/internal/musicbrainz"
	"github.com/tferrand/sleeve/internal/placeholder"
	"github.com/tferrand/sleeve/internal/stockphoto"
)

var cmdRoot = &cobra.Command{
	Use:   "sleeve",
	Short: "Fetch and cache album artwork and lyrics for a music library",
}

// Execute runs the root command.
func Execute() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles everything a command needs: configuration, the library
// database, both caches, and the acquisition manager wired over them.
type app struct {
	cfg     *config.Config
	lib     *library.Store
	assets  *assetcache.Store
	texts   *lyrics.Store
	manager *acquire.Manager
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	lib, err := library.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	assets, err := assetcache.Open(filepath.Join(cfg.CacheDir, "artwork"), assetcache.Options{
		MaxAssetSize:  int64(cfg.Artwork.MaxAssetMB) << 20,
		ThumbnailSize: cfg.Artwork.ThumbnailSize,
	})
	if err != nil {
		lib.Close()
		return nil, fmt.Errorf("open artwork cache: %w", err)
	}

	texts, err := lyrics.NewStore(filepath.Join(cfg.CacheDir, "lyrics"))
	if err != nil {
		lib.Close()
		return nil, fmt.Errorf("open lyrics cache: %w", err)
	}

	manager := acquire.New(acquire.Config{
		ArtworkResolver: buildArtworkResolver(cfg),
		LyricsResolver:  buildLyricsResolver(cfg),
		Assets:          assets,
		LyricsStore:     texts,
		Library:         lib,
		BatchDelay:      cfg.BatchDelay(),
	})

	return &app{cfg: cfg, lib: lib, assets: assets, texts: texts, manager: manager}, nil
}

func (a *app) Close() {
	a.lib.Close()
}

// buildArtworkResolver assembles the artwork cascade in priority order.
// The Last.fm and stock photo tiers only join when credentials are
// configured; the placeholder tier is always last so resolution cannot
// come back empty.
func buildArtworkResolver(cfg *config.Config) *artwork.Resolver {
	weights := itunes.Weights{
		Artist: cfg.Artwork.ArtistWeight,
		Album:  cfg.Artwork.AlbumWeight,
	}

	tiers := []artwork.Source{
		itunes.NewWithWeights(weights),
		musicbrainz.NewWithWeights(musicbrainz.Weights{
			Artist: cfg.Artwork.ArtistWeight,
			Album:  cfg.Artwork.AlbumWeight,
		}),
	}
	if cfg.HasLastfm() {
		tiers = append(tiers, lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret))
	}
	if cfg.HasStockphoto() {
		tiers = append(tiers, stockphoto.NewWithConfidence(cfg.Stockphoto.AccessKey, cfg.Stockphoto.Confidence))
	}
	tiers = append(tiers, placeholder.New())

	return artwork.NewResolver(tiers...)
}

func buildLyricsResolver(cfg *config.Config) *lyrics.Resolver {
	return lyrics.NewResolver(
		lyrics.NewLrclibWithWeights(lyrics.Weights{
			Title:  cfg.Lyrics.TitleWeight,
			Artist: cfg.Lyrics.ArtistWeight,
		}),
		lyrics.NewOvh(),
	)
}

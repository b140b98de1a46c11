// Package acquire is the public façade over artwork and lyrics acquisition.
// It checks the caches first, resolves on miss, downloads and validates the
// winning candidate, stores it, and reports progress to subscribers. At most
// one acquisition is in flight per item and kind.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tferrand/sleeve/internal/artwork"
	"github.com/tferrand/sleeve/internal/assetcache"
	"github.com/tferrand/sleeve/internal/catalog"
	"github.com/tferrand/sleeve/internal/library"
	"github.com/tferrand/sleeve/internal/lyrics"
)

// ErrAlreadyInProgress is returned when an acquisition for the same item
// and kind is already in flight.
var ErrAlreadyInProgress = errors.New("acquisition already in progress")

const (
	downloadTimeout = 30 * time.Second
	userAgent       = "sleeve/1.0 (https://github.com/tferrand/sleeve)"

	// DefaultBatchDelay spaces batch requests to respect source rate limits.
	DefaultBatchDelay = 500 * time.Millisecond
)

// Manager coordinates resolvers, caches, and the library store.
type Manager struct {
	artworkResolver *artwork.Resolver
	lyricsResolver  *lyrics.Resolver
	assets          *assetcache.Store
	lyricsStore     *lyrics.Store
	lib             *library.Store

	httpClient *http.Client
	batchDelay time.Duration

	mu       sync.Mutex
	inflight map[string]bool
	subs     []*Subscription
}

// Config wires a Manager's collaborators. Assets, ArtworkResolver,
// LyricsResolver, and LyricsStore are required for the operations that use
// them; Library is optional and, when present, receives artwork references
// after successful stores.
type Config struct {
	ArtworkResolver *artwork.Resolver
	LyricsResolver  *lyrics.Resolver
	Assets          *assetcache.Store
	LyricsStore     *lyrics.Store
	Library         *library.Store
	BatchDelay      time.Duration
}

// New creates a Manager.
func New(cfg Config) *Manager {
	delay := cfg.BatchDelay
	if delay <= 0 {
		delay = DefaultBatchDelay
	}
	return &Manager{
		artworkResolver: cfg.ArtworkResolver,
		lyricsResolver:  cfg.LyricsResolver,
		assets:          cfg.Assets,
		lyricsStore:     cfg.LyricsStore,
		lib:             cfg.Library,
		httpClient:      &http.Client{Timeout: downloadTimeout},
		batchDelay:      delay,
		inflight:        make(map[string]bool),
	}
}

// Subscribe registers a new event subscriber.
func (m *Manager) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := newSubscription()
	m.subs = append(m.subs, sub)
	return sub
}

// Unsubscribe removes a subscriber and closes its Done channel.
func (m *Manager) Unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.subs {
		if s == sub {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// AcquireArtwork returns cached artwork metadata for the item, resolving,
// downloading, and storing it on a cache miss. The caller gets exactly one
// typed error: ErrAlreadyInProgress on a single-flight collision,
// assetcache.ErrInvalidAsset for undecodable downloads, or a wrapped
// transport/storage failure.
func (m *Manager) AcquireArtwork(ctx context.Context, item library.Item) (assetcache.Metadata, error) {
	if meta, ok := m.assets.Lookup(item.ID); ok && m.assets.Has(item.ID) {
		return meta, nil
	}

	key := "artwork:" + item.ID
	if !m.tryAcquireFlight(key) {
		return assetcache.Metadata{}, ErrAlreadyInProgress
	}
	defer m.releaseFlight(key)

	query := catalog.Query{Title: item.Title, Artist: item.Artist, Album: item.Album}
	m.publish(Event{ItemID: item.ID, Kind: KindArtwork, Stage: StageDispatched, Progress: 0.1})

	candidate, err := m.artworkResolver.Resolve(ctx, query)
	if err != nil {
		m.fail(item.ID, KindArtwork, err)
		return assetcache.Metadata{}, fmt.Errorf("resolve artwork: %w", err)
	}
	m.publish(Event{ItemID: item.ID, Kind: KindArtwork, Stage: StageResolved, Progress: 0.7, Source: candidate.Source})

	data, err := m.download(ctx, candidate.URL)
	if err != nil {
		m.fail(item.ID, KindArtwork, err)
		return assetcache.Metadata{}, fmt.Errorf("download artwork: %w", err)
	}
	m.publish(Event{ItemID: item.ID, Kind: KindArtwork, Stage: StageDownloaded, Progress: 0.9, Source: candidate.Source})

	meta, err := m.assets.Put(item.ID, data, assetcache.PutInfo{
		Artist: item.Artist,
		Album:  item.Album,
		Source: candidate.Source,
	})
	if err != nil {
		m.fail(item.ID, KindArtwork, err)
		return assetcache.Metadata{}, err
	}

	if m.lib != nil {
		if err := m.lib.SetArtwork(item.ID, library.ArtworkRef{Valid: true, Source: candidate.Source}); err != nil {
			m.fail(item.ID, KindArtwork, err)
			return assetcache.Metadata{}, err
		}
	}

	m.publish(Event{ItemID: item.ID, Kind: KindArtwork, Stage: StageStored, Progress: 1.0, Source: candidate.Source})
	return meta, nil
}

// AcquireLyrics returns cached lyrics for the item, resolving and storing
// them on a cache miss. Unlike artwork there is no terminal fallback:
// lyrics.ErrNotFound is a legitimate outcome.
func (m *Manager) AcquireLyrics(ctx context.Context, item library.Item) (lyrics.Candidate, error) {
	if m.lyricsStore.Has(item.ID) {
		return m.lyricsStore.Get(item.ID)
	}

	key := "lyrics:" + item.ID
	if !m.tryAcquireFlight(key) {
		return lyrics.Candidate{}, ErrAlreadyInProgress
	}
	defer m.releaseFlight(key)

	query := catalog.Query{Title: item.Title, Artist: item.Artist, Album: item.Album}
	m.publish(Event{ItemID: item.ID, Kind: KindLyrics, Stage: StageDispatched, Progress: 0.1})

	candidate, err := m.lyricsResolver.Resolve(ctx, query)
	if err != nil {
		m.fail(item.ID, KindLyrics, err)
		return lyrics.Candidate{}, err
	}
	m.publish(Event{ItemID: item.ID, Kind: KindLyrics, Stage: StageResolved, Progress: 0.7, Source: candidate.Source})

	if err := m.lyricsStore.Put(item.ID, candidate); err != nil {
		m.fail(item.ID, KindLyrics, err)
		return lyrics.Candidate{}, err
	}

	m.publish(Event{ItemID: item.ID, Kind: KindLyrics, Stage: StageStored, Progress: 1.0, Source: candidate.Source})
	return candidate, nil
}

// HasArtwork reports whether artwork is cached for the item.
func (m *Manager) HasArtwork(itemID string) bool {
	return m.assets.Has(itemID)
}

// HasLyrics reports whether lyrics are stored for the item.
func (m *Manager) HasLyrics(itemID string) bool {
	return m.lyricsStore.Has(itemID)
}

// InProgress reports whether any acquisition for the item is in flight.
func (m *Manager) InProgress(itemID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight["artwork:"+itemID] || m.inflight["lyrics:"+itemID]
}

// BatchResult aggregates the outcome of AcquireAll.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// AcquireAll fetches artwork (and lyrics, when withLyrics is set) for every
// item sequentially, sleeping between items to respect third-party rate
// limits. Cancelling the context stops between items; each item's cache
// write is self-contained so interruption never corrupts state.
func (m *Manager) AcquireAll(ctx context.Context, items []library.Item, withLyrics bool) (BatchResult, error) {
	var result BatchResult

	for i, item := range items {
		if i > 0 {
			select {
			case <-time.After(m.batchDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}

		ok := true
		if _, err := m.AcquireArtwork(ctx, item); err != nil {
			ok = false
		}
		if withLyrics {
			if _, err := m.AcquireLyrics(ctx, item); err != nil && !errors.Is(err, lyrics.ErrNotFound) {
				ok = false
			}
		}

		if ok {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// CleanupUnused removes cached artwork and lyrics for every item id not in
// live. Returns the number of artwork and lyrics entries removed.
func (m *Manager) CleanupUnused(live map[string]bool) (artworkRemoved, lyricsRemoved int, err error) {
	artworkRemoved, err = m.assets.CleanupOrphans(live)
	if err != nil {
		return artworkRemoved, 0, err
	}
	lyricsRemoved, err = m.lyricsStore.CleanupOrphans(live)
	return artworkRemoved, lyricsRemoved, err
}

// download fetches the candidate bytes, bounded by the cache's size rules
// downstream. Non-2xx statuses are transport failures.
func (m *Manager) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// tryAcquireFlight marks a key in flight; false means a collision.
func (m *Manager) tryAcquireFlight(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inflight[key] {
		return false
	}
	m.inflight[key] = true
	return true
}

func (m *Manager) releaseFlight(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)
}

// publish fans an event out to all subscribers without blocking.
func (m *Manager) publish(e Event) {
	m.mu.Lock()
	subs := make([]*Subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.send(e)
	}
}

func (m *Manager) fail(itemID string, kind Kind, err error) {
	m.publish(Event{ItemID: itemID, Kind: kind, Stage: StageFailed, Err: err})
}

package playlist

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/harmonia-labs/playlist-agent-go/metrics"
	"github.com/harmonia-labs/playlist-agent-go/models"
	"github.com/harmonia-labs/playlist-agent-go/spotify"
)

const playlistDescription = "Created by your playlist assistant"

// Catalog is the slice of the Spotify capability materialization needs.
type Catalog interface {
	SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CandidateTrack, error)
	Me(ctx context.Context, token string) (string, error)
	CreatePlaylist(ctx context.Context, token, userID, name, description string, public bool) (spotify.Playlist, error)
	AddTracks(ctx context.Context, token, playlistID string, uris []string) error
}

// resolutionSource tags which query resolved a pair, if any.
type resolutionSource string

const (
	resolvedPrimary  resolutionSource = "primary"
	resolvedFallback resolutionSource = "fallback"
	resolvedNone     resolutionSource = "none"
)

// resolution is the typed outcome of resolving one (artist, title) pair.
type resolution struct {
	uri    string
	source resolutionSource
}

// Materializer turns parsed (artist, title) pairs into a real private
// catalog playlist with resolved track references.
type Materializer struct {
	catalog Catalog
	metrics *metrics.SentryMetrics
}

// NewMaterializer creates a materializer over the given catalog capability.
func NewMaterializer(catalog Catalog) *Materializer {
	return &Materializer{
		catalog: catalog,
		metrics: metrics.NewSentryMetrics(),
	}
}

// Materialize creates a private playlist named name and fills it with the
// tracks it can resolve, one pair at a time and in input order. Unresolvable
// pairs are skipped, never fatal; only playlist creation itself can fail.
func (m *Materializer) Materialize(ctx context.Context, token, name string, entries []models.ParsedEntry) (models.ResolvedPlaylist, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "playlist.materialize")
	defer transaction.Finish()
	ctx = transaction.Context()
	transaction.SetTag("requested", fmt.Sprintf("%d", len(entries)))

	userID, err := m.catalog.Me(ctx, token)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return models.ResolvedPlaylist{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	created, err := m.catalog.CreatePlaylist(ctx, token, userID, name, playlistDescription, false)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return models.ResolvedPlaylist{}, fmt.Errorf("failed to create playlist: %w", err)
	}

	// Sequential resolution, one pair at a time, keeps catalog-search rate
	// usage predictable. Order among resolved tracks follows input order.
	uris := make([]string, 0, len(entries))
	for _, entry := range entries {
		res := m.resolveTrack(ctx, token, entry)
		if res.source == resolvedNone {
			log.Printf("⚠️ No catalog match for %q by %q, skipping", entry.Title, entry.Artist)
			continue
		}
		log.Printf("🎵 Resolved %q by %q (%s query)", entry.Title, entry.Artist, res.source)
		uris = append(uris, res.uri)
	}

	if len(uris) > 0 {
		if err := m.catalog.AddTracks(ctx, token, created.ID, uris); err != nil {
			transaction.SetTag("success", "false")
			sentry.CaptureException(err)
			return models.ResolvedPlaylist{}, fmt.Errorf("failed to add tracks: %w", err)
		}
	}

	result := models.ResolvedPlaylist{
		ID:             created.ID,
		Name:           created.Name,
		URL:            created.ExternalURL,
		TracksAdded:    len(uris),
		TotalRequested: len(entries),
	}

	m.metrics.RecordMaterialization(ctx, result.TracksAdded, result.TotalRequested)
	transaction.SetTag("success", "true")
	log.Printf("✅ MATERIALIZATION COMPLETED in %v: %d/%d tracks added to %q",
		time.Since(startTime), result.TracksAdded, result.TotalRequested, result.Name)

	return result, nil
}

// resolveTrack resolves one pair: exact-field query first, unstructured
// concatenation as fallback, none when both come back empty or erroring.
func (m *Materializer) resolveTrack(ctx context.Context, token string, entry models.ParsedEntry) resolution {
	primary := spotify.BuildTrackQuery(entry.Title, entry.Artist)
	if uri, ok := m.firstURI(ctx, token, primary); ok {
		return resolution{uri: uri, source: resolvedPrimary}
	}

	fallback := fmt.Sprintf("%s %s", entry.Title, entry.Artist)
	if uri, ok := m.firstURI(ctx, token, fallback); ok {
		return resolution{uri: uri, source: resolvedFallback}
	}

	return resolution{source: resolvedNone}
}

// firstURI runs one search and returns the top result's URI.
func (m *Materializer) firstURI(ctx context.Context, token, query string) (string, bool) {
	tracks, err := m.catalog.SearchTracks(ctx, token, query, 1)
	if err != nil {
		log.Printf("⚠️ Track search failed for %q: %v", query, err)
		return "", false
	}
	if len(tracks) == 0 || tracks[0].URI == "" {
		return "", false
	}
	return tracks[0].URI, true
}

package retrieval

import (
	"context"
	"log"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

const (
	// perTermLimit is the maximum results requested per search term.
	perTermLimit = 10
	// maxCandidates is the hard cap on the aggregated candidate set.
	maxCandidates = 50
)

// TrackSearcher describes the ability to search the catalog for tracks.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CandidateTrack, error)
}

// Retriever builds a bounded, deduplicated candidate set of real catalog
// tracks grounding a playlist-generation turn.
type Retriever struct {
	searcher TrackSearcher
}

// NewRetriever creates a candidate retriever over the given searcher.
func NewRetriever(searcher TrackSearcher) *Retriever {
	return &Retriever{searcher: searcher}
}

// RetrieveCandidates derives search terms from the utterance, searches each
// term, and aggregates up to maxCandidates deduplicated tracks. Individual
// term failures are logged and skipped; the retriever never fails outright.
func (r *Retriever) RetrieveCandidates(ctx context.Context, utterance, token string) []models.CandidateTrack {
	terms := DeriveSearchTerms(utterance)
	log.Printf("🔎 Candidate retrieval: %d search terms derived: %v", len(terms), terms)

	seen := make(map[string]bool)
	candidates := make([]models.CandidateTrack, 0, maxCandidates)

	for _, term := range terms {
		if len(candidates) >= maxCandidates {
			break
		}

		tracks, err := r.searcher.SearchTracks(ctx, token, term, perTermLimit)
		if err != nil {
			log.Printf("⚠️ Candidate search failed for term %q, skipping: %v", term, err)
			continue
		}

		for _, track := range tracks {
			key := dedupeKey(track)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, track)
			if len(candidates) >= maxCandidates {
				break
			}
		}
	}

	log.Printf("✅ Candidate retrieval: %d tracks aggregated", len(candidates))
	return candidates
}

// dedupeKey defines candidate equality as exact (artist, title).
func dedupeKey(t models.CandidateTrack) string {
	return t.Artist + "\x00" + t.Title
}

package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

// fakeSearcher returns canned results, or an error, per invocation.
type fakeSearcher struct {
	results func(query string, limit int) ([]models.CandidateTrack, error)
	calls   int
}

func (f *fakeSearcher) SearchTracks(_ context.Context, _, query string, limit int) ([]models.CandidateTrack, error) {
	f.calls++
	return f.results(query, limit)
}

func uniqueTracks(prefix string, n int) []models.CandidateTrack {
	tracks := make([]models.CandidateTrack, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, models.CandidateTrack{
			Artist: fmt.Sprintf("%s-artist-%d", prefix, i),
			Title:  fmt.Sprintf("%s-title-%d", prefix, i),
			URI:    fmt.Sprintf("spotify:track:%s%d", prefix, i),
		})
	}
	return tracks
}

func TestRetrieveCandidates_CapsAtFifty(t *testing.T) {
	searcher := &fakeSearcher{
		results: func(query string, limit int) ([]models.CandidateTrack, error) {
			return uniqueTracks(query, limit), nil
		},
	}
	retriever := NewRetriever(searcher)

	// "workout party" derives enough terms that 10 results each would
	// overflow the cap.
	candidates := retriever.RetrieveCandidates(context.Background(), "a workout party playlist", "token")

	assert.Len(t, candidates, maxCandidates)
}

func TestRetrieveCandidates_DeduplicatesAcrossTerms(t *testing.T) {
	shared := []models.CandidateTrack{
		{Artist: "Queen", Title: "Don't Stop Me Now", URI: "spotify:track:1"},
		{Artist: "Queen", Title: "don't stop me now", URI: "spotify:track:2"},
	}
	searcher := &fakeSearcher{
		results: func(string, int) ([]models.CandidateTrack, error) {
			return shared, nil
		},
	}
	retriever := NewRetriever(searcher)

	candidates := retriever.RetrieveCandidates(context.Background(), "workout", "token")

	// Every term returns the same two tracks. Equality is exact
	// (artist, title), so the case-differing title survives.
	require.Len(t, candidates, 2)
	assert.Greater(t, searcher.calls, 1)
}

func TestRetrieveCandidates_AllTermsFailing(t *testing.T) {
	searcher := &fakeSearcher{
		results: func(string, int) ([]models.CandidateTrack, error) {
			return nil, errors.New("catalog unavailable")
		},
	}
	retriever := NewRetriever(searcher)

	candidates := retriever.RetrieveCandidates(context.Background(), "workout", "token")

	assert.Empty(t, candidates)
	assert.Greater(t, searcher.calls, 0)
}

func TestRetrieveCandidates_PartialFailure(t *testing.T) {
	searcher := &fakeSearcher{
		results: func(query string, _ int) ([]models.CandidateTrack, error) {
			if query == "workout" {
				return nil, errors.New("rate limited")
			}
			return []models.CandidateTrack{{Artist: "AC/DC", Title: "Thunderstruck", URI: "spotify:track:3"}}, nil
		},
	}
	retriever := NewRetriever(searcher)

	candidates := retriever.RetrieveCandidates(context.Background(), "workout", "token")

	require.NotEmpty(t, candidates)
	assert.Equal(t, "Thunderstruck", candidates[0].Title)
}

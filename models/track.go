package models

// CandidateTrack is a catalog search result offered to the language model as
// a grounding option. URI may be empty when the candidate only carries
// metadata. Dedup equality is exact (Artist, Title).
type CandidateTrack struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	URI    string `json:"uri,omitempty"`
}

// ParsedEntry is an (artist, title) pair extracted from a model reply.
// It expresses user-facing intent and is not yet resolved to a catalog track.
type ParsedEntry struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// ResolvedPlaylist is the result of materializing parsed entries into a real
// catalog playlist. TracksAdded never exceeds TotalRequested.
type ResolvedPlaylist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	TracksAdded    int    `json:"tracksAdded"`
	TotalRequested int    `json:"totalRequested"`
}

package spotify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Client talks to the Spotify Web API on behalf of an authenticated user.
// The per-user access token is passed into every call; the client itself
// holds no credential state.
type Client struct {
	http *resty.Client
}

// NewClient creates a Spotify Web API client.
func NewClient() *Client {
	return &Client{
		http: resty.New().SetBaseURL(defaultBaseURL),
	}
}

// NewClientWithBaseURL creates a client against a custom API root (tests).
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
	}
}

// SearchTracks searches the catalog for tracks matching query and returns up
// to limit results in Spotify's ranking order.
func (c *Client) SearchTracks(ctx context.Context, token, query string, limit int) ([]models.CandidateTrack, error) {
	if limit <= 0 {
		limit = 10
	}

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     query,
			"type":  "track",
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("spotify search status %d: %s", resp.StatusCode(), resp.String())
	}

	tracks := make([]models.CandidateTrack, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		artist := ""
		if len(item.Artists) > 0 {
			artist = item.Artists[0].Name
		}
		if artist == "" || item.Name == "" {
			continue
		}
		tracks = append(tracks, models.CandidateTrack{
			Artist: artist,
			Title:  item.Name,
			URI:    item.URI,
		})
	}
	return tracks, nil
}

// Me returns the authenticated user's id.
func (c *Client) Me(ctx context.Context, token string) (string, error) {
	var profile userProfile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&profile).
		Get("/me")
	if err != nil {
		return "", fmt.Errorf("spotify profile lookup failed: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.IsError() {
		return "", fmt.Errorf("spotify profile status %d: %s", resp.StatusCode(), resp.String())
	}
	if profile.ID == "" {
		return "", fmt.Errorf("spotify profile response missing id")
	}
	return profile.ID, nil
}

// CreatePlaylist creates a new playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, token, userID, name, description string, public bool) (Playlist, error) {
	var created playlistResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"name":        name,
			"description": description,
			"public":      public,
		}).
		SetResult(&created).
		Post(fmt.Sprintf("/users/%s/playlists", userID))
	if err != nil {
		return Playlist{}, fmt.Errorf("spotify playlist create failed: %w", err)
	}
	if resp.IsError() {
		return Playlist{}, fmt.Errorf("spotify playlist create status %d: %s", resp.StatusCode(), resp.String())
	}

	return Playlist{
		ID:          created.ID,
		Name:        created.Name,
		ExternalURL: created.ExternalUrls["spotify"],
	}, nil
}

// AddTracks appends track URIs to a playlist in one batch.
func (c *Client) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{"uris": uris}).
		Post(fmt.Sprintf("/playlists/%s/tracks", playlistID))
	if err != nil {
		return fmt.Errorf("spotify add tracks failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("spotify add tracks status %d: %s", resp.StatusCode(), resp.String())
	}

	log.Printf("🎶 Added %d tracks to playlist %s", len(uris), playlistID)
	return nil
}

// BuildTrackQuery builds the exact-field search query for a title/artist pair.
func BuildTrackQuery(title, artist string) string {
	return fmt.Sprintf("track:%q artist:%q", strings.TrimSpace(title), strings.TrimSpace(artist))
}

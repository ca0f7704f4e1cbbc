package spotify

import "errors"

// ErrUnauthorized is returned when the user token is missing or expired.
var ErrUnauthorized = errors.New("spotify: unauthorized")

// Playlist is a created catalog playlist.
type Playlist struct {
	ID          string
	Name        string
	ExternalURL string
}

// Wire structures for Spotify Web API responses.

type searchResponse struct {
	Tracks trackPage `json:"tracks"`
}

type trackPage struct {
	Items []trackItem `json:"items"`
}

type trackItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	ExternalUrls map[string]string `json:"external_urls"`
}

type userProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ExternalUrls map[string]string `json:"external_urls"`
}

package extraction

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

// Mode identifies which parse path produced a result.
type Mode string

const (
	// ModeSentinel means the [PLAYLIST_DATA] block parsed cleanly.
	ModeSentinel Mode = "sentinel"
	// ModeBracket means the sentinels were absent or malformed and a bare
	// bracket-delimited record array was recovered instead. This path exists
	// for compatibility with older model output that forgot the sentinels.
	ModeBracket Mode = "bracket"
	// ModeNone means no playlist data was found in the reply.
	ModeNone Mode = "none"
)

// Result is the tagged outcome of extracting playlist data from a model
// reply: either Parsed (Entries non-nil) or Unparsed (Entries nil), plus the
// display text with any recognized data block stripped.
type Result struct {
	DisplayText string
	Entries     []models.ParsedEntry
	Mode        Mode
}

// HasPlaylist reports whether the reply carried at least one valid entry.
func (r Result) HasPlaylist() bool {
	return len(r.Entries) > 0
}

// sentinelRe matches the whole delimited block non-greedily, across lines,
// so it can be stripped in one pass including the sentinels.
var sentinelRe = regexp.MustCompile(`(?s)\[PLAYLIST_DATA\](.*?)\[/PLAYLIST_DATA\]`)

// bracketRe locates a bare bracket-delimited sequence of brace records.
var bracketRe = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

const (
	openSentinel  = "[PLAYLIST_DATA]"
	closeSentinel = "[/PLAYLIST_DATA]"
)

// wireRecord is the on-the-wire record shape inside the data block.
type wireRecord struct {
	Artist string `json:"artist"`
	Song   string `json:"song"`
}

// Extract parses a raw model reply into display text plus an optional parsed
// playlist. Primary mode is the sentinel-delimited block; the bracket
// fallback recovers older output; failing both, the reply passes through
// unmodified except for best-effort stripping of dangling bracket content.
func Extract(reply string) Result {
	if result, ok := extractSentinel(reply); ok {
		return result
	}
	if result, ok := extractBracket(reply); ok {
		return result
	}

	display := strings.TrimSpace(stripDangling(reply))
	return Result{
		DisplayText: display,
		Mode:        ModeNone,
	}
}

// extractSentinel attempts the primary sentinel-delimited parse.
func extractSentinel(reply string) (Result, bool) {
	loc := sentinelRe.FindStringSubmatchIndex(reply)
	if loc == nil {
		return Result{}, false
	}

	interior := reply[loc[2]:loc[3]]
	entries, ok := parseRecords(interior)
	if !ok {
		log.Printf("⚠️ Sentinel block found but interior is malformed, trying bracket fallback")
		return Result{}, false
	}

	display := strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
	log.Printf("✅ Extracted %d playlist entries (sentinel block)", len(entries))
	return Result{
		DisplayText: display,
		Entries:     entries,
		Mode:        ModeSentinel,
	}, true
}

// extractBracket attempts the fallback parse on a bare record array.
func extractBracket(reply string) (Result, bool) {
	loc := bracketRe.FindStringIndex(reply)
	if loc == nil {
		return Result{}, false
	}

	entries, ok := parseRecords(reply[loc[0]:loc[1]])
	if !ok || len(entries) == 0 {
		return Result{}, false
	}

	display := strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
	log.Printf("✅ Extracted %d playlist entries (bracket fallback)", len(entries))
	return Result{
		DisplayText: display,
		Entries:     entries,
		Mode:        ModeBracket,
	}, true
}

// parseRecords parses a JSON array of {artist, song} records. Records missing
// either field are dropped, not fatal to the rest of the array.
func parseRecords(raw string) ([]models.ParsedEntry, bool) {
	var records []wireRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &records); err != nil {
		return nil, false
	}

	entries := make([]models.ParsedEntry, 0, len(records))
	for _, rec := range records {
		artist := strings.TrimSpace(rec.Artist)
		title := strings.TrimSpace(rec.Song)
		if artist == "" || title == "" {
			log.Printf("⚠️ Dropping invalid playlist record: artist=%q song=%q", rec.Artist, rec.Song)
			continue
		}
		entries = append(entries, models.ParsedEntry{Artist: artist, Title: title})
	}
	return entries, true
}

// stripDangling removes an unterminated data block left at the end of the
// reply so the user never sees half-emitted JSON.
func stripDangling(reply string) string {
	// An opening sentinel that was never closed marks everything after it as
	// incomplete machine output.
	if idx := strings.Index(reply, openSentinel); idx >= 0 && !strings.Contains(reply, closeSentinel) {
		return reply[:idx]
	}

	// A trailing "[" that never closes is half-emitted bracket content.
	idx := strings.LastIndex(reply, "[")
	if idx < 0 {
		return reply
	}
	if strings.Contains(reply[idx:], "]") {
		return reply
	}
	return reply[:idx]
}

package retrieval

import (
	"regexp"
	"strings"
	"unicode"
)

// moodLexicon maps mood/occasion words to catalog search terms. Consulted by
// case-insensitive substring match against the utterance.
var moodLexicon = map[string][]string{
	"birthday":  {"birthday", "celebration", "party", "upbeat"},
	"workout":   {"workout", "pump up", "gym", "motivation", "high energy"},
	"gym":       {"gym", "pump up", "workout", "high energy"},
	"running":   {"running", "cardio", "high energy", "motivation"},
	"party":     {"party", "dance", "club hits", "upbeat"},
	"chill":     {"chill", "lo-fi", "relaxing", "mellow"},
	"relax":     {"relaxing", "calm", "ambient", "chill"},
	"study":     {"study", "focus", "instrumental", "lo-fi"},
	"focus":     {"focus", "concentration", "instrumental"},
	"sleep":     {"sleep", "ambient", "calm piano"},
	"sad":       {"sad songs", "melancholy", "heartbreak"},
	"happy":     {"happy", "feel good", "upbeat"},
	"road trip": {"road trip", "driving", "sing along"},
	"wedding":   {"wedding", "romantic", "love songs", "first dance"},
	"romantic":  {"romantic", "love songs", "slow jams"},
	"summer":    {"summer hits", "beach", "sunshine"},
	"dinner":    {"dinner", "jazz", "acoustic", "smooth"},
}

// scriptTerms maps a unicode script found in the utterance to
// region/language search terms.
var scriptTerms = []struct {
	table *unicode.RangeTable
	terms []string
}{
	{unicode.Hebrew, []string{"israeli music", "hebrew songs"}},
	{unicode.Arabic, []string{"arabic music", "middle eastern songs"}},
	{unicode.Cyrillic, []string{"russian songs", "slavic music"}},
	{unicode.Greek, []string{"greek music", "greek songs"}},
	{unicode.Hangul, []string{"kpop", "korean songs"}},
}

// fallbackTerms is used when no term could be derived from the utterance.
var fallbackTerms = []string{"popular", "top hits", "chart toppers"}

// artistCueRe captures a likely artist-name phrase following a cue word.
var artistCueRe = regexp.MustCompile(`(?i)\b(?:by|from|artist)\s+([\p{L}\d][\p{L}\d'&.\- ]{1,40})`)

// genreCueRe captures a phrase the user attaches to a genre/song cue word,
// e.g. "some Beatles songs", "jazz music".
var genreCueRe = regexp.MustCompile(`(?i)([\p{L}\d][\p{L}\d'&.\- ]{1,40}?)\s+(?:songs?|music|tracks?|hits)\b`)

// stopWords are leading filler words trimmed off captured phrases.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "some": true, "me": true,
	"my": true, "of": true, "with": true, "for": true, "like": true,
	"good": true, "great": true, "nice": true, "more": true,
	"i": true, "want": true, "need": true, "play": true, "give": true,
}

// DeriveSearchTerms derives a deduplicated set of catalog search terms from a
// raw user utterance. Order is stable: artist phrases, script terms, mood
// terms, then the fallback set if nothing else was derived.
func DeriveSearchTerms(utterance string) []string {
	var terms []string

	for _, match := range artistCueRe.FindAllStringSubmatch(utterance, -1) {
		if phrase := cleanPhrase(match[1]); phrase != "" {
			terms = append(terms, phrase)
		}
	}

	for _, match := range genreCueRe.FindAllStringSubmatch(utterance, -1) {
		if phrase := cleanPhrase(match[1]); phrase != "" {
			terms = append(terms, phrase+" music")
		}
	}

	for _, st := range scriptTerms {
		if containsScript(utterance, st.table) {
			terms = append(terms, st.terms...)
		}
	}

	lower := strings.ToLower(utterance)
	for mood, moodTerms := range moodLexicon {
		if strings.Contains(lower, mood) {
			terms = append(terms, moodTerms...)
		}
	}

	if len(terms) == 0 {
		terms = append(terms, fallbackTerms...)
	}

	return dedupeTerms(terms)
}

// cleanPhrase trims punctuation and leading stop words from a captured phrase.
func cleanPhrase(phrase string) string {
	phrase = strings.TrimSpace(strings.Trim(phrase, `.,!?"'`))
	words := strings.Fields(phrase)
	for len(words) > 0 && stopWords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}
	cleaned := strings.Join(words, " ")
	if len(cleaned) < 2 {
		return ""
	}
	return cleaned
}

func containsScript(text string, table *unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

func dedupeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

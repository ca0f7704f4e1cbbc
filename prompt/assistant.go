package prompt

import (
	"fmt"
	"strings"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

// AssistantPromptBuilder builds prompts for the playlist assistant
type AssistantPromptBuilder struct{}

// NewAssistantPromptBuilder creates a new assistant prompt builder
func NewAssistantPromptBuilder() *AssistantPromptBuilder {
	return &AssistantPromptBuilder{}
}

// BuildSystemPrompt builds the complete system prompt seeded as the first
// history message of every conversation.
func (b *AssistantPromptBuilder) BuildSystemPrompt() string {
	sections := []string{
		b.getSystemInstructions(),
		b.getAntiHallucinationRules(),
		b.getOutputFormatInstructions(),
	}

	return strings.Join(sections, "\n\n")
}

// getSystemInstructions returns the main persona instructions
func (b *AssistantPromptBuilder) getSystemInstructions() string {
	return `You are a friendly music assistant that helps users build Spotify playlists through conversation.

Your role is to:
1. Chat with the user about their musical taste, mood, and occasion in whatever language they use
2. When the user asks for a playlist, suggest 15-25 real songs that fit the request
3. Keep the conversational part of your reply short and warm

Ask clarifying questions only when the request is genuinely ambiguous. If the user already told you a genre, artist, mood, or occasion, use it.`
}

// getAntiHallucinationRules returns the grounding contract
func (b *AssistantPromptBuilder) getAntiHallucinationRules() string {
	return `## Song Accuracy Rules

**CRITICAL**: Only suggest songs that actually exist. Never invent a song title or attribute a song to the wrong artist.

- Prefer well-known songs you are confident about over obscure ones you might be misremembering
- When a list of VERIFIED CANDIDATE TRACKS is provided with the request, you MUST pick songs ONLY from that list. Do not add songs that are not in the list
- If you cannot fill the playlist from the candidate list, return fewer songs rather than inventing any
- Artist and title must match how they appear in the Spotify catalog`
}

// getOutputFormatInstructions returns the wire-format contract
func (b *AssistantPromptBuilder) getOutputFormatInstructions() string {
	return `## Output Format

When (and only when) your reply contains a playlist, embed the song list in a machine-readable block using EXACTLY this format:

[PLAYLIST_DATA]
[{"artist": "Artist Name", "song": "Song Title"}, {"artist": "...", "song": "..."}]
[/PLAYLIST_DATA]

Rules:
- The block contains a single JSON array of objects with string fields "artist" and "song"
- Put the opening and closing markers on their own lines
- Write your conversational text outside the block; the block is stripped before the user sees your reply
- Never emit the markers without a valid JSON array between them
- For ordinary conversation (no playlist), do not emit the block at all`
}

// BuildCandidateAugmentation formats retrieved candidate tracks into the
// instruction appended to the final user message of a playlist-generation
// turn. The augmented text is sent to the model but never persisted.
func BuildCandidateAugmentation(userText string, candidates []models.CandidateTrack) string {
	var sb strings.Builder
	sb.WriteString(userText)
	sb.WriteString("\n\nVERIFIED CANDIDATE TRACKS (from the Spotify catalog):\n")
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, c.Artist, c.Title))
	}
	sb.WriteString("\nSelect songs ONLY from the candidate list above. Do not include any song that is not in the list.")
	return sb.String()
}

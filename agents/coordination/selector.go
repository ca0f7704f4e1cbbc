package coordination

import (
	"log"
	"strings"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

// factualCues are phrases in the most recent utterance that indicate the user
// is asking about real songs or artists, where a wrong answer is worse than a
// boring one.
var factualCues = []string{
	"who is", "what is", "tell me about",
	"do you know", "have you heard",
	"is there a song", "does exist",
	"real song", "actual song",
}

// Selector picks between the two canonical model configs. It is a pure
// decision function; its only side effect is logging.
type Selector struct {
	economy  models.ModelConfig
	accurate models.ModelConfig
}

// NewSelector builds a selector over the two canonical configs. The lower
// temperature on the accurate config biases toward determinism and factual
// recall over creativity.
func NewSelector(economyModel, accurateModel string) *Selector {
	return &Selector{
		economy: models.ModelConfig{
			Name:        "economy",
			Model:       economyModel,
			MaxTokens:   1000,
			Temperature: 0.3,
		},
		accurate: models.ModelConfig{
			Name:        "accurate",
			Model:       accurateModel,
			MaxTokens:   1000,
			Temperature: 0.2,
		},
	}
}

// SelectModel returns exactly one of the two canonical configs, in priority
// order: playlist turns and grounded turns need accuracy; factual questions
// need accuracy; everything else runs on the economy config.
func (s *Selector) SelectModel(isPlaylistTurn, hasCandidates bool, history []models.Utterance) models.ModelConfig {
	if isPlaylistTurn || hasCandidates {
		log.Printf("🎯 Model selection: accurate (playlist=%v, candidates=%v)", isPlaylistTurn, hasCandidates)
		return s.accurate
	}

	if last, ok := lastUtterance(history); ok && containsFactualCue(last.Content) {
		log.Printf("🎯 Model selection: accurate (factual cue in last utterance)")
		return s.accurate
	}

	log.Printf("🎯 Model selection: economy")
	return s.economy
}

func lastUtterance(history []models.Utterance) (models.Utterance, bool) {
	if len(history) == 0 {
		return models.Utterance{}, false
	}
	return history[len(history)-1], true
}

func containsFactualCue(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range factualCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

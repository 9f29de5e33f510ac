package service

import (
	"slices"

	"github.com/set-night/stanbot/internal/domain"
)

// AssemblePrompt builds the payload for one turn. The whole transcript is
// included; trimming, if any, happens before the call through a WindowPolicy.
func AssemblePrompt(instructions string, transcript []domain.MessageTurn, utterance string) domain.PromptPayload {
	return domain.PromptPayload{
		Instructions: instructions,
		History:      slices.Clone(transcript),
		Utterance:    utterance,
	}
}

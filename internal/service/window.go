package service

import "github.com/set-night/stanbot/internal/domain"

// WindowPolicy selects which prior turns are replayed to the model.
type WindowPolicy interface {
	Window(transcript []domain.MessageTurn) []domain.MessageTurn
}

// FullTranscript replays every prior turn.
type FullTranscript struct{}

func (FullTranscript) Window(transcript []domain.MessageTurn) []domain.MessageTurn {
	return transcript
}

// LastTurns replays at most N of the most recent turns. The window never
// starts on an assistant turn so the model always sees a user message first.
type LastTurns struct {
	N int
}

func (w LastTurns) Window(transcript []domain.MessageTurn) []domain.MessageTurn {
	if w.N <= 0 || len(transcript) <= w.N {
		return transcript
	}
	out := transcript[len(transcript)-w.N:]
	for len(out) > 0 && out[0].Role == domain.RoleAssistant {
		out = out[1:]
	}
	return out
}

// NewWindowPolicy returns FullTranscript for n == 0 and LastTurns otherwise.
func NewWindowPolicy(n int) WindowPolicy {
	if n <= 0 {
		return FullTranscript{}
	}
	return LastTurns{N: n}
}

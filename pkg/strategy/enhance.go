package strategy

import "github.com/aretw0/dialectic/pkg/domain"

const (
	ReframedMarker  = " [Reframed]"
	ChallengeMarker = " [Challenge Mode]"
)

// Enhance decorates options for display while an action is armed.
// Only display fields change; the input slice is never modified.
func Enhance(options []domain.Option, armed Kind) []domain.Option {
	out := domain.CloneOptions(options)
	switch armed {
	case KindReframe:
		for i := range out {
			out[i].Text += ReframedMarker
		}
	case KindBoast:
		for i := range out {
			out[i].Text += ChallengeMarker
			out[i].BoastMode = true
		}
	case KindNone, KindExtrapolate, KindSynthesis:
	}
	return out
}

package generation

import "github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"

type OutcomeKind string

const (
	// OutcomeCompleted means a generation was validated and persisted.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeManualPrompt means no API key is configured; the caller must run Prompt
	// elsewhere and submit the answer through the manual path.
	OutcomeManualPrompt OutcomeKind = "manual_required"
)

// Outcome is the non-error result of a generation request. Exactly one of Generation
// and Prompt is set, according to Kind.
type Outcome struct {
	Kind       OutcomeKind
	Generation *models.Generation
	Prompt     string
}

func Completed(g *models.Generation) *Outcome {
	return &Outcome{Kind: OutcomeCompleted, Generation: g}
}

func ManualPrompt(prompt string) *Outcome {
	return &Outcome{Kind: OutcomeManualPrompt, Prompt: prompt}
}

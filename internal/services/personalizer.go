package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smoothmigration/backend/internal/llm"
	"github.com/smoothmigration/backend/internal/models"
)

// Token in base explanation text replaced with the user's destination.
const destinationPlaceholder = "{destination}"

// Completer is the text-generation capability the personalizer depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string, history []llm.Message) (string, error)
}

// Personalizer rewrites a task's generic importance explanation for one
// user. It never returns an error: any failure of the underlying completion
// falls back to the placeholder-substituted base text.
type Personalizer struct {
	LLM    Completer
	Logger *slog.Logger
}

// NewPersonalizer returns a Personalizer over the given completion capability.
func NewPersonalizer(completer Completer, logger *slog.Logger) *Personalizer {
	return &Personalizer{LLM: completer, Logger: logger}
}

// Personalize returns the final importance explanation for the task. When
// the template's personalize flag is off, the substituted base text is
// returned without any model call.
func (p *Personalizer) Personalize(ctx context.Context, tmpl models.TaskTemplate, profile models.QuizProfile) string {
	base := strings.ReplaceAll(tmpl.ImportanceExplanation, destinationPlaceholder, profile.Destination)
	if !tmpl.Personalize {
		return base
	}

	raw, err := p.LLM.Complete(ctx, buildPrompt(base, tmpl.TaskDescription, profile), nil)
	if err != nil {
		p.Logger.Warn("personalization failed, using base explanation",
			"task_id", tmpl.TaskID, "error", err)
		return base
	}

	cleaned := SanitizeCompletion(raw)
	if cleaned == "" {
		p.Logger.Warn("personalization returned empty text, using base explanation",
			"task_id", tmpl.TaskID)
		return base
	}
	return cleaned
}

func buildPrompt(base, taskDescription string, profile models.QuizProfile) string {
	var b strings.Builder
	b.WriteString("You are an expert relocation planner.\n\n")
	b.WriteString("User relocation details:\n")
	b.WriteString(profileSummary(profile))
	fmt.Fprintf(&b, "\nTask: %q\n", taskDescription)
	fmt.Fprintf(&b, "Generic explanation: %q\n\n", base)
	b.WriteString("Rewrite the explanation so it speaks to this user's specific move, ")
	b.WriteString("in at most 6 sentences. ")
	b.WriteString("Reply with the explanation text only — no preamble, no JSON, no markdown.")
	return b.String()
}

// profileSummary renders the quiz answers as a compact bullet list for the
// prompt.
func profileSummary(p models.QuizProfile) string {
	var companions []string
	if p.Family["children"] {
		companions = append(companions, "children")
	}
	if p.Family["pets"] {
		companions = append(companions, "pets")
	}
	movingWith := "alone"
	if len(companions) > 0 {
		movingWith = "with " + strings.Join(companions, " and ")
	}

	currentHousing := p.CurrentHousing
	if currentHousing == "" {
		currentHousing = "not specified"
	}
	newHousing := "not yet arranged"
	if p.HasHousing {
		newHousing = p.NewHousing
	}
	jobSecured := "No"
	if p.HasJob {
		jobSecured = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Moving type: %s\n", p.MoveType)
	fmt.Fprintf(&b, "- Destination: %s\n", p.Destination)
	fmt.Fprintf(&b, "- Estimated move date: %s\n", p.MoveDate)
	fmt.Fprintf(&b, "- Moving %s\n", movingWith)
	fmt.Fprintf(&b, "- Vehicle plan: %s\n", p.Vehicle)
	fmt.Fprintf(&b, "- Current housing: %s\n", currentHousing)
	fmt.Fprintf(&b, "- New housing status: %s\n", newHousing)
	fmt.Fprintf(&b, "- Job secured at destination: %s\n", jobSecured)
	return b.String()
}

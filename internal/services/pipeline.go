package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/smoothmigration/backend/internal/models"
	"github.com/smoothmigration/backend/internal/rules"
)

// ErrNoTemplates is returned when the combined template set is empty at
// request time. An empty store is misconfiguration, not a valid empty
// checklist, so the whole request fails before any stream output.
var ErrNoTemplates = errors.New("no checklist templates loaded")

// TemplateSource is the read-only view of the store the pipeline needs.
type TemplateSource interface {
	Templates() []models.TaskTemplate
}

// RecommendationMatcher attaches recommended services to a template.
type RecommendationMatcher interface {
	Match(tmpl models.TaskTemplate) []models.ServiceRecommendation
}

// ExplanationPersonalizer produces the final importance explanation.
type ExplanationPersonalizer interface {
	Personalize(ctx context.Context, tmpl models.TaskTemplate, profile models.QuizProfile) string
}

// Emitter receives one stream record at a time, in emission order. It is
// expected to flush each record to the client before returning.
type Emitter func(v any) error

// Pipeline assembles a personalized checklist for one request: filter the
// templates against the profile, order them, then emit a header record, one
// record per surviving task, and a trailer record.
type Pipeline struct {
	Store        TemplateSource
	Matcher      RecommendationMatcher
	Personalizer ExplanationPersonalizer
	Logger       *slog.Logger
}

// NewPipeline wires a Pipeline.
func NewPipeline(store TemplateSource, matcher RecommendationMatcher, personalizer ExplanationPersonalizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{Store: store, Matcher: matcher, Personalizer: personalizer, Logger: logger}
}

// Run executes one request. profileMap is the raw decoded form of profile
// used for condition evaluation. Task records are produced and emitted
// strictly in the precomputed order; a cancelled ctx stops the stream and
// no further personalization calls are issued.
//
// The header's total counts every applicable task; the trailer counts only
// the tasks actually streamed. The two differ when assembly validation drops
// a task.
func (p *Pipeline) Run(ctx context.Context, profile models.QuizProfile, profileMap map[string]any, emit Emitter) error {
	templates := p.Store.Templates()
	if len(templates) == 0 {
		return ErrNoTemplates
	}

	applicable := p.filter(templates, profileMap)

	// Stage rank first, priority rank second; ties keep load order.
	sort.SliceStable(applicable, func(i, j int) bool {
		si, sj := models.StageRank(applicable[i].Stage), models.StageRank(applicable[j].Stage)
		if si != sj {
			return si < sj
		}
		return models.PriorityRank(applicable[i].Priority) < models.PriorityRank(applicable[j].Priority)
	})

	if err := emit(buildHeader(applicable)); err != nil {
		return err
	}

	streamed := 0
	for _, tmpl := range applicable {
		if err := ctx.Err(); err != nil {
			p.Logger.Info("stream cancelled, stopping task generation",
				"streamed", streamed, "remaining", len(applicable)-streamed)
			return err
		}

		if !models.ValidPriority(tmpl.Priority) {
			p.Logger.Warn("dropping task with invalid priority",
				"task_id", tmpl.TaskID, "priority", tmpl.Priority)
			continue
		}

		item := models.TaskItem{
			EventType:             models.EventTaskItem,
			TaskID:                tmpl.TaskID,
			TaskDescription:       tmpl.TaskDescription,
			Priority:              tmpl.Priority,
			DueDate:               tmpl.DueDate,
			ImportanceExplanation: p.Personalizer.Personalize(ctx, tmpl, profile),
			RecommendedServices:   p.Matcher.Match(tmpl),
			Stage:                 tmpl.Stage,
			Category:              tmpl.Category,
		}
		if item.RecommendedServices == nil {
			item.RecommendedServices = []models.ServiceRecommendation{}
		}
		if err := emit(item); err != nil {
			return err
		}
		streamed++
	}

	return emit(models.StreamEnd{
		EventType:     models.EventStreamEnd,
		TotalStreamed: streamed,
	})
}

// filter returns the templates applicable to the profile, in load order.
// Templates with malformed clauses fail closed and are logged.
func (p *Pipeline) filter(templates []models.TaskTemplate, profileMap map[string]any) []models.TaskTemplate {
	var applicable []models.TaskTemplate
	for _, tmpl := range templates {
		ok, err := rules.Applies(tmpl.AppliesIf, profileMap)
		if err != nil {
			p.Logger.Warn("template failed condition parsing, excluding",
				"task_id", tmpl.TaskID, "error", err)
			continue
		}
		if ok {
			applicable = append(applicable, tmpl)
		}
	}
	return applicable
}

func buildHeader(applicable []models.TaskTemplate) models.InitialStructure {
	totals := make(map[string]int, len(models.Stages))
	categories := make(map[string][]string, len(models.Stages))
	seen := make(map[string]map[string]bool, len(models.Stages))
	for _, stage := range models.Stages {
		totals[stage] = 0
		categories[stage] = []string{}
		seen[stage] = make(map[string]bool)
	}

	for _, tmpl := range applicable {
		totals[tmpl.Stage]++
		if tmpl.Category != "" && !seen[tmpl.Stage][tmpl.Category] {
			seen[tmpl.Stage][tmpl.Category] = true
			categories[tmpl.Stage] = append(categories[tmpl.Stage], tmpl.Category)
		}
	}
	for _, stage := range models.Stages {
		sort.Strings(categories[stage])
	}

	return models.InitialStructure{
		EventType:            models.EventInitialStructure,
		TotalApplicableTasks: len(applicable),
		StageTotals:          totals,
		CategoriesByStage:    categories,
	}
}

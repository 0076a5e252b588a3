package models

import (
	"github.com/smoothmigration/backend/internal/rules"
)

// Relocation stages. A template's stage comes from the source file it was
// loaded from, never from the template content itself.
const (
	StagePredeparture = "predeparture"
	StageDeparture    = "departure"
	StageArrival      = "arrival"
)

// Stages lists the three stages in processing order.
var Stages = []string{StagePredeparture, StageDeparture, StageArrival}

// Task priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

const unknownRank = 99

// StageRank orders stages for emission; unknown stages sort last.
func StageRank(stage string) int {
	switch stage {
	case StagePredeparture:
		return 0
	case StageDeparture:
		return 1
	case StageArrival:
		return 2
	default:
		return unknownRank
	}
}

// PriorityRank orders priorities within a stage; unknown values sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return unknownRank
	}
}

// ValidPriority reports whether priority is one of the allowed enum values.
func ValidPriority(priority string) bool {
	return priority == PriorityHigh || priority == PriorityMedium || priority == PriorityLow
}

// TaskTemplate is one pre-authored checklist item, immutable after load.
type TaskTemplate struct {
	TaskID                string            `yaml:"task_id"`
	TaskDescription       string            `yaml:"task_description"`
	Priority              string            `yaml:"priority"`
	DueDate               string            `yaml:"due_date"`
	ImportanceExplanation string            `yaml:"importance_explanation"`
	Personalize           bool              `yaml:"personalize"`
	AppliesIf             []rules.Condition `yaml:"applies_if"`
	RecommendedServiceIDs []string          `yaml:"recommended_service_ids"`
	ServiceKeywords       []string          `yaml:"service_keywords"`
	Category              string            `yaml:"category"`

	// Stage is assigned by the store from the source file grouping.
	Stage string `yaml:"-"`
}

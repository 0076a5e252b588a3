package models

// Stream event types for the newline-delimited JSON checklist stream.
const (
	EventInitialStructure = "initial_structure"
	EventTaskItem         = "task_item"
	EventStreamEnd        = "stream_end"
)

// InitialStructure is the header record, emitted before any task so the
// client can render skeleton and progress UI immediately.
type InitialStructure struct {
	EventType            string              `json:"event_type"`
	TotalApplicableTasks int                 `json:"total_applicable_tasks"`
	StageTotals          map[string]int      `json:"stage_totals"`
	CategoriesByStage    map[string][]string `json:"categories_by_stage"`
}

// TaskItem is one fully assembled checklist task. IsExpanded and Completed
// are client-side UI defaults attached at emission time; nothing about them
// is persisted here.
type TaskItem struct {
	EventType             string                  `json:"event_type"`
	TaskID                string                  `json:"task_id"`
	TaskDescription       string                  `json:"task_description"`
	Priority              string                  `json:"priority"`
	DueDate               string                  `json:"due_date"`
	ImportanceExplanation string                  `json:"importance_explanation"`
	RecommendedServices   []ServiceRecommendation `json:"recommended_services"`
	Stage                 string                  `json:"stage"`
	Category              string                  `json:"category"`
	IsExpanded            bool                    `json:"isExpanded"`
	Completed             bool                    `json:"completed"`
}

// StreamEnd is the trailer record. TotalStreamed may be lower than the
// header's TotalApplicableTasks when tasks were dropped by assembly
// validation; clients reconcile the two counts.
type StreamEnd struct {
	EventType     string `json:"event_type"`
	TotalStreamed int    `json:"total_streamed"`
}

package services

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/smoothmigration/backend/internal/models"
)

// At most this many services are recommended per task.
const maxRecommendations = 2

// Keyword scoring: a match against a service's relevant_categories counts
// more than a match against its own keyword list. The two bonuses are
// additive and each applies at most once per service.
const (
	categoryMatchScore = 3
	keywordMatchScore  = 1
	minMatchScore      = 1
)

// ServiceCatalog is the read-only view of the store the matcher needs.
type ServiceCatalog interface {
	Services() []models.ServiceDefinition
	ServiceByID(id string) (models.ServiceDefinition, bool)
}

// Matcher selects recommended services for a task template. Results are
// deterministic given fixed catalog contents.
type Matcher struct {
	Catalog ServiceCatalog
	Logger  *slog.Logger
}

// NewMatcher returns a Matcher over the given catalog.
func NewMatcher(catalog ServiceCatalog, logger *slog.Logger) *Matcher {
	return &Matcher{Catalog: catalog, Logger: logger}
}

type keywordCandidate struct {
	svc   models.ServiceDefinition
	score int
	order int
}

// Match returns up to two service recommendations for the template:
// directly referenced ids first, in declared order, then keyword-scored
// candidates. A service id never appears twice in one result.
func (m *Matcher) Match(tmpl models.TaskTemplate) []models.ServiceRecommendation {
	recs := make([]models.ServiceRecommendation, 0, maxRecommendations)
	taken := make(map[string]bool)

	for _, id := range tmpl.RecommendedServiceIDs {
		if len(recs) == maxRecommendations {
			break
		}
		if taken[id] {
			continue
		}
		svc, ok := m.Catalog.ServiceByID(id)
		if !ok {
			m.Logger.Warn("recommended service id not found",
				"task_id", tmpl.TaskID, "service_id", id)
			continue
		}
		taken[id] = true
		recs = append(recs, svc.Recommendation())
	}

	if len(recs) == maxRecommendations || len(tmpl.ServiceKeywords) == 0 {
		return recs
	}

	keywords := lowerAll(tmpl.ServiceKeywords)
	var candidates []keywordCandidate
	for i, svc := range m.Catalog.Services() {
		if taken[svc.ID] {
			continue
		}
		score := keywordScore(keywords, svc)
		if score < minMatchScore {
			continue
		}
		candidates = append(candidates, keywordCandidate{svc: svc, score: score, order: i})
	}

	// Score descending; equal scores keep catalog order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	for _, c := range candidates {
		if len(recs) == maxRecommendations {
			break
		}
		taken[c.svc.ID] = true
		recs = append(recs, c.svc.Recommendation())
	}
	return recs
}

// keywordScore awards categoryMatchScore when any task keyword matches one
// of the service's relevant categories and keywordMatchScore when any task
// keyword matches one of the service's own keywords, case-insensitively.
func keywordScore(taskKeywords []string, svc models.ServiceDefinition) int {
	score := 0
	if anyMatch(taskKeywords, svc.RelevantCategories) {
		score += categoryMatchScore
	}
	if anyMatch(taskKeywords, svc.Keywords) {
		score += keywordMatchScore
	}
	return score
}

func anyMatch(taskKeywords, serviceTerms []string) bool {
	for _, term := range serviceTerms {
		lowered := strings.ToLower(term)
		for _, kw := range taskKeywords {
			if kw == lowered {
				return true
			}
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

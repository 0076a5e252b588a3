package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/smoothmigration/backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const servicesFixture = `
- id: homebridge-realty
  name: HomeBridge Realty
  description: Relocation realtors.
  url: https://example.com/homebridge
  relevant_categories: [housing]
  keywords: [realtor]
`

func TestLoadTagsStagesAndKeepsFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "predepart.yaml", `
- task_id: pre-1
  task_description: Give notice on your lease
  priority: High
- task_id: pre-2
  task_description: Book the movers
  priority: Medium
`)
	writeFixture(t, dir, "depart.yaml", `
- task_id: dep-1
  task_description: Return the keys
  priority: Low
`)
	writeFixture(t, dir, "arrive.yaml", `
- task_id: arr-1
  task_description: Register locally
  priority: High
`)
	writeFixture(t, dir, "services.yaml", servicesFixture)

	s := Load(dir, discardLogger())

	templates := s.Templates()
	if len(templates) != 4 {
		t.Fatalf("loaded %d templates, want 4", len(templates))
	}
	wantIDs := []string{"pre-1", "pre-2", "dep-1", "arr-1"}
	wantStages := []string{
		models.StagePredeparture, models.StagePredeparture,
		models.StageDeparture, models.StageArrival,
	}
	for i, tmpl := range templates {
		if tmpl.TaskID != wantIDs[i] {
			t.Errorf("template %d id = %q, want %q", i, tmpl.TaskID, wantIDs[i])
		}
		if tmpl.Stage != wantStages[i] {
			t.Errorf("template %d stage = %q, want %q", i, tmpl.Stage, wantStages[i])
		}
	}
}

func TestLoadNormalizesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "arrive.yaml", `
- task_description: A task with no id and no priority
`)
	writeFixture(t, dir, "services.yaml", servicesFixture)

	s := Load(dir, discardLogger())
	templates := s.Templates()
	if len(templates) != 1 {
		t.Fatalf("loaded %d templates, want 1", len(templates))
	}
	if templates[0].Priority != models.PriorityLow {
		t.Errorf("priority = %q, want default %q", templates[0].Priority, models.PriorityLow)
	}
	if templates[0].TaskID == "" {
		t.Error("missing task_id must be synthesized")
	}
}

func TestLoadSkipsMalformedEntriesIndividually(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "arrive.yaml", `
- task_id: good-1
  task_description: A valid task
- "not a mapping"
- task_id: no-description
- task_id: good-2
  task_description: Another valid task
`)
	writeFixture(t, dir, "services.yaml", servicesFixture)

	s := Load(dir, discardLogger())
	templates := s.Templates()
	if len(templates) != 2 {
		t.Fatalf("loaded %d templates, want 2", len(templates))
	}
	if templates[0].TaskID != "good-1" || templates[1].TaskID != "good-2" {
		t.Errorf("survivors = %q, %q", templates[0].TaskID, templates[1].TaskID)
	}
}

func TestLoadMissingFilesAreNonFatal(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "arrive.yaml", `
- task_id: arr-1
  task_description: Register locally
`)
	// No predepart.yaml, depart.yaml, or services.yaml.

	s := Load(dir, discardLogger())
	if len(s.Templates()) != 1 {
		t.Fatalf("loaded %d templates, want 1", len(s.Templates()))
	}
	if len(s.Services()) != 0 {
		t.Errorf("loaded %d services, want 0", len(s.Services()))
	}
}

func TestLoadServicesValidation(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "services.yaml", `
- id: valid
  name: Valid Service
  description: ok
  url: https://example.com/valid
- id: missing-url
  name: No URL
  description: rejected
- id: valid
  name: Duplicate Of Valid
  description: rejected
  url: https://example.com/dup
- id: second
  name: Second Service
  description: ok
  url: https://example.com/second
`)

	s := Load(dir, discardLogger())
	services := s.Services()
	if len(services) != 2 {
		t.Fatalf("loaded %d services, want 2", len(services))
	}
	if services[0].ID != "valid" || services[1].ID != "second" {
		t.Errorf("survivors = %q, %q", services[0].ID, services[1].ID)
	}

	got, ok := s.ServiceByID("valid")
	if !ok {
		t.Fatal("ServiceByID(valid) not found")
	}
	if got.Name != "Valid Service" {
		t.Errorf("duplicate id must not overwrite the first definition, got %q", got.Name)
	}
	if _, ok := s.ServiceByID("missing-url"); ok {
		t.Error("rejected service must not be resolvable")
	}
}

func TestLoadAppliesIfConditionsDecode(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "arrive.yaml", `
- task_id: arr-1
  task_description: Arrange a rental car
  applies_if:
    - path: vehicle
      equals: rent
  recommended_service_ids: [rollo-rentals]
  service_keywords: [rent, car service]
`)
	writeFixture(t, dir, "services.yaml", servicesFixture)

	s := Load(dir, discardLogger())
	templates := s.Templates()
	if len(templates) != 1 {
		t.Fatalf("loaded %d templates, want 1", len(templates))
	}
	tmpl := templates[0]
	if len(tmpl.AppliesIf) != 1 {
		t.Fatalf("decoded %d conditions, want 1", len(tmpl.AppliesIf))
	}
	if tmpl.AppliesIf[0].Path != "vehicle" {
		t.Errorf("condition path = %q", tmpl.AppliesIf[0].Path)
	}
	if len(tmpl.RecommendedServiceIDs) != 1 || tmpl.RecommendedServiceIDs[0] != "rollo-rentals" {
		t.Errorf("recommended_service_ids = %v", tmpl.RecommendedServiceIDs)
	}
	if len(tmpl.ServiceKeywords) != 2 {
		t.Errorf("service_keywords = %v", tmpl.ServiceKeywords)
	}
}

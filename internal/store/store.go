// Package store loads the checklist template and service definition files
// into memory at process start. The resulting Store is read-only and safe
// for unsynchronized concurrent reads across requests.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/smoothmigration/backend/internal/models"
)

// Stage source files inside the checklist directory.
var stageFiles = []struct {
	stage string
	file  string
}{
	{models.StagePredeparture, "predepart.yaml"},
	{models.StageDeparture, "depart.yaml"},
	{models.StageArrival, "arrive.yaml"},
}

const servicesFile = "services.yaml"

// Store holds all loaded templates and service definitions.
type Store struct {
	templates []models.TaskTemplate
	services  []models.ServiceDefinition
	byID      map[string]int
}

// Load reads every stage file plus the services file from dir. A missing or
// unparseable source logs a diagnostic and contributes an empty list; load
// never fails the process. An entirely empty template set is rejected later,
// at request time.
func Load(dir string, logger *slog.Logger) *Store {
	s := &Store{byID: make(map[string]int)}

	for _, sf := range stageFiles {
		path := filepath.Join(dir, sf.file)
		entries, err := decodeFile(path)
		if err != nil {
			logger.Error("failed to load checklist source", "path", path, "error", err)
			continue
		}
		loaded := 0
		for i, node := range entries {
			tmpl, err := decodeTemplate(node)
			if err != nil {
				logger.Warn("skipping malformed template entry",
					"path", path, "index", i, "error", err)
				continue
			}
			s.templates = append(s.templates, normalize(tmpl, sf.stage))
			loaded++
		}
		logger.Info("loaded checklist templates", "stage", sf.stage, "count", loaded)
	}

	path := filepath.Join(dir, servicesFile)
	entries, err := decodeFile(path)
	if err != nil {
		logger.Error("failed to load services source", "path", path, "error", err)
		return s
	}
	for i, node := range entries {
		var svc models.ServiceDefinition
		if err := node.Decode(&svc); err != nil {
			logger.Warn("skipping malformed service entry", "path", path, "index", i, "error", err)
			continue
		}
		if svc.ID == "" || svc.Name == "" || svc.Description == "" || svc.URL == "" {
			logger.Warn("skipping service with missing required fields",
				"path", path, "index", i, "service_id", svc.ID)
			continue
		}
		if _, dup := s.byID[svc.ID]; dup {
			logger.Warn("skipping duplicate service id", "path", path, "service_id", svc.ID)
			continue
		}
		s.byID[svc.ID] = len(s.services)
		s.services = append(s.services, svc)
	}
	logger.Info("loaded service definitions", "count", len(s.services))

	return s
}

// decodeFile reads a YAML file whose top level must be a sequence and
// returns its element nodes, so one malformed entry can be skipped without
// discarding its siblings.
func decodeFile(path string) ([]yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("top level of %q is not a sequence", path)
	}
	nodes := make([]yaml.Node, len(root.Content))
	for i, n := range root.Content {
		nodes[i] = *n
	}
	return nodes, nil
}

func decodeTemplate(node yaml.Node) (models.TaskTemplate, error) {
	var tmpl models.TaskTemplate
	if node.Kind != yaml.MappingNode {
		return tmpl, fmt.Errorf("entry is not a mapping")
	}
	if err := node.Decode(&tmpl); err != nil {
		return tmpl, err
	}
	if tmpl.TaskDescription == "" {
		return tmpl, fmt.Errorf("entry has no task_description")
	}
	return tmpl, nil
}

// normalize fills the implicit fields: the stage tag, the default priority,
// and a synthesized task id when the source omits one.
func normalize(tmpl models.TaskTemplate, stage string) models.TaskTemplate {
	tmpl.Stage = stage
	if tmpl.Priority == "" {
		tmpl.Priority = models.PriorityLow
	}
	if tmpl.TaskID == "" {
		tmpl.TaskID = uuid.NewString()
	}
	return tmpl
}

// Templates returns all loaded templates in load order. Callers must treat
// the slice as read-only.
func (s *Store) Templates() []models.TaskTemplate {
	return s.templates
}

// Services returns all loaded service definitions in file order. Callers
// must treat the slice as read-only.
func (s *Store) Services() []models.ServiceDefinition {
	return s.services
}

// ServiceByID looks up a service definition by its id.
func (s *Store) ServiceByID(id string) (models.ServiceDefinition, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.ServiceDefinition{}, false
	}
	return s.services[i], true
}

package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrValidation can be used with errors.Is to detect quiz payload
// validation failures.
var ErrValidation = errors.New("validation failed")

const quizSchemaFile = "quiz.v1.json"

// Validator checks incoming quiz payloads against the quiz profile JSON
// schema before the pipeline ever sees them.
type Validator struct {
	quiz *jsonschema.Schema
}

// NewValidator compiles the quiz profile schema from schemaDir.
func NewValidator(schemaDir string) (*Validator, error) {
	path := filepath.Join(schemaDir, quizSchemaFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	schema, err := jsonschema.CompileString("https://smoothmigration.dev/schemas/quiz.v1", string(data))
	if err != nil {
		return nil, fmt.Errorf("compile quiz schema: %w", err)
	}
	return &Validator{quiz: schema}, nil
}

// ValidateProfile performs a hard reject: it returns an error wrapping
// ErrValidation when the payload does not match the quiz schema.
func (v *Validator) ValidateProfile(payload []byte) error {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.quiz.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

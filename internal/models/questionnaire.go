package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is a single questionnaire item as declared in questions.yaml.
type Question struct {
	ID       string `yaml:"id" json:"id"`
	Text     string `yaml:"text" json:"text"`
	Category string `yaml:"category" json:"category"`
}

// Questionnaire holds the 57 items served to clients. The scoring groups are
// fixed by question number in the scoring package; this file only carries the
// presentation data.
type Questionnaire struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestionnaire reads and parses the questions.yaml file.
func LoadQuestionnaire(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire file: %w", err)
	}

	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire YAML: %w", err)
	}

	return &q, nil
}

// KeySet returns the set of valid question ids for submission validation.
func (q *Questionnaire) KeySet() map[string]struct{} {
	keys := make(map[string]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		keys[question.ID] = struct{}{}
	}
	return keys
}

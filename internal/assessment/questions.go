// Package assessment holds the fixed onboarding questionnaire and the
// scoring function that turns answers into an initial confidence score.
package assessment

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

type QuestionType string

const (
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
	TypeScale    QuestionType = "scale"
)

// Question is the wire shape rendered by the assessment flow.
type Question struct {
	ID       string       `yaml:"id" json:"id"`
	Question string       `yaml:"question" json:"question"`
	Type     QuestionType `yaml:"type" json:"type"`
	Options  []string     `yaml:"options,omitempty" json:"options,omitempty"`
	Min      *int         `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *int         `yaml:"max,omitempty" json:"max,omitempty"`
}

//go:embed questions.yaml
var questionsYAML []byte

var questions = mustParseQuestions(questionsYAML)

func mustParseQuestions(data []byte) []Question {
	qs, err := parseQuestions(data)
	if err != nil {
		panic(fmt.Sprintf("assessment: invalid embedded questionnaire: %v", err))
	}
	return qs
}

func parseQuestions(data []byte) ([]Question, error) {
	var qs []Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if q.ID == "" {
			return nil, fmt.Errorf("question %q has no id", q.Question)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		switch q.Type {
		case TypeSingle, TypeMultiple:
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("question %q has no options", q.ID)
			}
		case TypeScale:
			if q.Min == nil || q.Max == nil || *q.Min >= *q.Max {
				return nil, fmt.Errorf("question %q has an invalid scale", q.ID)
			}
		default:
			return nil, fmt.Errorf("question %q has unknown type %q", q.ID, q.Type)
		}
	}
	return qs, nil
}

// Questions returns a copy of the questionnaire in display order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

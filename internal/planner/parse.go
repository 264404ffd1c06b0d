package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"alcyxob/confidence-coach/internal/domain"
)

const (
	defaultTitle         = "Untitled Task"
	defaultCategory      = "general"
	defaultEstimatedTime = 30
	defaultInsights      = "You've got this! Start with the easiest task to build momentum."

	// Bounds for numbers taken from provider output.
	maxFlexInt    = math.MaxInt32
	minFlexInt    = math.MinInt32
	maxImpactSize = 100
)

// ParseError reports provider output that could not be turned into a plan.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse plan: %s: %v", e.Reason, e.Err)
	}
	return "parse plan: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// extractObject returns the first balanced {...} span in text. Braces inside
// JSON string literals are ignored.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// flexInt accepts a JSON number or a numeric string. Anything else that is
// still a scalar is treated as absent.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) {
			f.value, f.set = roundBounded(v), true
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
			return nil
		}
		return err
	}
	f.value, f.set = roundBounded(v), true
	return nil
}

// roundBounded rounds v and clamps it to the int32 range.
func roundBounded(v float64) int {
	v = math.Round(v)
	switch {
	case v > maxFlexInt:
		return maxFlexInt
	case v < minFlexInt:
		return minFlexInt
	}
	return int(v)
}

// flexString accepts a JSON string or number (providers sometimes emit numeric ids).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type rawTask struct {
	ID            flexString `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	EstimatedTime flexInt    `json:"estimatedTime"`
	Difficulty    string     `json:"difficulty"`
}

type rawPlan struct {
	Tasks            []rawTask `json:"tasks"`
	ConfidenceImpact flexInt   `json:"confidenceImpact"`
	Insights         string    `json:"insights"`
}

// Parse extracts and validates a plan from free-form provider text.
func Parse(text string) (ParsedPlan, error) {
	obj, ok := extractObject(text)
	if !ok {
		return ParsedPlan{}, &ParseError{Reason: "no JSON object found in response"}
	}

	var raw rawPlan
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return ParsedPlan{}, &ParseError{Reason: "malformed JSON", Err: err}
	}
	if len(raw.Tasks) == 0 {
		return ParsedPlan{}, &ParseError{Reason: "response contains no tasks"}
	}

	tasks := make([]domain.Task, len(raw.Tasks))
	seen := make(map[string]bool, len(raw.Tasks))
	for i, rt := range raw.Tasks {
		task := normalizeTask(i, rt)
		task.ID = uniqueTaskID(task.ID, i, seen)
		seen[task.ID] = true
		tasks[i] = task
	}

	impact := raw.ConfidenceImpact.value
	if impact > maxImpactSize {
		impact = maxImpactSize
	} else if impact < -maxImpactSize {
		impact = -maxImpactSize
	}

	insights := strings.TrimSpace(raw.Insights)
	if insights == "" {
		insights = defaultInsights
	}
	return ParsedPlan{Draft{
		Tasks:            tasks,
		ConfidenceImpact: impact,
		Insights:         insights,
		AIGenerated:      true,
	}}, nil
}

// uniqueTaskID keeps task ids addressable: a repeated id becomes task_{i+1},
// suffixed further if that is taken too.
func uniqueTaskID(id string, i int, seen map[string]bool) string {
	if !seen[id] {
		return id
	}
	candidate := fmt.Sprintf("task_%d", i+1)
	for n := 2; seen[candidate]; n++ {
		candidate = fmt.Sprintf("task_%d_%d", i+1, n)
	}
	return candidate
}

func normalizeTask(i int, rt rawTask) domain.Task {
	t := domain.Task{
		ID:            strings.TrimSpace(string(rt.ID)),
		Title:         strings.TrimSpace(rt.Title),
		Description:   strings.TrimSpace(rt.Description),
		Category:      strings.ToLower(strings.TrimSpace(rt.Category)),
		Priority:      domain.Priority(strings.ToLower(strings.TrimSpace(rt.Priority))),
		Difficulty:    domain.Difficulty(strings.ToLower(strings.TrimSpace(rt.Difficulty))),
		EstimatedTime: rt.EstimatedTime.value,
		Completed:     false,
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("task_%d", i+1)
	}
	if t.Title == "" {
		t.Title = defaultTitle
	}
	if t.Category == "" {
		t.Category = defaultCategory
	}
	if !t.Priority.Valid() {
		t.Priority = domain.PriorityMedium
	}
	if !t.Difficulty.Valid() {
		t.Difficulty = domain.DifficultyMedium
	}
	if !rt.EstimatedTime.set || t.EstimatedTime <= 0 {
		t.EstimatedTime = defaultEstimatedTime
	}
	return t
}

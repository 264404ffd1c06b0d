// Package planner turns a user's profile and assessment answers into a daily
// task plan using an external text-generation provider, falling back to a
// fixed plan whenever the provider fails or returns something unusable.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"alcyxob/confidence-coach/internal/domain"
)

// SystemPrompt frames the provider as a coach.
const SystemPrompt = "You are an expert personal development coach. Create detailed, actionable daily plans " +
	"that help users achieve their goals. Focus on realistic, achievable tasks that build confidence and momentum."

const notSpecified = "Not specified"

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// BuildPrompt renders the user prompt for plan generation.
func BuildPrompt(user *domain.User, r domain.Responses) string {
	age := notSpecified
	if user.Profile.Age != nil {
		age = strconv.Itoa(*user.Profile.Age)
	}

	var b strings.Builder
	b.WriteString("Create a personalized daily plan for a user with the following profile:\n\n")
	fmt.Fprintf(&b, "GOALS: %s\n", strings.Join(r.Goals, ", "))
	fmt.Fprintf(&b, "FITNESS LEVEL: %s\n", orDefault(r.FitnessLevel, "Beginner"))
	fmt.Fprintf(&b, "AVAILABLE TIME: %s\n", orDefault(r.AvailableTime, "1 hour"))
	fmt.Fprintf(&b, "PREFERRED TIME: %s\n", orDefault(r.Preferences, "Morning"))
	fmt.Fprintf(&b, "CHALLENGES: %s\n\n", strings.Join(r.Challenges, ", "))

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(user.Profile.Name, notSpecified))
	fmt.Fprintf(&b, "- Age: %s\n", age)
	fmt.Fprintf(&b, "- Current Confidence: %d/100\n\n", user.Assessment.CurrentConfidence)

	b.WriteString(`Please create a daily plan with 5-8 specific, actionable tasks that:
1. Address their main goals
2. Are appropriate for their fitness level
3. Fit within their available time
4. Consider their challenges
5. Build confidence through achievable wins

Format your response as JSON with this structure:
{
  "tasks": [
    {
      "id": "task_1",
      "title": "Task Title",
      "description": "Detailed description",
      "category": "fitness/career/health/relationships/learning",
      "priority": "low/medium/high",
      "estimatedTime": 30,
      "difficulty": "easy/medium/hard"
    }
  ],
  "confidenceImpact": 5,
  "insights": "Brief motivational insight about the plan"
}

Make sure tasks are:
- Specific and actionable
- Realistic for their level
- Balanced across different life areas
- Designed to build momentum
- Include at least one quick win (easy task)
`)
	return b.String()
}
